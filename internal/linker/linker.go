// Package linker implements the two bracket-linking passes of spec §4.3:
// pass A pairs (){}[] using per-kind stacks plus a shared order stack,
// and pass B disambiguates `<...>` as template parameter lists,
// including splitting a `>>` that closes two nested template lists.
package linker

import (
	"github.com/cxxtok/cxxtok/internal/matcher"
	"github.com/cxxtok/cxxtok/internal/token"
	"github.com/cxxtok/cxxtok/internal/xerrors"
)

type bracketKind int8

const (
	kindParen bracketKind = iota
	kindBrace
	kindBracket
)

func openerKind(lexeme string) (bracketKind, bool) {
	switch lexeme {
	case "(":
		return kindParen, true
	case "{":
		return kindBrace, true
	case "[":
		return kindBracket, true
	}
	return 0, false
}

func closerFor(lexeme string) (string, bool) {
	switch lexeme {
	case "(":
		return ")", true
	case "{":
		return "}", true
	case "[":
		return "]", true
	}
	return "", false
}

// CreateLinks is pass A (spec §4.3): pairs (){}[] using three stacks, one
// per bracket kind, plus a fourth stack (order) recording the kind
// expected at the current open, so that cross-kind mismatches like
// `foo(bar]` are caught precisely rather than merely leaving both
// brackets unlinked.
func CreateLinks(list *token.TokenList) error {
	var order []token.Token             // the 4th stack: all currently-open brackets, any kind.
	perKind := map[bracketKind][]token.Token{kindParen: nil, kindBrace: nil, kindBracket: nil}

	for t := list.Head(); !t.Nil(); t = t.Next() {
		lex := t.Lexeme()
		if kind, ok := openerKind(lex); ok {
			order = append(order, t)
			perKind[kind] = append(perKind[kind], t)
			continue
		}

		if lex != ")" && lex != "}" && lex != "]" {
			continue
		}

		if len(order) == 0 {
			return xerrors.New(xerrors.Syntax, t.Pos(), "unmatched %q", lex)
		}

		top := order[len(order)-1]
		wantClose, _ := closerFor(top.Lexeme())
		if wantClose != lex {
			return xerrors.New(xerrors.Syntax, top.Pos(),
				"unmatched %q (mismatched with %q at line %d)", top.Lexeme(), lex, t.Pos().Line)
		}

		top.SetLink(t)
		order = order[:len(order)-1]
		kind, _ := openerKind(top.Lexeme())
		stack := perKind[kind]
		perKind[kind] = stack[:len(stack)-1]
	}

	if len(order) > 0 {
		return xerrors.New(xerrors.Syntax, order[0].Pos(), "unmatched %q", order[0].Lexeme())
	}
	return nil
}

// closesTemplate is the set of tokens allowed to follow a `>`/`>>` for it
// to be treated as a template-list closer (spec §4.3).
func closesTemplate(next token.Token) bool {
	if next.Nil() {
		return true
	}
	switch next.Lexeme() {
	case ",", ";", ".", "=", "{", "::", "(", ")", "[", "]", "}", ">", "&", "&&", "*":
		return true
	}
	switch next.Kind() {
	case token.Name, token.Number, token.Keyword:
		return true
	}
	return false
}

// opensTemplate decides whether `<` at t is a template opener (spec
// §4.3): the preceding token is a name that is either marked IsTemplate or
// has no var id, or the `<` is immediately followed by `>`/`>>`.
func opensTemplate(t token.Token) bool {
	next := t.Next()
	if !next.Nil() && (next.Lexeme() == ">" || next.Lexeme() == ">>") {
		return true
	}

	prev := t.Prev()
	if prev.Nil() || prev.Kind() != token.Name {
		return false
	}
	return prev.Attrs().IsTemplate || prev.VarID() == 0
}

type pendingOpen struct {
	tok       token.Token
	abandoned bool
}

// CreateLinks2 is pass B (spec §4.3): disambiguates `<...>` once var ids
// are available (the opener heuristic consults VarID, so the driver runs
// this pass after variable-id assignment -- spec §4.10's phase order). An
// opener left unmatched at end-of-list is reported the same way pass A
// reports an unmatched bracket.
func CreateLinks2(list *token.TokenList) error {
	var stack []pendingOpen

	abandonAll := func() {
		for i := range stack {
			stack[i].abandoned = true
		}
	}

	for t := list.Head(); !t.Nil(); {
		next := t.Next()

		switch {
		case t.Lexeme() == "<" && opensTemplate(t):
			stack = append(stack, pendingOpen{tok: t})

		case t.Lexeme() == ";":
			abandonAll()

		case matcher.Match(t, "&&|%oror%"):
			abandonAll()

		case t.Lexeme() == ">":
			if n := popOpen(&stack); !n.Nil() && closesTemplate(t.Next()) {
				n.SetLink(t)
			} else if !n.Nil() {
				// Not a template closer after all; put it back.
				stack = append(stack, pendingOpen{tok: n})
			}

		case t.Lexeme() == ">>":
			if len(activeOpens(stack)) >= 2 && closesTemplate(t.Next()) {
				inner := popOpen(&stack)
				outer := popOpen(&stack)
				first, second, err := splitGT(list, t)
				if err != nil {
					return err
				}
				inner.SetLink(first)
				outer.SetLink(second)
				next = second.Next()
			}
		}

		t = next
	}

	if open := activeOpens(stack); len(open) > 0 {
		return xerrors.New(xerrors.Syntax, open[0].tok.Pos(), "unmatched %q", open[0].tok.Lexeme())
	}
	return nil
}

// popOpen pops the innermost non-abandoned pending open, discarding any
// abandoned entries above it. Returns the nil token if none remain.
func popOpen(stack *[]pendingOpen) token.Token {
	for len(*stack) > 0 {
		top := (*stack)[len(*stack)-1]
		*stack = (*stack)[:len(*stack)-1]
		if !top.abandoned {
			return top.tok
		}
	}
	return token.Nil
}

func activeOpens(stack []pendingOpen) []pendingOpen {
	var out []pendingOpen
	for _, p := range stack {
		if !p.abandoned {
			out = append(out, p)
		}
	}
	return out
}

// splitGT splits a `>>` token into two adjacent `>` tokens, preserving
// source position (spec §4.3: "split the token into two `>` tokens, link
// each, and preserve source positions").
func splitGT(list *token.TokenList, gtgt token.Token) (first, second token.Token, err error) {
	gtgt.Canonicalize(">")
	second = list.InsertAfter(gtgt, ">")
	return gtgt, second, nil
}
