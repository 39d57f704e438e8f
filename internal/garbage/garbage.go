// Package garbage implements the garbage-code detector of spec §4.8: a
// scan over the canonical token list for syntactic patterns that cannot
// arise from valid input, raising a structured syntax error the moment
// one is found. internal/driver runs it once after linker pass A and
// again after the simplifier suite (spec §4.8, "runs after linker pass A
// and again after the simplifier suite").
//
// Grounded directly on original_source/test/testgarbage.cpp's case
// catalogue; the specific patterns below are the ones that corpus
// exercises (operator-with-no-operand, dangling case, for-header
// semicolon count, keyword-at-global-scope, unmatched closer, unmatched
// ternary, uppercase-name-called-as-macro).
package garbage

import (
	"github.com/cxxtok/cxxtok/internal/matcher"
	"github.com/cxxtok/cxxtok/internal/token"
	"github.com/cxxtok/cxxtok/internal/xerrors"
)

// Check runs every garbage-code pattern against list and returns the
// first violation found, or nil if none. Each check function owns a
// narrow pattern; Check runs them in the order a reader would want a
// diagnostic to make sense (structural problems before heuristic ones).
func Check(list *token.TokenList) error {
	checks := []func(*token.TokenList) error{
		checkOperatorWithNoOperand,
		checkCaseOutsideSwitch,
		checkForHeaderSemicolons,
		checkKeywordAtGlobalScope,
		checkUnmatchedCloser,
		checkUnmatchedTernary,
		checkUnknownMacro,
	}
	for _, c := range checks {
		if err := c(list); err != nil {
			return err
		}
	}
	return nil
}

// checkOperatorWithNoOperand flags a binary/comparison operator directly
// followed by a closing bracket or another such operator, which can only
// arise from invalid input -- except the allowed unary +/- sequences
// (spec §4.8: "except allowed sequences like unary +/-").
func checkOperatorWithNoOperand(list *token.TokenList) error {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if !matcher.Match(t, "%cop%") {
			continue
		}
		if isUnaryPosition(t) {
			continue
		}
		next := t.Next()
		if next.Nil() {
			return xerrors.New(xerrors.Syntax, t.Pos(), "operator %q has no right operand", t.Lexeme())
		}
		if matcher.Match(next, ")|]|}") {
			return xerrors.New(xerrors.Syntax, t.Pos(), "operator %q has no right operand", t.Lexeme())
		}
		if matcher.Match(next, "%cop%") && !isUnaryPosition(next) {
			return xerrors.New(xerrors.Syntax, t.Pos(), "operator %q directly followed by operator %q", t.Lexeme(), next.Lexeme())
		}
	}
	return nil
}

// isUnaryPosition reports whether t (a +, -, *, or & appearing where
// %cop% also matches) is actually in prefix/unary position: at the very
// start of an expression or right after another operator/open bracket.
func isUnaryPosition(t token.Token) bool {
	switch t.Lexeme() {
	case "+", "-", "*", "&":
	default:
		return false
	}
	prev := t.Prev()
	if prev.Nil() {
		return true
	}
	switch prev.Kind() {
	case token.Name, token.Number, token.String, token.Char, token.Boolean:
		return false
	}
	if prev.Lexeme() == ")" || prev.Lexeme() == "]" {
		return false
	}
	return true
}

// checkCaseOutsideSwitch flags a `case` keyword that is not lexically
// enclosed by a `switch (...) { ... }` body (spec §4.8).
func checkCaseOutsideSwitch(list *token.TokenList) error {
	var switchDepth int
	var braceStack []bool // true if this brace level belongs to a switch body.
	for t := list.Head(); !t.Nil(); t = t.Next() {
		switch t.Lexeme() {
		case "switch":
			switchDepth++
		case "{":
			owning := false
			if switchDepth > 0 {
				owning = true
				switchDepth--
			}
			braceStack = append(braceStack, owning)
		case "}":
			if len(braceStack) > 0 {
				braceStack = braceStack[:len(braceStack)-1]
			}
		case "case":
			if !anyTrue(braceStack) {
				return xerrors.New(xerrors.Syntax, t.Pos(), "case label outside switch")
			}
		}
	}
	return nil
}

func anyTrue(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}

// checkForHeaderSemicolons verifies a classic `for (...)` header has
// exactly two semicolons, or exactly one when it is a C++20 range-for
// (followed by `:`) (spec §4.8).
func checkForHeaderSemicolons(list *token.TokenList) error {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() != "for" {
			continue
		}
		open := t.Next()
		if open.Lexeme() != "(" {
			continue
		}
		close := open.Link()
		if close.Nil() {
			continue
		}
		semis, colons := 0, 0
		depth := 0
		for c := open.Next(); !c.Nil() && !c.Equal(close); c = c.Next() {
			switch c.Lexeme() {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			case ";":
				if depth == 0 {
					semis++
				}
			case ":":
				if depth == 0 {
					colons++
				}
			}
		}
		if colons > 0 {
			continue // range-based for, no semicolon requirement.
		}
		if semis != 2 {
			return xerrors.New(xerrors.Syntax, t.Pos(), "for-header has %d semicolons, expected 2", semis)
		}
	}
	return nil
}

// globalOnlyKeywords are keywords that only make sense inside a function
// or loop/switch body, never at namespace or global scope (spec §4.8).
var globalOnlyKeywords = map[string]bool{
	"break": true, "continue": true, "return": true,
}

// checkKeywordAtGlobalScope flags break/continue/return appearing
// outside any function body.
func checkKeywordAtGlobalScope(list *token.TokenList) error {
	inFunctionBody := []bool{}
	parenDepth := 0
	for t := list.Head(); !t.Nil(); t = t.Next() {
		switch t.Lexeme() {
		case "(", "[":
			parenDepth++
		case ")", "]":
			if parenDepth > 0 {
				parenDepth--
			}
		case "{":
			inFunctionBody = append(inFunctionBody, looksLikeFunctionOpen(t))
		case "}":
			if len(inFunctionBody) > 0 {
				inFunctionBody = inFunctionBody[:len(inFunctionBody)-1]
			}
		default:
			// A statement keyword inside an unclosed (...)/[...] is not
			// a real statement -- it can only arise from an unconfigured
			// macro call enclosing it, which checkUnknownMacro below
			// reports with the more specific diagnostic id.
			if globalOnlyKeywords[t.Lexeme()] && parenDepth == 0 && !anyTrue(inFunctionBody) {
				return xerrors.New(xerrors.Syntax, t.Pos(), "keyword %q at global scope", t.Lexeme())
			}
		}
	}
	return nil
}

// looksLikeFunctionOpen reports whether the `{` at t opens a function,
// loop, or switch body (as opposed to a class/namespace/aggregate-init
// body) by looking at what precedes it: a `)` closing a parameter list,
// or a loop/switch/do/else/try keyword context.
func looksLikeFunctionOpen(brace token.Token) bool {
	prev := brace.Prev()
	if prev.Lexeme() == ")" {
		return true
	}
	switch prev.Lexeme() {
	case "try", "else", "do":
		return true
	}
	return false
}

// checkUnmatchedCloser flags a `}` or `)` at the top of the list's brace
// nesting that closes nothing, beyond what linker.CreateLinks already
// catches -- this redundant, fast pre-check exists because the garbage
// detector runs standalone on partially-processed input in the driver's
// first pass, before linking has necessarily completed in callers that
// invoke it out of order for diagnostics tooling.
func checkUnmatchedCloser(list *token.TokenList) error {
	depth := map[string]int{"(": 0, "{": 0, "[": 0}
	closerOf := map[string]string{")": "(", "}": "{", "]": "["}
	for t := list.Head(); !t.Nil(); t = t.Next() {
		switch t.Lexeme() {
		case "(", "{", "[":
			depth[t.Lexeme()]++
		case ")", "}", "]":
			opener := closerOf[t.Lexeme()]
			if depth[opener] == 0 {
				return xerrors.New(xerrors.Syntax, t.Pos(), "%q closes nothing", t.Lexeme())
			}
			depth[opener]--
		}
	}
	return nil
}

// checkUnmatchedTernary flags a `?` with no matching top-level `:` before
// the enclosing statement ends (spec §4.8). A `:` with no `?` is not
// flagged.
func checkUnmatchedTernary(list *token.TokenList) error {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() != "?" {
			continue
		}
		depth := 0
		found := false
		for c := t.Next(); !c.Nil(); c = c.Next() {
			switch c.Lexeme() {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return xerrors.New(xerrors.Syntax, t.Pos(), "unmatched '?' ternary")
				}
				depth--
			case ";":
				if depth == 0 {
					return xerrors.New(xerrors.Syntax, t.Pos(), "unmatched '?' ternary")
				}
			case ":":
				if depth == 0 {
					found = true
				}
			}
			if found {
				break
			}
		}
		if !found {
			return xerrors.New(xerrors.Syntax, t.Pos(), "unmatched '?' ternary")
		}
	}
	return nil
}

// checkUnknownMacro raises the distinct UnknownMacro syntax-error
// subclass (spec §6/§7) for a name heuristically shaped like an
// unconfigured function-like macro: all-uppercase, followed by a
// parenthesized argument list that encloses a `;` or a `return` (spec
// §4.8, "a name in uppercase followed by a parenthesized argument list
// that encloses ';' or 'return'").
func checkUnknownMacro(list *token.TokenList) error {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if t.Kind() != token.Name || !isAllUpper(t.Lexeme()) {
			continue
		}
		open := t.Next()
		if open.Lexeme() != "(" {
			continue
		}
		close := open.Link()
		if close.Nil() {
			continue
		}
		for c := open.Next(); !c.Nil() && !c.Equal(close); c = c.Next() {
			if c.Lexeme() == ";" || c.Lexeme() == "return" {
				return xerrors.New(xerrors.UnknownMacro, t.Pos(),
					"unknown macro or syntax error near %q", t.Lexeme())
			}
		}
	}
	return nil
}

func isAllUpper(s string) bool {
	if s == "" {
		return false
	}
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
