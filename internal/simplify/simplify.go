// Package simplify implements the nine ordered rewrite groups of spec
// §4.7. Each group is a fixed list of idempotent Rewrites; a group runs
// every rewrite in it repeatedly until none reports a change, then the
// next group starts. The fixed order matters: later rewrites assume
// earlier groups have already normalized their input.
package simplify

import (
	"strconv"

	"github.com/cxxtok/cxxtok/internal/matcher"
	"github.com/cxxtok/cxxtok/internal/token"
)

// Rewrite applies one normalization across list and reports whether it
// changed anything.
type Rewrite func(list *token.TokenList) bool

// Group is one of the nine ordered phases of spec §4.7.
type Group struct {
	Name     string
	Rewrites []Rewrite
}

// Groups returns the nine ordered groups exactly as enumerated in spec
// §4.7. internal/driver runs selected groups by name in SimplifyTokens1
// and all of them via RunAll in SimplifyTokens2.
func Groups() []Group {
	return []Group{
		{Name: "macro-normalization", Rewrites: []Rewrite{
			removePragma, removeExternC, stripAttributes, removeCallingConvention, qtAccessSpecifiers,
		}},
		{Name: "lexical-combination", Rewrites: []Rewrite{
			fuseCompoundAssign, fuseNegativeNumber, rewriteAlternativeTokens,
		}},
		{Name: "structural-canonicalization", Rewrites: []Rewrite{
			zeroIndexSwap, stringLiteralIndex, pointerArithmeticToIndex,
		}},
		{Name: "declarations", Rewrites: []Rewrite{
			splitVarDeclComma, splitVarDeclInit,
		}},
		{Name: "expression-normalization", Rewrites: []Rewrite{
			notTrueFalse, deadIfConstant, constantTernary,
		}},
		{Name: "control-flow", Rewrites: []Rewrite{
			braceSingleStatement,
		}},
		{Name: "dead-code-pruning", Rewrites: []Rewrite{
			pruneAfterJump,
		}},
		{Name: "known-value-propagation", Rewrites: []Rewrite{
			propagateKnownLiteral,
		}},
		{Name: "ast-finalization", Rewrites: nil}, // spec §4.9; driven separately by internal/astbuild.
	}
}

// RunAll runs every group in order, each to a fixed point, stopping
// early (returning the count of changes so far) only on error -- no
// rewrite in this package can itself fail, so RunAll never errors; the
// return is the total number of individual rewrite applications, handy
// for progress logging.
func RunAll(list *token.TokenList) int {
	total := 0
	for _, g := range Groups() {
		total += runGroup(list, g)
	}
	return total
}

func runGroup(list *token.TokenList, g Group) int {
	total := 0
	for {
		changed := false
		for _, r := range g.Rewrites {
			for r(list) {
				changed = true
				total++
			}
		}
		if !changed {
			return total
		}
	}
}

// --- Group 1: macro removal and normalization ---

func removePragma(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() == "_Pragma" && t.Next().Lexeme() == "(" && !t.Next().Link().Nil() {
			list.EraseRange(t.Prev(), t.Next().Link().Next())
			return true
		}
	}
	return false
}

func removeExternC(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() != "extern" || t.Next().Kind() != token.String {
			continue
		}
		strTok := t.Next()
		if strTok.Next().Lexeme() == "{" && !strTok.Next().Link().Nil() {
			brace := strTok.Next()
			end := brace.Link()
			for in := brace.Next(); !in.Equal(end); in = in.Next() {
				in.Attrs().IsExternC = true
			}
			list.EraseRange(t.Prev(), brace.Next())
			list.EraseRange(end.Prev(), end.Next())
			return true
		}
		// `extern "C" void f();` -- single declaration, no braces.
		list.EraseRange(t.Prev(), strTok.Next())
		return true
	}
	return false
}

var attributeKeywords = map[string]func(*token.Attrs){
	"noreturn":      func(a *token.Attrs) { a.IsAttributeNoreturn = true },
	"nodiscard":     func(a *token.Attrs) { a.IsAttributeNodiscard = true },
	"pure":          func(a *token.Attrs) { a.IsAttributePure = true },
	"const":         func(a *token.Attrs) { a.IsAttributeConst = true },
	"packed":        func(a *token.Attrs) { a.IsAttributePacked = true },
	"unused":        func(a *token.Attrs) { a.IsAttributeUnused = true },
	"maybe_unused":  func(a *token.Attrs) { a.IsAttributeMaybeUnused = true },
}

func stripAttributes(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		switch t.Lexeme() {
		case "__attribute__", "__declspec", "alignas":
			if t.Next().Lexeme() != "(" || t.Next().Link().Nil() {
				continue
			}
			open := t.Next()
			close := open.Link()
			applyAttributeFlags(t.Next(), close, annotationTarget(close))
			list.EraseRange(t.Prev(), close.Next())
			return true
		case "[":
			if t.Next().Lexeme() != "[" {
				continue
			}
			inner := t.Next()
			if inner.Link().Nil() || inner.Link().Next().Lexeme() != "]" {
				continue
			}
			outerClose := inner.Link().Next()
			applyAttributeFlags(t, outerClose, annotationTarget(outerClose))
			list.EraseRange(t.Prev(), outerClose.Next())
			return true
		}
	}
	return false
}

func applyAttributeFlags(from, to token.Token, target token.Token) {
	if target.Nil() {
		return
	}
	for t := from; !t.Equal(to); t = t.Next() {
		if set, ok := attributeKeywords[t.Lexeme()]; ok {
			set(target.Attrs())
		}
	}
}

// annotationTarget returns the declaration token an attribute list
// qualifies: the next real token after the closing paren/bracket.
func annotationTarget(close token.Token) token.Token {
	return close.Next()
}

func removeCallingConvention(list *token.TokenList) bool {
	conventions := map[string]bool{"__cdecl": true, "__stdcall": true, "__fastcall": true, "WINAPI": true, "CALLBACK": true}
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if conventions[t.Lexeme()] {
			list.EraseRange(t.Prev(), t.Next())
			return true
		}
	}
	return false
}

func qtAccessSpecifiers(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if (t.Lexeme() == "signals" || t.Lexeme() == "slots") && t.Next().Lexeme() == ":" {
			t.Canonicalize("public")
			return true
		}
	}
	return false
}

// --- Group 2: lexical combinations ---

var compoundAssignParts = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"&": true, "|": true, "^": true, "<<": true,
}

func fuseCompoundAssign(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if compoundAssignParts[t.Lexeme()] && t.Next().Lexeme() == "=" {
			next := t.Next().Next()
			t.Canonicalize(t.Lexeme() + "=")
			list.EraseRange(t, next)
			return true
		}
		if t.Lexeme() == ">>" && t.Next().Lexeme() == "=" {
			next := t.Next().Next()
			t.Canonicalize(">>=")
			list.EraseRange(t, next)
			return true
		}
	}
	return false
}

func fuseNegativeNumber(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() != "," {
			continue
		}
		sign := t.Next()
		if sign.Lexeme() != "-" && sign.Lexeme() != "+" {
			continue
		}
		num := sign.Next()
		if num.Kind() != token.Number {
			continue
		}
		combined := sign.Lexeme() + num.Lexeme()
		after := num.Next()
		list.InsertBefore(sign, combined)
		list.EraseRange(sign.Prev(), after)
		return true
	}
	return false
}

var altTokens = map[string]string{
	"and": "&&", "or": "||", "not": "!", "xor": "^",
	"bitand": "&", "bitor": "|", "compl": "~",
	"not_eq": "!=", "and_eq": "&=", "or_eq": "|=", "xor_eq": "^=",
}

func rewriteAlternativeTokens(list *token.TokenList) bool {
	if !consistentlyUnused(list) {
		return false
	}
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if canon, ok := altTokens[t.Lexeme()]; ok && t.VarID() == 0 {
			t.Canonicalize(canon)
			return true
		}
	}
	return false
}

// consistentlyUnused reports whether every occurrence of an alternative
// token in the list is used as an operator, not shadowed as an
// identifier (spec §4.7: "only if a whole-translation-unit consistency
// check permits it, so that C code using `and` as an identifier is not
// broken").
func consistentlyUnused(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if _, ok := altTokens[t.Lexeme()]; ok && t.VarID() != 0 {
			return false
		}
	}
	return true
}

// --- Group 3: structural canonicalization ---

func zeroIndexSwap(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if !matcher.SimpleMatch(t, "0 [") || t.Next().Link().Nil() {
			continue
		}
		bracket := t.Next()
		close := bracket.Link()
		if !bracket.Next().Equal(close.Prev()) {
			continue // only the common single-token-index form.
		}
		// `0 [ a ]` -> `a [ 0 ]`
		inner := bracket.Next().Lexeme()
		next := close.Next()
		list.InsertBefore(t, inner)
		list.InsertBefore(t, "[")
		list.InsertBefore(t, "0")
		list.InsertBefore(t, "]")
		list.EraseRange(t.Prev(), next)
		return true
	}
	return false
}

func stringLiteralIndex(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if t.Kind() != token.String || t.Next().Lexeme() != "[" || t.Next().Link().Nil() {
			continue
		}
		bracket := t.Next()
		close := bracket.Link()
		if !bracket.Next().Equal(close.Prev()) || bracket.Next().Kind() != token.Number {
			continue
		}
		idxLex := bracket.Next().Lexeme()
		idx, err := strconv.Atoi(idxLex)
		if err != nil || idx < 0 {
			continue
		}
		lit := t.Lexeme()
		if len(lit) < 2 || idx+2 > len(lit)-1 {
			continue
		}
		ch := lit[idx+1]
		after := close.Next()
		list.InsertBefore(t, "'"+string(ch)+"'")
		list.EraseRange(t.Prev(), after)
		return true
	}
	return false
}

func pointerArithmeticToIndex(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if !matcher.SimpleMatch(t, "* (") || t.Next().Link().Nil() {
			continue
		}
		open := t.Next()
		close := open.Link()
		plus := token.Nil
		for c := open.Next(); !c.Equal(close); c = c.Next() {
			if c.Lexeme() == "+" {
				plus = c
			}
		}
		if plus.Nil() || !plus.Prev().Equal(open.Next()) || !plus.Next().Equal(close.Prev()) {
			continue
		}
		p, n := open.Next(), plus.Next()
		next := close.Next()
		list.InsertBefore(t, p.Lexeme())
		list.InsertBefore(t, "[")
		list.InsertBefore(t, n.Lexeme())
		list.InsertBefore(t, "]")
		list.EraseRange(t.Prev(), next)
		return true
	}
	return false
}

// --- Group 4: declarations ---

func splitVarDeclComma(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if !isTypeKeyword(t.Lexeme()) {
			continue
		}
		typeEnd := t
		for isTypeKeyword(typeEnd.Next().Lexeme()) || typeEnd.Next().Lexeme() == "*" {
			typeEnd = typeEnd.Next()
		}
		name1 := typeEnd.Next()
		if name1.Kind() != token.Name {
			continue
		}
		sep := declEnd(name1)
		if sep.Lexeme() != "," {
			continue
		}
		name2 := sep.Next()
		if name2.Kind() != token.Name {
			continue
		}
		var typeParts []string
		for p := t; !p.Equal(typeEnd.Next()); p = p.Next() {
			typeParts = append(typeParts, p.Lexeme())
		}
		// `int x , y` -> `int x ; int y`: the comma itself is replaced by
		// `; <type>`, so insert that chain before it and erase the comma
		// last, once it is the only original token left in the gap.
		list.InsertBefore(sep, ";")
		for _, part := range typeParts {
			list.InsertBefore(sep, part)
		}
		list.EraseRange(sep.Prev(), name2)
		return true
	}
	return false
}

// declEnd finds the `,` or `;` terminating the declarator that starts at
// name (skipping over a balanced initializer if present).
func declEnd(name token.Token) token.Token {
	depth := 0
	for t := name.Next(); !t.Nil(); t = t.Next() {
		switch t.Lexeme() {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case ",", ";":
			if depth == 0 {
				return t
			}
		}
	}
	return token.Nil
}

func splitVarDeclInit(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if !isTypeKeyword(t.Lexeme()) {
			continue
		}
		name := t.Next()
		if name.Kind() != token.Name || name.Next().Lexeme() != "(" {
			continue
		}
		open := name.Next()
		close := open.Link()
		if close.Nil() || close.Next().Lexeme() != ";" {
			continue
		}
		if !singleToken(open, close) {
			continue
		}
		value := open.Next()
		semi := close.Next()
		after := semi.Next()
		nameLex, valLex := name.Lexeme(), value.Lexeme()

		// `int x ( 5 ) ;` -> `x ; x = 5 ;`: grow the replacement chain
		// right after the type keyword, then erase the type keyword and
		// the original declarator in two separate bites so neither erase
		// touches a token the other side still needs.
		first := list.InsertAfter(t, nameLex)
		anchor := first
		for _, lx := range []string{";", nameLex, "=", valLex, ";"} {
			anchor = list.InsertAfter(anchor, lx)
		}
		list.EraseRange(t.Prev(), first)
		list.EraseRange(anchor, after)
		return true
	}
	return false
}

func singleToken(open, close token.Token) bool {
	return open.Next().Equal(close.Prev())
}

var typeKeywordSet = map[string]bool{
	"int": true, "char": true, "short": true, "long": true, "float": true,
	"double": true, "bool": true, "void": true, "auto": true,
	"unsigned": true, "signed": true,
}

func isTypeKeyword(s string) bool { return typeKeywordSet[s] }

// --- Group 5: expression normalization ---

func notTrueFalse(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() == "!" && t.Next().Lexeme() == "true" {
			after := t.Next().Next()
			list.InsertBefore(t, "false")
			list.EraseRange(t.Prev(), after)
			return true
		}
		if t.Lexeme() == "!" && t.Next().Lexeme() == "false" {
			after := t.Next().Next()
			list.InsertBefore(t, "true")
			list.EraseRange(t.Prev(), after)
			return true
		}
	}
	return false
}

func deadIfConstant(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() != "if" || t.Next().Lexeme() != "(" {
			continue
		}
		open := t.Next()
		close := open.Link()
		if close.Nil() || !singleToken(open, close) {
			continue
		}
		cond := open.Next().Lexeme()
		if cond != "true" && cond != "false" {
			continue
		}
		thenStart := close.Next()
		thenEnd, elseTok, elseEnd := ifBranches(thenStart)

		if cond == "true" {
			if !elseTok.Nil() {
				list.EraseRange(elseTok.Prev(), elseEnd)
			}
			list.EraseRange(t.Prev(), thenStart)
		} else {
			if elseTok.Nil() {
				list.EraseRange(t.Prev(), thenEnd)
			} else {
				list.EraseRange(t.Prev(), elseTok.Next())
			}
		}
		return true
	}
	return false
}

// ifBranches locates the end of the then-branch starting at thenStart (a
// single statement or a `{ ... }` block): thenEnd is the first token
// after it, which is the `else` keyword itself when a dangling else is
// present. elseEnd is the first token after the else-branch.
func ifBranches(thenStart token.Token) (thenEnd, elseTok, elseEnd token.Token) {
	thenEnd = statementEnd(thenStart)
	if thenEnd.Lexeme() == "else" {
		elseTok = thenEnd
		elseEnd = statementEnd(elseTok.Next())
	}
	return
}

func statementEnd(start token.Token) token.Token {
	if start.Lexeme() == "{" && !start.Link().Nil() {
		return start.Link().Next()
	}
	depth := 0
	for t := start; !t.Nil(); t = t.Next() {
		switch t.Lexeme() {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		case ";":
			if depth == 0 {
				return t.Next()
			}
		}
	}
	return token.Nil
}

func constantTernary(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if (t.Lexeme() != "true" && t.Lexeme() != "false") || t.Next().Lexeme() != "?" {
			continue
		}
		q := t.Next()
		colon := findMatchingColon(q)
		if colon.Nil() {
			continue
		}
		end := declEnd(colon)
		if end.Nil() {
			continue
		}
		var keep []token.Token
		if t.Lexeme() == "true" {
			for n := q.Next(); !n.Equal(colon); n = n.Next() {
				keep = append(keep, n)
			}
		} else {
			for n := colon.Next(); !n.Equal(end); n = n.Next() {
				keep = append(keep, n)
			}
		}
		if len(keep) == 0 {
			continue
		}
		for _, k := range keep {
			list.InsertBefore(t, k.Lexeme())
		}
		list.EraseRange(t.Prev(), end)
		return true
	}
	return false
}

func findMatchingColon(q token.Token) token.Token {
	depth := 0
	for t := q.Next(); !t.Nil(); t = t.Next() {
		switch t.Lexeme() {
		case "?":
			depth++
		case ":":
			if depth == 0 {
				return t
			}
			depth--
		case ";":
			return token.Nil
		}
	}
	return token.Nil
}

// --- Group 6: control flow ---

func braceSingleStatement(list *token.TokenList) bool {
	keywords := map[string]bool{"if": true, "while": true, "for": true}
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if !keywords[t.Lexeme()] || t.Next().Lexeme() != "(" || t.Next().Link().Nil() {
			continue
		}
		close := t.Next().Link()
		body := close.Next()
		if body.Lexeme() == "{" || body.Nil() {
			continue
		}
		end := statementEnd(body)
		if end.Nil() {
			continue
		}
		list.InsertBefore(body, "{")
		list.InsertBefore(end, "}")
		return true
	}
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() != "do" {
			continue
		}
		body := t.Next()
		if body.Lexeme() == "{" || body.Nil() {
			continue
		}
		end := statementEnd(body)
		if end.Nil() || end.Lexeme() != "while" {
			continue
		}
		list.InsertBefore(body, "{")
		list.InsertBefore(end, "}")
		return true
	}
	return false
}

// --- Group 7: dead-code pruning ---

var jumpKeywords = map[string]bool{"return": true, "break": true, "continue": true, "throw": true, "exit": true}

func pruneAfterJump(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if !jumpKeywords[t.Lexeme()] {
			continue
		}
		end := statementEnd(t)
		if end.Nil() {
			continue
		}
		from := end
		scanEnd := findPruneBoundary(from)
		if scanEnd.Equal(from) {
			continue
		}
		list.EraseRange(from.Prev(), scanEnd)
		return true
	}
	return false
}

// findPruneBoundary scans forward from a jump statement's end for the
// next label or closing brace, stopping before it (spec §4.7 group 7).
func findPruneBoundary(from token.Token) token.Token {
	depth := 0
	for t := from; !t.Nil(); t = t.Next() {
		switch t.Lexeme() {
		case "{":
			depth++
		case "}":
			if depth == 0 {
				return t
			}
			depth--
		case "case", "default":
			if depth == 0 {
				return t
			}
		}
		if depth == 0 && t.Next().Lexeme() == ":" && t.Kind() == token.Name {
			return t
		}
	}
	return from
}

// --- Group 8: known-value propagation ---

func propagateKnownLiteral(list *token.TokenList) bool {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if !isTypeKeyword(t.Lexeme()) {
			continue
		}
		name := t.Next()
		if name.Kind() != token.Name || name.Next().Lexeme() != "=" {
			continue
		}
		value := name.Next().Next()
		if value.Kind() != token.Number || value.Next().Lexeme() != ";" {
			continue
		}
		if reassignedOrAddressed(value.Next(), name.Lexeme()) {
			continue
		}
		changed := false
		for u := value.Next().Next(); !u.Nil(); u = u.Next() {
			if u.Lexeme() == name.Lexeme() && u.VarID() == name.VarID() {
				lit := value.Lexeme()
				list.InsertBefore(u, lit)
				list.EraseRange(u.Prev(), u.Next())
				u = u.Prev()
				changed = true
			}
		}
		if changed {
			return true
		}
	}
	return false
}

func reassignedOrAddressed(from token.Token, name string) bool {
	for t := from; !t.Nil(); t = t.Next() {
		if t.Lexeme() == name && (t.Next().Lexeme() == "=" || t.Prev().Lexeme() == "&") {
			return true
		}
		if t.Lexeme() == "}" {
			break
		}
	}
	return false
}
