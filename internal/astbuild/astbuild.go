// Package astbuild implements the AST builder of spec §4.9: for every
// expression -- a maximal run of tokens between a statement boundary and
// the `;` or `}` that ends it -- it attaches AstOperand1/AstOperand2/
// AstParent handles on the involved tokens via precedence climbing, so
// every expression root yields a tree.
//
// Grounded on the shape of the teacher's expression builder in
// experimental/ast2 (operator precedence driving a recursive-descent
// parse that decorates existing tokens rather than allocating new nodes);
// adapted here because our operands are token.Token handles already
// resident in the arena, not a fresh AST node type.
package astbuild

import (
	"github.com/cxxtok/cxxtok/internal/token"
)

// precedence tables, low to high, mirroring the C/C++ grammar. Multi-char
// assignment operators all bind at the same (very low) level and are
// right-associative, as in the language they model.
var binaryPrec = map[string]int{
	",":   1,
	"=":   2, "+=": 2, "-=": 2, "*=": 2, "/=": 2, "%=": 2,
	"&=": 2, "|=": 2, "^=": 2, "<<=": 2, ">>=": 2,
	"||": 4,
	"&&": 5,
	"|":  6,
	"^":  7,
	"&":  8,
	"==": 9, "!=": 9,
	"<": 10, ">": 10, "<=": 10, ">=": 10,
	"<<": 11, ">>": 11,
	"+": 12, "-": 12,
	"*": 13, "/": 13, "%": 13,
	".*": 14, "->*": 14,
}

var rightAssoc = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

// unaryOps is every operator that can appear in prefix position. `*`,
// `&`, `+`, and `-` are ambiguous with their binary form and are resolved
// positionally by isAmbiguousUnaryPosition instead of unconditionally
// here (spec §4.9 builds a tree over already-disambiguated operator
// tokens, but the disambiguation itself -- unary vs. binary `*`/`&` --
// is the AST builder's job, the same split the reference front end makes
// via its own operator-classification pass).
var unaryOps = map[string]bool{
	"!": true, "~": true, "++": true, "--": true, "sizeof": true,
	"new": true, "delete": true, "co_await": true, "throw": true,
}

// ambiguousUnary is the set of operators that are unary only in certain
// positions; parseUnary consults isAmbiguousUnaryPosition for these.
var ambiguousUnary = map[string]bool{"*": true, "&": true, "+": true, "-": true}

// Build walks list and builds an AST over every expression run (spec
// §4.9). It never fails: malformed fragments simply yield a shallower
// tree than a well-formed one would, since garbage input has already
// been rejected in internal/garbage by the time this phase runs.
func Build(list *token.TokenList) {
	t := list.Head()
	for !t.Nil() {
		if isStatementBoundary(t) {
			t = t.Next()
			continue
		}
		if !isExprStart(t) {
			t = t.Next()
			continue
		}
		end := findExprEnd(t)
		p := &parser{end: end}
		p.parseExpr(t, 0)
		t = end
	}
}

// isStatementBoundary reports whether t cannot begin or continue an
// expression: block delimiters, declaration/control keywords, and the
// terminators themselves. The AST builder skips these and resumes at the
// next token.
func isStatementBoundary(t token.Token) bool {
	switch t.Lexeme() {
	case ";", "{", "}", ":":
		return true
	}
	if t.Kind() != token.Keyword {
		return false
	}
	switch t.Lexeme() {
	case "true", "false", "this", "nullptr":
		return false // these are primaries, not boundaries.
	}
	switch t.Lexeme() {
	case "if", "else", "while", "for", "do", "switch", "case", "default",
		"return", "break", "continue", "goto", "class", "struct", "union",
		"enum", "namespace", "typedef", "using", "template", "public",
		"private", "protected", "friend", "static", "extern", "const",
		"volatile", "inline", "virtual", "explicit", "constexpr", "void",
		"int", "char", "float", "double", "bool", "long", "short",
		"unsigned", "signed", "auto":
		return true
	}
	return false
}

// isExprStart reports whether t can plausibly begin an expression (used
// only to decide whether to bother invoking the precedence climber at
// all, cheaply filtering out plain punctuation left over between two
// statement boundaries).
func isExprStart(t token.Token) bool {
	switch t.Kind() {
	case token.Name, token.Number, token.String, token.Char, token.Boolean:
		return true
	}
	if t.Lexeme() == "(" || t.Lexeme() == "[" {
		return true
	}
	return unaryOps[t.Lexeme()]
}

// findExprEnd returns the token at which the expression run starting at
// start ends: the next top-level `;`, `{`, or unmatched `}`.
func findExprEnd(start token.Token) token.Token {
	for t := start; !t.Nil(); t = t.Next() {
		switch t.Lexeme() {
		case ";", "{", "}":
			return t
		}
	}
	return token.Nil
}

// parser builds one expression tree bounded by [start, end).
type parser struct {
	end token.Token
	cur token.Token
}

func (p *parser) done() bool {
	return p.cur.Nil() || p.cur.Equal(p.end)
}

// parseExpr is precedence climbing over the binary/assignment operator
// table, entered at t with the given minimum precedence; returns the
// root token of the parsed subtree and leaves p.cur at the first token
// past it.
func (p *parser) parseExpr(t token.Token, minPrec int) token.Token {
	p.cur = t
	lhs := p.parseUnary()

	for !p.done() {
		op := p.cur
		prec, isBin := binaryPrec[op.Lexeme()]
		if !isBin || prec < minPrec {
			break
		}
		if op.Lexeme() == "?" {
			break // ternary handled separately, below.
		}

		next := prec + 1
		if rightAssoc[op.Lexeme()] {
			next = prec
		}

		rhsStart := op.Next()
		if rhsStart.Nil() || rhsStart.Equal(p.end) {
			break
		}
		p.cur = rhsStart
		rhs := p.parseExpr(rhsStart, next)

		op.SetAstOperand1(lhs)
		op.SetAstOperand2(rhs)
		lhs = op
	}

	if !p.done() && p.cur.Lexeme() == "?" && minPrec <= 3 {
		lhs = p.parseTernary(lhs)
	}

	return lhs
}

// parseTernary handles `cond ? then : else` (spec §4.9: represented as
// `? astOperand1=cond astOperand2=: astOperand1=then astOperand2=else`).
func (p *parser) parseTernary(cond token.Token) token.Token {
	q := p.cur // the '?'
	thenStart := q.Next()
	if thenStart.Nil() || thenStart.Equal(p.end) {
		return cond
	}
	p.cur = thenStart
	thenExpr := p.parseExpr(thenStart, 3)

	if p.done() || p.cur.Lexeme() != ":" {
		q.SetAstOperand1(cond)
		return q
	}
	colon := p.cur
	elseStart := colon.Next()
	if elseStart.Nil() || elseStart.Equal(p.end) {
		q.SetAstOperand1(cond)
		colon.SetAstOperand1(thenExpr)
		q.SetAstOperand2(colon)
		return q
	}
	p.cur = elseStart
	elseExpr := p.parseExpr(elseStart, 2)

	colon.SetAstOperand1(thenExpr)
	colon.SetAstOperand2(elseExpr)
	q.SetAstOperand1(cond)
	q.SetAstOperand2(colon)
	return q
}

// parseUnary parses a (possibly empty chain of) prefix unary operator(s)
// applied to a postfix expression.
func (p *parser) parseUnary() token.Token {
	if p.done() {
		return token.Nil
	}
	t := p.cur
	isUnary := unaryOps[t.Lexeme()] || (ambiguousUnary[t.Lexeme()] && isAmbiguousUnaryPosition(t))
	if isUnary {
		p.cur = t.Next()
		operand := p.parseUnary()
		t.SetAstOperand1(operand)
		return t
	}
	return p.parsePostfix()
}

// isAmbiguousUnaryPosition reports whether t (a `*`, `&`, `+`, or `-`) is
// in prefix/unary position rather than binary position: true at the very
// start of an expression, or immediately after another operator or an
// opening bracket.
func isAmbiguousUnaryPosition(t token.Token) bool {
	switch t.Lexeme() {
	case "*", "&", "+", "-":
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
	switch prev.Lexeme() {
	case ")", "]":
		return false
	}
	return true
}

// parsePostfix parses a primary expression followed by any chain of
// postfix operators: calls, subscripts, member access, and post-inc/dec.
func (p *parser) parsePostfix() token.Token {
	base := p.parsePrimary()
	for !p.done() {
		switch p.cur.Lexeme() {
		case "(":
			open := p.cur
			close := open.Link()
			open.SetAstOperand1(base)
			if inner := open.Next(); !inner.Nil() && !inner.Equal(close) {
				p.cur = inner
				args := p.parseExpr(inner, 1)
				open.SetAstOperand2(args)
			}
			base = open
			if close.Nil() {
				p.cur = token.Nil
			} else {
				p.cur = close.Next()
			}

		case "[":
			open := p.cur
			close := open.Link()
			open.SetAstOperand1(base)
			if inner := open.Next(); !inner.Nil() && !inner.Equal(close) {
				p.cur = inner
				idx := p.parseExpr(inner, 1)
				open.SetAstOperand2(idx)
			}
			base = open
			if close.Nil() {
				p.cur = token.Nil
			} else {
				p.cur = close.Next()
			}

		case ".":
			dot := p.cur
			name := dot.Next()
			if name.Nil() || name.Equal(p.end) {
				p.cur = token.Nil
				return base
			}
			dot.SetAstOperand1(base)
			dot.SetAstOperand2(name)
			base = dot
			p.cur = name.Next()

		case "++", "--":
			op := p.cur
			op.SetAstOperand1(base)
			base = op
			p.cur = op.Next()

		default:
			return base
		}
	}
	return base
}

// parsePrimary parses a single primary expression: a literal, name,
// parenthesized group, or (for casts already simplified away by
// internal/simplify's earlier groups) nothing more exotic than that.
func (p *parser) parsePrimary() token.Token {
	if p.done() {
		return token.Nil
	}
	t := p.cur

	if t.Lexeme() == "(" {
		close := t.Link()
		inner := t.Next()
		if !inner.Nil() && !close.Nil() && !inner.Equal(close) {
			p.cur = inner
			group := p.parseExpr(inner, 1)
			t.SetAstOperand1(group)
		}
		if close.Nil() {
			p.cur = token.Nil
		} else {
			p.cur = close.Next()
		}
		return t
	}

	p.cur = t.Next()
	return t
}
