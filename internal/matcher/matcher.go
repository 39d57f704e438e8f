// Package matcher implements the pattern-matching engine of spec §4.2: a
// small bytecode compiled once per distinct pattern string (Design Notes
// §9: "runtime parsing of the pattern per call is a serious performance
// loss and unnecessary"), then replayed against a position in a token
// list.
package matcher

import (
	"strconv"
	"strings"
	"sync"

	"github.com/cxxtok/cxxtok/internal/token"
)

// SimpleMatch reports whether the whitespace-separated literal lexemes in
// pattern equal, one-for-one, the lexemes starting at t. No meta-tokens
// are recognized; this is pure literal-string equality (spec §4.2).
func SimpleMatch(t token.Token, pattern string) bool {
	cur := t
	for _, want := range strings.Fields(pattern) {
		if cur.Nil() || cur.Lexeme() != want {
			return false
		}
		cur = cur.Next()
	}
	return true
}

// program is a compiled pattern: a sequence of atoms to test in order
// against consecutive tokens starting at the match position.
type program struct {
	atoms []atom
}

// atom is one position in the pattern: either a single test, or an
// alternation between two tests (the `|` operator), optionally negated
// (the `!!` operator, meaning "the next token must NOT be this").
type atom struct {
	alts    []test
	negated bool
}

type test struct {
	kind testKind
	// literal is used by kindLiteral and kindVarID (holding the numeric
	// parameter as a string).
	literal string
	// charClass holds the alternatives for a `[abc]` atom.
	charClass []string
}

type testKind int8

const (
	kindLiteral testKind = iota
	kindAny
	kindName
	kindType
	kindNum
	kindChar
	kindStr
	kindBool
	kindVar
	kindVarID
	kindOp
	kindCOp
	kindComp
	kindOrOr
	kindOr
	kindAssign
	kindCharClass
)

var patternCache sync.Map // string -> *program

// compile parses a pattern string into a program, memoizing on the
// pattern text itself (Design Notes §9).
func compile(pattern string) *program {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*program)
	}

	fields := strings.Fields(pattern)
	prog := &program{atoms: make([]atom, 0, len(fields))}
	for _, field := range fields {
		prog.atoms = append(prog.atoms, compileAtom(field))
	}

	actual, _ := patternCache.LoadOrStore(pattern, prog)
	return actual.(*program)
}

func compileAtom(field string) atom {
	var a atom
	if strings.HasPrefix(field, "!!") {
		a.negated = true
		field = field[2:]
	}

	for _, part := range strings.Split(field, "|") {
		a.alts = append(a.alts, compileTest(part))
	}
	return a
}

func compileTest(part string) test {
	if strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]") && len(part) >= 2 {
		inner := part[1 : len(part)-1]
		classes := make([]string, 0, len(inner))
		for _, r := range inner {
			classes = append(classes, string(r))
		}
		return test{kind: kindCharClass, charClass: classes}
	}

	switch {
	case part == "%any%":
		return test{kind: kindAny}
	case part == "%name%":
		return test{kind: kindName}
	case part == "%type%":
		return test{kind: kindType}
	case part == "%num%":
		return test{kind: kindNum}
	case part == "%char%":
		return test{kind: kindChar}
	case part == "%str%":
		return test{kind: kindStr}
	case part == "%bool%":
		return test{kind: kindBool}
	case part == "%var%":
		return test{kind: kindVar}
	case part == "%op%":
		return test{kind: kindOp}
	case part == "%cop%":
		return test{kind: kindCOp}
	case part == "%comp%":
		return test{kind: kindComp}
	case part == "%oror%":
		return test{kind: kindOrOr}
	case part == "%or%":
		return test{kind: kindOr}
	case part == "%assign%":
		return test{kind: kindAssign}
	case strings.HasPrefix(part, "%varid%"):
		return test{kind: kindVarID, literal: strings.TrimPrefix(part, "%varid%")}
	default:
		return test{kind: kindLiteral, literal: part}
	}
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
}

var arithmeticOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

func (ts test) matches(t token.Token) bool {
	switch ts.kind {
	case kindAny:
		return !t.Nil()
	case kindName:
		return t.Kind() == token.Name
	case kindType:
		return t.Kind() == token.Name && !token.IsKeyword(t.Lexeme())
	case kindNum:
		return t.Kind() == token.Number
	case kindChar:
		return t.Kind() == token.Char
	case kindStr:
		return t.Kind() == token.String
	case kindBool:
		return t.Kind() == token.Boolean
	case kindVar:
		return t.VarID() != 0
	case kindVarID:
		want, err := strconv.Atoi(ts.literal)
		return err == nil && t.VarID() == want
	case kindOp:
		return t.Kind() == token.Op
	case kindCOp:
		return t.Kind() == token.Op && (comparisonOps[t.Lexeme()] || arithmeticOps[t.Lexeme()]) && !assignOps[t.Lexeme()]
	case kindComp:
		return t.Kind() == token.Op && comparisonOps[t.Lexeme()]
	case kindOrOr:
		return t.Lexeme() == "||"
	case kindOr:
		return t.Lexeme() == "|" || t.Lexeme() == "||"
	case kindAssign:
		return t.Kind() == token.Op && assignOps[t.Lexeme()]
	case kindCharClass:
		if t.Nil() {
			return false
		}
		for _, c := range ts.charClass {
			if t.Lexeme() == c {
				return true
			}
		}
		return false
	case kindLiteral:
		return !t.Nil() && t.Lexeme() == ts.literal
	default:
		return false
	}
}

func (a atom) matches(t token.Token) bool {
	result := false
	for _, ts := range a.alts {
		if ts.matches(t) {
			result = true
			break
		}
	}
	if a.negated {
		return !result
	}
	return result
}

// Match reports whether pattern matches the token sequence starting at t
// (spec §4.2). Unlike SimpleMatch, pattern may contain meta-tokens,
// alternation, negation, and character classes.
func Match(t token.Token, pattern string) bool {
	prog := compile(pattern)
	cur := t
	for _, a := range prog.atoms {
		if a.negated {
			// A negated atom ("!!x") asserts the current token is not a
			// literal match for x; absence of a token (end of list)
			// vacuously satisfies it too (spec §4.2).
			if !a.matches(cur) {
				return false
			}
		} else {
			if cur.Nil() || !a.matches(cur) {
				return false
			}
		}
		if !cur.Nil() {
			cur = cur.Next()
		}
	}
	return true
}
