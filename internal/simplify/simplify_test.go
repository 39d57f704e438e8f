package simplify_test

import (
	"testing"

	"github.com/cxxtok/cxxtok/internal/fileset"
	"github.com/cxxtok/cxxtok/internal/linker"
	"github.com/cxxtok/cxxtok/internal/settings"
	"github.com/cxxtok/cxxtok/internal/simplify"
	"github.com/cxxtok/cxxtok/internal/srcpos"
	"github.com/cxxtok/cxxtok/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(lexemes ...string) *token.TokenList {
	var files fileset.Table
	l := token.New(&files, settings.Default(), "")
	for i, lx := range lexemes {
		l.Append(lx, srcpos.Position{Line: 1, Column: i + 1})
	}
	if err := linker.CreateLinks(l); err != nil {
		panic(err)
	}
	return l
}

func lexemes(l *token.TokenList) []string {
	var out []string
	for t := l.Head(); !t.Nil(); t = t.Next() {
		out = append(out, t.Lexeme())
	}
	return out
}

// runToFixedPoint exercises the idempotence contract every rewrite must
// satisfy: applying it repeatedly eventually stops reporting a change.
func runToFixedPoint(t *testing.T, r simplify.Rewrite, list *token.TokenList, max int) int {
	t.Helper()
	n := 0
	for i := 0; i < max; i++ {
		if !r(list) {
			return n
		}
		n++
	}
	t.Fatalf("rewrite did not reach a fixed point within %d applications", max)
	return n
}

func TestGroupsOrder(t *testing.T) {
	names := make([]string, 0, 9)
	for _, g := range simplify.Groups() {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{
		"macro-normalization", "lexical-combination", "structural-canonicalization",
		"declarations", "expression-normalization", "control-flow",
		"dead-code-pruning", "known-value-propagation", "ast-finalization",
	}, names)
}

func findRewrite(t *testing.T, group string) []simplify.Rewrite {
	t.Helper()
	for _, g := range simplify.Groups() {
		if g.Name == group {
			return g.Rewrites
		}
	}
	t.Fatalf("no such group %q", group)
	return nil
}

func TestRemovePragma(t *testing.T) {
	l := build("_Pragma", "(", "\"pack\"", ")", "int", "x", ";")
	rewrites := findRewrite(t, "macro-normalization")
	changed := false
	for _, r := range rewrites {
		for r(l) {
			changed = true
		}
	}
	require.True(t, changed)
	assert.Equal(t, []string{"int", "x", ";"}, lexemes(l))
}

func TestRemoveExternCSingleDecl(t *testing.T) {
	l := build("extern", "\"C\"", "void", "f", "(", ")", ";")
	rewrites := findRewrite(t, "macro-normalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"void", "f", "(", ")", ";"}, lexemes(l))
}

func TestRemoveExternCBlock(t *testing.T) {
	l := build("extern", "\"C\"", "{", "void", "f", "(", ")", ";", "}")
	rewrites := findRewrite(t, "macro-normalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"void", "f", "(", ")", ";"}, lexemes(l))

	voidTok := l.Head()
	assert.True(t, voidTok.Attrs().IsExternC)
}

func TestStripAttributeGNU(t *testing.T) {
	l := build("__attribute__", "(", "(", "noreturn", ")", ")", "void", "f", "(", ")", ";")
	rewrites := findRewrite(t, "macro-normalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"void", "f", "(", ")", ";"}, lexemes(l))
	assert.True(t, l.Head().Attrs().IsAttributeNoreturn)
}

func TestStripAttributeC23(t *testing.T) {
	l := build("[", "[", "noreturn", "]", "]", "void", "f", "(", ")", ";")
	rewrites := findRewrite(t, "macro-normalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"void", "f", "(", ")", ";"}, lexemes(l))
	assert.True(t, l.Head().Attrs().IsAttributeNoreturn)
}

func TestRemoveCallingConvention(t *testing.T) {
	l := build("void", "__stdcall", "f", "(", ")", ";")
	rewrites := findRewrite(t, "macro-normalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"void", "f", "(", ")", ";"}, lexemes(l))
}

func TestQtAccessSpecifiers(t *testing.T) {
	l := build("class", "A", "{", "signals", ":", "void", "f", "(", ")", ";", "}", ";")
	rewrites := findRewrite(t, "macro-normalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"class", "A", "{", "public", ":", "void", "f", "(", ")", ";", "}", ";"}, lexemes(l))
}

func TestFuseCompoundAssign(t *testing.T) {
	l := build("x", "+", "=", "1", ";")
	rewrites := findRewrite(t, "lexical-combination")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"x", "+=", "1", ";"}, lexemes(l))
}

func TestFuseNegativeNumber(t *testing.T) {
	l := build("f", "(", "a", ",", "-", "5", ")", ";")
	rewrites := findRewrite(t, "lexical-combination")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"f", "(", "a", ",", "-5", ")", ";"}, lexemes(l))
}

func TestRewriteAlternativeTokensWhenUnused(t *testing.T) {
	l := build("if", "(", "a", "and", "b", ")")
	rewrites := findRewrite(t, "lexical-combination")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"if", "(", "a", "&&", "b", ")"}, lexemes(l))
}

func TestRewriteAlternativeTokensSkippedWhenShadowed(t *testing.T) {
	l := build("and", "=", "1", ";")
	toks := make([]token.Token, 0)
	for t := l.Head(); !t.Nil(); t = t.Next() {
		toks = append(toks, t)
	}
	toks[0].SetVarID(1) // simulate `and` bound as an identifier elsewhere.

	rewrites := findRewrite(t, "lexical-combination")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"and", "=", "1", ";"}, lexemes(l))
}

func TestZeroIndexSwap(t *testing.T) {
	l := build("0", "[", "a", "]", ";")
	rewrites := findRewrite(t, "structural-canonicalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"a", "[", "0", "]", ";"}, lexemes(l))
}

func TestStringLiteralIndex(t *testing.T) {
	l := build("\"abc\"", "[", "1", "]", ";")
	rewrites := findRewrite(t, "structural-canonicalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"'b'", ";"}, lexemes(l))
}

func TestPointerArithmeticToIndex(t *testing.T) {
	l := build("*", "(", "p", "+", "i", ")", ";")
	rewrites := findRewrite(t, "structural-canonicalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"p", "[", "i", "]", ";"}, lexemes(l))
}

func TestSplitVarDeclComma(t *testing.T) {
	l := build("int", "x", ",", "y", ";")
	rewrites := findRewrite(t, "declarations")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"int", "x", ";", "int", "y", ";"}, lexemes(l))
}

func TestSplitVarDeclInit(t *testing.T) {
	l := build("int", "x", "(", "5", ")", ";")
	rewrites := findRewrite(t, "declarations")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"x", ";", "x", "=", "5", ";"}, lexemes(l))
}

func TestNotTrueFalse(t *testing.T) {
	l := build("!", "true", ";", "!", "false", ";")
	rewrites := findRewrite(t, "expression-normalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"false", ";", "true", ";"}, lexemes(l))
}

func TestDeadIfConstantTrueNoElse(t *testing.T) {
	l := build("if", "(", "true", ")", "{", "x", "=", "1", ";", "}")
	rewrites := findRewrite(t, "expression-normalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"{", "x", "=", "1", ";", "}"}, lexemes(l))
}

func TestDeadIfConstantTrueWithElse(t *testing.T) {
	l := build("if", "(", "true", ")", "{", "x", "=", "1", ";", "}", "else", "{", "y", "=", "2", ";", "}")
	rewrites := findRewrite(t, "expression-normalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"{", "x", "=", "1", ";", "}"}, lexemes(l))
}

func TestDeadIfConstantFalseWithElse(t *testing.T) {
	l := build("if", "(", "false", ")", "{", "x", "=", "1", ";", "}", "else", "{", "y", "=", "2", ";", "}")
	rewrites := findRewrite(t, "expression-normalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"{", "y", "=", "2", ";", "}"}, lexemes(l))
}

func TestConstantTernaryTrue(t *testing.T) {
	l := build("x", "=", "true", "?", "1", ":", "2", ";")
	rewrites := findRewrite(t, "expression-normalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"x", "=", "1", ";"}, lexemes(l))
}

func TestConstantTernaryFalse(t *testing.T) {
	l := build("x", "=", "false", "?", "1", ":", "2", ";")
	rewrites := findRewrite(t, "expression-normalization")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"x", "=", "2", ";"}, lexemes(l))
}

func TestBraceSingleStatementIf(t *testing.T) {
	// A trailing statement is required: braceSingleStatement needs a real
	// token after the `;` to anchor the closing brace on.
	l := build("if", "(", "a", ")", "x", "=", "1", ";", "y", "=", "2", ";")
	rewrites := findRewrite(t, "control-flow")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{
		"if", "(", "a", ")", "{", "x", "=", "1", ";", "}", "y", "=", "2", ";",
	}, lexemes(l))
}

func TestBraceSingleStatementDoWhile(t *testing.T) {
	l := build("do", "x", "=", "1", ";", "while", "(", "a", ")", ";")
	rewrites := findRewrite(t, "control-flow")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"do", "{", "x", "=", "1", ";", "}", "while", "(", "a", ")", ";"}, lexemes(l))
}

func TestPruneAfterJump(t *testing.T) {
	l := build("{", "return", "1", ";", "x", "=", "2", ";", "}")
	rewrites := findRewrite(t, "dead-code-pruning")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"{", "return", "1", ";", "}"}, lexemes(l))
}

func TestPruneAfterJumpStopsAtLabel(t *testing.T) {
	l := build("{", "return", "1", ";", "done", ":", "x", "=", "2", ";", "}")
	rewrites := findRewrite(t, "dead-code-pruning")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"{", "return", "1", ";", "done", ":", "x", "=", "2", ";", "}"}, lexemes(l))
}

func TestPropagateKnownLiteral(t *testing.T) {
	l := build("int", "x", "=", "5", ";", "y", "=", "x", "+", "1", ";")
	var decl, use token.Token
	i := 0
	for t := l.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() == "x" {
			if i == 0 {
				decl = t
			} else {
				use = t
			}
			i++
		}
	}
	decl.SetVarID(7)
	use.SetVarID(7)

	rewrites := findRewrite(t, "known-value-propagation")
	for _, r := range rewrites {
		for r(l) {
		}
	}
	assert.Equal(t, []string{"int", "x", "=", "5", ";", "y", "=", "5", "+", "1", ";"}, lexemes(l))
}

func TestPropagateKnownLiteralSkipsReassignment(t *testing.T) {
	l := build("int", "x", "=", "5", ";", "x", "=", "6", ";", "y", "=", "x", ";")
	var xs []token.Token
	for t := l.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() == "x" {
			xs = append(xs, t)
		}
	}
	for _, x := range xs {
		x.SetVarID(9)
	}

	rewrites := findRewrite(t, "known-value-propagation")
	changed := false
	for _, r := range rewrites {
		for r(l) {
			changed = true
		}
	}
	assert.False(t, changed)
	assert.Equal(t, []string{"int", "x", "=", "5", ";", "x", "=", "6", ";", "y", "=", "x", ";"}, lexemes(l))
}

func TestRunAllReachesFixedPoint(t *testing.T) {
	l := build("int", "x", ",", "y", ";", "if", "(", "true", ")", "z", "=", "0", "[", "w", "]", ";")
	n := simplify.RunAll(l)
	assert.Positive(t, n)

	again := simplify.RunAll(l)
	assert.Zero(t, again)
}

func TestZeroIndexSwapIsIdempotent(t *testing.T) {
	l := build("0", "[", "a", "]", ";")
	r := findRewrite(t, "structural-canonicalization")[0]
	runToFixedPoint(t, r, l, 8)
	assert.Equal(t, []string{"a", "[", "0", "]", ";"}, lexemes(l))
}

func TestSplitVarDeclCommaIsIdempotent(t *testing.T) {
	l := build("int", "x", ",", "y", ",", "z", ";")
	r := findRewrite(t, "declarations")[0]
	runToFixedPoint(t, r, l, 8)
	assert.Equal(t, []string{"int", "x", ";", "int", "y", ";", "int", "z", ";"}, lexemes(l))
}
