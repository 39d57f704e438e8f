package astbuild_test

import (
	"testing"

	"github.com/cxxtok/cxxtok/internal/astbuild"
	"github.com/cxxtok/cxxtok/internal/fileset"
	"github.com/cxxtok/cxxtok/internal/linker"
	"github.com/cxxtok/cxxtok/internal/settings"
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

func findTok(l *token.TokenList, lexeme string) token.Token {
	for t := l.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() == lexeme {
			return t
		}
	}
	return token.Nil
}

func TestBuildSimpleBinary(t *testing.T) {
	l := build("a", "=", "b", "+", "c", ";")
	astbuild.Build(l)

	eq := findTok(l, "=")
	require.False(t, eq.Nil())
	assert.Equal(t, "a", eq.AstOperand1().Lexeme())
	plus := eq.AstOperand2()
	assert.Equal(t, "+", plus.Lexeme())
	assert.Equal(t, "b", plus.AstOperand1().Lexeme())
	assert.Equal(t, "c", plus.AstOperand2().Lexeme())
	assert.True(t, plus.AstParent().Equal(eq))
}

func TestBuildPrecedence(t *testing.T) {
	// a + b * c  ->  +(a, *(b, c))
	l := build("a", "+", "b", "*", "c", ";")
	astbuild.Build(l)

	plus := findTok(l, "+")
	require.False(t, plus.Nil())
	assert.Equal(t, "a", plus.AstOperand1().Lexeme())
	star := plus.AstOperand2()
	assert.Equal(t, "*", star.Lexeme())
	assert.Equal(t, "b", star.AstOperand1().Lexeme())
	assert.Equal(t, "c", star.AstOperand2().Lexeme())
}

func TestBuildCallArguments(t *testing.T) {
	l := build("f", "(", "a", ",", "b", ")", ";")
	require.NoError(t, linker.CreateLinks(l))
	astbuild.Build(l)

	open := findTok(l, "(")
	require.False(t, open.Nil())
	assert.Equal(t, "f", open.AstOperand1().Lexeme())
	comma := open.AstOperand2()
	assert.Equal(t, ",", comma.Lexeme())
	assert.Equal(t, "a", comma.AstOperand1().Lexeme())
	assert.Equal(t, "b", comma.AstOperand2().Lexeme())
}

func TestBuildTernary(t *testing.T) {
	l := build("a", "?", "b", ":", "c", ";")
	astbuild.Build(l)

	q := findTok(l, "?")
	require.False(t, q.Nil())
	assert.Equal(t, "a", q.AstOperand1().Lexeme())
	colon := q.AstOperand2()
	assert.Equal(t, ":", colon.Lexeme())
	assert.Equal(t, "b", colon.AstOperand1().Lexeme())
	assert.Equal(t, "c", colon.AstOperand2().Lexeme())
}

func TestBuildSubscript(t *testing.T) {
	l := build("a", "[", "i", "]", "=", "0", ";")
	require.NoError(t, linker.CreateLinks(l))
	astbuild.Build(l)

	eq := findTok(l, "=")
	require.False(t, eq.Nil())
	sub := eq.AstOperand1()
	assert.Equal(t, "[", sub.Lexeme())
	assert.Equal(t, "a", sub.AstOperand1().Lexeme())
	assert.Equal(t, "i", sub.AstOperand2().Lexeme())
}

func TestBuildUnaryAddressOf(t *testing.T) {
	l := build("b", "=", "&", "a", ";")
	astbuild.Build(l)

	eq := findTok(l, "=")
	require.False(t, eq.Nil())
	amp := eq.AstOperand2()
	assert.Equal(t, "&", amp.Lexeme())
	assert.Equal(t, "a", amp.AstOperand1().Lexeme())
}

func TestBuildNoCycles(t *testing.T) {
	l := build("a", "=", "b", "+", "c", "*", "d", ";", "e", "=", "f", ";")
	astbuild.Build(l)

	for tok := l.Head(); !tok.Nil(); tok = tok.Next() {
		seen := map[token.Token]bool{}
		for p := tok.AstParent(); !p.Nil(); p = p.AstParent() {
			require.False(t, seen[p], "cycle detected in AST parent chain")
			seen[p] = true
		}
	}
}
