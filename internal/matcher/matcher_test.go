package matcher_test

import (
	"testing"

	"github.com/cxxtok/cxxtok/internal/fileset"
	"github.com/cxxtok/cxxtok/internal/matcher"
	"github.com/cxxtok/cxxtok/internal/settings"
	"github.com/cxxtok/cxxtok/internal/srcpos"
	"github.com/cxxtok/cxxtok/internal/token"
	"github.com/stretchr/testify/assert"
)

func build(lexemes ...string) token.Token {
	var files fileset.Table
	l := token.New(&files, settings.Default(), "")
	var first token.Token
	for i, lx := range lexemes {
		tok := l.Append(lx, srcpos.Position{Line: 1, Column: i + 1})
		if i == 0 {
			first = tok
		}
	}
	return first
}

func TestSimpleMatch(t *testing.T) {
	tok := build("foo", "(", "bar", ")")
	assert.True(t, matcher.SimpleMatch(tok, "foo ( bar )"))
	assert.False(t, matcher.SimpleMatch(tok, "foo ( baz )"))
	assert.False(t, matcher.SimpleMatch(tok, "foo ( bar ) ;"))
}

func TestMatchNameNumParen(t *testing.T) {
	tok := build("f", "(", "42", ")")
	assert.True(t, matcher.Match(tok, "%name% ( %num% )"))

	tok2 := build("f", "(", "x", ")")
	assert.False(t, matcher.Match(tok2, "%name% ( %num% )"))
}

func TestMatchVarAndVarID(t *testing.T) {
	tok := build("x", "=", "3")
	tok.SetVarID(5)
	assert.True(t, matcher.Match(tok, "%var% = %num%"))
	assert.True(t, matcher.Match(tok, "%varid%5 = %num%"))
	assert.False(t, matcher.Match(tok, "%varid%6 = %num%"))
}

func TestMatchNegation(t *testing.T) {
	tok := build(";", "}")
	assert.True(t, matcher.Match(tok, "; !!{"))

	tok2 := build(";", "{")
	assert.False(t, matcher.Match(tok2, "; !!{"))
}

func TestMatchCharClass(t *testing.T) {
	tok := build("+")
	assert.True(t, matcher.Match(tok, "[+-]"))
	tok2 := build("*")
	assert.False(t, matcher.Match(tok2, "[+-]"))
}

func TestMatchAlternation(t *testing.T) {
	tok := build("&&")
	assert.True(t, matcher.Match(tok, "&&|%oror%"))
	tok2 := build("+")
	assert.False(t, matcher.Match(tok2, "&&|%oror%"))
}

func TestMatchCOpExcludesAssign(t *testing.T) {
	tok := build("=")
	assert.False(t, matcher.Match(tok, "%cop%"))
	tok2 := build("==")
	assert.True(t, matcher.Match(tok2, "%cop%"))
	tok3 := build("+=")
	assert.True(t, matcher.Match(tok3, "%assign%"))
	assert.False(t, matcher.Match(tok3, "%cop%"))
}

func TestMatchEndOfList(t *testing.T) {
	tok := build(";")
	assert.True(t, matcher.Match(tok, "; !!{"))
}
