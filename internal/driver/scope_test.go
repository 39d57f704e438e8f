package driver

import (
	"testing"

	"github.com/cxxtok/cxxtok/internal/fileset"
	"github.com/cxxtok/cxxtok/internal/linker"
	"github.com/cxxtok/cxxtok/internal/settings"
	"github.com/cxxtok/cxxtok/internal/srcpos"
	"github.com/cxxtok/cxxtok/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildForScope(lexemes ...string) *token.TokenList {
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

func findLexeme(l *token.TokenList, lexeme string) token.Token {
	for t := l.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() == lexeme {
			return t
		}
	}
	return token.Nil
}

func TestAssignScopesStampsNamespaceAndClassBodies(t *testing.T) {
	l := buildForScope("namespace", "n", "{", "class", "C", "{", "int", "x", ";", "}", ";", "}")
	registry := assignScopes(l)

	require.NotNil(t, registry["n"])
	require.NotNil(t, registry["n::C"])

	x := findLexeme(l, "x")
	require.False(t, x.Nil())
	assert.Equal(t, "n::C", x.Scope().FullName)
}

func TestAssignScopesRecordsBaseTypes(t *testing.T) {
	l := buildForScope("class", "D", ":", "public", "B", "{", "}", ";")
	registry := assignScopes(l)

	d := registry["D"]
	require.NotNil(t, d)
	assert.True(t, d.BaseTypes["B"])
}

func TestAssignScopesTracksUsingNamespace(t *testing.T) {
	l := buildForScope("using", "namespace", "std", ";", "int", "x", ";")
	registry := assignScopes(l)

	assert.True(t, registry[""].UsingNamespaces["std"])
}

func TestAssignScopesDistinguishesFunctionBodyFromAggregate(t *testing.T) {
	l := buildForScope("int", "f", "(", ")", "{", "return", "0", ";", "}")
	registry := assignScopes(l)
	_ = registry

	ret := findLexeme(l, "return")
	require.False(t, ret.Nil())
	assert.Equal(t, "MemberFunction", ret.Scope().Kind.String())
}
