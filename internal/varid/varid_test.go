package varid_test

import (
	"testing"

	"github.com/cxxtok/cxxtok/internal/fileset"
	"github.com/cxxtok/cxxtok/internal/linker"
	"github.com/cxxtok/cxxtok/internal/scope"
	"github.com/cxxtok/cxxtok/internal/settings"
	"github.com/cxxtok/cxxtok/internal/srcpos"
	"github.com/cxxtok/cxxtok/internal/token"
	"github.com/cxxtok/cxxtok/internal/varid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(lexemes ...string) (*token.TokenList, []token.Token) {
	var files fileset.Table
	l := token.New(&files, settings.Default(), "")
	toks := make([]token.Token, len(lexemes))
	for i, lx := range lexemes {
		toks[i] = l.Append(lx, srcpos.Position{Line: 1, Column: i + 1})
	}
	if err := linker.CreateLinks(l); err != nil {
		panic(err)
	}
	return l, toks
}

func TestPass1AssignsSameIDToRepeatedUse(t *testing.T) {
	l, toks := build("int", "x", "=", "3", ";", "x", "=", "4", ";")
	a := varid.New(l, 0)
	a.Pass1()

	assert.NotZero(t, toks[1].VarID())
	assert.Equal(t, toks[1].VarID(), toks[5].VarID())
}

func TestPass1SkipsTagName(t *testing.T) {
	l, toks := build("struct", "Foo", "x", ";")
	a := varid.New(l, 0)
	a.Pass1()

	assert.Zero(t, toks[1].VarID())
	assert.NotZero(t, toks[2].VarID())
}

func TestPass1ScopesShadow(t *testing.T) {
	l, toks := build("int", "x", ";", "{", "int", "x", ";", "x", "=", "1", ";", "}", "x", "=", "2", ";")
	a := varid.New(l, 0)
	a.Pass1()

	outer := toks[1]
	inner := toks[5]
	assert.NotEqual(t, outer.VarID(), inner.VarID())
	assert.Equal(t, inner.VarID(), toks[7].VarID())
	assert.Equal(t, outer.VarID(), toks[12].VarID())
}

func TestPass1SkipsMemberAccess(t *testing.T) {
	l, toks := build("int", "x", ";", "obj", ".", "x", "=", "1", ";")
	a := varid.New(l, 0)
	a.Pass1()

	assert.Zero(t, toks[5].VarID())
}

func TestPass1SkipsSizeof(t *testing.T) {
	l, toks := build("sizeof", "(", "unsigned", "x", ")", ";")
	a := varid.New(l, 0)
	a.Pass1()
	assert.Zero(t, toks[3].VarID())
}

func TestPass1StructuredBinding(t *testing.T) {
	l, toks := build("auto", "[", "a", ",", "b", "]", "=", "p", ";")
	require.NoError(t, linker.CreateLinks(l))
	a := varid.New(l, 0)
	a.Pass1()

	assert.NotZero(t, toks[2].VarID())
	assert.NotZero(t, toks[4].VarID())
}

func TestPass2PropagatesQualifiedMemberUse(t *testing.T) {
	l, toks := build("struct", "Foo", "{", "int", "x", ";", "}", ";", "Foo", "::", "x", ";")
	a := varid.New(l, 0)
	a.Pass1()
	a.Pass2(nil)

	member := toks[4]
	qualifiedUse := toks[10]
	require.NotZero(t, member.VarID())
	assert.Equal(t, member.VarID(), qualifiedUse.VarID())
}

func TestPass2PropagatesInheritedMemberUse(t *testing.T) {
	l, toks := build(
		"struct", "B", "{", "int", "y", ";", "}", ";",
		"struct", "D", ":", "B", "{", "int", "f", "(", ")", "{", "return", "y", ";", "}", "}", ";",
	)
	a := varid.New(l, 0)
	a.Pass1()

	base := scope.New(nil, "B", scope.Record, 0, 0)
	derived := scope.New(nil, "D", scope.Record, 0, 0)
	derived.BaseTypes["B"] = true
	registry := map[string]*scope.Info{"B": base, "D": derived}

	a.Pass2(func(name string) *scope.Info { return registry[name] })

	baseMember := toks[4]  // "y" declared in struct B
	derivedUse := toks[19] // unqualified "y" inside D::f's body
	require.NotZero(t, baseMember.VarID())
	assert.Equal(t, baseMember.VarID(), derivedUse.VarID())
}
