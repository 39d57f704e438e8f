package typedef_test

import (
	"testing"

	"github.com/cxxtok/cxxtok/internal/fileset"
	"github.com/cxxtok/cxxtok/internal/linker"
	"github.com/cxxtok/cxxtok/internal/report"
	"github.com/cxxtok/cxxtok/internal/settings"
	"github.com/cxxtok/cxxtok/internal/srcpos"
	"github.com/cxxtok/cxxtok/internal/token"
	"github.com/cxxtok/cxxtok/internal/typedef"
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

func TestExpandSimpleAlias(t *testing.T) {
	l := build("typedef", "int", "MyInt", ";", "MyInt", "x", ";")
	infos, err := typedef.New(l, &report.Report{}).Expand()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "MyInt", infos[0].Name)
	assert.True(t, infos[0].Used)
	assert.Equal(t, []string{"int", "x", ";"}, lexemes(l))
}

func TestExpandPointerAlias(t *testing.T) {
	l := build("typedef", "int", "*", "IntPtr", ";", "IntPtr", "p", ";")
	_, err := typedef.New(l, &report.Report{}).Expand()
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "*", "p", ";"}, lexemes(l))
}

func TestExpandIsIdempotent(t *testing.T) {
	l := build("typedef", "int", "MyInt", ";", "MyInt", "x", ";")
	_, err := typedef.New(l, &report.Report{}).Expand()
	require.NoError(t, err)
	before := lexemes(l)

	_, err = typedef.New(l, &report.Report{}).Expand()
	require.NoError(t, err)
	assert.Equal(t, before, lexemes(l))
}

func TestExpandHoistsAnonymousStruct(t *testing.T) {
	l := build("typedef", "struct", "{", "int", "x", ";", "}", "Point", ";", "Point", "p", ";")
	infos, err := typedef.New(l, &report.Report{}).Expand()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "Point", infos[0].Name)
	// The anonymous struct keeps the Point tag name after hoisting.
	assert.Contains(t, lexemes(l), "struct")
}

func TestExpandSkipsSizeofQualifier(t *testing.T) {
	l := build("typedef", "int", "MyInt", ";", "sizeof", "(", "MyInt", ")", ";")
	_, err := typedef.New(l, &report.Report{}).Expand()
	require.NoError(t, err)
	assert.Contains(t, lexemes(l), "MyInt")
}
