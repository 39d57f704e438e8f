// Table tests carrying forward a representative sample of
// original_source/test/testgarbage.cpp's cases, in the teacher's
// table-test idiom.
package garbage_test

import (
	"testing"

	"github.com/cxxtok/cxxtok/internal/fileset"
	"github.com/cxxtok/cxxtok/internal/garbage"
	"github.com/cxxtok/cxxtok/internal/linker"
	"github.com/cxxtok/cxxtok/internal/settings"
	"github.com/cxxtok/cxxtok/internal/srcpos"
	"github.com/cxxtok/cxxtok/internal/token"
	"github.com/cxxtok/cxxtok/internal/xerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(lexemes ...string) *token.TokenList {
	var files fileset.Table
	l := token.New(&files, settings.Default(), "")
	for i, lx := range lexemes {
		l.Append(lx, srcpos.Position{Line: 1, Column: i + 1})
	}
	_ = linker.CreateLinks(l) // deliberately ignored: some cases are unmatched-bracket cases themselves.
	return l
}

func TestCheckValidCodeIsClean(t *testing.T) {
	cases := [][]string{
		{"int", "a", "=", "3", ";"},
		{"if", "(", "x", ")", "{", "f", "(", ")", ";", "}"},
		{"for", "(", "int", "i", "=", "0", ";", "i", "<", "n", ";", "i", "++", ")", "{", "}"},
		{"for", "(", "auto", "x", ":", "v", ")", "{", "}"},
		{"switch", "(", "x", ")", "{", "case", "1", ":", "break", ";", "}"},
		{"a", "=", "b", "?", "c", ":", "d", ";"},
		{"a", "=", "-", "b", ";"},
		{"int", "f", "(", ")", "{", "return", "1", ";", "}"},
	}
	for _, c := range cases {
		l := build(c...)
		assert.NoError(t, garbage.Check(l), "%v", c)
	}
}

func TestCheckOperatorWithNoOperand(t *testing.T) {
	l := build("a", "=", "b", "+", ")")
	err := garbage.Check(l)
	require.Error(t, err)
	assert.True(t, xerrors.IsSyntax(err))
}

func TestCheckCaseOutsideSwitch(t *testing.T) {
	l := build("void", "f", "(", ")", "{", "case", "1", ":", "break", ";", "}")
	err := garbage.Check(l)
	require.Error(t, err)
	assert.True(t, xerrors.IsSyntax(err))
}

func TestCheckForHeaderWrongSemicolons(t *testing.T) {
	l := build("for", "(", "int", "i", "=", "0", ";", "i", "<", "n", ")", "{", "}")
	err := garbage.Check(l)
	require.Error(t, err)
	assert.True(t, xerrors.IsSyntax(err))
}

func TestCheckReturnAtGlobalScope(t *testing.T) {
	l := build("return", "1", ";")
	err := garbage.Check(l)
	require.Error(t, err)
	assert.True(t, xerrors.IsSyntax(err))
}

func TestCheckUnmatchedCloser(t *testing.T) {
	l := build("f", "(", ")", ")", ";")
	err := garbage.Check(l)
	require.Error(t, err)
	assert.True(t, xerrors.IsSyntax(err))
}

func TestCheckUnmatchedTernary(t *testing.T) {
	l := build("a", "=", "b", "?", "c", ";")
	err := garbage.Check(l)
	require.Error(t, err)
	assert.True(t, xerrors.IsSyntax(err))
}

func TestCheckUnknownMacroHeuristic(t *testing.T) {
	l := build("FOREACH", "(", "x", ";", "return", ")", "{", "}")
	err := garbage.Check(l)
	require.Error(t, err)
	var xerr *xerrors.Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, xerrors.UnknownMacro, xerr.Kind)
}
