package linker_test

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

func build(lexemes ...string) (*token.TokenList, []token.Token) {
	var files fileset.Table
	l := token.New(&files, settings.Default(), "")
	toks := make([]token.Token, len(lexemes))
	for i, lx := range lexemes {
		toks[i] = l.Append(lx, srcpos.Position{Line: 1, Column: i + 1})
	}
	return l, toks
}

func TestCreateLinksPairsBrackets(t *testing.T) {
	l, toks := build("foo", "(", "bar", "[", "0", "]", ")", ";")
	require.NoError(t, linker.CreateLinks(l))

	assert.True(t, toks[1].Link().Equal(toks[6]))
	assert.True(t, toks[6].Link().Equal(toks[1]))
	assert.True(t, toks[3].Link().Equal(toks[5]))
	assert.True(t, toks[5].Link().Equal(toks[3]))
}

func TestCreateLinksUnmatchedCloser(t *testing.T) {
	l, _ := build("foo", ")")
	err := linker.CreateLinks(l)
	require.Error(t, err)
}

func TestCreateLinksUnmatchedOpener(t *testing.T) {
	l, _ := build("foo", "(", "bar")
	err := linker.CreateLinks(l)
	require.Error(t, err)
}

func TestCreateLinksMismatchedKind(t *testing.T) {
	l, _ := build("foo", "(", "bar", "]")
	err := linker.CreateLinks(l)
	require.Error(t, err)
}

func TestCreateLinks2SplitsDoubleAngle(t *testing.T) {
	// `vector < vector < int >> v ;` -- identifiers default to var id 0
	// (no var assigned), which is exactly what opensTemplate requires to
	// treat a following `<` as a template opener.
	l, toks := build("vector", "<", "vector", "<", "int", ">>", "v", ";")
	require.NoError(t, linker.CreateLinks2(l))

	// toks[3] is the inner "<", toks[5] was ">>" and is now the first ">".
	assert.True(t, toks[3].Link().Equal(toks[5]))
	assert.Equal(t, ">", toks[5].Lexeme())
	assert.Equal(t, ">>", toks[5].OriginalName())

	second := toks[5].Next()
	assert.Equal(t, ">", second.Lexeme())
	assert.True(t, toks[1].Link().Equal(second))
	assert.True(t, second.Next().Equal(toks[6]))
}

func TestCreateLinks2LeavesShiftAlone(t *testing.T) {
	l, toks := build("x", "=", "y", ">>", "2", ";")
	toks[0].SetVarID(1)
	toks[2].SetVarID(2)
	require.NoError(t, linker.CreateLinks2(l))

	assert.True(t, toks[3].Link().Nil())
	assert.Equal(t, ">>", toks[3].Lexeme())
}

func TestCreateLinks2ReportsUnmatchedOpener(t *testing.T) {
	// `vector < int` with no closing `>` and no `;`/`||` to abandon the
	// opener: the template list never closes before end of list.
	l, _ := build("vector", "<", "int")
	err := linker.CreateLinks2(l)
	require.Error(t, err)
}

func TestCreateLinks2AbandonsAcrossSemicolon(t *testing.T) {
	// `a < b ; c > d` must not link the `<` to the `>` across the `;`.
	l, toks := build("a", "<", "b", ";", "c", ">", "d")
	require.NoError(t, linker.CreateLinks2(l))
	assert.True(t, toks[1].Link().Nil())
	assert.True(t, toks[5].Link().Nil())
}
