package xmldump_test

import (
	"strings"
	"testing"

	"github.com/cxxtok/cxxtok/internal/driver"
	"github.com/cxxtok/cxxtok/internal/fileset"
	"github.com/cxxtok/cxxtok/internal/settings"
	"github.com/cxxtok/cxxtok/internal/xmldump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpEmitsOneElementPerToken(t *testing.T) {
	var files fileset.Table
	d := driver.New(settings.Default(), nil, nil)
	list, err := d.Tokenize(&files, "a.cpp", "int x = 1;", "")
	require.NoError(t, err)
	ok, err := d.SimplifyTokens1(list)
	require.NoError(t, err)
	require.True(t, ok)

	var buf strings.Builder
	require.NoError(t, xmldump.Dump(&buf, list, files.Path))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml`))
	assert.Contains(t, out, "<tokenlist>")
	assert.Contains(t, out, `str="int"`)
	assert.Contains(t, out, `str="x"`)
	assert.Equal(t, list.Len(), strings.Count(out, "<token "))
}

func TestDumpRecordsLinkedBrackets(t *testing.T) {
	var files fileset.Table
	d := driver.New(settings.Default(), nil, nil)
	list, err := d.Tokenize(&files, "a.cpp", "int f() { return 0; }", "")
	require.NoError(t, err)
	ok, err := d.SimplifyTokens1(list)
	require.NoError(t, err)
	require.True(t, ok)

	var buf strings.Builder
	require.NoError(t, xmldump.Dump(&buf, list, files.Path))

	out := buf.String()
	assert.Contains(t, out, `link=`)
}
