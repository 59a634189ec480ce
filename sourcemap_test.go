package sourcemap_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcweave/sourcemap"
)

// A mapping for two files (one.js and two.js) minified into one
// generated line each.
//
// Here is one.js:
//
//	ONE.foo = function (bar) {
//	  return baz(bar);
//	};
//
// Here is two.js:
//
//	TWO.inc = function (n) {
//	  return n + 1;
//	};
//
// And here is the generated code (min.js):
//
//	ONE.foo=function(a){return baz(a);};
//	TWO.inc=function(a){return a+1;};
var sourceMapJSON = []byte(`{
  "version": 3,
  "file": "min.js",
  "names": ["bar", "baz", "n"],
  "sources": ["one.js", "two.js"],
  "sourceRoot": "/the/root",
  "mappings": "CAAC,IAAI,IAAM,SAAUA,GAClB,OAAOC,IAAID;CCDb,IAAI,IAAM,SAAUE,GAClB,OAAOA"
}`)

func TestLookup(t *testing.T) {
	t.Parallel()
	smap, err := sourcemap.Parse(sourceMapJSON)
	require.NoError(t, err)

	table := []struct {
		genLine uint32
		genCol  uint32
		source  string
		name    string
		line    uint32
		col     uint32
	}{
		{0, 1, "one.js", "", 0, 1},
		{0, 5, "one.js", "", 0, 5},
		{0, 9, "one.js", "", 0, 11},
		{0, 18, "one.js", "bar", 0, 21},
		{0, 21, "one.js", "", 1, 3},
		{0, 28, "one.js", "baz", 1, 10},
		{0, 32, "one.js", "bar", 1, 14},

		{1, 1, "two.js", "", 0, 1},
		{1, 5, "two.js", "", 0, 5},
		{1, 9, "two.js", "", 0, 11},
		{1, 18, "two.js", "n", 0, 21},
		{1, 21, "two.js", "", 1, 3},
		{1, 28, "two.js", "n", 1, 10},

		// Queries between tokens resolve to the greatest lower bound.
		{0, 20, "one.js", "bar", 0, 21},
		{0, 30, "one.js", "baz", 1, 10},
		{1, 12, "two.js", "", 0, 11},
		// Columns past the last token on a line keep resolving to it.
		{1, 1000, "two.js", "n", 1, 10},
	}
	for _, row := range table {
		view, ok := smap.LookupSourceView(row.genLine, row.genCol)
		require.True(t, ok, "%+v", row)
		source, _ := view.Source()
		assert.Equal(t, row.source, source, "%+v", row)
		name, _ := view.Name()
		assert.Equal(t, row.name, name, "%+v", row)
		assert.Equal(t, row.line, view.Token.SrcLine, "%+v", row)
		assert.Equal(t, row.col, view.Token.SrcCol, "%+v", row)
	}

	// The query precedes every token on line 0.
	_, ok := smap.LookupToken(0, 0)
	assert.False(t, ok)
	// Past the last mapped line.
	_, ok = smap.LookupToken(2, 0)
	assert.False(t, ok)

	root, _ := smap.SourceRoot()
	assert.Equal(t, "/the/root", root)
}

func TestLookupOrder(t *testing.T) {
	t.Parallel()
	var b sourcemap.SourceMapBuilder
	b.AddSource("a.js")
	b.AddToken(0, 0, 0, 0, 0, sourcemap.NoID)
	b.AddToken(0, 10, 1, 0, 0, sourcemap.NoID)
	b.AddToken(1, 0, 2, 0, 0, sourcemap.NoID)
	b.AddToken(1, 5, 3, 0, 0, sourcemap.NoID)
	smap := b.Build()

	tok, ok := smap.LookupToken(0, 7)
	require.True(t, ok)
	assert.Equal(t, uint32(0), tok.SrcLine)

	tok, ok = smap.LookupToken(1, 4)
	require.True(t, ok)
	assert.Equal(t, uint32(2), tok.SrcLine)

	_, ok = smap.LookupToken(2, 0)
	assert.False(t, ok)
}

// Of several tokens at the same generated position, the most recently
// added wins.
func TestLookupTieBreak(t *testing.T) {
	t.Parallel()
	var b sourcemap.SourceMapBuilder
	b.AddSource("a.js")
	b.AddToken(0, 4, 0, 0, 0, sourcemap.NoID)
	b.AddToken(0, 4, 7, 0, 0, sourcemap.NoID)
	b.AddToken(0, 4, 9, 0, 0, sourcemap.NoID)
	smap := b.Build()

	tok, ok := smap.LookupToken(0, 4)
	require.True(t, ok)
	assert.Equal(t, uint32(9), tok.SrcLine)
}

// A matching pure segment means "no mapping at or after this column".
func TestLookupPureSegment(t *testing.T) {
	t.Parallel()
	var b sourcemap.SourceMapBuilder
	b.AddSource("a.js")
	b.AddToken(0, 0, 0, 0, 0, sourcemap.NoID)
	b.AddToken(0, 10, 0, 0, sourcemap.NoID, sourcemap.NoID)
	smap := b.Build()

	_, ok := smap.LookupToken(0, 15)
	assert.False(t, ok)
	tok, ok := smap.LookupToken(0, 9)
	require.True(t, ok)
	assert.Equal(t, uint32(0), tok.DstCol)
}

func TestLookupAfterMutation(t *testing.T) {
	t.Parallel()
	smap, err := sourcemap.Parse(sourceMapJSON)
	require.NoError(t, err)

	_, ok := smap.LookupToken(0, 5)
	require.True(t, ok)

	// Mutators invalidate the lookup accelerator; lookups still work.
	smap.SetFile("other.js")
	smap.SetSourceContent(0, "ONE.foo = function (bar) {\n  return baz(bar);\n};\n")
	_, ok = smap.LookupToken(0, 5)
	assert.True(t, ok)

	content, ok := smap.SourceContent(0)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(content, "ONE.foo"))
}

func TestConcurrentLookup(t *testing.T) {
	t.Parallel()
	smap, err := sourcemap.Parse(sourceMapJSON)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for line := uint32(0); line < 3; line++ {
				for col := uint32(0); col < 40; col++ {
					smap.LookupToken(line, col)
				}
			}
		}()
	}
	wg.Wait()
}

func TestDataURL(t *testing.T) {
	t.Parallel()
	var b sourcemap.SourceMapBuilder
	b.AddSource("a.js")
	smap := b.Build()
	url := smap.DataURL()
	assert.True(t, strings.HasPrefix(url, "data:application/json;charset=utf-8;base64,"))
}
