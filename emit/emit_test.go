package emit

import (
	"bytes"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/parse"
	"github.com/sur5r/cc65/report"
	"github.com/sur5r/cc65/scan"
)

const sample = `struct S { char a; unsigned b : 3; char c; };
enum E { A, B };
static int x = 1, *p;
int f(int n) { return n; }
`

func collect(t *testing.T, src string) *Listing {
	toks, err := scan.LexString("t.c", src)
	require.NoError(t, err)
	tu, err := parse.Parse(scan.NewTokenList(toks), parse.WithSink(report.Discard))
	require.NoError(t, err)
	return Collect(tu, ctype.Target6502)
}

func TestCollect(t *testing.T) {
	l := collect(t, sample)
	assert.Zero(t, l.Errors)
	assert.Zero(t, l.Warnings)

	require.Len(t, l.Tags, 2)
	s := l.Tags[0]
	assert.Equal(t, "struct S", s.Tag)
	assert.Equal(t, 3, s.Size)
	assert.Equal(t, []Member{
		{Name: "a", Type: "char", Offset: 0},
		{Name: "b", Type: "unsigned int", Offset: 1, BitWidth: 3},
		{Name: "c", Type: "char", Offset: 2},
	}, s.Members)
	assert.Equal(t, "unsigned char", l.Tags[1].Underlying)

	require.Len(t, l.Decls, 3)
	x := l.Decls[0]
	assert.Equal(t, "x", x.Name)
	assert.Equal(t, "static", x.Storage)
	assert.Equal(t, int64(2), x.Size)
	assert.True(t, x.Init)
	assert.Equal(t, "t.c:3:12", x.Pos)

	f := l.Decls[2]
	assert.Empty(t, f.Storage)
	assert.True(t, f.Definition)
	assert.Zero(t, f.Size)
	assert.Equal(t, "int f(int n)", f.Decl)
}

func TestCollectSkipsErrors(t *testing.T) {
	l := collect(t, "int *; char ok;")
	assert.Equal(t, 1, l.Errors)
	require.Len(t, l.Decls, 1)
	assert.Equal(t, "ok", l.Decls[0].Name)
}

func TestText(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Text(collect(t, sample), &b))
	assert.Equal(t, `struct S size 3
  +0 a char
  +1.0:3 b unsigned int
  +2 c char
enum E size 1 underlying unsigned char
  A = 0
  B = 1
static int x; // int [initialized]
static int *p; // pointer to int
int f(int n); // function(int) returning int [definition]
`, b.String())
}

func TestTextAttributes(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Text(collect(t, "extern char buf[4] __attribute__((unused));"), &b))
	assert.Equal(t, "extern char buf[4]; // array[4] of char [unused]\n", b.String())
}

func TestJSON(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, JSON(collect(t, sample), &b))

	var got Listing
	require.NoError(t, jsoniter.Unmarshal(b.Bytes(), &got))
	assert.Equal(t, *collect(t, sample), got)
	assert.Contains(t, b.String(), `"bit_width": 3`)
	assert.NotContains(t, b.String(), `"attributes"`)
}
