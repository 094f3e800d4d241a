package parse

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sur5r/cc65/config"
	"github.com/sur5r/cc65/report"
	"github.com/sur5r/cc65/scan"
)

func newTestParser(t *testing.T, src string, opts ...Option) (*Parser, *report.List) {
	toks, err := scan.LexString("t.c", src)
	require.NoError(t, err)
	diags := &report.List{}
	opts = append([]Option{WithSink(diags)}, opts...)
	return New(scan.NewTokenList(toks), opts...), diags
}

func parseString(t *testing.T, src string, opts ...Option) (*TranslationUnit, *report.List) {
	toks, err := scan.LexString("t.c", src)
	require.NoError(t, err)
	diags := &report.List{}
	opts = append([]Option{WithSink(diags)}, opts...)
	tu, err := Parse(scan.NewTokenList(toks), opts...)
	require.NoError(t, err)
	return tu, diags
}

func withStd(s config.Standard) Option {
	c := config.Default()
	c.Standard = s
	return WithConfig(c)
}

var expectRe = regexp.MustCompile(`// (ERROR|WARNING) "([^"]*)"`)

// fileExpectations collects the diagnostics a test file announces in
// comments, keyed by line.
func fileExpectations(src string) map[int][]string {
	ret := map[int][]string{}
	for i, line := range strings.Split(src, "\n") {
		for _, m := range expectRe.FindAllStringSubmatch(line, -1) {
			ret[i+1] = append(ret[i+1], strings.ToLower(m[1])+": "+m[2])
		}
	}
	return ret
}

func parseTestCase(t *testing.T, path string) {
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	toks, err := scan.LexString(path, string(src))
	require.NoError(t, err)
	diags := &report.List{}
	_, err = Parse(scan.NewTokenList(toks), WithSink(diags))
	require.NoError(t, err)

	got := map[int][]string{}
	for _, d := range diags.Diags {
		got[d.Pos.Line] = append(got[d.Pos.Line], d.Severity.String()+": "+d.Msg)
	}
	assert.Equal(t, fileExpectations(string(src)), got)
}

func TestParser(t *testing.T) {
	files, err := filepath.Glob("parsetests/*.c")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, path := range files {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			parseTestCase(t, path)
		})
	}
}

func TestParseSymbols(t *testing.T) {
	tu, diags := parseString(t, "typedef int *ip; ip x, y[2]; int f(void); static char c = 'a';")
	assert.Empty(t, diags.Messages())
	require.Len(t, tu.Decls, 4)

	globals := tu.Symbols.(*Scopes).Globals()
	var names []string
	for _, s := range globals {
		names = append(names, s.Name+" "+s.Kind.String())
	}
	assert.Equal(t, []string{"ip typedef", "x object", "y object", "f function", "c object"}, names)

	y := tu.Symbols.Lookup("y")
	require.NotNil(t, y)
	assert.Equal(t, "array[2] of pointer to int", y.Type.String())
	f := tu.Symbols.Lookup("f")
	assert.Equal(t, SCExtern|SCFunc, f.Storage)
	assert.Equal(t, []bool{true}, tu.Decls[3].Inits)
}

func TestParseFunctionDefinition(t *testing.T) {
	tu, diags := parseString(t, "int add(a, b) int a; char *b; { if (a) { return a; } return 0; } int after;")
	assert.Empty(t, diags.Messages())
	require.Len(t, tu.Decls, 2)
	assert.True(t, tu.Decls[0].Body)

	add := tu.Symbols.Lookup("add")
	require.NotNil(t, add)
	assert.Equal(t, "function(int, pointer to char) returning int", add.Type.String())
	assert.NotNil(t, tu.Symbols.Lookup("after"))
	// Parameters do not leak into file scope.
	assert.Nil(t, tu.Symbols.Lookup("a"))
}

func TestImplicitInt(t *testing.T) {
	_, diags := parseString(t, "x; main() { }")
	assert.Empty(t, diags.Messages())

	_, diags = parseString(t, "x; main() { }", withStd(config.C99))
	assert.Equal(t, []string{
		"warning: Implicit 'int' is an obsolete feature",
		"warning: Implicit 'int' return type is an obsolete feature",
	}, diags.Messages())
}

func TestInferredType(t *testing.T) {
	tu, diags := parseString(t, "x = 5; y; *z = 0;", withStd(config.C23))
	assert.Equal(t, []string{
		"error: 'auto' type inference requires an initializer",
		"error: 'auto' type inference cannot be used with a derived type",
	}, diags.Messages())
	require.NotNil(t, tu.Symbols.Lookup("x"))
	assert.Equal(t, "auto", tu.Symbols.Lookup("x").Type.String())
}

func TestTooManyErrors(t *testing.T) {
	c := config.Default()
	c.MaxErrors = 2
	toks, err := scan.LexString("t.c", "int int a; int int b; int int c; int d;")
	require.NoError(t, err)
	diags := &report.List{}
	tu, err := Parse(scan.NewTokenList(toks), WithSink(diags), WithConfig(c))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyErrors)
	assert.Equal(t, 2, tu.Errors)
	assert.Nil(t, tu.Symbols.Lookup("d"))
}

func TestLexerErrorStopsParse(t *testing.T) {
	lx := scan.Lex("t.c", strings.NewReader("int a; @ int b;"))
	tu, err := Parse(lx)
	require.Error(t, err)
	var loc scan.ErrorLoc
	assert.ErrorAs(t, err, &loc)
	assert.NotNil(t, tu.Symbols.Lookup("a"))
	assert.Nil(t, tu.Symbols.Lookup("b"))
}

func TestUnexpectedCloser(t *testing.T) {
	tu, diags := parseString(t, "int a; } int b;")
	assert.Equal(t, []string{"error: Unexpected '}'"}, diags.Messages())
	assert.NotNil(t, tu.Symbols.Lookup("b"))
}

func TestStaticAssert(t *testing.T) {
	_, diags := parseString(t, `_Static_assert(sizeof(long) == 4, "long"); _Static_assert(1 > 2, "order");`)
	assert.Equal(t, []string{`error: _Static_assert failed "order"`}, diags.Messages())
}
