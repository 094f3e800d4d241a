package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sur5r/cc65/emit"
)

func runDeclcArgs(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"declc"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestListing(t *testing.T) {
	code, out, errs := runDeclcArgs("testdata/ok.c")
	assert.Equal(t, 0, code)
	assert.Empty(t, errs)
	assert.Contains(t, out, "int f(int a); // function(int) returning int\n")
	assert.Contains(t, out, "static long count; // long [initialized]\n")
	assert.Contains(t, out, "buf[8]; // array[8] of unsigned char\n")
}

func TestErrorsExit(t *testing.T) {
	code, out, errs := runDeclcArgs("testdata/bad.c")
	assert.Equal(t, 1, code)
	assert.Contains(t, errs, "testdata/bad.c:1:")
	assert.Contains(t, errs, "error: Duplicate type specifier 'int'")
	assert.Contains(t, errs, "int int i1;\n")
	assert.Contains(t, errs, "^")
	// The declaration is still listed.
	assert.Contains(t, out, "int i1; // int\n")
}

func TestTokens(t *testing.T) {
	code, out, _ := runDeclcArgs("-T", "testdata/bad.c")
	assert.Equal(t, 0, code)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "int:int:1:1", lines[0])
	assert.Equal(t, "int:int:1:5", lines[1])
	assert.Equal(t, "ident:i1:1:9", lines[2])
	assert.True(t, strings.HasPrefix(lines[len(lines)-2], "EOF::"))
}

func TestJSONOutput(t *testing.T) {
	code, out, _ := runDeclcArgs("--json", "testdata/ok.c")
	assert.Equal(t, 0, code)
	var l emit.Listing
	require.NoError(t, jsoniter.Unmarshal([]byte(out), &l))
	var names []string
	for _, d := range l.Decls {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"byte", "buf", "f", "count"}, names)
	assert.Equal(t, "typedef", l.Decls[0].Storage)
}

func TestStandard(t *testing.T) {
	code, _, errs := runDeclcArgs("testdata/implicit.c")
	assert.Equal(t, 0, code)
	assert.Empty(t, errs)

	code, _, errs = runDeclcArgs("--std", "c99", "testdata/implicit.c")
	assert.Equal(t, 0, code)
	assert.Contains(t, errs, "warning: Implicit 'int' is an obsolete feature")

	code, _, errs = runDeclcArgs("--std", "k&r", "testdata/implicit.c")
	assert.Equal(t, 1, code)
	assert.Contains(t, errs, `unknown standard "k&r"`)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "declc.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("standard: c99\nwarnings:\n  implicit_int: false\n"), 0o644))
	code, _, errs := runDeclcArgs("--config", cfg, "testdata/implicit.c")
	assert.Equal(t, 0, code)
	assert.Empty(t, errs)

	require.NoError(t, os.WriteFile(cfg, []byte("standerd: c99\n"), 0o644))
	code, _, errs = runDeclcArgs("--config", cfg, "testdata/implicit.c")
	assert.Equal(t, 1, code)
	assert.Contains(t, errs, "parsing config")
}

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	code, out, _ := runDeclcArgs("-o", path, "testdata/ok.c")
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "int f(int a);")
}

func TestBadArgs(t *testing.T) {
	code, _, errs := runDeclcArgs()
	assert.Equal(t, 1, code)
	assert.Contains(t, errs, "Bad number of args")

	code, _, errs = runDeclcArgs("testdata/missing.c")
	assert.Equal(t, 1, code)
	assert.Contains(t, errs, "Failed to open source file testdata/missing.c")
}
