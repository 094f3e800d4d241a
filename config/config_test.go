package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, CC65, c.Standard)
	assert.Equal(t, Near, c.MemoryModel)
	assert.True(t, c.Warnings.UselessDecl)
	assert.False(t, c.Standard.AtLeastC99())
	assert.True(t, C23.AtLeastC99())
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
standard: c99
memory_model: far
max_errors: 10
warnings:
  struct_param: true
`))
	require.NoError(t, err)
	assert.Equal(t, C99, c.Standard)
	assert.Equal(t, Far, c.MemoryModel)
	assert.Equal(t, 10, c.MaxErrors)
	assert.True(t, c.Warnings.StructParam)
	// Keys that are not mentioned keep their defaults.
	assert.True(t, c.Warnings.ImplicitInt)

	c, err = Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"standard: c11\n",
		"memory_model: huge\n",
		"max_errors: -1\n",
		"optimize: true\n",
		"warnings: [1, 2]\n",
		"standard: [\n",
	} {
		_, err := Parse([]byte(src))
		assert.Error(t, err, src)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "declc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("standard: c23\n"), 0o644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, C23, c.Standard)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
