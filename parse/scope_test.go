package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sur5r/cc65/ctype"
)

func TestScopes(t *testing.T) {
	s := NewScopes()
	intType := ctype.Of(ctype.Int)
	require.NoError(t, s.Define(&Symbol{Name: "a", Kind: SymObject, Type: intType}))
	assert.Equal(t, 0, s.Level())

	s.Enter()
	assert.Equal(t, 1, s.Level())
	assert.NotNil(t, s.Lookup("a"))
	assert.Nil(t, s.LookupLocal("a"))
	require.NoError(t, s.Define(&Symbol{Name: "a", Kind: SymParam, Type: ctype.Of(ctype.Char)}))
	assert.Equal(t, SymParam, s.Lookup("a").Kind)
	require.NoError(t, s.DefineTag(&ctype.Tag{Name: "T", Kind: ctype.Struct}))
	assert.NotNil(t, s.LookupLocalTag("T"))
	s.Leave()

	assert.Equal(t, SymObject, s.Lookup("a").Kind)
	assert.Nil(t, s.LookupTag("T"))
	assert.Len(t, s.Globals(), 1)
	assert.Panics(t, func() { s.Leave() })
}

func TestScopeRedefinition(t *testing.T) {
	s := NewScopes()
	intType := ctype.Of(ctype.Int)

	require.NoError(t, s.Define(&Symbol{Name: "x", Kind: SymObject, Type: intType}))
	// A compatible redeclaration is fine.
	require.NoError(t, s.Define(&Symbol{Name: "x", Kind: SymObject, Type: ctype.Of(ctype.Int)}))
	assert.Len(t, s.Globals(), 1)

	err := s.Define(&Symbol{Name: "x", Kind: SymObject, Type: ctype.Of(ctype.Long)})
	assert.EqualError(t, err, "Conflicting types for 'x'")

	err = s.Define(&Symbol{Name: "x", Kind: SymTypedef, Type: intType})
	assert.EqualError(t, err, "Symbol 'x' is already different kind")

	require.NoError(t, s.Define(&Symbol{Name: "E", Kind: SymEnumerator, Type: intType}))
	err = s.Define(&Symbol{Name: "E", Kind: SymEnumerator, Type: intType})
	assert.EqualError(t, err, "Redefinition of 'E'")

	require.NoError(t, s.DefineTag(&ctype.Tag{Name: "S", Kind: ctype.Struct}))
	err = s.DefineTag(&ctype.Tag{Name: "S", Kind: ctype.Struct})
	assert.EqualError(t, err, "Multiple definition for 'struct S'")
}

func TestConflictingDeclarations(t *testing.T) {
	_, diags := parseString(t, "int x; long x; int f(int); int f(int); int f(char);")
	assert.Equal(t, []string{
		"error: Conflicting types for 'x'",
		"error: Conflicting types for 'f'",
	}, diags.Messages())

	_, diags = parseString(t, "typedef int T; int T;")
	assert.Equal(t, []string{"error: Symbol 'T' is already different kind"}, diags.Messages())

	_, diags = parseString(t, "inline int v;")
	assert.Equal(t, []string{"error: 'inline' on non-function declaration"}, diags.Messages())
}

func TestSymKindString(t *testing.T) {
	assert.Equal(t, "typedef", SymTypedef.String())
	assert.Equal(t, "parameter", SymParam.String())
	assert.Equal(t, "unknown", SymKind(99).String())
}
