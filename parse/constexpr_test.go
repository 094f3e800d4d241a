package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/scan"
)

func TestConstExpr(t *testing.T) {
	for _, tc := range []struct {
		src string
		val int64
		typ ctype.Primitive
	}{
		{"1 + 2 * 3", 7, ctype.Int},
		{"(1 + 2) * 3", 9, ctype.Int},
		{"-1", -1, ctype.Int},
		{"~0", -1, ctype.Int},
		{"!5", 0, ctype.Int},
		{"32767 + 1", -32768, ctype.Int},
		{"65535U + 1", 0, ctype.UInt},
		{"0xFFFF", 65535, ctype.UInt},
		{"32768", 32768, ctype.Long},
		{"1L << 20", 1 << 20, ctype.Long},
		{"7 / 2", 3, ctype.Int},
		{"-7 % 3", -1, ctype.Int},
		{"1 < 2 && 3 >= 3", 1, ctype.Int},
		{"0 || 0", 0, ctype.Int},
		{"1 ? 10 : 20", 10, ctype.Int},
		{"0 ? 10 : 20L", 20, ctype.Long},
		{"'A' | 0x20", 'a', ctype.Int},
		{"(unsigned char)300", 44, ctype.UChar},
		{"(signed char)200", -56, ctype.SChar},
		{"sizeof(int)", 2, ctype.UInt},
		{"sizeof(long[3])", 12, ctype.UInt},
		{"sizeof(char *)", 2, ctype.UInt},
		{"sizeof 1L", 4, ctype.UInt},
		{"-1 < 0U", 0, ctype.Int},
		{"6 ^ 3", 5, ctype.Int},
		{"0x0F & 0x3C", 0x0C, ctype.Int},
	} {
		p, diags := newTestParser(t, tc.src)
		v, typ := p.constExpr()
		assert.Empty(t, diags.Messages(), tc.src)
		assert.Equal(t, tc.val, v, tc.src)
		assert.Equal(t, tc.typ, typ, tc.src)
	}
}

func TestConstExprErrors(t *testing.T) {
	for _, tc := range []struct {
		src string
		msg string
	}{
		{"1 / 0", "error: Division by zero"},
		{"1 % 0", "error: Modulo operation with zero"},
		{"nothere + 1", "error: Undefined symbol: 'nothere'"},
		{")", "error: Expression expected"},
		{"sizeof(void (void))", "error: Cannot apply 'sizeof' to incomplete type 'void (void)'"},
		{"(char *)1", "error: Constant integer expression expected"},
		{"(1 + 2", "error: ')' expected"},
	} {
		p, diags := newTestParser(t, tc.src)
		p.constExpr()
		assert.Equal(t, []string{tc.msg}, diags.Messages(), tc.src)
	}
}

func TestConstExprSymbols(t *testing.T) {
	p, diags := newTestParser(t, "enum { K = 4 }; int v; K * 2 v")
	p.ParseDeclSpec(AllowStorage, DefaultInt, SCExtern)
	p.Next()
	spec := p.ParseDeclSpec(AllowStorage, DefaultInt, SCExtern)
	d, err := p.ParseDecl(spec, NeedIdent)
	assert.NoError(t, err)
	p.declare(d)
	p.Next()

	v, typ := p.constExpr()
	assert.Equal(t, int64(8), v)
	assert.Equal(t, ctype.Int, typ)

	p.constExpr()
	assert.Equal(t, []string{"error: Constant expression expected"}, diags.Messages())
}

func TestIntConstType(t *testing.T) {
	assert.Equal(t, ctype.Int, intConstType("100", 100))
	assert.Equal(t, ctype.UInt, intConstType("100u", 100))
	assert.Equal(t, ctype.Long, intConstType("100l", 100))
	assert.Equal(t, ctype.ULong, intConstType("100UL", 100))
	assert.Equal(t, ctype.UInt, intConstType("0x8000", 0x8000))
	assert.Equal(t, ctype.Long, intConstType("40000", 40000))
	assert.Equal(t, ctype.ULong, intConstType("4000000000", 4000000000))
}

func TestConstExprNestingLimit(t *testing.T) {
	parens := func(n int) string {
		return strings.Repeat("(", n) + "7" + strings.Repeat(")", n) + " ;"
	}
	p, diags := newTestParser(t, parens(MaxNesting))
	v, _ := p.constExpr()
	assert.Empty(t, diags.Messages())
	assert.Equal(t, int64(7), v)

	p, diags = newTestParser(t, parens(MaxNesting+1))
	v, typ := p.constExpr()
	assert.Equal(t, []string{"error: Expression too complex"}, diags.Messages())
	assert.Equal(t, int64(0), v)
	assert.Equal(t, ctype.Int, typ)
	assert.Equal(t, scan.TokenKind(scan.SEMICOLON), p.Current().Kind)

	p, diags = newTestParser(t, strings.Repeat("-", MaxNesting)+"1")
	v, _ = p.constExpr()
	assert.Empty(t, diags.Messages())
	assert.Equal(t, int64(1), v)

	p, diags = newTestParser(t, strings.Repeat("1 ? ", MaxNesting+1)+"1"+strings.Repeat(" : 0", MaxNesting+1))
	p.constExpr()
	assert.Equal(t, []string{"error: Expression too complex"}, diags.Messages())
}

func TestEnumeratorNestingLimit(t *testing.T) {
	tu, diags := parseString(t, "enum { A = "+strings.Repeat("-", 40)+"1, B };")
	assert.Equal(t, []string{"error: Expression too complex"}, diags.Messages())
	assert.Equal(t, int64(0), tu.Symbols.Lookup("A").Value)
	assert.Equal(t, int64(1), tu.Symbols.Lookup("B").Value)
}
