package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sur5r/cc65/scan"
)

func TestSmartErrorSkip(t *testing.T) {
	for _, tc := range []struct {
		src  string
		out  Outcome
		stop scan.TokenKind
		next string
	}{
		{") , x ; y", Ascended, scan.RPAREN, ","},
		{"(a,b), x;", Resynced, scan.COMMA, "x"},
		{"a b c; d", Resynced, scan.SEMICOLON, "d"},
		{"[1, (2]) ; z", Ascended, scan.RBRACK, ")"},
		{"{ a, b } d", Resynced, scan.IDENT, ""},
		// A ';' inside a group ends the skip as a failure.
		{"{ a; b }", Ascended, scan.SEMICOLON, "b"},
		{"( a ; b ) , x ;", Ascended, scan.SEMICOLON, "b"},
		{"( a ) ; b", Resynced, scan.SEMICOLON, "b"},
		{"x y", Ascended, scan.EOF, ""},
	} {
		p, _ := newTestParser(t, tc.src)
		out := p.SmartErrorSkip()
		assert.Equal(t, tc.out, out, tc.src)
		assert.Equal(t, tc.stop, p.Current().Kind, tc.src)
		if tc.next != "" {
			assert.Equal(t, tc.next, p.Peek().Val, tc.src)
		}
	}
}

func TestSmartErrorSkipAfterBraces(t *testing.T) {
	p, _ := newTestParser(t, "{ a, { b, c } } d")
	assert.Equal(t, Resynced, p.SmartErrorSkip())
	assert.Equal(t, "d", p.Current().Val)
}

func TestSkipGroup(t *testing.T) {
	p, diags := newTestParser(t, "{ a; { b; } (c) } rest")
	p.skipGroup()
	assert.Empty(t, diags.Messages())
	assert.Equal(t, "rest", p.Current().Val)

	p, diags = newTestParser(t, "{ a; ( }")
	p.skipGroup()
	assert.Equal(t, []string{"error: ')' expected"}, diags.Messages())

	p, diags = newTestParser(t, "{ a;")
	p.skipGroup()
	assert.Equal(t, []string{"error: '}' expected"}, diags.Messages())
	assert.Equal(t, scan.TokenKind(scan.EOF), p.Current().Kind)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "resynced", Resynced.String())
	assert.Equal(t, "ascended", Ascended.String())
}
