package scan

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokString(t *Token) string {
	return fmt.Sprintf("%s:%s:%d:%d", t.Kind, t.Val, t.Pos.Line, t.Pos.Col)
}

func TestLexer(t *testing.T) {
	for _, tc := range []struct {
		src      string
		expected []string
	}{
		{
			"int * const p[4];",
			[]string{"int:int:1:1", "'*':*:1:5", "const:const:1:7", "ident:p:1:13",
				"'[':[:1:14", "intconst:4:1:15", "']':]:1:16", "';':;:1:17", "EOF::1:18"},
		},
		{
			"int (*f)(char, ...);",
			[]string{"int:int:1:1", "'(':(:1:5", "'*':*:1:6", "ident:f:1:7", "')':):1:8",
				"'(':(:1:9", "char:char:1:10", "',':,:1:14", "'...':...:1:16", "')':):1:19",
				"';':;:1:20", "EOF::1:21"},
		},
		{
			"# 1 \"foo.c\"\nstatic\n  # 2\nx",
			[]string{"static:static:2:1", "ident:x:4:1", "EOF::4:2"},
		},
		{
			"/* c */ a // x\n<<= >> -> 0x1fUL 1.5e+3f 'a' \"s\\\"\"",
			[]string{"ident:a:1:9", "'<<=':<<=:2:1", "'>>':>>:2:5", "'->':->:2:8",
				"intconst:0x1fUL:2:11", "floatconst:1.5e+3f:2:18", "charconst:'a':2:26",
				"string:\"s\\\"\":2:30", "EOF::2:35"},
		},
		{
			"void __fastcall__ __attribute__ __near__ _Static_assert",
			[]string{"void:void:1:1", "__fastcall__:__fastcall__:1:6",
				"__attribute__:__attribute__:1:19", "__near__:__near__:1:33",
				"_Static_assert:_Static_assert:1:42", "EOF::1:56"},
		},
	} {
		toks, err := LexString("test.c", tc.src)
		require.NoError(t, err, tc.src)
		var got []string
		for _, tok := range toks {
			got = append(got, tokString(tok))
		}
		assert.Equal(t, tc.expected, got, tc.src)
	}
}

func TestLexerErrors(t *testing.T) {
	for _, src := range []string{
		"int x = 09;",
		"/* unclosed",
		"a # b",
		"'x",
		"1_000",
		"@",
	} {
		lx := Lex("bad.c", strings.NewReader(src))
		var err error
		for i := 0; i < 10 && err == nil; i++ {
			var tok *Token
			tok, err = lx.Next()
			if tok.Kind == EOF {
				break
			}
		}
		require.Error(t, err, src)
		_, isLoc := err.(ErrorLoc)
		assert.True(t, isLoc, src)

		// The error is sticky.
		_, again := lx.Next()
		assert.Equal(t, err, again)
	}
}

func TestParseConstants(t *testing.T) {
	for _, tc := range []struct {
		s string
		v int64
	}{
		{"0", 0}, {"42", 42}, {"0x10", 16}, {"017", 15}, {"65535U", 65535}, {"7L", 7},
	} {
		v, err := ParseInt(tc.s)
		require.NoError(t, err, tc.s)
		assert.Equal(t, tc.v, v, tc.s)
	}
	for _, tc := range []struct {
		s string
		v int64
	}{
		{"'a'", 'a'}, {"'\\n'", '\n'}, {"'\\0'", 0}, {"'\\177'", 127}, {"'\\x41'", 0x41}, {"'\"'", '"'},
	} {
		v, err := ParseChar(tc.s)
		require.NoError(t, err, tc.s)
		assert.Equal(t, tc.v, v, tc.s)
	}
	_, err := ParseChar("'ab'")
	assert.Error(t, err)
}

func TestTokenList(t *testing.T) {
	toks, err := LexString("t.c", "a b")
	require.NoError(t, err)
	tl := NewTokenList(toks[:2])
	a, _ := tl.Next()
	b, _ := tl.Next()
	end, _ := tl.Next()
	assert.Equal(t, "a", a.Val)
	assert.Equal(t, "b", b.Val)
	assert.Equal(t, TokenKind(EOF), end.Kind)
	assert.Equal(t, b.Pos, end.Pos)
}
