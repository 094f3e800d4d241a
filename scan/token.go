package scan

import (
	"fmt"
)

// The list of tokens.
const (

	// Single char tokens are themselves.
	ADD       = '+'
	SUB       = '-'
	MUL       = '*'
	QUO       = '/'
	REM       = '%'
	AND       = '&'
	OR        = '|'
	XOR       = '^'
	QUESTION  = '?'
	LSS       = '<'
	GTR       = '>'
	ASSIGN    = '='
	NOT       = '!'
	BNOT      = '~'
	LPAREN    = '('
	LBRACK    = '['
	LBRACE    = '{'
	COMMA     = ','
	PERIOD    = '.'
	RPAREN    = ')'
	RBRACK    = ']'
	RBRACE    = '}'
	SEMICOLON = ';'
	COLON     = ':'

	ERROR = 10000 + iota
	EOF
	// Identifiers and basic type literals
	// (these tokens stand for classes of literals)
	IDENT          // main
	INT_CONSTANT   // 12345
	FLOAT_CONSTANT // 123.45
	CHAR_CONSTANT  // 'a'
	STRING         // "abc"

	SHL        // <<
	SHR        // >>
	ADD_ASSIGN // +=
	SUB_ASSIGN // -=
	MUL_ASSIGN // *=
	QUO_ASSIGN // /=
	REM_ASSIGN // %=
	AND_ASSIGN // &=
	OR_ASSIGN  // |=
	XOR_ASSIGN // ^=
	SHL_ASSIGN // <<=
	SHR_ASSIGN // >>=
	LAND       // &&
	LOR        // ||
	ARROW      // ->
	INC        // ++
	DEC        // --
	EQL        // ==
	NEQ        // !=
	LEQ        // <=
	GEQ        // >=
	ELLIPSIS   // ...

	// Keywords
	AUTO
	REGISTER
	EXTERN
	STATIC
	TYPEDEF
	INLINE
	SHORT
	BREAK
	CASE
	DO
	CONST
	VOLATILE
	RESTRICT
	CONTINUE
	DEFAULT
	ELSE
	FOR
	WHILE
	GOTO
	IF
	RETURN
	STRUCT
	UNION
	ENUM
	SWITCH
	SIZEOF
	VOID
	CHAR
	INT
	FLOAT
	DOUBLE
	SIGNED
	UNSIGNED
	LONG
	STATIC_ASSERT

	// cc65 extensions
	NEAR
	FAR
	FASTCALL
	CDECL
	ATTRIBUTE
)

var tokenKindToStr = [...]string{
	EOF:            "EOF",
	ERROR:          "error",
	CHAR_CONSTANT:  "charconst",
	INT_CONSTANT:   "intconst",
	FLOAT_CONSTANT: "floatconst",
	IDENT:          "ident",
	STRING:         "string",
	ADD:            "'+'",
	SUB:            "'-'",
	MUL:            "'*'",
	QUO:            "'/'",
	REM:            "'%'",
	AND:            "'&'",
	OR:             "'|'",
	XOR:            "'^'",
	SHL:            "'<<'",
	SHR:            "'>>'",
	ADD_ASSIGN:     "'+='",
	SUB_ASSIGN:     "'-='",
	MUL_ASSIGN:     "'*='",
	QUO_ASSIGN:     "'/='",
	REM_ASSIGN:     "'%='",
	AND_ASSIGN:     "'&='",
	OR_ASSIGN:      "'|='",
	XOR_ASSIGN:     "'^='",
	SHL_ASSIGN:     "'<<='",
	SHR_ASSIGN:     "'>>='",
	LAND:           "'&&'",
	LOR:            "'||'",
	ARROW:          "'->'",
	INC:            "'++'",
	DEC:            "'--'",
	EQL:            "'=='",
	LSS:            "'<'",
	GTR:            "'>'",
	ASSIGN:         "'='",
	NOT:            "'!'",
	BNOT:           "'~'",
	NEQ:            "'!='",
	LEQ:            "'<='",
	GEQ:            "'>='",
	ELLIPSIS:       "'...'",
	LPAREN:         "'('",
	LBRACK:         "'['",
	LBRACE:         "'{'",
	COMMA:          "','",
	PERIOD:         "'.'",
	RPAREN:         "')'",
	RBRACK:         "']'",
	RBRACE:         "'}'",
	SEMICOLON:      "';'",
	COLON:          "':'",
	QUESTION:       "'?'",
	AUTO:           "auto",
	REGISTER:       "register",
	EXTERN:         "extern",
	STATIC:         "static",
	TYPEDEF:        "typedef",
	INLINE:         "inline",
	SHORT:          "short",
	BREAK:          "break",
	CASE:           "case",
	DO:             "do",
	CONST:          "const",
	VOLATILE:       "volatile",
	RESTRICT:       "restrict",
	CONTINUE:       "continue",
	DEFAULT:        "default",
	ELSE:           "else",
	FOR:            "for",
	WHILE:          "while",
	GOTO:           "goto",
	IF:             "if",
	RETURN:         "return",
	STRUCT:         "struct",
	UNION:          "union",
	ENUM:           "enum",
	SWITCH:         "switch",
	SIZEOF:         "sizeof",
	VOID:           "void",
	CHAR:           "char",
	INT:            "int",
	FLOAT:          "float",
	DOUBLE:         "double",
	SIGNED:         "signed",
	UNSIGNED:       "unsigned",
	LONG:           "long",
	STATIC_ASSERT:  "_Static_assert",
	NEAR:           "__near__",
	FAR:            "__far__",
	FASTCALL:       "__fastcall__",
	CDECL:          "__cdecl__",
	ATTRIBUTE:      "__attribute__",
}

var keywordLUT = map[string]TokenKind{
	"auto":           AUTO,
	"register":       REGISTER,
	"extern":         EXTERN,
	"static":         STATIC,
	"typedef":        TYPEDEF,
	"inline":         INLINE,
	"__inline__":     INLINE,
	"for":            FOR,
	"while":          WHILE,
	"do":             DO,
	"if":             IF,
	"else":           ELSE,
	"goto":           GOTO,
	"break":          BREAK,
	"continue":       CONTINUE,
	"case":           CASE,
	"default":        DEFAULT,
	"switch":         SWITCH,
	"return":         RETURN,
	"struct":         STRUCT,
	"union":          UNION,
	"enum":           ENUM,
	"const":          CONST,
	"volatile":       VOLATILE,
	"restrict":       RESTRICT,
	"__restrict__":   RESTRICT,
	"signed":         SIGNED,
	"unsigned":       UNSIGNED,
	"void":           VOID,
	"char":           CHAR,
	"int":            INT,
	"short":          SHORT,
	"long":           LONG,
	"float":          FLOAT,
	"double":         DOUBLE,
	"sizeof":         SIZEOF,
	"_Static_assert": STATIC_ASSERT,
	"__near__":       NEAR,
	"__far__":        FAR,
	"__fastcall__":   FASTCALL,
	"__cdecl__":      CDECL,
	"__attribute__":  ATTRIBUTE,
}

// Keyword returns the token kind for s if s is a keyword.
func Keyword(s string) (TokenKind, bool) {
	k, ok := keywordLUT[s]
	return k, ok
}

type TokenKind uint32

func (tk TokenKind) String() string {
	if uint32(tk) >= uint32(len(tokenKindToStr)) {
		return "Unknown"
	}
	ret := tokenKindToStr[tk]
	if ret == "" {
		return "Unknown"
	}
	return ret
}

// IsOpener reports whether tk opens a bracketed group.
func (tk TokenKind) IsOpener() bool {
	return tk == LPAREN || tk == LBRACK || tk == LBRACE
}

// IsCloser reports whether tk closes a bracketed group.
func (tk TokenKind) IsCloser() bool {
	return tk == RPAREN || tk == RBRACK || tk == RBRACE
}

// Closer returns the token that closes a group opened by tk.
func (tk TokenKind) Closer() TokenKind {
	switch tk {
	case LPAREN:
		return RPAREN
	case LBRACK:
		return RBRACK
	case LBRACE:
		return RBRACE
	}
	panic("internal error - not an opening token " + tk.String())
}

type FilePos struct {
	File string
	Line int
	Col  int
}

func (pos FilePos) String() string {
	return fmt.Sprintf("%s:%d:%d", pos.File, pos.Line, pos.Col)
}

// Token represents a grouping of characters
// that provide semantic meaning in a C program.
type Token struct {
	Kind TokenKind
	Val  string
	Pos  FilePos
}

func (t Token) String() string {
	return fmt.Sprintf("%s at %s", t.Val, t.Pos)
}
