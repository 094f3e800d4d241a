package scan

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Lexer reads tokens from already preprocessed source text. Lines starting
// with '#' are preprocessor line markers and are skipped.
//
// Tokens are produced on demand by Next, there is no lookahead buffering
// beyond a single rune.
type Lexer struct {
	brdr      *bufio.Reader
	pos       FilePos
	lastPos   FilePos
	markedPos FilePos
	lastChar  rune
	// At the beginning on line not including whitespace.
	bol bool
	// Set to true if we have hit the end of file.
	eof bool
	// Sticky error, once set every call to Next fails.
	err error
}

type lexBreakout struct {
	err error
}

// Lex returns a lexer reading the contents of r.
// fname is used for error messages when showing the source location.
func Lex(fname string, r io.Reader) *Lexer {
	lx := new(Lexer)
	lx.pos.File = fname
	lx.pos.Line = 1
	lx.pos.Col = 1
	lx.markedPos = lx.pos
	lx.lastPos = lx.pos
	lx.brdr = bufio.NewReader(r)
	lx.bol = true
	return lx
}

// LexString is a convenience wrapper reading all tokens of src up to and
// including EOF.
func LexString(fname, src string) ([]*Token, error) {
	lx := Lex(fname, strings.NewReader(src))
	var toks []*Token
	for {
		t, err := lx.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Kind == EOF {
			return toks, nil
		}
	}
}

// Next returns the next token. After the end of input it keeps returning
// EOF tokens.
func (lx *Lexer) Next() (tok *Token, err error) {
	if lx.err != nil {
		return &Token{Kind: ERROR, Val: lx.err.Error(), Pos: lx.pos}, lx.err
	}
	defer func() {
		if e := recover(); e != nil {
			b := e.(lexBreakout) // Will re-panic if not a breakout.
			lx.err = b.err
			tok = &Token{Kind: ERROR, Val: b.err.Error(), Pos: lx.markedPos}
			err = b.err
		}
	}()
	for {
		tok = lx.lexOne()
		if tok != nil {
			return tok, nil
		}
	}
}

func (lx *Lexer) markPos() {
	lx.markedPos = lx.pos
}

func (lx *Lexer) makeTok(kind TokenKind, val string) *Token {
	lx.bol = false
	return &Token{
		Kind: kind,
		Val:  val,
		Pos:  lx.markedPos,
	}
}

func (lx *Lexer) unreadRune() {
	lx.pos = lx.lastPos
	if lx.lastChar == '\n' {
		lx.bol = false
	}
	if lx.eof {
		return
	}
	_ = lx.brdr.UnreadRune()
}

func (lx *Lexer) readRune() (rune, bool) {
	r, _, err := lx.brdr.ReadRune()
	lx.lastPos = lx.pos
	if err != nil {
		if err == io.EOF {
			lx.eof = true
			lx.lastChar = 0
			return 0, true
		}
		lx.error(err.Error())
	}
	switch r {
	case '\n':
		lx.pos.Line += 1
		lx.pos.Col = 1
		lx.bol = true
	case '\t':
		lx.pos.Col += 4
	default:
		lx.pos.Col += 1
	}
	lx.lastChar = r
	return r, false
}

func (lx *Lexer) error(e string) {
	panic(lexBreakout{ErrWithLoc(errors.New(e), lx.pos)})
}

// twoChar handles a token that may be followed by one of several second
// characters, e.g. '<' '<<' '<='.
func (lx *Lexer) twoChar(single TokenKind, singleVal string, pairs map[rune]TokenKind) *Token {
	second, eof := lx.readRune()
	if !eof {
		if k, ok := pairs[second]; ok {
			return lx.makeTok(k, singleVal+string(second))
		}
	}
	lx.unreadRune()
	return lx.makeTok(single, singleVal)
}

// lexOne reads a single token, returning nil for whitespace, comments and
// line markers.
func (lx *Lexer) lexOne() *Token {
	atLineStart := lx.bol
	lx.markPos()
	first, eof := lx.readRune()
	if eof {
		return lx.makeTok(EOF, "")
	}
	switch {
	case isAlpha(first) || first == '_':
		lx.unreadRune()
		return lx.readIdentOrKeyword()
	case isNumeric(first):
		lx.unreadRune()
		return lx.readNumber(false)
	case isWhiteSpace(first):
		lx.skipWhiteSpace()
		if first == '\n' || atLineStart {
			lx.bol = true
		}
		return nil
	}
	switch first {
	case '#':
		if !atLineStart {
			lx.error("stray '#' in program")
		}
		lx.skipLine()
		return nil
	case '!':
		return lx.twoChar(NOT, "!", map[rune]TokenKind{'=': NEQ})
	case '?':
		return lx.makeTok(QUESTION, "?")
	case ':':
		return lx.makeTok(COLON, ":")
	case '\'':
		lx.unreadRune()
		return lx.readQuoted('\'', CHAR_CONSTANT)
	case '"':
		lx.unreadRune()
		return lx.readQuoted('"', STRING)
	case '(':
		return lx.makeTok(LPAREN, "(")
	case ')':
		return lx.makeTok(RPAREN, ")")
	case '{':
		return lx.makeTok(LBRACE, "{")
	case '}':
		return lx.makeTok(RBRACE, "}")
	case '[':
		return lx.makeTok(LBRACK, "[")
	case ']':
		return lx.makeTok(RBRACK, "]")
	case '<':
		t := lx.twoChar(LSS, "<", map[rune]TokenKind{'<': SHL, '=': LEQ})
		if t.Kind == SHL {
			return lx.assignForm(t, SHL_ASSIGN)
		}
		return t
	case '>':
		t := lx.twoChar(GTR, ">", map[rune]TokenKind{'>': SHR, '=': GEQ})
		if t.Kind == SHR {
			return lx.assignForm(t, SHR_ASSIGN)
		}
		return t
	case '+':
		return lx.twoChar(ADD, "+", map[rune]TokenKind{'+': INC, '=': ADD_ASSIGN})
	case '-':
		return lx.twoChar(SUB, "-", map[rune]TokenKind{'>': ARROW, '-': DEC, '=': SUB_ASSIGN})
	case '*':
		return lx.twoChar(MUL, "*", map[rune]TokenKind{'=': MUL_ASSIGN})
	case '%':
		return lx.twoChar(REM, "%", map[rune]TokenKind{'=': REM_ASSIGN})
	case '^':
		return lx.twoChar(XOR, "^", map[rune]TokenKind{'=': XOR_ASSIGN})
	case '|':
		return lx.twoChar(OR, "|", map[rune]TokenKind{'|': LOR, '=': OR_ASSIGN})
	case '&':
		return lx.twoChar(AND, "&", map[rune]TokenKind{'&': LAND, '=': AND_ASSIGN})
	case '=':
		return lx.twoChar(ASSIGN, "=", map[rune]TokenKind{'=': EQL})
	case '~':
		return lx.makeTok(BNOT, "~")
	case ',':
		return lx.makeTok(COMMA, ",")
	case ';':
		return lx.makeTok(SEMICOLON, ";")
	case '.':
		second, eof := lx.readRune()
		if !eof && isNumeric(second) {
			lx.unreadRune()
			return lx.readNumber(true)
		}
		if !eof && second == '.' {
			third, _ := lx.readRune()
			if third != '.' {
				lx.error("unexpected '..'")
			}
			return lx.makeTok(ELLIPSIS, "...")
		}
		lx.unreadRune()
		return lx.makeTok(PERIOD, ".")
	case '\\':
		r, _ := lx.readRune()
		if r == '\n' {
			return nil
		}
		lx.error("misplaced '\\'.")
	case '/':
		second, eof := lx.readRune()
		switch {
		case !eof && second == '*':
			lx.skipBlockComment()
			return nil
		case !eof && second == '/':
			lx.skipLine()
			return nil
		case !eof && second == '=':
			return lx.makeTok(QUO_ASSIGN, "/=")
		}
		lx.unreadRune()
		return lx.makeTok(QUO, "/")
	}
	lx.error(fmt.Sprintf("bad character '%c'", first))
	panic("unreachable")
}

// assignForm upgrades '<<' and '>>' to their compound assignment form.
func (lx *Lexer) assignForm(t *Token, k TokenKind) *Token {
	r, eof := lx.readRune()
	if !eof && r == '=' {
		t.Kind = k
		t.Val += "="
		return t
	}
	lx.unreadRune()
	return t
}

func (lx *Lexer) skipBlockComment() {
	for {
		c, eof := lx.readRune()
		if eof {
			lx.error("unclosed comment.")
		}
		if c != '*' {
			continue
		}
		closeBar, eof := lx.readRune()
		if eof {
			lx.error("unclosed comment.")
		}
		if closeBar == '/' {
			return
		}
		// Unread so that we dont lose newlines.
		lx.unreadRune()
	}
}

func (lx *Lexer) skipLine() {
	for {
		c, eof := lx.readRune()
		if c == '\n' || eof {
			return
		}
	}
}

func (lx *Lexer) skipWhiteSpace() {
	for {
		r, eof := lx.readRune()
		if eof {
			return
		}
		if !isWhiteSpace(r) {
			lx.unreadRune()
			return
		}
	}
}

func (lx *Lexer) readIdentOrKeyword() *Token {
	var buff bytes.Buffer
	lx.markPos()
	first, _ := lx.readRune()
	if !isValidIdentStart(first) {
		panic("internal error")
	}
	buff.WriteRune(first)
	for {
		b, eof := lx.readRune()
		if !eof && isValidIdentTail(b) {
			buff.WriteRune(b)
			continue
		}
		lx.unreadRune()
		str := buff.String()
		tokType, ok := keywordLUT[str]
		if !ok {
			tokType = IDENT
		}
		return lx.makeTok(tokType, str)
	}
}

// readNumber reads an integer or floating constant. The characters are
// gathered greedily and validated afterwards.
func (lx *Lexer) readNumber(startedWithPeriod bool) *Token {
	var buff bytes.Buffer
	kind := TokenKind(INT_CONSTANT)
	if startedWithPeriod {
		buff.WriteRune('.')
		kind = FLOAT_CONSTANT
	}
	for {
		r, eof := lx.readRune()
		if eof {
			break
		}
		if r == '.' {
			kind = FLOAT_CONSTANT
			buff.WriteRune(r)
			continue
		}
		if !isValidIdentTail(r) {
			lx.unreadRune()
			break
		}
		buff.WriteRune(r)
		if (r == 'e' || r == 'E') && !isHexPrefixed(buff.String()) {
			kind = FLOAT_CONSTANT
			sign, eof := lx.readRune()
			if !eof && (sign == '+' || sign == '-') {
				buff.WriteRune(sign)
			} else {
				lx.unreadRune()
			}
		}
	}
	s := buff.String()
	if kind == INT_CONSTANT {
		if _, err := ParseInt(s); err != nil {
			lx.error(fmt.Sprintf("invalid integer constant '%s'", s))
		}
	} else {
		if _, err := strconv.ParseFloat(strings.TrimRight(s, "fFlL"), 64); err != nil {
			lx.error(fmt.Sprintf("invalid floating point constant '%s'", s))
		}
	}
	return lx.makeTok(kind, s)
}

// ParseInt converts the text of an INT_CONSTANT token to its value,
// ignoring any u/l suffixes.
func ParseInt(s string) (int64, error) {
	digits := strings.TrimRight(s, "uUlL")
	if digits == "" || strings.ContainsRune(digits, '_') {
		return 0, errors.Errorf("invalid integer constant '%s'", s)
	}
	v, err := strconv.ParseUint(digits, 0, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer constant '%s'", s)
	}
	return int64(v), nil
}

// ParseChar converts the text of a CHAR_CONSTANT token, quotes included,
// to its value.
func ParseChar(s string) (int64, error) {
	if len(s) < 3 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return 0, errors.Errorf("invalid character constant %s", s)
	}
	body := s[1 : len(s)-1]
	if body == "\"" {
		return '"', nil
	}
	if len(body) >= 2 && body[0] == '\\' && body[1] >= '0' && body[1] <= '7' {
		// C allows one to three octal digits, '\0' being the common case.
		if len(body) > 4 {
			return 0, errors.Errorf("invalid character constant %s", s)
		}
		v, err := strconv.ParseUint(body[1:], 8, 8)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid character constant %s", s)
		}
		return int64(v), nil
	}
	v, _, tail, err := strconv.UnquoteChar(body, '\'')
	if err != nil || tail != "" {
		return 0, errors.Errorf("invalid character constant %s", s)
	}
	return int64(v), nil
}

// readQuoted reads a string or character literal including its quotes.
// Escaped newlines are line continuations and are dropped.
func (lx *Lexer) readQuoted(quote rune, kind TokenKind) *Token {
	const (
		START = iota
		MID
		ESCAPED
		END
	)
	var buff bytes.Buffer
	var state int
	lx.markPos()
	for state != END {
		r, eof := lx.readRune()
		if eof {
			lx.error(fmt.Sprintf("eof in %s literal", kind))
		}
		switch state {
		case START:
			if r != quote {
				lx.error("internal error")
			}
			buff.WriteRune(r)
			state = MID
		case MID:
			switch r {
			case '\\':
				state = ESCAPED
			case '\n':
				lx.error(fmt.Sprintf("newline in %s literal", kind))
			case quote:
				buff.WriteRune(r)
				state = END
			default:
				buff.WriteRune(r)
			}
		case ESCAPED:
			switch r {
			case '\r':
				// empty
			case '\n':
				state = MID
			default:
				buff.WriteRune('\\')
				buff.WriteRune(r)
				state = MID
			}
		}
	}
	return lx.makeTok(kind, buff.String())
}

func isHexPrefixed(s string) bool {
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

func isValidIdentTail(b rune) bool {
	return isValidIdentStart(b) || isNumeric(b) || b == '$'
}

func isValidIdentStart(b rune) bool {
	return b == '_' || isAlpha(b)
}

func isAlpha(b rune) bool {
	if b >= 'a' && b <= 'z' {
		return true
	}
	if b >= 'A' && b <= 'Z' {
		return true
	}
	return false
}

func isWhiteSpace(b rune) bool {
	return b == ' ' || b == '\r' || b == '\n' || b == '\t' || b == '\f'
}

func isNumeric(b rune) bool {
	if b >= '0' && b <= '9' {
		return true
	}
	return false
}
