package parse

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sur5r/cc65/config"
	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/report"
	"github.com/sur5r/cc65/scan"
)

// TokenSource is a pull based token stream. scan.Lexer and scan.TokenList
// both satisfy it.
type TokenSource interface {
	Next() (*scan.Token, error)
}

// ErrTooManyErrors stops a parse once the configured error limit is hit.
var ErrTooManyErrors = errors.New("too many errors")

// Parser turns tokens into declarations. A Parser is not safe for
// concurrent use.
type Parser struct {
	src         TokenSource
	curt, nextt *scan.Token

	cfg    *config.Config
	sink   report.Sink
	syms   SymbolTable
	target *ctype.Target
	log    logrus.FieldLogger

	// Sticky fatal error. Once set the token stream is at EOF.
	err      error
	errors   int
	warnings int

	// Open '(' and '[' of the declarator or expression being parsed.
	nesting int
	// Operators of a constant expression whose operand is being parsed.
	exprDepth int
	// Depth of ParseDecl calls, only the outermost recovers from
	// capacity errors.
	declDepth int
	// Depth of struct and union bodies being parsed.
	structDepth int
	anonCount   int
}

type Option func(*Parser)

func WithConfig(c *config.Config) Option {
	return func(p *Parser) {
		p.cfg = c
	}
}

func WithSink(s report.Sink) Option {
	return func(p *Parser) {
		p.sink = s
	}
}

func WithSymbols(s SymbolTable) Option {
	return func(p *Parser) {
		p.syms = s
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Parser) {
		p.log = l
	}
}

func WithTarget(t *ctype.Target) Option {
	return func(p *Parser) {
		p.target = t
	}
}

// New returns a parser positioned at the first token of src.
func New(src TokenSource, opts ...Option) *Parser {
	p := &Parser{
		src:    src,
		cfg:    config.Default(),
		sink:   report.Discard,
		target: ctype.Target6502,
		log:    logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(p)
	}
	if p.syms == nil {
		p.syms = NewScopes()
	}
	p.next()
	p.next()
	return p
}

// Err returns the fatal error that stopped the parse, if any.
func (p *Parser) Err() error {
	return p.err
}

// Errors returns the number of error diagnostics reported so far.
func (p *Parser) Errors() int {
	return p.errors
}

func (p *Parser) Warnings() int {
	return p.warnings
}

// Symbols returns the symbol table the parser fills.
func (p *Parser) Symbols() SymbolTable {
	return p.syms
}

// Current returns the current token.
func (p *Parser) Current() *scan.Token {
	return p.curt
}

// Peek returns the token after the current one.
func (p *Parser) Peek() *scan.Token {
	return p.nextt
}

// Next advances to the next token.
func (p *Parser) Next() {
	p.next()
}

func (p *Parser) eofAfter(t *scan.Token) *scan.Token {
	var pos scan.FilePos
	if t != nil {
		pos = t.Pos
	}
	return &scan.Token{Kind: scan.EOF, Pos: pos}
}

func (p *Parser) next() {
	p.curt = p.nextt
	if p.err != nil {
		p.nextt = p.eofAfter(p.curt)
		return
	}
	t, err := p.src.Next()
	if err != nil {
		p.fail(err)
		t = p.eofAfter(p.curt)
	}
	p.nextt = t
}

// fail records a fatal error and ends the token stream.
func (p *Parser) fail(err error) {
	if p.err != nil {
		return
	}
	p.err = errors.WithStack(err)
	p.log.WithError(err).Debug("parse stopped")
	if p.curt != nil {
		p.curt = p.eofAfter(p.curt)
		p.nextt = p.curt
	}
}

// errorf reports an error. Nothing is reported once the parse was stopped.
func (p *Parser) errorf(pos scan.FilePos, m string, vals ...interface{}) {
	if p.err != nil {
		return
	}
	p.errors++
	p.sink.Report(report.Diagnostic{
		Severity: report.Error,
		Pos:      pos,
		Msg:      fmt.Sprintf(m, vals...),
	})
	if p.cfg.MaxErrors > 0 && p.errors >= p.cfg.MaxErrors {
		p.fail(scan.ErrWithLoc(ErrTooManyErrors, pos))
	}
}

func (p *Parser) warnf(pos scan.FilePos, m string, vals ...interface{}) {
	if p.err != nil {
		return
	}
	p.warnings++
	p.sink.Report(report.Diagnostic{
		Severity: report.Warning,
		Pos:      pos,
		Msg:      fmt.Sprintf(m, vals...),
	})
}

// expect consumes a token of kind k or reports it missing.
func (p *Parser) expect(k scan.TokenKind) bool {
	if p.curt.Kind != k {
		p.errorf(p.curt.Pos, "%s expected", k)
		return false
	}
	p.next()
	return true
}

// anonName returns a name that cannot clash with user identifiers.
func (p *Parser) anonName(kind string) string {
	p.anonCount++
	return fmt.Sprintf("$anon-%s-%04X", kind, p.anonCount)
}

func isAnonName(name string) bool {
	return len(name) > 0 && name[0] == '$'
}

func (p *Parser) levelName() string {
	switch {
	case p.structDepth > 0:
		return "field"
	case p.syms.Level() == 0:
		return "global"
	}
	return "param"
}

func (p *Parser) isTypedefName(name string) bool {
	sym := p.syms.Lookup(name)
	return sym != nil && sym.Kind == SymTypedef
}

// isTypeStart reports whether t can start a type name.
func (p *Parser) isTypeStart(t *scan.Token) bool {
	switch t.Kind {
	case scan.VOID, scan.CHAR, scan.SHORT, scan.INT, scan.LONG, scan.FLOAT,
		scan.DOUBLE, scan.SIGNED, scan.UNSIGNED, scan.STRUCT, scan.UNION,
		scan.ENUM, scan.CONST, scan.VOLATILE, scan.RESTRICT:
		return true
	case scan.IDENT:
		return p.isTypedefName(t.Val)
	}
	return false
}

func isStorageKeyword(k scan.TokenKind) bool {
	switch k {
	case scan.AUTO, scan.REGISTER, scan.EXTERN, scan.STATIC, scan.TYPEDEF, scan.INLINE:
		return true
	}
	return false
}

// startsDeclSpec reports whether the current token begins a declaration.
func (p *Parser) startsDeclSpec() bool {
	return isStorageKeyword(p.curt.Kind) || p.isTypeStart(p.curt)
}
