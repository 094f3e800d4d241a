package parse

import (
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/sur5r/cc65/scan"
)

// Outcome is the result of error recovery.
type Outcome int

const (
	// Resynced means the parser stopped at a ',' or ';' outside of
	// brackets, or right after a balanced '}' group. Neither ',' nor ';'
	// is consumed.
	Resynced Outcome = iota
	// Ascended means the parser stopped at a closer that belongs to an
	// enclosing construct, at a ';' inside a group the skip opened, or at
	// EOF. The stopping token is not consumed.
	Ascended
)

func (o Outcome) String() string {
	if o == Resynced {
		return "resynced"
	}
	return "ascended"
}

// SmartErrorSkip skips tokens after an error. Bracketed groups are skipped
// as a whole.
func (p *Parser) SmartErrorSkip() Outcome {
	open := arraystack.New()
	for {
		k := p.curt.Kind
		switch {
		case k == scan.EOF:
			return Ascended
		case k == scan.SEMICOLON:
			// A group left open at a ';' was never closed.
			if !open.Empty() {
				return Ascended
			}
			return Resynced
		case k == scan.COMMA && open.Empty():
			return Resynced
		case k.IsOpener():
			open.Push(k.Closer())
			p.next()
		case k.IsCloser():
			want, ok := open.Peek()
			if !ok || want.(scan.TokenKind) != k {
				return Ascended
			}
			open.Pop()
			p.next()
			if k == scan.RBRACE && open.Empty() {
				return Resynced
			}
		default:
			p.next()
		}
	}
}

// skipGroup consumes a bracketed group starting at the current opener,
// as in a function body. ';' does not stop it.
func (p *Parser) skipGroup() {
	start := p.curt
	open := arraystack.New()
	for {
		k := p.curt.Kind
		switch {
		case k == scan.EOF:
			if want, ok := open.Peek(); ok {
				p.errorf(start.Pos, "%s expected", want.(scan.TokenKind))
			}
			return
		case k.IsOpener():
			open.Push(k.Closer())
		case k.IsCloser():
			want, ok := open.Peek()
			if !ok {
				return
			}
			// Groups left open inside are closed by k.
			for ok && want.(scan.TokenKind) != k {
				p.errorf(p.curt.Pos, "%s expected", want.(scan.TokenKind))
				open.Pop()
				want, ok = open.Peek()
			}
			open.Pop()
		}
		p.next()
		if open.Empty() {
			return
		}
	}
}
