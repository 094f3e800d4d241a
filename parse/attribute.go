package parse

import (
	"strings"

	"github.com/sur5r/cc65/scan"
)

// parseAttributes parses any number of
//
//	__attribute__((name, name(args...), ...))
//
// and adds the entries to d. Arguments are kept as token text.
func (p *Parser) parseAttributes(d *Declarator) {
	for p.curt.Kind == scan.ATTRIBUTE {
		p.next()
		if !p.expect(scan.LPAREN) || !p.expect(scan.LPAREN) {
			return
		}
		for p.curt.Kind != scan.RPAREN {
			name, ok := attributeName(p.curt)
			if !ok {
				p.errorf(p.curt.Pos, "Attribute name expected")
				return
			}
			attr := Attribute{Name: name, Pos: p.curt.Pos}
			p.next()
			if p.curt.Kind == scan.LPAREN {
				args, ok := p.attributeArgs()
				if !ok {
					return
				}
				attr.Args = args
			}
			d.Attributes = append(d.Attributes, attr)
			if p.curt.Kind != scan.COMMA {
				break
			}
			p.next()
		}
		if !p.expect(scan.RPAREN) || !p.expect(scan.RPAREN) {
			return
		}
	}
}

// attributeName accepts identifiers and keywords, so that names like
// "const" work.
func attributeName(t *scan.Token) (string, bool) {
	if t.Kind == scan.IDENT {
		return t.Val, true
	}
	if _, ok := scan.Keyword(t.Val); ok {
		return t.Val, true
	}
	return "", false
}

// attributeArgs parses a parenthesized, comma separated argument list.
func (p *Parser) attributeArgs() ([]string, bool) {
	p.next()
	var (
		args  []string
		parts []string
		depth int
	)
	for {
		t := p.curt
		switch {
		case t.Kind == scan.EOF:
			p.errorf(t.Pos, "%s expected", scan.TokenKind(scan.RPAREN))
			return nil, false
		case t.Kind == scan.RPAREN && depth == 0:
			if len(parts) > 0 {
				args = append(args, strings.Join(parts, " "))
			}
			p.next()
			return args, true
		case t.Kind == scan.COMMA && depth == 0:
			args = append(args, strings.Join(parts, " "))
			parts = nil
		default:
			if t.Kind.IsOpener() {
				depth++
			} else if t.Kind.IsCloser() {
				depth--
			}
			parts = append(parts, t.Val)
		}
		p.next()
	}
}
