package parse

import (
	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/scan"
)

// parseFuncDecl parses a parameter list starting at '('. Parameters live in
// their own scope which is left again at the closing ')'.
func (p *Parser) parseFuncDecl() *ctype.FuncDesc {
	fd := &ctype.FuncDesc{}
	p.enterNesting()
	p.next()
	p.syms.Enter()
	defer p.syms.Leave()

	switch {
	case p.curt.Kind == scan.RPAREN:
		fd.Flags |= ctype.FuncEmpty
	case p.curt.Kind == scan.VOID && p.nextt.Kind == scan.RPAREN:
		p.next()
		fd.Flags |= ctype.FuncVoidParam
	case p.curt.Kind == scan.IDENT && (p.nextt.Kind == scan.COMMA || p.nextt.Kind == scan.RPAREN) &&
		!p.isTypedefName(p.curt.Val):
		fd.Flags |= ctype.FuncOldStyle
	}

	if fd.Flags&ctype.FuncOldStyle != 0 {
		p.parseOldStyleParams(fd)
	} else {
		p.parseAnsiParams(fd)
	}
	p.nesting--
	return fd
}

func (p *Parser) decay(e ctype.Encoding) ctype.Encoding {
	ret, err := e.Decay()
	if err != nil {
		p.tooComplex()
	}
	return ret
}

func (p *Parser) parseAnsiParams(fd *ctype.FuncDesc) {
	for p.curt.Kind != scan.RPAREN && p.curt.Kind != scan.EOF {
		errs := p.errors

		if p.curt.Kind == scan.ELLIPSIS {
			p.next()
			fd.Flags |= ctype.FuncVariadic
			break
		}

		spec := p.ParseDeclSpec(AllowStorage, DefaultNone, SCAuto)
		if sc := spec.Storage.Class(); sc != SCAuto && sc != SCRegister {
			p.errorf(spec.Pos, "Illegal storage class")
		}
		if spec.Flags.NoType {
			p.errorf(spec.Pos, "Type specifier missing")
		}
		if spec.Flags.NewTypeDecl {
			p.warnf(spec.Pos, "'%s' will be invisible out of this function", spec.Type.Declare(""))
		}

		d, err := p.ParseDecl(spec, AcceptParamIdent)
		if d == nil {
			break
		}
		if d.Ident == "" {
			d.Ident = p.anonName("param")
			d.Anonymous = true
			fd.Flags |= ctype.FuncUnnamedParams
		}

		if d.Type.IsVoid() && d.Type.Len() == 1 {
			p.errorf(d.Pos, "'void' must be the only parameter")
		}
		typ := p.decay(d.Type)
		if p.cfg.Warnings.StructParam && typ.IsStructOrUnion() {
			p.warnf(d.Pos, "Passing struct by value for parameter '%s'", d.Ident)
		}
		fd.Params = append(fd.Params, ctype.Param{
			Name:      d.Ident,
			Type:      typ,
			Anonymous: d.Anonymous,
		})
		if !d.Anonymous {
			sym := &Symbol{
				Name:    d.Ident,
				Kind:    SymParam,
				Type:    typ,
				Storage: d.Storage | SCParam | SCDef,
				Pos:     d.Pos,
			}
			if err := p.syms.Define(sym); err != nil {
				p.errorf(d.Pos, "%s", err)
			}
		}

		if err != nil {
			break
		}
		if p.errors != errs && p.SmartErrorSkip() == Ascended {
			break
		}
		if p.curt.Kind != scan.COMMA {
			break
		}
		p.next()
	}
	p.expect(scan.RPAREN)
}

func (p *Parser) parseOldStyleParams(fd *ctype.FuncDesc) {
	errs := p.errors
	for p.curt.Kind != scan.RPAREN && p.curt.Kind != scan.EOF {
		if p.curt.Kind == scan.IDENT {
			sym := &Symbol{
				Name:        p.curt.Val,
				Kind:        SymParam,
				Type:        ctype.Of(ctype.Int),
				Storage:     SCAuto | SCParam | SCDef,
				Pos:         p.curt.Pos,
				DefaultType: true,
			}
			if err := p.syms.Define(sym); err != nil {
				p.errorf(sym.Pos, "%s", err)
			} else {
				fd.Params = append(fd.Params, ctype.Param{Name: sym.Name, Type: sym.Type})
			}
			p.next()
		} else {
			p.errorf(p.curt.Pos, "Identifier expected for parameter name")
			if p.SmartErrorSkip() == Ascended {
				break
			}
		}
		if p.curt.Kind != scan.COMMA {
			break
		}
		p.next()
	}
	p.expect(scan.RPAREN)

	// The declaration list of a definition.
	for p.curt.Kind != scan.LBRACE && p.startsDeclSpec() {
		spec := p.ParseDeclSpec(AllowStorage, DefaultNone, SCAuto)
		if sc := spec.Storage.Class(); sc != SCAuto && sc != SCRegister {
			p.errorf(spec.Pos, "Illegal storage class")
		}
		if spec.Flags.NoType {
			p.errorf(spec.Pos, "Expected declaration specifiers")
			break
		}
		if spec.Flags.NewTypeDecl {
			p.warnf(spec.Pos, "'%s' will be invisible out of this function", spec.Type.Declare(""))
		}
		for {
			d, err := p.ParseDecl(spec, NeedIdent)
			if d == nil {
				break
			}
			if !d.Anonymous {
				p.declareOldStyleParam(fd, d)
			}
			if err != nil || p.curt.Kind != scan.COMMA {
				break
			}
			p.next()
		}
		if !p.expect(scan.SEMICOLON) {
			break
		}
	}

	if p.errors != errs && p.curt.Kind != scan.LBRACE {
		p.SmartErrorSkip()
	}
}

func (p *Parser) declareOldStyleParam(fd *ctype.FuncDesc, d *Declarator) {
	sym := p.syms.LookupLocal(d.Ident)
	if sym == nil || sym.Kind != SymParam {
		p.errorf(d.Pos, "Unknown identifier: '%s'", d.Ident)
		return
	}
	if !sym.DefaultType {
		p.errorf(d.Pos, "Redefinition for parameter '%s'", d.Ident)
		return
	}
	sym.Type = p.decay(d.Type)
	sym.DefaultType = false
	sym.Storage = d.Storage | SCParam | SCDef
	for i := range fd.Params {
		if fd.Params[i].Name == d.Ident {
			fd.Params[i].Type = sym.Type
		}
	}
}
