package parse

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sur5r/cc65/config"
	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/scan"
)

// Parse reads declarations from src until EOF. Function bodies and
// initializers are skipped. Syntax and type errors are reported to the sink
// and do not stop the parse, the returned error is set for lexer errors and
// when the error limit was reached.
func Parse(src TokenSource, opts ...Option) (*TranslationUnit, error) {
	p := New(src, opts...)
	tu := &TranslationUnit{Symbols: p.syms}
	p.parseTranslationUnit(tu)
	tu.Errors = p.errors
	tu.Warnings = p.warnings
	return tu, p.err
}

func (p *Parser) parseTranslationUnit(tu *TranslationUnit) {
	for p.curt.Kind != scan.EOF {
		start := p.curt
		p.parseExternalDeclaration(tu)
		// Make sure we never loop on a token.
		if p.curt == start {
			p.next()
		}
	}
}

func (p *Parser) fileDefaultType() DefaultType {
	if p.cfg.Standard == config.C23 {
		return DefaultInferred
	}
	return DefaultInt
}

func (p *Parser) parseExternalDeclaration(tu *TranslationUnit) {
	switch k := p.curt.Kind; {
	case k == scan.SEMICOLON:
		p.next()
		return
	case k == scan.STATIC_ASSERT:
		p.parseStaticAssert()
		return
	case k.IsCloser():
		p.errorf(p.curt.Pos, "Unexpected %s", k)
		p.next()
		return
	}

	decl := &Declaration{Pos: p.curt.Pos}
	decl.Spec = p.ParseDeclSpec(AllowStorage|AllowFuncSpec, p.fileDefaultType(), SCExtern)
	tu.Decls = append(tu.Decls, decl)

	if p.curt.Kind == scan.SEMICOLON {
		p.CheckEmptyDecl(decl.Spec)
		p.next()
		return
	}

	firstDecl := true
	for {
		d, err := p.ParseDecl(decl.Spec, NeedIdent)
		if d != nil {
			decl.Decls = append(decl.Decls, d)
			decl.Inits = append(decl.Inits, false)
			p.declare(d)
		}
		if errors.Is(err, ErrUnpairedCloser) {
			// The closer is reported by the caller.
			return
		}
		if d == nil {
			if p.curt.Kind == scan.COMMA {
				p.next()
				firstDecl = false
				continue
			}
			break
		}

		if firstDecl && d.Type.IsFunc() && p.curt.Kind == scan.LBRACE {
			decl.Body = true
			p.skipGroup()
			return
		}

		hasInit := false
		if p.curt.Kind == scan.ASSIGN {
			p.next()
			hasInit = true
			decl.Inits[len(decl.Inits)-1] = true
			p.SmartErrorSkip()
		}
		p.checkInferred(d, hasInit)

		if p.curt.Kind != scan.COMMA {
			break
		}
		p.next()
		firstDecl = false
	}
	if p.curt.Kind == scan.SEMICOLON {
		p.next()
		return
	}
	p.errorf(p.curt.Pos, "';' expected")
	for p.SmartErrorSkip() == Resynced && p.curt.Kind == scan.COMMA {
		p.next()
	}
	if p.curt.Kind == scan.SEMICOLON {
		p.next()
	}
}

// checkInferred checks a declarator whose type is to be inferred from its
// initializer.
func (p *Parser) checkInferred(d *Declarator, hasInit bool) {
	if d.Type.Base().Prim != ctype.Inferred || d.Type.Base().Kind != ctype.Base {
		return
	}
	if d.Type.Derivations() != 0 {
		p.errorf(d.Pos, "'auto' type inference cannot be used with a derived type")
		return
	}
	if !hasInit && d.Storage&SCTypedef == 0 {
		p.errorf(d.Pos, "'auto' type inference requires an initializer")
	}
}

// declare adds a declarator to the symbol table.
func (p *Parser) declare(d *Declarator) {
	if d.Storage&SCFictitious != 0 || d.Ident == "" {
		return
	}
	kind := SymObject
	switch {
	case d.Storage&SCTypedef != 0:
		kind = SymTypedef
	case d.Type.IsFunc():
		kind = SymFunction
	case d.Storage&SCInline != 0:
		p.errorf(d.Pos, "'inline' on non-function declaration")
	}
	sym := &Symbol{
		Name:    d.Ident,
		Kind:    kind,
		Type:    d.Type,
		Storage: d.Storage,
		Pos:     d.Pos,
	}
	if err := p.syms.Define(sym); err != nil {
		p.errorf(d.Pos, "%s", err)
		return
	}
	p.log.WithFields(logrus.Fields{
		"name": d.Ident,
		"kind": kind.String(),
		"type": d.Type.Declare(""),
	}).Debug("declared")
}
