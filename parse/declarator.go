package parse

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sur5r/cc65/config"
	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/scan"
)

// MaxNesting bounds grouping parentheses and nested parameter lists.
const MaxNesting = ctype.MaxTypeLen - 2

// ErrUnpairedCloser is returned by ParseDecl when error recovery stopped at
// a closing bracket that belongs to an enclosing construct, or at a ';'
// while a bracket it skipped was still open. The caller should unwind to
// the construct that opened it.
var ErrUnpairedCloser = errors.New("stopped at unpaired closer")

// TooComplexError is returned when a declarator exceeds the capacity of a
// type encoding or the nesting limit.
type TooComplexError struct {
	Pos scan.FilePos
	// Recovery stopped at an unpaired closer.
	Ascended bool
}

func (e *TooComplexError) Error() string {
	return fmt.Sprintf("%s at %s", ctype.ErrTooComplex, e.Pos)
}

func (e *TooComplexError) Unwrap() error {
	return ctype.ErrTooComplex
}

func (e *TooComplexError) Is(target error) bool {
	return target == ErrUnpairedCloser && e.Ascended
}

// Mode says what a declarator does with its identifier.
type Mode uint8

const (
	// NeedIdent requires an identifier.
	NeedIdent Mode = iota
	// NoIdent is an abstract declarator, an identifier is discarded.
	NoIdent
	// AcceptIdent allows the identifier to be missing, as in unnamed
	// bit-fields. Pointers, groups and postfixes make it required.
	AcceptIdent
	// AcceptParamIdent allows the identifier to be missing anywhere, as in
	// parameter declarations.
	AcceptParamIdent
)

func (m Mode) String() string {
	switch m {
	case NeedIdent:
		return "need-ident"
	case NoIdent:
		return "no-ident"
	case AcceptIdent:
		return "accept-ident"
	case AcceptParamIdent:
		return "accept-param-ident"
	}
	panic(fmt.Sprintf("internal error - unknown declarator mode %d", m))
}

// paramListAllowed reports whether '(' right after a missing identifier
// may start a parameter list instead of a group.
func (m Mode) paramListAllowed() bool {
	switch m {
	case NoIdent, AcceptParamIdent:
		return true
	case NeedIdent, AcceptIdent:
		return false
	}
	panic(fmt.Sprintf("internal error - unknown declarator mode %d", m))
}

// Attribute is a parsed __attribute__ entry.
type Attribute struct {
	Name string
	Args []string
	Pos  scan.FilePos
}

// Declarator is the result of ParseDecl.
type Declarator struct {
	Storage    StorageClass
	Type       ctype.Encoding
	Ident      string
	Pos        scan.FilePos
	Attributes []Attribute
	// FieldWidth is the bit-field width, -1 when there is none.
	FieldWidth int
	// Anonymous is set when Ident was made up by the parser.
	Anonymous bool

	// Nodes produced so far and length of the specifier type, used for
	// the capacity check.
	index   int
	baseLen int
	// Where the identifier is, or where it was expected.
	identPos scan.FilePos
}

// HasAttribute reports whether the named attribute was given.
func (d *Declarator) HasAttribute(name string) bool {
	for _, a := range d.Attributes {
		if a.Name == name {
			return true
		}
	}
	return false
}

// declBreakout unwinds a declarator that is too complex.
type declBreakout struct {
	pos     scan.FilePos
	nesting int
}

func (p *Parser) tooComplex() {
	panic(declBreakout{pos: p.curt.Pos, nesting: p.nesting})
}

// need reserves room for k more nodes of d.
func (p *Parser) need(d *Declarator, k int) {
	if d.index+k+d.baseLen > ctype.MaxTypeLen-1 {
		p.tooComplex()
	}
	d.index += k
}

// enterNesting opens a bracketed group. Groups and expression operators
// share the MaxNesting bound.
func (p *Parser) enterNesting() {
	if p.nesting+p.exprDepth >= MaxNesting {
		p.tooComplex()
	}
	p.nesting++
}

// enterExpr is enterNesting for operators that recurse without brackets.
func (p *Parser) enterExpr() {
	if p.nesting+p.exprDepth >= MaxNesting {
		p.tooComplex()
	}
	p.exprDepth++
}

func (p *Parser) insert(e *ctype.Encoding, pos int, nd ctype.Node) {
	if err := e.Insert(pos, nd); err != nil {
		p.tooComplex()
	}
}

// ParseDecl parses one declarator on top of spec. Diagnostics go to the
// parser's sink. When errors occurred the tokens are skipped up to the next
// ',' or ';' of the enclosing construct, and ErrUnpairedCloser is returned
// if a closer of an enclosing construct was hit instead. A declarator that
// is too complex yields a nil Declarator and a *TooComplexError.
func (p *Parser) ParseDecl(spec *DeclSpec, mode Mode) (ret *Declarator, err error) {
	if spec.Type.Len() == 0 {
		panic("internal error - declaration specifier without type")
	}
	p.declDepth++
	nesting, exprDepth := p.nesting, p.exprDepth
	defer func() {
		p.declDepth--
		r := recover()
		if r == nil {
			return
		}
		bo, ok := r.(declBreakout)
		if !ok || p.declDepth > 0 {
			panic(r)
		}
		out := p.recoverTooComplex(bo, nesting, exprDepth, "Type")
		ret, err = nil, &TooComplexError{Pos: bo.pos, Ascended: out == Ascended}
	}()
	return p.parseDecl(spec, mode)
}

// recoverTooComplex reports a breakout and skips the rest of the construct,
// including the closers of the groups opened since the depths were saved.
func (p *Parser) recoverTooComplex(bo declBreakout, nesting, exprDepth int, what string) Outcome {
	open := bo.nesting - nesting
	p.nesting = nesting
	p.exprDepth = exprDepth
	p.errorf(bo.pos, "%s too complex", what)
	out := p.SmartErrorSkip()
	for out == Ascended && open > 0 && p.curt.Kind.IsCloser() {
		p.next()
		open--
		out = p.SmartErrorSkip()
	}
	return out
}

func (p *Parser) parseDecl(spec *DeclSpec, mode Mode) (*Declarator, error) {
	errs := p.errors
	d := &Declarator{
		Pos:        p.curt.Pos,
		FieldWidth: -1,
		baseLen:    spec.Type.Len(),
	}

	enc, mode := p.directDecl(d, mode)
	if err := enc.AppendEncoding(spec.Type); err != nil {
		p.tooComplex()
	}
	d.Type = enc
	d.Storage = spec.Storage

	if mode == NeedIdent && d.Ident == "" {
		p.errorf(d.identPos, "Identifier expected")
	}

	p.fixQualifiers(&d.Type, d.Pos)
	p.fixFunctionReturnType(&d.Type, d.Pos)
	p.checkArrayElementType(d.Type, d.Pos)

	p.parseAttributes(d)

	if d.Type.IsFunc() {
		d.Storage |= SCFunc
	} else if !d.Type.IsVoid() {
		if size := p.target.SizeOf(d.Type); size >= 0x10000 {
			if d.Ident != "" {
				p.errorf(d.Pos, "Size of '%s' is invalid (0x%06X)", d.Ident, size)
			} else {
				p.errorf(d.Pos, "Invalid size in declaration (0x%06X)", size)
			}
		}
	}

	if d.Ident != "" && spec.Flags.DefType == DefaultInt {
		warn := p.cfg.Standard.AtLeastC99() && p.cfg.Warnings.ImplicitInt
		if d.Type.IsFunc() {
			ret := d.Type.At(1)
			// Any return type of int rank counts, unsigned int included.
			if ret.Kind == ctype.Base && (ret.Prim == ctype.Int || ret.Prim == ctype.UInt) {
				if warn {
					p.warnf(d.Pos, "Implicit 'int' return type is an obsolete feature")
				}
				d.Type.At(0).Func.Flags |= ctype.FuncOldStyleIntRet
			}
		} else if d.Storage&SCTypedef == 0 && warn {
			p.warnf(d.Pos, "Implicit 'int' is an obsolete feature")
		}
	}

	if p.errors != errs {
		if spec.Flags.DefType == DefaultNone && mode == NeedIdent && d.Ident == "" {
			d.Storage |= SCFictitious
			d.Ident = p.anonName(p.levelName())
			d.Anonymous = true
		}
		if p.curt.Kind != scan.LBRACE || !d.Type.IsFunc() {
			if p.SmartErrorSkip() == Ascended {
				return d, ErrUnpairedCloser
			}
		}
	}
	return d, nil
}

// startsParamList reports whether the '(' at the current token opens a
// parameter list of an abstract declarator rather than a group.
func (p *Parser) startsParamList(mode Mode) bool {
	if !mode.paramListAllowed() {
		return false
	}
	switch k := p.nextt.Kind; {
	case k == scan.RPAREN || k == scan.ELLIPSIS:
		return true
	case isStorageKeyword(k):
		return true
	}
	return p.isTypeStart(p.nextt)
}

// directDecl parses pointers, the core and the postfixes of a declarator.
// It returns the derivations, outermost first, and the possibly upgraded
// mode.
func (p *Parser) directDecl(d *Declarator, mode Mode) (ctype.Encoding, Mode) {
	var (
		ptrs []ctype.Qualifier
		fq   ctype.Qualifier
		enc  ctype.Encoding
	)

	// Each pointer may be preceded by address size and calling convention
	// qualifiers. The ones left after the last '*' belong to a function
	// postfix.
	for {
		q := p.optionalQualifiers(ctype.QualAddrSize | ctype.QualCConv)
		if p.curt.Kind != scan.MUL {
			fq = q
			break
		}
		p.need(d, 1)
		p.next()
		if mode == AcceptIdent {
			mode = NeedIdent
		}
		q |= p.optionalQualifiers(ctype.QualCVR)
		ptrs = append(ptrs, q)
	}
	fqPos := p.curt.Pos

	switch {
	case p.curt.Kind == scan.LPAREN && !p.startsParamList(mode):
		if mode == AcceptIdent {
			mode = NeedIdent
		}
		p.enterNesting()
		p.next()
		enc, mode = p.directDecl(d, mode)
		p.expect(scan.RPAREN)
		p.nesting--
	case p.curt.Kind == scan.IDENT:
		switch mode {
		case NoIdent:
		case NeedIdent, AcceptIdent, AcceptParamIdent:
			d.Ident = p.curt.Val
			d.Pos = p.curt.Pos
		default:
			panic(fmt.Sprintf("internal error - unknown declarator mode %d", mode))
		}
		d.identPos = p.curt.Pos
		p.next()
	default:
		d.identPos = p.curt.Pos
	}

	for p.curt.Kind == scan.LPAREN || p.curt.Kind == scan.LBRACK {
		if mode == AcceptIdent && d.Ident == "" {
			mode = NeedIdent
		}
		p.need(d, 1)
		if p.curt.Kind == scan.LPAREN {
			pos := p.curt.Pos
			fd := p.parseFuncDecl()
			if fd.IsVariadic() && fq&ctype.Fastcall != 0 {
				p.errorf(pos, "Variadic functions cannot be __fastcall__")
				fq &^= ctype.Fastcall
			}
			p.insert(&enc, enc.Len(), ctype.FuncNode(fd, fq))
			fq = ctype.QualNone
			continue
		}
		if fq != ctype.QualNone {
			p.errorf(p.curt.Pos, "Invalid qualifiers for array")
			fq = ctype.QualNone
		}
		p.insert(&enc, enc.Len(), ctype.ArrayNode(p.arrayDim(d)))
	}

	for _, q := range []ctype.Qualifier{ctype.Near, ctype.Far, ctype.Fastcall, ctype.Cdecl} {
		if fq&q != 0 {
			p.errorf(fqPos, "Invalid '%s' qualifier", q)
		}
	}

	// The last '*' binds closest to the identifier.
	for i := len(ptrs) - 1; i >= 0; i-- {
		p.insert(&enc, enc.Len(), ctype.PtrNode(ptrs[i]))
	}
	return enc, mode
}

// arrayDim parses '[' constant-expression? ']'.
func (p *Parser) arrayDim(d *Declarator) int64 {
	p.enterNesting()
	p.next()
	dim := ctype.Unspecified
	if p.curt.Kind != scan.RBRACK {
		pos := p.curt.Pos
		v, _ := p.constExpr()
		if v <= 0 {
			if d.Ident != "" {
				p.errorf(pos, "Size of array '%s' is invalid", d.Ident)
			} else {
				p.errorf(pos, "Size of array is invalid")
			}
			v = 1
		}
		dim = v
	}
	p.expect(scan.RBRACK)
	p.nesting--
	return dim
}

// ParseType parses a type name, as used in casts and sizeof.
func (p *Parser) ParseType() ctype.Encoding {
	spec := &DeclSpec{Pos: p.curt.Pos}
	p.parseTypeSpec(spec, 0, DefaultNone)
	if spec.Flags.NoType {
		p.errorf(spec.Pos, "Type specifier missing")
	}
	d, err := p.ParseDecl(spec, NoIdent)
	if err != nil && d == nil {
		return ctype.Of(ctype.Int)
	}
	return d.Type
}

func (p *Parser) codeAddrSize() ctype.Qualifier {
	if p.cfg.MemoryModel == config.Far {
		return ctype.Far
	}
	return ctype.QualNone
}
