package parse

import (
	"math"

	"github.com/sur5r/cc65/config"
	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/scan"
)

const charBits = 8

// parseTagSpec parses a struct, union or enum specifier, with or without a
// body, and returns the tag it names.
func (p *Parser) parseTagSpec(spec *DeclSpec) *ctype.Tag {
	kind := ctype.Struct
	switch p.curt.Kind {
	case scan.UNION:
		kind = ctype.Union
	case scan.ENUM:
		kind = ctype.Enum
	}
	pos := p.curt.Pos
	p.next()
	spec.Flags.TagRef = true

	name, anon := "", false
	if p.curt.Kind == scan.IDENT {
		name = p.curt.Val
		p.next()
	} else {
		if kind == ctype.Enum && p.curt.Kind != scan.LBRACE {
			p.errorf(p.curt.Pos, "Identifier expected for enum tag name")
		}
		name = p.anonName(kind.String())
		anon = true
	}

	if p.curt.Kind != scan.LBRACE {
		return p.referenceTag(spec, name, anon, kind, pos)
	}

	tag := p.syms.LookupLocalTag(name)
	switch {
	case tag == nil:
	case tag.Kind != kind:
		p.errorf(pos, "Symbol '%s' is already different kind", name)
		tag = nil
	case tag.Defined:
		p.errorf(pos, "Multiple definition for '%s'", tag)
		tag = nil
	}
	if tag == nil {
		tag = &ctype.Tag{Name: name, Kind: kind, Anonymous: anon}
		if p.syms.LookupLocalTag(name) == nil {
			if err := p.syms.DefineTag(tag); err != nil {
				p.errorf(pos, "%s", err)
			}
		}
		spec.Flags.NewTypeDecl = true
	}
	spec.Flags.NewTypeDef = true

	switch kind {
	case ctype.Enum:
		p.parseEnumBody(tag)
	case ctype.Struct:
		p.parseStructBody(tag)
	case ctype.Union:
		p.parseUnionBody(tag)
	}
	return tag
}

// referenceTag handles a tag without a body. An unknown tag is declared as
// incomplete in the current scope.
func (p *Parser) referenceTag(spec *DeclSpec, name string, anon bool, kind ctype.Primitive, pos scan.FilePos) *ctype.Tag {
	tag := p.syms.LookupTag(name)
	if tag != nil {
		if tag.Kind != kind {
			p.errorf(pos, "Symbol '%s' is already different kind", name)
			return &ctype.Tag{Name: name, Kind: kind, Fictitious: true}
		}
		return tag
	}
	tag = &ctype.Tag{Name: name, Kind: kind, Anonymous: anon}
	if err := p.syms.DefineTag(tag); err != nil {
		p.errorf(pos, "%s", err)
	}
	spec.Flags.NewTypeDecl = true
	return tag
}

// parseFieldWidth parses an optional ": width" after a member declarator.
// It returns -1 when there is none.
func (p *Parser) parseFieldWidth(d *Declarator) int {
	if p.curt.Kind != scan.COLON {
		return -1
	}
	pos := p.curt.Pos
	p.next()
	v, _ := p.constExpr()
	if !d.Type.IsInteger() {
		p.errorf(pos, "Bit-field has invalid type '%s', must be integral", d.Type.Declare(""))
		return -1
	}
	if v < 0 {
		p.errorf(pos, "Negative width in bit-field")
		return -1
	}
	if v > p.target.SizeOf(d.Type)*charBits {
		p.errorf(pos, "Width of bit-field exceeds its type")
		return -1
	}
	if v == 0 && d.Ident != "" {
		p.errorf(pos, "Zero width for named bit-field")
		return -1
	}
	return int(v)
}

// memberDecls parses the member declarations of a struct or union body and
// calls add for each declarator.
func (p *Parser) memberDecls(tag *ctype.Tag, add func(d *Declarator, spec *DeclSpec)) {
	p.structDepth++
	defer func() { p.structDepth-- }()
	p.next()
	for p.curt.Kind != scan.RBRACE && p.curt.Kind != scan.EOF {
		if p.curt.Kind == scan.STATIC_ASSERT {
			p.parseStaticAssert()
			continue
		}
		start := p.curt
		spec := &DeclSpec{Pos: p.curt.Pos}
		p.parseTypeSpec(spec, 0, DefaultNone)
		if spec.Flags.NoType {
			p.errorf(spec.Pos, "Type specifier missing")
		}
		spec.Storage = SCNone

		if p.curt.Kind == scan.SEMICOLON && spec.Type.IsStructOrUnion() && !spec.Flags.NoType {
			// A struct or union member without a declarator.
			d := &Declarator{Type: spec.Type, Pos: spec.Pos, FieldWidth: -1}
			add(d, spec)
		} else {
			for {
				d, err := p.ParseDecl(spec, AcceptIdent)
				if d == nil {
					break
				}
				d.FieldWidth = p.parseFieldWidth(d)
				add(d, spec)
				if err != nil || p.curt.Kind != scan.COMMA {
					break
				}
				p.next()
			}
		}

		if !p.expect(scan.SEMICOLON) {
			if p.SmartErrorSkip() == Ascended && p.curt.Kind != scan.RBRACE && p.curt.Kind != scan.EOF {
				p.next()
			}
			if p.curt.Kind == scan.SEMICOLON {
				p.next()
			}
		}
		if p.curt == start {
			p.next()
		}
	}
	p.expect(scan.RBRACE)
}

// member checks what struct and union members have in common and returns
// the field to add, or false when the declarator does not add one.
func (p *Parser) member(tag *ctype.Tag, d *Declarator, spec *DeclSpec, seen map[string]bool) (ctype.Field, bool) {
	f := ctype.Field{Name: d.Ident, Type: d.Type, BitWidth: d.FieldWidth}
	if f.BitWidth < 0 {
		f.BitWidth = 0
	}
	if d.Ident == "" {
		if d.FieldWidth >= 0 {
			// Unnamed bit-fields only pad.
			return f, false
		}
		inner := d.Type.Base().Tag
		if !d.Type.IsStructOrUnion() || d.Type.Len() != 1 || inner == nil ||
			!(inner.Anonymous || p.cfg.Standard == config.CC65) {
			p.warnf(d.Pos, "Declaration does not declare anything")
			return f, false
		}
		if !inner.Defined {
			p.errorf(d.Pos, "Anonymous member has incomplete type '%s'", inner)
			return f, false
		}
		if q := d.Type.Qual() & ctype.QualCVR; q != ctype.QualNone {
			p.warnf(d.Pos, "Anonymous %s qualifiers are ignored", d.Type.Base().Prim)
			nd := d.Type.At(0)
			nd.Qual &^= ctype.QualCVR
			f.Type.Set(0, nd)
		}
		f.Anonymous = true
		tag.AnonMembers++
		for _, g := range inner.Fields {
			if g.Name != "" && seen[g.Name] {
				p.errorf(d.Pos, "Duplicate member '%s'", g.Name)
			}
			seen[g.Name] = true
		}
		return f, true
	}
	if seen[d.Ident] {
		p.errorf(d.Pos, "Duplicate member '%s'", d.Ident)
	}
	seen[d.Ident] = true
	if d.Type.Qual()&ctype.Const != 0 {
		tag.HasConstMember = true
	}
	if d.Type.IsStructOrUnion() {
		inner := d.Type.At(0).Tag
		if inner != nil && inner.HasConstMember {
			tag.HasConstMember = true
		}
	}
	return f, true
}

func (p *Parser) parseStructBody(tag *ctype.Tag) {
	errs := p.errors
	var (
		size     int64
		bitOffs  int64
		flexible bool
		fields   []ctype.Field
		first    = true
	)
	seen := map[string]bool{}
	p.memberDecls(tag, func(d *Declarator, spec *DeclSpec) {
		if flexible {
			p.errorf(d.Pos, "Flexible array member must be last field")
			flexible = false
		}
		width := int64(d.FieldWidth)
		typeBits := p.target.SizeOf(d.Type) * charBits
		if bitOffs > 0 && (width <= 0 || bitOffs+width > typeBits) {
			size++
			bitOffs = 0
		}

		if d.Type.IsArray() && d.Type.At(0).Dim == ctype.Unspecified && d.Ident != "" {
			if first {
				p.errorf(d.Pos, "Flexible array member cannot be first struct field")
			}
			flexible = true
			tag.HasFlexibleMember = true
			nd := d.Type.At(0)
			nd.Dim = ctype.Flexible
			d.Type.Set(0, nd)
		} else if d.Ident != "" && (d.Type.IsIncomplete() || d.Type.IsFunc()) {
			p.errorf(d.Pos, "Field '%s' has incomplete type '%s'", d.Ident, d.Type.Declare(""))
		} else if d.Type.IsStructOrUnion() {
			if inner := d.Type.At(0).Tag; inner != nil && inner.HasFlexibleMember {
				p.errorf(d.Pos, "Invalid use of struct with flexible array member")
			}
		}

		f, ok := p.member(tag, d, spec, seen)
		if width == 0 || (!ok && width < 0) {
			return
		}
		first = false
		if width > 0 {
			if ok {
				f.Offset = int(size)
				f.BitOffset = int(bitOffs)
				fields = append(fields, f)
			}
			bitOffs += width
			size += bitOffs / charBits
			bitOffs %= charBits
			return
		}
		if ok {
			f.Type = d.Type
			f.Offset = int(size)
			fields = append(fields, f)
		}
		if !flexible {
			if fsize := p.target.SizeOf(d.Type); size > math.MaxInt64-fsize {
				size = math.MaxInt64
			} else {
				size += fsize
			}
		}
	})
	if bitOffs > 0 && size < math.MaxInt64 {
		size++
	}

	tag.Fields = fields
	tag.Size = int(size)
	tag.Defined = true
	if p.errors != errs {
		tag.Fictitious = true
	}
	if size == 0 {
		p.errorf(p.curt.Pos, "Empty struct type '%s' is not supported", tag)
	}
}

func (p *Parser) parseUnionBody(tag *ctype.Tag) {
	errs := p.errors
	var (
		size     int64
		flexible bool
		fields   []ctype.Field
	)
	seen := map[string]bool{}
	p.memberDecls(tag, func(d *Declarator, spec *DeclSpec) {
		if flexible {
			p.errorf(d.Pos, "Flexible array member must be last field")
			flexible = false
		}
		if d.Type.IsArray() && d.Type.At(0).Dim == ctype.Unspecified && d.Ident != "" {
			flexible = true
			tag.HasFlexibleMember = true
			nd := d.Type.At(0)
			nd.Dim = ctype.Flexible
			d.Type.Set(0, nd)
		} else if d.Ident != "" && (d.Type.IsIncomplete() || d.Type.IsFunc()) {
			p.errorf(d.Pos, "Field '%s' has incomplete type '%s'", d.Ident, d.Type.Declare(""))
		} else if d.Type.IsStructOrUnion() {
			if inner := d.Type.At(0).Tag; inner != nil && inner.HasFlexibleMember {
				p.errorf(d.Pos, "Invalid use of struct with flexible array member")
			}
		}

		f, ok := p.member(tag, d, spec, seen)
		if !ok && d.FieldWidth < 0 {
			return
		}
		var fsize int64
		if d.FieldWidth > 0 {
			fsize = (int64(d.FieldWidth) + charBits - 1) / charBits
		} else if d.FieldWidth < 0 && !flexible {
			fsize = p.target.SizeOf(d.Type)
		}
		if fsize > size {
			size = fsize
		}
		if ok && d.FieldWidth != 0 {
			f.Type = d.Type
			fields = append(fields, f)
		}
	})

	tag.Fields = fields
	tag.Size = int(size)
	tag.Defined = true
	if p.errors != errs {
		tag.Fictitious = true
	}
	if size == 0 {
		p.errorf(p.curt.Pos, "Empty union type '%s' is not supported", tag)
	}
}

// typeMax returns the largest value of an integer type.
func typeMax(t ctype.Primitive) int64 {
	switch t {
	case ctype.SChar:
		return math.MaxInt8
	case ctype.Char, ctype.UChar:
		return math.MaxUint8
	case ctype.Short, ctype.Int:
		return math.MaxInt16
	case ctype.UShort, ctype.UInt:
		return math.MaxUint16
	case ctype.Long:
		return math.MaxInt32
	}
	return math.MaxUint32
}

// enumeratorType returns the smallest type that holds all values in
// [min, max], NoPrim if there is none.
func enumeratorType(min int64, max int64, signed bool) ctype.Primitive {
	if min < 0 || signed {
		switch {
		case max > math.MaxInt32 || min < math.MinInt32:
			return ctype.NoPrim
		case min < math.MinInt16 || max > math.MaxInt16:
			return ctype.Long
		case min < math.MinInt8 || max > math.MaxInt8:
			return ctype.Int
		}
		return ctype.SChar
	}
	switch {
	case max > math.MaxUint32:
		return ctype.NoPrim
	case max > math.MaxUint16:
		return ctype.ULong
	case max > math.MaxUint8:
		return ctype.UInt
	}
	return ctype.UChar
}

func (p *Parser) parseEnumBody(tag *ctype.Tag) {
	errs := p.errors
	p.next()
	var (
		val        int64 = -1
		memberType       = ctype.Int
		minVal     int64
		maxVal     int64
	)
	for p.curt.Kind != scan.RBRACE && p.curt.Kind != scan.EOF {
		if p.curt.Kind != scan.IDENT {
			p.errorf(p.curt.Pos, "Identifier expected for enumerator declarator")
			if p.SmartErrorSkip() == Ascended {
				break
			}
			if p.curt.Kind == scan.COMMA {
				p.next()
				continue
			}
			break
		}
		name, pos := p.curt.Val, p.curt.Pos
		p.next()

		var signed, incremented bool
		if p.curt.Kind == scan.ASSIGN {
			p.next()
			val, memberType = p.constExpr()
			signed = memberType.IsSigned()
		} else {
			signed = memberType.IsSigned() && val != typeMax(memberType)
			val++
			if memberType == ctype.ULong && val > math.MaxUint32 {
				p.errorf(pos, "Enumerator '%s' overflows the range of '%s'", name, ctype.ULong)
				val = 0
			}
			incremented = true
		}

		var newType ctype.Primitive
		if !signed || val >= 0 {
			if val > maxVal {
				maxVal = val
			}
			newType = enumeratorType(0, val, signed)
		} else {
			if val < minVal {
				minVal = val
			}
			newType = enumeratorType(val, 0, true)
		}
		if newType == ctype.NoPrim {
			p.errorf(pos, "Enumerator '%s' overflows the range of '%s'", name, ctype.Long)
			newType = ctype.Long
		}
		// Enumerator constants are never smaller than int.
		if p.target.PrimSize(newType) < p.target.PrimSize(ctype.Int) {
			newType = ctype.Int
		}
		if incremented && newType != memberType && p.errors == errs {
			p.warnf(pos, "Enumerator '%s' (value = %d) implies type '%s'", name, val, newType)
		}
		if p.cfg.Standard != config.CC65 && newType != ctype.Int {
			p.warnf(pos, "ISO C restricts enumerator values to range of 'int'")
		}
		memberType = newType

		sym := &Symbol{
			Name:  name,
			Kind:  SymEnumerator,
			Type:  ctype.Of(memberType),
			Pos:   pos,
			Value: val,
			Prim:  memberType,
		}
		if err := p.syms.Define(sym); err != nil {
			p.errorf(pos, "%s", err)
		}
		tag.Enumerators = append(tag.Enumerators, ctype.Enumerator{Name: name, Value: val, Type: memberType})

		if p.curt.Kind != scan.COMMA {
			break
		}
		p.next()
	}
	p.expect(scan.RBRACE)

	if len(tag.Enumerators) == 0 {
		p.errorf(p.curt.Pos, "Empty enum is invalid")
	}
	under := enumeratorType(minVal, maxVal, false)
	if under == ctype.NoPrim {
		p.errorf(p.curt.Pos, "Enumeration values cannot be represented all as 'long'")
		under = ctype.Long
	}
	tag.Underlying = under
	tag.Size = p.target.PrimSize(under)
	tag.Defined = true
	if p.errors != errs {
		tag.Fictitious = true
	}
}

// parseStaticAssert parses _Static_assert(expr, "message");
func (p *Parser) parseStaticAssert() {
	pos := p.curt.Pos
	p.next()
	if !p.expect(scan.LPAREN) {
		p.SmartErrorSkip()
		return
	}
	v, _ := p.constExpr()
	msg := ""
	if p.curt.Kind == scan.COMMA {
		p.next()
		if p.curt.Kind == scan.STRING {
			msg = p.curt.Val
			p.next()
		} else {
			p.errorf(p.curt.Pos, "String literal expected")
		}
	}
	if !p.expect(scan.RPAREN) {
		p.SmartErrorSkip()
	}
	if v == 0 {
		if msg != "" {
			p.errorf(pos, "_Static_assert failed %s", msg)
		} else {
			p.errorf(pos, "_Static_assert failed")
		}
	}
	if p.curt.Kind == scan.SEMICOLON {
		p.next()
	} else {
		p.errorf(p.curt.Pos, "%s expected", scan.TokenKind(scan.SEMICOLON))
	}
}
