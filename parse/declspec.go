package parse

import (
	"strings"

	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/scan"
)

// StorageClass is a set of storage class bits. At most one of the
// classes written in source is set, the remaining bits are derived.
type StorageClass uint16

const (
	SCExtern StorageClass = 1 << iota
	SCStatic
	SCAuto
	SCRegister
	SCTypedef
	SCInline
	// Derived bits.
	SCFunc
	SCParam
	SCDef
	SCFictitious
)

const (
	SCNone StorageClass = 0
	// storageMask holds the classes that can be written in source.
	storageMask = SCExtern | SCStatic | SCAuto | SCRegister | SCTypedef
)

var storageNames = []struct {
	sc   StorageClass
	name string
}{
	{SCExtern, "extern"},
	{SCStatic, "static"},
	{SCAuto, "auto"},
	{SCRegister, "register"},
	{SCTypedef, "typedef"},
	{SCInline, "inline"},
	{SCFunc, "func"},
	{SCParam, "param"},
	{SCDef, "def"},
	{SCFictitious, "fictitious"},
}

func (sc StorageClass) String() string {
	var parts []string
	for _, sn := range storageNames {
		if sc&sn.sc != 0 {
			parts = append(parts, sn.name)
		}
	}
	return strings.Join(parts, " ")
}

// Class returns the storage class written in source, SCNone if there was
// none.
func (sc StorageClass) Class() StorageClass {
	return sc & storageMask
}

func storageOf(k scan.TokenKind) StorageClass {
	switch k {
	case scan.EXTERN:
		return SCExtern
	case scan.STATIC:
		return SCStatic
	case scan.AUTO:
		return SCAuto
	case scan.REGISTER:
		return SCRegister
	case scan.TYPEDEF:
		return SCTypedef
	}
	panic("internal error - not a storage class " + k.String())
}

// SpecFlags selects what a declaration specifier may contain besides the
// type.
type SpecFlags uint8

const (
	AllowStorage SpecFlags = 1 << iota
	AllowFuncSpec
)

// DefaultType is the policy for specifiers without a type.
type DefaultType uint8

const (
	DefaultNone DefaultType = iota
	DefaultInt
	DefaultInferred
)

func (d DefaultType) String() string {
	switch d {
	case DefaultNone:
		return "none"
	case DefaultInt:
		return "int"
	case DefaultInferred:
		return "inferred"
	}
	return "unknown"
}

// SpecInfo records how a declaration specifier was built.
type SpecInfo struct {
	// No storage class was given, the default was used.
	DefStorage bool
	// No type was given and none was substituted, Type holds int.
	NoType bool
	// The default the type came from, DefaultNone when it was explicit.
	DefType DefaultType
	// A conflicting or duplicate type specifier was seen.
	ExtraType bool
	// A struct, union or enum tag was referenced or declared.
	TagRef bool
	// A tag was added to the symbol table.
	NewTypeDecl bool
	// A tag body was defined.
	NewTypeDef bool
	// signed or unsigned was spelled out, or the type came from a
	// typedef or an enum.
	SignednessSpecified bool
}

// DeclSpec is the parsed declaration specifier: the storage class and the
// base type shared by all declarators of a declaration. Type may carry
// derivations when it names a typedef.
type DeclSpec struct {
	Storage StorageClass
	Type    ctype.Encoding
	Flags   SpecInfo
	Pos     scan.FilePos
}

// typeWords collects the type keywords of a specifier. Keywords may come in
// any order, the first one wins on a conflict.
type typeWords struct {
	sign  scan.TokenKind
	size  scan.TokenKind
	core  scan.TokenKind
	other bool
}

func (w *typeWords) any() bool {
	return w.sign != 0 || w.size != 0 || w.core != 0 || w.other
}

// add records k and returns a message when it clashes with what was seen
// before.
func (w *typeWords) add(k scan.TokenKind) (string, bool) {
	switch k {
	case scan.SIGNED, scan.UNSIGNED:
		switch {
		case w.sign == k:
			return "Duplicate type specifier '" + k.String() + "'", false
		case w.sign != 0 || w.other:
			return "Conflicting type specifier '" + k.String() + "'", false
		case w.core == scan.VOID || w.core == scan.FLOAT || w.core == scan.DOUBLE:
			return "Conflicting type specifier '" + k.String() + "'", false
		}
		w.sign = k
	case scan.SHORT, scan.LONG:
		switch {
		case w.size == scan.LONG && k == scan.LONG:
			return "'long long' is not supported", false
		case w.size == k:
			return "Duplicate type specifier '" + k.String() + "'", false
		case w.size != 0 || w.other:
			return "Conflicting type specifier '" + k.String() + "'", false
		case w.core != 0 && w.core != scan.INT:
			return "Conflicting type specifier '" + k.String() + "'", false
		}
		w.size = k
	case scan.VOID, scan.CHAR, scan.INT, scan.FLOAT, scan.DOUBLE:
		switch {
		case w.core == k:
			return "Duplicate type specifier '" + k.String() + "'", false
		case w.core != 0 || w.other:
			return "Conflicting type specifier '" + k.String() + "'", false
		case k == scan.CHAR && w.size != 0:
			return "Conflicting type specifier '" + k.String() + "'", false
		case k != scan.INT && k != scan.CHAR && (w.sign != 0 || w.size != 0):
			return "Conflicting type specifier '" + k.String() + "'", false
		}
		w.core = k
	default:
		panic("internal error - not a type keyword " + k.String())
	}
	return "", true
}

// addOther records a tag or typedef name.
func (w *typeWords) addOther(what string) (string, bool) {
	if w.any() {
		return "Conflicting type specifier '" + what + "'", false
	}
	w.other = true
	return "", true
}

func (w *typeWords) prim() ctype.Primitive {
	unsigned := w.sign == scan.UNSIGNED
	switch w.core {
	case scan.VOID:
		return ctype.Void
	case scan.FLOAT:
		return ctype.Float
	case scan.DOUBLE:
		return ctype.Double
	case scan.CHAR:
		switch w.sign {
		case scan.SIGNED:
			return ctype.SChar
		case scan.UNSIGNED:
			return ctype.UChar
		}
		return ctype.Char
	}
	switch w.size {
	case scan.SHORT:
		if unsigned {
			return ctype.UShort
		}
		return ctype.Short
	case scan.LONG:
		if unsigned {
			return ctype.ULong
		}
		return ctype.Long
	}
	if unsigned {
		return ctype.UInt
	}
	return ctype.Int
}

func isTypeKeyword(k scan.TokenKind) bool {
	switch k {
	case scan.VOID, scan.CHAR, scan.SHORT, scan.INT, scan.LONG, scan.FLOAT,
		scan.DOUBLE, scan.SIGNED, scan.UNSIGNED:
		return true
	}
	return false
}

// ParseDeclSpec parses storage class, function specifier, qualifiers and
// type of a declaration. When no storage class is given defStorage is used
// and DefStorage is set. def decides what happens when no type is given.
func (p *Parser) ParseDeclSpec(allowed SpecFlags, def DefaultType, defStorage StorageClass) *DeclSpec {
	spec := &DeclSpec{Pos: p.curt.Pos}
	p.parseTypeSpec(spec, allowed, def)
	if spec.Storage.Class() == SCNone {
		spec.Flags.DefStorage = true
		spec.Storage |= defStorage
	}
	return spec
}

func (p *Parser) parseStorageClass(spec *DeclSpec, allowed SpecFlags) {
	pos := p.curt.Pos
	sc := storageOf(p.curt.Kind)
	p.next()
	if allowed&AllowStorage == 0 {
		p.errorf(pos, "Unexpected storage class specified")
	}
	switch cur := spec.Storage.Class(); {
	case cur == SCNone:
		spec.Storage |= sc
	case cur == sc:
		p.warnf(pos, "Duplicate storage class specifier")
	default:
		p.errorf(pos, "Conflicting storage class specifier")
	}
}

func (p *Parser) parseFuncSpec(spec *DeclSpec, allowed SpecFlags) {
	pos := p.curt.Pos
	p.next()
	if allowed&AllowFuncSpec == 0 {
		p.errorf(pos, "'inline' is only allowed on functions")
		return
	}
	if spec.Storage&SCInline != 0 {
		p.warnf(pos, "Duplicate function specifier 'inline'")
	}
	spec.Storage |= SCInline
}

func (p *Parser) parseTypeSpec(spec *DeclSpec, allowed SpecFlags, def DefaultType) {
	var (
		words typeWords
		qual  ctype.Qualifier
		base  ctype.Encoding
	)
	extra := func(pos scan.FilePos, msg string) {
		p.errorf(pos, "%s", msg)
		spec.Flags.ExtraType = true
	}
loop:
	for {
		t := p.curt
		switch {
		case t.Kind == scan.CONST || t.Kind == scan.VOLATILE || t.Kind == scan.RESTRICT:
			q := qualOf(t.Kind)
			if qual&q != 0 {
				p.warnf(t.Pos, "Duplicate qualifier: '%s'", q)
			}
			qual |= q
			p.next()
		case isStorageKeyword(t.Kind) && t.Kind != scan.INLINE:
			p.parseStorageClass(spec, allowed)
		case t.Kind == scan.INLINE:
			p.parseFuncSpec(spec, allowed)
		case isTypeKeyword(t.Kind):
			if msg, ok := words.add(t.Kind); !ok {
				extra(t.Pos, msg)
			}
			p.next()
		case t.Kind == scan.STRUCT || t.Kind == scan.UNION || t.Kind == scan.ENUM:
			msg, ok := words.addOther(t.Kind.String())
			tag := p.parseTagSpec(spec)
			if !ok {
				extra(t.Pos, msg)
				break
			}
			base = ctype.Of(ctype.Int)
			base.Set(0, ctype.TagNode(tag, ctype.QualNone))
			if tag.Kind == ctype.Enum {
				spec.Flags.SignednessSpecified = true
			}
		case t.Kind == scan.IDENT && !words.any():
			sym := p.syms.Lookup(t.Val)
			if sym != nil && sym.Kind == SymTypedef {
				words.other = true
				base = sym.Type
				spec.Flags.SignednessSpecified = true
				p.next()
				break
			}
			if def != DefaultNone {
				break loop
			}
			p.errorf(t.Pos, "Unknown type name '%s'", t.Val)
			words.other = true
			base = ctype.Of(ctype.Int)
			p.next()
		default:
			break loop
		}
	}

	switch {
	case words.other:
	case words.any():
		base = ctype.Of(words.prim())
		if words.sign != 0 {
			spec.Flags.SignednessSpecified = true
		}
	default:
		switch def {
		case DefaultNone:
			spec.Flags.NoType = true
			base = ctype.Of(ctype.Int)
		case DefaultInt:
			spec.Flags.DefType = DefaultInt
			base = ctype.Of(ctype.Int)
		case DefaultInferred:
			spec.Flags.DefType = DefaultInferred
			base = ctype.Of(ctype.Inferred)
		default:
			panic("internal error - unknown default type")
		}
	}

	if qual&ctype.Restrict != 0 && !base.IsPtr() {
		p.errorf(spec.Pos, "Invalid use of 'restrict'")
		qual &^= ctype.Restrict
	}
	base.AddQual(qual)
	spec.Type = base
}

func qualOf(k scan.TokenKind) ctype.Qualifier {
	switch k {
	case scan.CONST:
		return ctype.Const
	case scan.VOLATILE:
		return ctype.Volatile
	case scan.RESTRICT:
		return ctype.Restrict
	case scan.NEAR:
		return ctype.Near
	case scan.FAR:
		return ctype.Far
	case scan.FASTCALL:
		return ctype.Fastcall
	case scan.CDECL:
		return ctype.Cdecl
	}
	return ctype.QualNone
}

// optionalQualifiers parses the qualifiers in allowed that appear at the
// current token.
func (p *Parser) optionalQualifiers(allowed ctype.Qualifier) ctype.Qualifier {
	var q ctype.Qualifier
	pos := p.curt.Pos
	for {
		nq := qualOf(p.curt.Kind)
		if nq == ctype.QualNone || allowed&nq == 0 {
			break
		}
		if q&nq != 0 {
			p.warnf(p.curt.Pos, "Duplicate qualifier: '%s'", nq)
		}
		q |= nq
		p.next()
	}
	if q&ctype.QualAddrSize == ctype.QualAddrSize {
		p.errorf(pos, "Cannot specify more than one address size qualifier")
		q &^= ctype.Far
	}
	if q&ctype.QualCConv == ctype.QualCConv {
		p.errorf(pos, "Cannot specify more than one calling convention qualifier")
		q &^= ctype.Cdecl
	}
	return q
}
