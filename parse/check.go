package parse

import (
	"github.com/sur5r/cc65/config"
	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/scan"
)

// fixQualifiers moves qualifiers to the nodes they belong to. Qualifiers
// of arrays go to the element type, calling conventions of pointers go to
// the function pointed to and address sizes are defaulted.
func (p *Parser) fixQualifiers(e *ctype.Encoding, pos scan.FilePos) {
	var q ctype.Qualifier
	for i := 0; i < e.Len(); i++ {
		nd := e.At(i)
		if nd.Kind == ctype.Array {
			q |= nd.Qual
			nd.Qual = ctype.QualNone
		} else {
			nd.Qual |= q
			q = ctype.QualNone
		}
		e.Set(i, nd)
	}

	for i := 0; i < e.Len(); i++ {
		nd := e.At(i)
		switch nd.Kind {
		case ctype.Pointer:
			next := e.At(i + 1)
			toFunc := next.Kind == ctype.Function
			if cc := nd.Qual & ctype.QualCConv; cc != ctype.QualNone {
				nd.Qual &^= ctype.QualCConv
				switch {
				case !toFunc:
					p.errorf(pos, "Not pointer to a function; can't use a calling convention")
				case next.Qual&ctype.QualCConv == cc:
					p.warnf(pos, "Pointer duplicates function's calling convention")
				case next.Qual&ctype.QualCConv != ctype.QualNone:
					p.errorf(pos, "Function's and pointer's calling conventions are different")
				case cc == ctype.Fastcall && next.Func.IsVariadic():
					p.errorf(pos, "Variadic-function pointers cannot be __fastcall__")
				default:
					next.Qual |= cc
				}
			}
			as := nd.Qual & ctype.QualAddrSize
			switch {
			case as == ctype.QualNone && toFunc:
				as = next.Qual & ctype.QualAddrSize
				if as == ctype.QualNone {
					as = p.codeAddrSize()
				}
				nd.Qual |= as
			case toFunc:
				fas := next.Qual & ctype.QualAddrSize
				if fas == ctype.QualNone {
					next.Qual |= as
				} else if fas != as {
					p.errorf(pos, "Address size qualifier mismatch")
					next.Qual = next.Qual&^ctype.QualAddrSize | as
				}
			}
			e.Set(i, nd)
			if toFunc {
				e.Set(i+1, next)
			}
		case ctype.Function:
			if nd.Qual&ctype.QualAddrSize == ctype.QualNone {
				nd.Qual |= p.codeAddrSize()
				e.Set(i, nd)
			}
		}
	}
}

// fixFunctionReturnType checks the return types of all function nodes and
// drops qualifiers that have no meaning on them.
func (p *Parser) fixFunctionReturnType(e *ctype.Encoding, pos scan.FilePos) {
	for i := 0; i+1 < e.Len(); i++ {
		if e.At(i).Kind != ctype.Function {
			continue
		}
		ret := e.At(i + 1)
		switch ret.Kind {
		case ctype.Function:
			p.errorf(pos, "Functions are not allowed to return functions")
		case ctype.Array:
			p.errorf(pos, "Functions are not allowed to return arrays")
		}
		if ret.Qual&ctype.QualCVR == ctype.QualNone {
			continue
		}
		if ret.Kind == ctype.Base && ret.Prim == ctype.Void {
			p.errorf(pos, "Function definition has qualified void return type")
			continue
		}
		p.warnf(pos, "Type qualifiers ignored on function return type")
		ret.Qual &^= ctype.QualCVR
		e.Set(i+1, ret)
	}
}

// checkArrayElementType reports arrays whose elements have no usable size.
func (p *Parser) checkArrayElementType(e ctype.Encoding, pos scan.FilePos) {
	for i := 0; i < e.Len(); i++ {
		if e.At(i).Kind != ctype.Array {
			continue
		}
		elem := e.Tail(i + 1)
		if elem.IsFunc() {
			p.errorf(pos, "Arrays of functions are not allowed")
			return
		}
		if p.target.SizeOf(elem) == 0 {
			if elem.IsArray() || (elem.IsTagged() && elem.IsIncomplete()) {
				if !elem.IsArray() || elem.At(0).Dim == ctype.Unspecified {
					p.errorf(pos, "Array of incomplete element type '%s'", elem.Declare(""))
					return
				}
			} else if !elem.IsVoid() || p.cfg.Standard != config.CC65 {
				p.errorf(pos, "Array of 0-size element type '%s'", elem.Declare(""))
				return
			}
			continue
		}
		if elem.IsStructOrUnion() {
			if tag := elem.At(0).Tag; tag != nil && tag.HasFlexibleMember {
				p.errorf(pos, "Invalid use of struct with flexible array member")
				return
			}
		}
	}
}

// CheckEmptyDecl is called for a declaration without declarators, as in
// "int;". Declaring or referencing a tag is fine, anything else is
// reported.
func (p *Parser) CheckEmptyDecl(spec *DeclSpec) {
	if spec.Flags.TagRef {
		return
	}
	if p.cfg.Warnings.UselessDecl {
		p.warnf(spec.Pos, "Useless declaration")
	}
}
