package ctype

import (
	"fmt"
	"strings"
)

func baseName(nd Node) string {
	if nd.Tag != nil {
		return nd.Tag.String()
	}
	return nd.Prim.String()
}

func dimString(dim int64) string {
	if dim == Unspecified || dim == Flexible {
		return "[]"
	}
	return fmt.Sprintf("[%d]", dim)
}

// Declare returns a C declaration of name with type e. An empty name gives
// an abstract declarator suitable for casts.
func (e Encoding) Declare(name string) string {
	s := name
	// A postfix derivation following a pointer needs parentheses.
	wrap := false
	for i := 0; i < e.n; i++ {
		nd := e.nodes[i]
		switch nd.Kind {
		case Pointer:
			if cvr := nd.Qual & QualCVR; cvr != 0 {
				if s != "" {
					s = " " + s
				}
				s = cvr.String() + s
			}
			s = "*" + s
			if ext := nd.Qual &^ QualCVR; ext != 0 {
				s = ext.String() + " " + s
			}
			wrap = true
		case Array:
			if wrap {
				s = "(" + s + ")"
			}
			s += dimString(nd.Dim)
			wrap = false
		case Function:
			if wrap {
				s = "(" + s + ")"
			}
			s += "(" + declareParams(nd.Func) + ")"
			if nd.Qual != 0 {
				s = nd.Qual.String() + " " + s
			}
			wrap = false
		case Base:
			b := baseName(nd)
			if nd.Qual != 0 {
				b = nd.Qual.String() + " " + b
			}
			if s == "" {
				return b
			}
			return b + " " + s
		}
	}
	return s
}

func declareParams(f *FuncDesc) string {
	if f == nil {
		return ""
	}
	if f.Flags&FuncVoidParam != 0 {
		return "void"
	}
	var parts []string
	for _, p := range f.Params {
		if f.Flags&FuncOldStyle != 0 {
			parts = append(parts, p.Name)
			continue
		}
		name := p.Name
		if p.Anonymous {
			name = ""
		}
		parts = append(parts, p.Type.Declare(name))
	}
	if f.IsVariadic() {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

// String describes e in English, e.g. "array[4] of const pointer to int".
func (e Encoding) String() string {
	if e.n == 0 {
		return "<empty>"
	}
	var b strings.Builder
	for i := 0; i < e.n; i++ {
		nd := e.nodes[i]
		if nd.Qual != 0 {
			b.WriteString(nd.Qual.String())
			b.WriteByte(' ')
		}
		switch nd.Kind {
		case Pointer:
			b.WriteString("pointer to ")
		case Array:
			b.WriteString("array")
			b.WriteString(dimString(nd.Dim))
			b.WriteString(" of ")
		case Function:
			b.WriteString("function(")
			b.WriteString(describeParams(nd.Func))
			b.WriteString(") returning ")
		case Base:
			b.WriteString(baseName(nd))
		}
	}
	return b.String()
}

func describeParams(f *FuncDesc) string {
	if f == nil {
		return ""
	}
	if f.Flags&FuncVoidParam != 0 {
		return "void"
	}
	var parts []string
	for _, p := range f.Params {
		parts = append(parts, p.Type.String())
	}
	if f.IsVariadic() {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}
