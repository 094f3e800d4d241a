// Package ctype holds the canonical representation of C types used by the
// front end and every later stage.
//
// A type is an Encoding: a bounded sequence of nodes read from left to
// right, outermost derivation first, e.g.
//
//	int *const p[4]     array[4] -> const pointer -> int -> end
//	int (*f)(char, int) pointer -> function(char, int) -> int -> end
//
// The sequence never grows beyond MaxTypeLen nodes, the terminator
// included.
package ctype

import "strings"

// Kind is the kind of a single type node.
type Kind uint8

const (
	End Kind = iota // terminator, the zero Node
	Base
	Pointer
	Array
	Function
)

var kindNames = [...]string{
	End:      "end",
	Base:     "base",
	Pointer:  "pointer",
	Array:    "array",
	Function: "function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Qualifier is a set of type qualifiers attached to a node. The cc65
// address size and calling convention qualifiers live here as well.
type Qualifier uint16

const (
	Const Qualifier = 1 << iota
	Volatile
	Restrict
	Near
	Far
	Fastcall
	Cdecl
)

const (
	QualNone     Qualifier = 0
	QualCVR                = Const | Volatile | Restrict
	QualAddrSize           = Near | Far
	QualCConv              = Fastcall | Cdecl
)

var qualNames = []struct {
	q    Qualifier
	name string
}{
	{Near, "__near__"},
	{Far, "__far__"},
	{Fastcall, "__fastcall__"},
	{Cdecl, "__cdecl__"},
	{Const, "const"},
	{Volatile, "volatile"},
	{Restrict, "restrict"},
}

func (q Qualifier) String() string {
	var parts []string
	for _, qn := range qualNames {
		if q&qn.q != 0 {
			parts = append(parts, qn.name)
		}
	}
	return strings.Join(parts, " ")
}

// Primitive identifies the base type of an encoding.
type Primitive uint8

const (
	NoPrim Primitive = iota
	Void
	Char // plain char, unsigned on the 6502 targets
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	Float
	Double
	Struct
	Union
	Enum
	Inferred // C23 'auto' type inference
)

var primNames = [...]string{
	NoPrim:   "<none>",
	Void:     "void",
	Char:     "char",
	SChar:    "signed char",
	UChar:    "unsigned char",
	Short:    "short",
	UShort:   "unsigned short",
	Int:      "int",
	UInt:     "unsigned int",
	Long:     "long",
	ULong:    "unsigned long",
	Float:    "float",
	Double:   "double",
	Struct:   "struct",
	Union:    "union",
	Enum:     "enum",
	Inferred: "auto",
}

func (p Primitive) String() string {
	if int(p) < len(primNames) {
		return primNames[p]
	}
	return "Unknown"
}

func (p Primitive) IsInteger() bool {
	switch p {
	case Char, SChar, UChar, Short, UShort, Int, UInt, Long, ULong, Enum:
		return true
	}
	return false
}

func (p Primitive) IsSigned() bool {
	switch p {
	case SChar, Short, Int, Long, Float, Double:
		return true
	}
	return false
}

// IsTagged reports whether the primitive needs a Tag.
func (p Primitive) IsTagged() bool {
	return p == Struct || p == Union || p == Enum
}

// Field is a struct or union member.
type Field struct {
	Name   string
	Type   Encoding
	Offset int
	// Bit-field position and width, BitWidth is 0 for ordinary members.
	BitOffset int
	BitWidth  int
	Anonymous bool
}

// Enumerator is a named enum constant.
type Enumerator struct {
	Name  string
	Value int64
	Type  Primitive
}

// Tag describes a struct, union or enum tag. Encodings point at tags, the
// tags themselves are owned by the symbol table.
type Tag struct {
	Name       string
	Kind       Primitive // Struct, Union or Enum
	Anonymous  bool
	Defined    bool
	Fictitious bool // errors occurred while defining it
	Size       int

	Fields            []Field
	HasFlexibleMember bool
	HasConstMember    bool
	AnonMembers       int

	Underlying  Primitive // enums only
	Enumerators []Enumerator
}

// String returns the tag as it is spelled in source.
func (t *Tag) String() string {
	if t.Anonymous {
		return t.Kind.String() + " <anonymous>"
	}
	return t.Kind.String() + " " + t.Name
}

// Field looks up a member by name. Members of anonymous struct and union
// members are found as well, with their offset adjusted.
func (t *Tag) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name && !f.Anonymous {
			return f, true
		}
	}
	for _, f := range t.Fields {
		if !f.Anonymous {
			continue
		}
		inner := f.Type.Base().Tag
		if inner == nil {
			continue
		}
		if g, ok := inner.Field(name); ok {
			g.Offset += f.Offset
			return g, true
		}
	}
	return Field{}, false
}

type FuncFlags uint16

const (
	FuncVariadic FuncFlags = 1 << iota
	FuncEmpty              // declared with ()
	FuncVoidParam          // declared with (void)
	FuncOldStyle           // K&R identifier list
	FuncUnnamedParams
	FuncOldStyleIntRet // implicit int return type
)

// funcShapeFlags are the flags that take part in type identity.
const funcShapeFlags = FuncVariadic | FuncEmpty | FuncVoidParam | FuncOldStyle

// Param is one entry of a function parameter list. Types are already
// decayed.
type Param struct {
	Name      string
	Type      Encoding
	Anonymous bool
}

// FuncDesc describes the parameters of a function node.
type FuncDesc struct {
	Params []Param
	Flags  FuncFlags
}

func (f *FuncDesc) IsVariadic() bool {
	return f.Flags&FuncVariadic != 0
}

// Node is one element of an Encoding. The zero Node is the terminator.
type Node struct {
	Kind Kind
	Qual Qualifier
	Prim Primitive // Base
	Tag  *Tag      // Base of struct, union or enum
	Dim  int64     // Array
	Func *FuncDesc // Function
}

const (
	// Unspecified is the dimension of an array declared with [].
	Unspecified int64 = -1
	// Flexible is the dimension of a flexible array struct member.
	Flexible int64 = 0
)

func PtrNode(q Qualifier) Node {
	return Node{Kind: Pointer, Qual: q}
}

func ArrayNode(dim int64) Node {
	return Node{Kind: Array, Dim: dim}
}

func FuncNode(f *FuncDesc, q Qualifier) Node {
	return Node{Kind: Function, Func: f, Qual: q}
}

func BaseNode(p Primitive, q Qualifier) Node {
	return Node{Kind: Base, Prim: p, Qual: q}
}

func TagNode(t *Tag, q Qualifier) Node {
	return Node{Kind: Base, Prim: t.Kind, Tag: t, Qual: q}
}

func nodeEqual(a, b Node) bool {
	if a.Kind != b.Kind || a.Qual != b.Qual {
		return false
	}
	switch a.Kind {
	case Base:
		return a.Prim == b.Prim && a.Tag == b.Tag
	case Array:
		return a.Dim == b.Dim
	case Function:
		return funcEqual(a.Func, b.Func)
	}
	return true
}

func funcEqual(a, b *FuncDesc) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Flags&funcShapeFlags != b.Flags&funcShapeFlags || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !a.Params[i].Type.Equal(b.Params[i].Type) {
			return false
		}
	}
	return true
}
