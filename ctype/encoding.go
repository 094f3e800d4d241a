package ctype

import (
	"fmt"

	"github.com/pkg/errors"
)

// MaxTypeLen is the capacity of an Encoding, terminator included.
const MaxTypeLen = 30

// ErrTooComplex is returned when an encoding would exceed MaxTypeLen.
var ErrTooComplex = errors.New("type too complex")

// Encoding is a fixed capacity sequence of type nodes. The node after the
// last one in use is always the End terminator. The zero value is the empty
// encoding.
type Encoding struct {
	nodes [MaxTypeLen]Node
	n     int
}

// Make builds an encoding from nodes, outermost first, without the
// terminator.
func Make(nodes ...Node) (Encoding, error) {
	var e Encoding
	for _, nd := range nodes {
		if err := e.Append(nd); err != nil {
			return Encoding{}, err
		}
	}
	return e, nil
}

// Of returns the single node encoding of a primitive base type.
func Of(p Primitive) Encoding {
	var e Encoding
	e.nodes[0] = BaseNode(p, QualNone)
	e.n = 1
	return e
}

// Len returns the number of nodes, not counting the terminator.
func (e Encoding) Len() int {
	return e.n
}

// Room returns how many more nodes fit.
func (e Encoding) Room() int {
	return MaxTypeLen - 1 - e.n
}

// NeedSpace fails with ErrTooComplex unless k more nodes fit.
func (e Encoding) NeedSpace(k int) error {
	if k > e.Room() {
		return ErrTooComplex
	}
	return nil
}

// Insert places nd before the node at pos, shifting the rest towards the
// terminator. pos may equal Len to append.
func (e *Encoding) Insert(pos int, nd Node) error {
	if pos < 0 || pos > e.n {
		panic(fmt.Sprintf("internal error - insert at %d of %d", pos, e.n))
	}
	if nd.Kind == End {
		panic("internal error - inserting terminator")
	}
	if e.Room() < 1 {
		return ErrTooComplex
	}
	copy(e.nodes[pos+1:e.n+1], e.nodes[pos:e.n])
	e.nodes[pos] = nd
	e.n++
	return nil
}

func (e *Encoding) Append(nd Node) error {
	return e.Insert(e.n, nd)
}

// AppendEncoding appends all nodes of o.
func (e *Encoding) AppendEncoding(o Encoding) error {
	if err := e.NeedSpace(o.n); err != nil {
		return err
	}
	copy(e.nodes[e.n:], o.nodes[:o.n])
	e.n += o.n
	return nil
}

// At returns the node at i. At(Len()) is the terminator.
func (e Encoding) At(i int) Node {
	if i < 0 || i > e.n {
		panic(fmt.Sprintf("internal error - node %d of %d", i, e.n))
	}
	return e.nodes[i]
}

// Set replaces the node at i keeping its kind.
func (e *Encoding) Set(i int, nd Node) {
	if i < 0 || i >= e.n || e.nodes[i].Kind != nd.Kind {
		panic(fmt.Sprintf("internal error - bad set at %d", i))
	}
	e.nodes[i] = nd
}

// Nodes returns a copy of the nodes in use.
func (e Encoding) Nodes() []Node {
	ret := make([]Node, e.n)
	copy(ret, e.nodes[:e.n])
	return ret
}

// Base returns the innermost node, the terminator for an empty encoding.
func (e Encoding) Base() Node {
	if e.n == 0 {
		return Node{}
	}
	return e.nodes[e.n-1]
}

// Derivations returns the number of pointer, array and function nodes.
func (e Encoding) Derivations() int {
	d := 0
	for i := 0; i < e.n; i++ {
		if e.nodes[i].Kind != Base {
			d++
		}
	}
	return d
}

// Tail returns the encoding starting at node i, e.g. Tail(1) of a pointer is
// the pointed to type.
func (e Encoding) Tail(i int) Encoding {
	if i < 0 || i > e.n {
		panic(fmt.Sprintf("internal error - tail %d of %d", i, e.n))
	}
	var ret Encoding
	copy(ret.nodes[:], e.nodes[i:e.n])
	ret.n = e.n - i
	return ret
}

func (e Encoding) Kind() Kind {
	return e.nodes[0].Kind
}

func (e Encoding) IsPtr() bool {
	return e.nodes[0].Kind == Pointer
}

func (e Encoding) IsArray() bool {
	return e.nodes[0].Kind == Array
}

func (e Encoding) IsFunc() bool {
	return e.nodes[0].Kind == Function
}

func (e Encoding) IsVoid() bool {
	return e.nodes[0].Kind == Base && e.nodes[0].Prim == Void
}

func (e Encoding) IsTagged() bool {
	return e.nodes[0].Kind == Base && e.nodes[0].Prim.IsTagged()
}

func (e Encoding) IsStructOrUnion() bool {
	return e.nodes[0].Kind == Base && (e.nodes[0].Prim == Struct || e.nodes[0].Prim == Union)
}

func (e Encoding) IsInteger() bool {
	return e.nodes[0].Kind == Base && e.nodes[0].Prim.IsInteger()
}

// IsIncomplete reports whether objects of the type have no known size.
func (e Encoding) IsIncomplete() bool {
	nd := e.nodes[0]
	switch nd.Kind {
	case End:
		return true
	case Array:
		if nd.Dim == Unspecified {
			return true
		}
		elem := e.Tail(1)
		return elem.IsIncomplete()
	case Base:
		switch nd.Prim {
		case Void, NoPrim:
			return true
		case Struct, Union, Enum:
			return nd.Tag == nil || !nd.Tag.Defined
		}
	}
	return false
}

// Qual returns the qualifiers of the outermost node.
func (e Encoding) Qual() Qualifier {
	return e.nodes[0].Qual
}

// AddQual adds q to the outermost node.
func (e *Encoding) AddQual(q Qualifier) {
	if e.n == 0 {
		panic("internal error - qualifying empty encoding")
	}
	e.nodes[0].Qual |= q
}

// Decay returns the type a function parameter of type e actually has. Arrays
// become pointers to their element type, functions become pointers to
// functions. The receiver is not modified.
func (e Encoding) Decay() (Encoding, error) {
	switch e.nodes[0].Kind {
	case Array:
		ret := e
		ret.nodes[0] = PtrNode(e.nodes[0].Qual)
		return ret, nil
	case Function:
		ret := e
		if err := ret.Insert(0, PtrNode(e.nodes[0].Qual&QualAddrSize)); err != nil {
			return Encoding{}, err
		}
		return ret, nil
	}
	return e, nil
}

// Equal reports whether both encodings describe the same type.
func (e Encoding) Equal(o Encoding) bool {
	if e.n != o.n {
		return false
	}
	for i := 0; i < e.n; i++ {
		if !nodeEqual(e.nodes[i], o.nodes[i]) {
			return false
		}
	}
	return true
}
