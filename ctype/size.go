package ctype

import "math"

// Target describes the sizes of the machine being compiled for.
type Target struct {
	Name    string
	PtrSize int
	prims   [Inferred + 1]int
}

// Target6502 is the common 6502 target with 16 bit int and pointers.
var Target6502 = &Target{
	Name:    "6502",
	PtrSize: 2,
	prims: [Inferred + 1]int{
		Void:   0,
		Char:   1,
		SChar:  1,
		UChar:  1,
		Short:  2,
		UShort: 2,
		Int:    2,
		UInt:   2,
		Long:   4,
		ULong:  4,
		Float:  4,
		Double: 4,
	},
}

// PrimSize returns the size of a primitive that has no tag.
func (t *Target) PrimSize(p Primitive) int {
	return t.prims[p]
}

// SizeOf returns the size in bytes of an object of type e. Incomplete types
// and functions have size 0, sizes too large for an int64 are
// math.MaxInt64.
func (t *Target) SizeOf(e Encoding) int64 {
	nd := e.At(0)
	switch nd.Kind {
	case Pointer:
		return int64(t.PtrSize)
	case Array:
		if nd.Dim <= 0 {
			return 0
		}
		elem := t.SizeOf(e.Tail(1))
		// Sizes saturate instead of wrapping around.
		if elem > 0 && nd.Dim > math.MaxInt64/elem {
			return math.MaxInt64
		}
		return nd.Dim * elem
	case Base:
		if nd.Tag != nil {
			if nd.Prim == Enum {
				if nd.Tag.Underlying == NoPrim {
					return int64(t.prims[Int])
				}
				return int64(t.prims[nd.Tag.Underlying])
			}
			return int64(nd.Tag.Size)
		}
		return int64(t.prims[nd.Prim])
	}
	return 0
}

// SizeOf returns the size of e on the 6502 target.
func (e Encoding) SizeOf() int64 {
	return Target6502.SizeOf(e)
}
