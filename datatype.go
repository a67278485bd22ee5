package fuse

import "github.com/fuse-ir/fuse/payload"

// SecurityLevel annotates a DataType with an (opaque to the passes)
// sharing/representation scheme. The passes never branch on it; it exists
// so a frontend or backend can round-trip the annotation through the IR.
type SecurityLevel uint8

const (
	Plaintext SecurityLevel = iota
	Shared
)

func (s SecurityLevel) String() string {
	switch s {
	case Plaintext:
		return "Plaintext"
	case Shared:
		return "Shared"
	default:
		return "Unknown"
	}
}

// Shape is a row-major tensor shape over primitive elements. A nil or
// empty Shape means scalar. Defined in package payload alongside
// PrimitiveType, for the same import-cycle reason; re-exported here.
type Shape = payload.Shape

// DataType is a PrimitiveType plus an optional tensor shape and an opaque
// security annotation.
type DataType struct {
	Type     PrimitiveType
	Shape    Shape
	Security SecurityLevel
}

// Scalar returns a scalar DataType of the given PrimitiveType with
// Plaintext security.
func Scalar(t PrimitiveType) DataType {
	return DataType{Type: t}
}

// IsScalar reports whether d has an empty shape.
func (d DataType) IsScalar() bool {
	return len(d.Shape) == 0
}

// NumElements returns the total element count of d.
func (d DataType) NumElements() int64 {
	return d.Shape.NumElements()
}

// SplitResultType returns the DataType produced by Split on an operand of
// type t: a Bool vector with one element per bit of t, little-endian order
// (element 0 is the least-significant bit).
func SplitResultType(t PrimitiveType) DataType {
	return DataType{Type: Bool, Shape: Shape{int64(t.NumBits())}}
}
