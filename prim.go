package fuse

import (
	"fmt"

	"github.com/fuse-ir/fuse/payload"
)

// PrimitiveType is the closed set of element types a Node can carry. It is
// defined in package payload (see that package's doc comment for why) and
// re-exported here so callers never need to import payload just to name a
// type.
type PrimitiveType = payload.PrimitiveType

const (
	Bool   = payload.Bool
	Int8   = payload.Int8
	Int16  = payload.Int16
	Int32  = payload.Int32
	Int64  = payload.Int64
	UInt8  = payload.UInt8
	UInt16 = payload.UInt16
	UInt32 = payload.UInt32
	UInt64 = payload.UInt64
	Float  = payload.Float
	Double = payload.Double
)

// PrimitiveOperation is the closed set of node operations.
type PrimitiveOperation uint8

const (
	// Bitwise/boolean.
	And PrimitiveOperation = iota
	Or
	Xor
	Not
	Nand
	Nor
	Xnor

	// Arithmetic.
	Add
	Sub
	Mul
	Div
	Neg

	// Comparison.
	Gt
	Ge
	Lt
	Le
	Eq

	// Selection.
	Mux

	// Bit-packing.
	Split
	Merge

	// Meta.
	Constant
	Input
	Output
	CallSubcircuit
	Loop
	SelectOffset
	Custom
)

func (op PrimitiveOperation) String() string {
	switch op {
	case And:
		return "And"
	case Or:
		return "Or"
	case Xor:
		return "Xor"
	case Not:
		return "Not"
	case Nand:
		return "Nand"
	case Nor:
		return "Nor"
	case Xnor:
		return "Xnor"
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	case Mul:
		return "Mul"
	case Div:
		return "Div"
	case Neg:
		return "Neg"
	case Gt:
		return "Gt"
	case Ge:
		return "Ge"
	case Lt:
		return "Lt"
	case Le:
		return "Le"
	case Eq:
		return "Eq"
	case Mux:
		return "Mux"
	case Split:
		return "Split"
	case Merge:
		return "Merge"
	case Constant:
		return "Constant"
	case Input:
		return "Input"
	case Output:
		return "Output"
	case CallSubcircuit:
		return "CallSubcircuit"
	case Loop:
		return "Loop"
	case SelectOffset:
		return "SelectOffset"
	case Custom:
		return "Custom"
	default:
		return fmt.Sprintf("PrimitiveOperation(%d)", uint8(op))
	}
}

// IsMeta reports whether op is one of the non-computational operations that
// constant folding always skips: Input, Output, CallSubcircuit, Loop,
// SelectOffset, Custom.
func (op PrimitiveOperation) IsMeta() bool {
	switch op {
	case Input, Output, CallSubcircuit, Loop, SelectOffset, Custom:
		return true
	default:
		return false
	}
}

// Offset indexes a single element out of a producer node's published
// output vector (e.g. one bit of a Split, one output of a multi-output
// CallSubcircuit).
type Offset uint32
