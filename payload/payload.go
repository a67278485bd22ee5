// Package payload implements the self-describing constant encoding a
// Constant node carries: a scalar or flat vector of one of PrimitiveType's
// PayloadType-widened representations, tagged with the narrower declared
// element type so that arithmetic wraps at the declared width rather than
// at the (wider) storage width.
//
// This is the Go realization of SupraX's ALU operand widening: ExecuteALU
// always computes through a 64-bit datapath regardless of the logical
// operand width, and callers narrow on the way out. Here the "always wide"
// storage is PrimitiveType.PayloadType, and the ScalarInt/ScalarUInt
// constructors do the narrowing so Add on a UInt8 actually wraps mod 256.
package payload

import (
	"fmt"
	"math"
)

// Value is a constant payload: a flat, row-major vector of scalars of one
// declared PrimitiveType. A scalar constant is a Value with exactly one
// element and a nil Shape.
type Value struct {
	Declared PrimitiveType
	Shape    Shape

	bools  []bool
	ints   []int64
	uints  []uint64
	f32s   []float32
	f64s   []float64
}

// ScalarBool returns a scalar Bool payload.
func ScalarBool(v bool) Value {
	return Value{Declared: Bool, bools: []bool{v}}
}

// ScalarInt returns a scalar signed-integer payload declared as t (one of
// Int8/Int16/Int32/Int64), storing v wrapped to t's width in an Int64.
func ScalarInt(t PrimitiveType, v int64) Value {
	return Value{Declared: t, ints: []int64{narrowSigned(t, v)}}
}

// ScalarUInt returns a scalar unsigned-integer payload declared as t (one
// of UInt8/UInt16/UInt32/UInt64), storing v wrapped to t's width in a UInt64.
func ScalarUInt(t PrimitiveType, v uint64) Value {
	return Value{Declared: t, uints: []uint64{narrowUnsigned(t, v)}}
}

// ScalarFloat returns a scalar Float payload.
func ScalarFloat(v float32) Value {
	return Value{Declared: Float, f32s: []float32{v}}
}

// ScalarDouble returns a scalar Double payload.
func ScalarDouble(v float64) Value {
	return Value{Declared: Double, f64s: []float64{v}}
}

// BoolVector returns a 1-D Bool vector payload, e.g. the result of Split.
func BoolVector(bits []bool) Value {
	cp := make([]bool, len(bits))
	copy(cp, bits)
	return Value{Declared: Bool, Shape: Shape{int64(len(bits))}, bools: cp}
}

// narrowSigned wraps v to the bit width of t (a signed integer type),
// matching the AccumulationType semantics of the operation it backs.
func narrowSigned(t PrimitiveType, v int64) int64 {
	switch t {
	case Int8:
		return int64(int8(v))
	case Int16:
		return int64(int16(v))
	case Int32:
		return int64(int32(v))
	default:
		return v
	}
}

// narrowUnsigned wraps v to the bit width of t (an unsigned integer type).
func narrowUnsigned(t PrimitiveType, v uint64) uint64 {
	switch t {
	case UInt8:
		return uint64(uint8(v))
	case UInt16:
		return uint64(uint16(v))
	case UInt32:
		return uint64(uint32(v))
	default:
		return v
	}
}

// IsVector reports whether v holds more than one element or carries a
// non-empty Shape.
func (v Value) IsVector() bool {
	return v.Len() > 1 || len(v.Shape) > 0
}

// Len returns the number of scalar elements v holds.
func (v Value) Len() int {
	switch {
	case v.bools != nil:
		return len(v.bools)
	case v.ints != nil:
		return len(v.ints)
	case v.uints != nil:
		return len(v.uints)
	case v.f32s != nil:
		return len(v.f32s)
	case v.f64s != nil:
		return len(v.f64s)
	default:
		return 0
	}
}

// Index returns the scalar element at position i as its own Value,
// preserving Declared but clearing Shape.
func (v Value) Index(i int) Value {
	out := Value{Declared: v.Declared}
	switch {
	case v.bools != nil:
		out.bools = []bool{v.bools[i]}
	case v.ints != nil:
		out.ints = []int64{v.ints[i]}
	case v.uints != nil:
		out.uints = []uint64{v.uints[i]}
	case v.f32s != nil:
		out.f32s = []float32{v.f32s[i]}
	case v.f64s != nil:
		out.f64s = []float64{v.f64s[i]}
	}
	return out
}

// Bool returns the scalar bool value. Panics if v is not a Bool payload.
func (v Value) Bool() bool {
	return v.bools[0]
}

// Int returns the scalar signed value widened to int64.
func (v Value) Int() int64 {
	return v.ints[0]
}

// UInt returns the scalar unsigned value widened to uint64.
func (v Value) UInt() uint64 {
	return v.uints[0]
}

// Float32 returns the scalar Float value.
func (v Value) Float32() float32 {
	return v.f32s[0]
}

// Float64 returns the scalar Double value.
func (v Value) Float64() float64 {
	return v.f64s[0]
}

// Bools returns the backing bool slice (for Bool vector payloads such as a
// folded Split result).
func (v Value) Bools() []bool {
	return v.bools
}

func (v Value) String() string {
	switch v.Declared {
	case Bool:
		if v.IsVector() {
			return fmt.Sprintf("Bool%v", v.bools)
		}
		return fmt.Sprintf("%v", v.bools[0])
	case Float:
		return fmt.Sprintf("%v", v.f32s[0])
	case Double:
		return fmt.Sprintf("%v", v.f64s[0])
	default:
		if v.Declared.IsSigned() {
			return fmt.Sprintf("%d", v.ints[0])
		}
		return fmt.Sprintf("%d", v.uints[0])
	}
}

// AsFloat64 returns v's scalar numeric value widened to float64, for
// dispatch code that needs a single numeric representation (e.g. Mux
// condition truthiness never needs this, but comparisons across mixed
// declared widths within the same family do).
func (v Value) AsFloat64() float64 {
	switch v.Declared {
	case Float:
		return float64(v.f32s[0])
	case Double:
		return v.f64s[0]
	default:
		if v.Declared.IsSigned() {
			return float64(v.ints[0])
		}
		return float64(v.uints[0])
	}
}

// Equal reports whether v and other encode the same declared type, shape,
// and element values.
func (v Value) Equal(other Value) bool {
	if v.Declared != other.Declared || !v.Shape.Equal(other.Shape) || v.Len() != other.Len() {
		return false
	}
	switch {
	case v.bools != nil:
		for i := range v.bools {
			if v.bools[i] != other.bools[i] {
				return false
			}
		}
	case v.ints != nil:
		for i := range v.ints {
			if v.ints[i] != other.ints[i] {
				return false
			}
		}
	case v.uints != nil:
		for i := range v.uints {
			if v.uints[i] != other.uints[i] {
				return false
			}
		}
	case v.f32s != nil:
		for i := range v.f32s {
			if v.f32s[i] != other.f32s[i] && !(math.IsNaN(float64(v.f32s[i])) && math.IsNaN(float64(other.f32s[i]))) {
				return false
			}
		}
	case v.f64s != nil:
		for i := range v.f64s {
			if v.f64s[i] != other.f64s[i] && !(math.IsNaN(v.f64s[i]) && math.IsNaN(other.f64s[i])) {
				return false
			}
		}
	}
	return true
}
