// Package opset is the per-(operation, type) evaluation dispatch table that
// drives constant folding: given a fully-constant node's operation, its
// operating PrimitiveType, and its constant operand Values, a Policy
// computes the result Value the node would have produced at evaluation
// time.
//
// This mirrors SupraX's ExecuteALU opcode dispatch switch, but keyed by the
// richer (operation, type) pair instead of a single opcode, since the same
// PrimitiveOperation means something different per element type (Add wraps
// at the declared integer width; Add on Float/Double does not wrap at all).
package opset

import (
	"github.com/pkg/errors"

	"github.com/fuse-ir/fuse"
	"github.com/fuse-ir/fuse/payload"
)

// Key identifies one (operation, operating type) cell of the dispatch
// table. For gates and arithmetic/comparison ops, Type is the operand
// type. For Split, Type is the operand (input) type. For Merge, Type is
// the result (output) type.
type Key struct {
	Op   fuse.PrimitiveOperation
	Type fuse.PrimitiveType
}

// Policy evaluates one operation over constant operands.
type Policy struct {
	// Arity is the expected operand count, or -1 if the count varies and
	// the policy checks it itself (Merge, whose operand count is the result
	// type's bit width). Binary gates and arithmetic register arity 2; Apply
	// folds more operands than that through Accumulate.
	Arity int
	Apply func(operands []payload.Value) (payload.Value, error)
}

var table = map[Key]Policy{}

func register(op fuse.PrimitiveOperation, t fuse.PrimitiveType, arity int, fn func([]payload.Value) (payload.Value, error)) {
	table[Key{op, t}] = Policy{Arity: arity, Apply: fn}
}

// Lookup returns the Policy for (op, t), or false if the pair has no
// defined constant-folding semantics — e.g. And on Float.
func Lookup(op fuse.PrimitiveOperation, t fuse.PrimitiveType) (Policy, bool) {
	p, ok := table[Key{op, t}]
	return p, ok
}

// Apply evaluates op over operands at type t, wrapping
// fuse.ErrUnsupportedOperationForType if the pair is not registered.
// And/Or/Xor/Add/Sub/Mul/Div over more than two operands fold left-to-right;
// Nand/Nor/Xnor fold with And/Or/Xor and then negate.
func Apply(op fuse.PrimitiveOperation, t fuse.PrimitiveType, operands []payload.Value) (payload.Value, error) {
	p, ok := Lookup(op, t)
	if !ok {
		return payload.Value{}, errors.Wrapf(fuse.ErrUnsupportedOperationForType, "%s on %s", op, t)
	}
	if p.Arity == 2 && len(operands) > 2 {
		switch op {
		case fuse.And, fuse.Or, fuse.Xor, fuse.Add, fuse.Sub, fuse.Mul, fuse.Div:
			return Accumulate(op, t, operands)
		case fuse.Nand, fuse.Nor, fuse.Xnor:
			base := map[fuse.PrimitiveOperation]fuse.PrimitiveOperation{fuse.Nand: fuse.And, fuse.Nor: fuse.Or, fuse.Xnor: fuse.Xor}[op]
			acc, err := Accumulate(base, t, operands)
			if err != nil {
				return payload.Value{}, err
			}
			return Apply(fuse.Not, t, []payload.Value{acc})
		}
	}
	if p.Arity >= 0 && len(operands) != p.Arity {
		return payload.Value{}, errors.Wrapf(fuse.ErrInvariantViolation, "%s on %s expects %d operands, got %d", op, t, p.Arity, len(operands))
	}
	return p.Apply(operands)
}

// Accumulate folds a binary operation (e.g. a multi-input And/Or/Xor left
// by instruction vectorization, or Add/Mul) left-to-right over two or more
// operands, reusing the binary Policy registered for (op, t).
func Accumulate(op fuse.PrimitiveOperation, t fuse.PrimitiveType, operands []payload.Value) (payload.Value, error) {
	if len(operands) < 2 {
		return payload.Value{}, errors.Wrapf(fuse.ErrInvariantViolation, "%s accumulate needs at least 2 operands, got %d", op, len(operands))
	}
	acc := operands[0]
	for _, next := range operands[1:] {
		var err error
		acc, err = Apply(op, t, []payload.Value{acc, next})
		if err != nil {
			return payload.Value{}, err
		}
	}
	return acc, nil
}

func init() {
	registerBoolGates()
	registerIntegerArith()
	registerFloatArith()
	registerComparisons()
	registerMux()
	registerSplitMerge()
}

func registerBoolGates() {
	bin := func(fn func(a, b bool) bool) func([]payload.Value) (payload.Value, error) {
		return func(ops []payload.Value) (payload.Value, error) {
			return payload.ScalarBool(fn(ops[0].Bool(), ops[1].Bool())), nil
		}
	}
	register(fuse.And, fuse.Bool, 2, bin(func(a, b bool) bool { return a && b }))
	register(fuse.Or, fuse.Bool, 2, bin(func(a, b bool) bool { return a || b }))
	register(fuse.Xor, fuse.Bool, 2, bin(func(a, b bool) bool { return a != b }))
	register(fuse.Nand, fuse.Bool, 2, bin(func(a, b bool) bool { return !(a && b) }))
	register(fuse.Nor, fuse.Bool, 2, bin(func(a, b bool) bool { return !(a || b) }))
	register(fuse.Xnor, fuse.Bool, 2, bin(func(a, b bool) bool { return a == b }))
	register(fuse.Not, fuse.Bool, 1, func(ops []payload.Value) (payload.Value, error) {
		return payload.ScalarBool(!ops[0].Bool()), nil
	})
}

var signedTypes = []fuse.PrimitiveType{fuse.Int8, fuse.Int16, fuse.Int32, fuse.Int64}
var unsignedTypes = []fuse.PrimitiveType{fuse.UInt8, fuse.UInt16, fuse.UInt32, fuse.UInt64}

func registerIntegerArith() {
	for _, t := range signedTypes {
		t := t
		register(fuse.Add, t, 2, signedBin(t, func(a, b int64) int64 { return a + b }))
		register(fuse.Sub, t, 2, signedBin(t, func(a, b int64) int64 { return a - b }))
		register(fuse.Mul, t, 2, signedBin(t, func(a, b int64) int64 { return a * b }))
		register(fuse.Div, t, 2, func(ops []payload.Value) (payload.Value, error) {
			b := ops[1].Int()
			if b == 0 {
				return payload.Value{}, errors.Wrapf(fuse.ErrInvariantViolation, "%s: division by zero constant", t)
			}
			return payload.ScalarInt(t, ops[0].Int()/b), nil
		})
		register(fuse.Neg, t, 1, func(ops []payload.Value) (payload.Value, error) {
			return payload.ScalarInt(t, -ops[0].Int()), nil
		})
	}
	for _, t := range unsignedTypes {
		t := t
		register(fuse.Add, t, 2, unsignedBin(t, func(a, b uint64) uint64 { return a + b }))
		register(fuse.Sub, t, 2, unsignedBin(t, func(a, b uint64) uint64 { return a - b }))
		register(fuse.Mul, t, 2, unsignedBin(t, func(a, b uint64) uint64 { return a * b }))
		register(fuse.Div, t, 2, func(ops []payload.Value) (payload.Value, error) {
			b := ops[1].UInt()
			if b == 0 {
				return payload.Value{}, errors.Wrapf(fuse.ErrInvariantViolation, "%s: division by zero constant", t)
			}
			return payload.ScalarUInt(t, ops[0].UInt()/b), nil
		})
	}
}

func signedBin(t fuse.PrimitiveType, fn func(a, b int64) int64) func([]payload.Value) (payload.Value, error) {
	return func(ops []payload.Value) (payload.Value, error) {
		return payload.ScalarInt(t, fn(ops[0].Int(), ops[1].Int())), nil
	}
}

func unsignedBin(t fuse.PrimitiveType, fn func(a, b uint64) uint64) func([]payload.Value) (payload.Value, error) {
	return func(ops []payload.Value) (payload.Value, error) {
		return payload.ScalarUInt(t, fn(ops[0].UInt(), ops[1].UInt())), nil
	}
}

func registerFloatArith() {
	for _, t := range []fuse.PrimitiveType{fuse.Float, fuse.Double} {
		t := t
		register(fuse.Add, t, 2, floatBin(t, func(a, b float64) float64 { return a + b }))
		register(fuse.Sub, t, 2, floatBin(t, func(a, b float64) float64 { return a - b }))
		register(fuse.Mul, t, 2, floatBin(t, func(a, b float64) float64 { return a * b }))
		register(fuse.Div, t, 2, floatBin(t, func(a, b float64) float64 { return a / b }))
		register(fuse.Neg, t, 1, func(ops []payload.Value) (payload.Value, error) {
			return scalarOfFloat(t, -ops[0].AsFloat64()), nil
		})
	}
}

func floatBin(t fuse.PrimitiveType, fn func(a, b float64) float64) func([]payload.Value) (payload.Value, error) {
	return func(ops []payload.Value) (payload.Value, error) {
		return scalarOfFloat(t, fn(ops[0].AsFloat64(), ops[1].AsFloat64())), nil
	}
}

func scalarOfFloat(t fuse.PrimitiveType, v float64) payload.Value {
	if t == fuse.Float {
		return payload.ScalarFloat(float32(v))
	}
	return payload.ScalarDouble(v)
}

func registerComparisons() {
	numeric := append(append([]fuse.PrimitiveType{}, signedTypes...), unsignedTypes...)
	numeric = append(numeric, fuse.Float, fuse.Double)
	for _, t := range numeric {
		t := t
		register(fuse.Gt, t, 2, cmp(t, func(a, b float64) bool { return a > b }))
		register(fuse.Ge, t, 2, cmp(t, func(a, b float64) bool { return a >= b }))
		register(fuse.Lt, t, 2, cmp(t, func(a, b float64) bool { return a < b }))
		register(fuse.Le, t, 2, cmp(t, func(a, b float64) bool { return a <= b }))
		register(fuse.Eq, t, 2, cmp(t, func(a, b float64) bool { return a == b }))
	}
	register(fuse.Eq, fuse.Bool, 2, func(ops []payload.Value) (payload.Value, error) {
		return payload.ScalarBool(ops[0].Bool() == ops[1].Bool()), nil
	})
}

func cmp(t fuse.PrimitiveType, fn func(a, b float64) bool) func([]payload.Value) (payload.Value, error) {
	return func(ops []payload.Value) (payload.Value, error) {
		return payload.ScalarBool(fn(ops[0].AsFloat64(), ops[1].AsFloat64())), nil
	}
}

// registerMux registers Mux for every type: operand 0 is the Bool
// condition, operands 1 and 2 are the two branches of operating type t.
func registerMux() {
	all := append(append([]fuse.PrimitiveType{fuse.Bool}, signedTypes...), unsignedTypes...)
	all = append(all, fuse.Float, fuse.Double)
	for _, t := range all {
		t := t
		register(fuse.Mux, t, 3, func(ops []payload.Value) (payload.Value, error) {
			if ops[0].Bool() {
				return ops[1], nil
			}
			return ops[2], nil
		})
	}
}

// registerSplitMerge wires bit decomposition (Split) and recomposition
// (Merge). Split is keyed by the operand type being decomposed; Merge is
// keyed by the result type being assembled.
//
// Convention (pinned, not symmetric): Split emits bits least-significant
// first (element 0 = bit 0); Merge consumes bits most-significant first
// (element 0 = the top bit of the result). A Split output fed straight
// into the matching Merge therefore does not round-trip without reversing
// the bit vector first — this asymmetry is deliberate, not a defect.
func registerSplitMerge() {
	all := append(append([]fuse.PrimitiveType{}, signedTypes...), unsignedTypes...)
	for _, t := range all {
		t := t
		register(fuse.Split, t, 1, func(ops []payload.Value) (payload.Value, error) {
			n := t.NumBits()
			var bits uint64
			if t.IsSigned() {
				bits = uint64(ops[0].Int())
			} else {
				bits = ops[0].UInt()
			}
			out := make([]bool, n)
			for i := 0; i < n; i++ {
				out[i] = (bits>>uint(i))&1 == 1
			}
			return payload.BoolVector(out), nil
		})
		register(fuse.Merge, t, -1, func(ops []payload.Value) (payload.Value, error) {
			n := len(ops)
			if n != t.NumBits() {
				return payload.Value{}, errors.Wrapf(fuse.ErrInvariantViolation, "Merge to %s expects %d bits, got %d", t, t.NumBits(), n)
			}
			var acc uint64
			for i := 0; i < n; i++ {
				bit := uint64(0)
				if ops[i].Bool() {
					bit = 1
				}
				acc = acc<<1 | bit
			}
			if t.IsSigned() {
				return payload.ScalarInt(t, signExtend(acc, n)), nil
			}
			return payload.ScalarUInt(t, acc), nil
		})
	}
}

func signExtend(v uint64, bits int) int64 {
	shift := uint(64 - bits)
	return int64(v<<shift) >> shift
}
