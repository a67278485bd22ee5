package main

import (
	"github.com/fuse-ir/fuse"
	"github.com/fuse-ir/fuse/payload"
)

// buildFixtureModule constructs a small in-process Module exercising every
// pass the canonical pipeline runs: a long Xor chain for vectorization, a
// constant subexpression for folding, a repeated multiply-add shape for
// FSR, and one unreachable node and one unreachable circuit for DNE to
// prune. There is no file format to load here, so the fixture is built
// directly against the object model, the same way the pass tests build
// their circuits.
func buildFixtureModule() *fuse.Module {
	main := fuse.NewCircuit("main")

	// A 16-wide Xor chain: vectorization collapses it to one wide gate.
	var bits []fuse.NodeId
	for i := 0; i < 16; i++ {
		bits = append(bits, main.AddInput("b", fuse.Scalar(fuse.Bool)))
	}
	acc := bits[0]
	for _, b := range bits[1:] {
		acc = main.AddGate(fuse.Xor, []fuse.Edge{{Producer: acc}, {Producer: b}}, fuse.Scalar(fuse.Bool))
	}
	main.AddOutput(fuse.Edge{Producer: acc}, fuse.Scalar(fuse.Bool))

	// A fully-constant subexpression: constant folding collapses it to one
	// Constant node; the two constants it was built from become dead weight
	// for DNE to remove afterward.
	c1 := main.AddConstant(payload.ScalarUInt(fuse.UInt32, 40), fuse.Scalar(fuse.UInt32))
	c2 := main.AddConstant(payload.ScalarUInt(fuse.UInt32, 2), fuse.Scalar(fuse.UInt32))
	sum := main.AddGate(fuse.Add, []fuse.Edge{{Producer: c1}, {Producer: c2}}, fuse.Scalar(fuse.UInt32))
	main.AddOutput(fuse.Edge{Producer: sum}, fuse.Scalar(fuse.UInt32))

	// Three independent multiply-add triples: FSR factors the recurring
	// shape into one subcircuit plus three call sites.
	for i := 0; i < 3; i++ {
		a := main.AddInput("a", fuse.Scalar(fuse.UInt32))
		b := main.AddInput("b", fuse.Scalar(fuse.UInt32))
		d := main.AddInput("c", fuse.Scalar(fuse.UInt32))
		mul := main.AddGate(fuse.Mul, []fuse.Edge{{Producer: a}, {Producer: b}}, fuse.Scalar(fuse.UInt32))
		add := main.AddGate(fuse.Add, []fuse.Edge{{Producer: mul}, {Producer: d}}, fuse.Scalar(fuse.UInt32))
		main.AddOutput(fuse.Edge{Producer: add}, fuse.Scalar(fuse.UInt32))
	}

	// An unreachable node: never read by any Output, DNE drops it.
	dx := main.AddInput("dead_x", fuse.Scalar(fuse.UInt32))
	dy := main.AddInput("dead_y", fuse.Scalar(fuse.UInt32))
	main.AddGate(fuse.Mul, []fuse.Edge{{Producer: dx}, {Producer: dy}}, fuse.Scalar(fuse.UInt32))

	if err := main.Finalize(); err != nil {
		panic(err)
	}

	// An unreachable circuit: nothing calls it from the entry point, so
	// module-level DNE with RemoveUnusedCircuits drops it entirely.
	orphan := fuse.NewCircuit("orphan")
	ox := orphan.AddInput("x", fuse.Scalar(fuse.Bool))
	orphan.AddOutput(fuse.Edge{Producer: ox}, fuse.Scalar(fuse.Bool))
	if err := orphan.Finalize(); err != nil {
		panic(err)
	}

	m := fuse.NewModule("main")
	m.AddCircuit(main)
	m.AddCircuit(orphan)
	return m
}
