// Package vectorize implements instruction vectorization: collapsing a
// deep chain/tree of the same associative, single-consumer gate into one
// multi-input node. A node only merges into a wider op when nothing else
// still depends on its intermediate result, tracked by a per-node
// consumer count over the whole circuit.
package vectorize

import (
	"github.com/fuse-ir/fuse"
)

// Op is the set of gates vectorization is defined over.
type Op = fuse.PrimitiveOperation

// Params configures one run.
type Params struct {
	// Op is the gate to fuse: And, Or, Xor, or Not.
	Op Op
	// MinGates is the minimum flattened input count a node must reach
	// before it is rewritten; shorter chains are left alone.
	MinGates int
	// MaxDepth bounds how many single-consumer intermediate nodes fusion
	// looks through from the root.
	MaxDepth int
	// AllowCrossType permits flattening through a producer of the same Op
	// but a different operand element type. Off by default: the
	// accumulate semantics for And/Or/Xor/Not do not mix element types.
	AllowCrossType bool
}

// Result summarizes one vectorization run.
type Result struct {
	NodesRewritten int
	GatesFused     int
}

// Circuit fuses chains of Params.Op in c, in place. The caller should run
// DNE afterward to drop the now-unreachable intermediate nodes.
func Circuit(c *fuse.Circuit, p Params) (Result, error) {
	if p.Op == fuse.Not {
		return circuitNot(c, p)
	}
	return circuitAssociative(c, p)
}

func consumerCounts(c *fuse.Circuit) map[fuse.NodeId]int {
	counts := make(map[fuse.NodeId]int)
	for _, n := range c.Nodes() {
		for _, in := range n.Inputs {
			counts[in.Producer]++
		}
	}
	return counts
}

func circuitAssociative(c *fuse.Circuit, p Params) (Result, error) {
	consumers := consumerCounts(c)
	res := Result{}

	for _, n := range c.Nodes() {
		if n.Op != p.Op {
			continue
		}
		flattened := flatten(c, n, p, consumers)
		if len(flattened) < p.MinGates || len(flattened) == len(n.Inputs) {
			continue
		}
		if err := c.SetInputs(n.ID, flattened); err != nil {
			return Result{}, err
		}
		res.NodesRewritten++
		res.GatesFused += len(flattened) - len(n.Inputs)
	}

	if err := c.Finalize(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// flatten walks n's operand tree, descending into any input whose producer
// shares n's operation, has exactly one consumer in the whole circuit, and
// lies within p.MaxDepth of n. The collected leaves, in left-to-right
// order, become the flattened input list.
func flatten(c *fuse.Circuit, n fuse.Node, p Params, consumers map[fuse.NodeId]int) []fuse.Edge {
	var leaves []fuse.Edge
	var visit func(in fuse.Edge, depth int)
	visit = func(in fuse.Edge, depth int) {
		prod, ok := c.Node(in.Producer)
		fusable := ok && depth < p.MaxDepth && prod.Op == p.Op && consumers[prod.ID] == 1 && len(prod.Outputs) == 1
		if fusable && !p.AllowCrossType && prod.Outputs[0].Type != n.Outputs[0].Type {
			fusable = false
		}
		if !fusable {
			leaves = append(leaves, in)
			return
		}
		for _, pin := range prod.Inputs {
			visit(pin, depth+1)
		}
	}
	for _, in := range n.Inputs {
		visit(in, 0)
	}
	return leaves
}

// circuitNot folds double-negation: Not(Not(x)) computes x, so every
// consumer of the outer Not is rewritten to read x directly, bypassing
// both Not nodes. min_gates/max_depth do not apply here — a cancelling
// pair collapses regardless of chain length.
func circuitNot(c *fuse.Circuit, p Params) (Result, error) {
	res := Result{}
	for _, n := range c.Nodes() {
		if n.Op != fuse.Not || len(n.Inputs) != 1 {
			continue
		}
		inner, ok := c.Node(n.Inputs[0].Producer)
		if !ok || inner.Op != fuse.Not || len(inner.Inputs) != 1 {
			continue
		}
		if err := c.ReplaceAllUses(n.ID, inner.Inputs[0]); err != nil {
			return Result{}, err
		}
		res.NodesRewritten++
		res.GatesFused++
	}
	if err := c.Finalize(); err != nil {
		return Result{}, err
	}
	return res, nil
}
