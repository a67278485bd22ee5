// Package equiv checks two Bool circuits for semantic equivalence by
// compiling both into one shared and-inverter graph with common inputs,
// XOR-ing each pair of corresponding outputs, OR-ing the XORs together,
// and asking a SAT solver whether that OR can ever be true. If it cannot
// (UNSAT), the circuits agree on every input assignment — full exhaustive
// coverage a hand-enumerated input-assignment test can only approximate.
package equiv

import (
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/fuse-ir/fuse"
)

// Equivalent reports whether a and b compute the same function: same
// arity, same Input-node order, same number of Output nodes, and — for
// every one of the 2^n input assignments — pointwise identical outputs.
// Only Bool-typed circuits are supported: Split/Merge/arithmetic element
// types have no direct and-inverter encoding here.
//
// m resolves CallSubcircuit nodes reached from a or b by inlining the
// named callee's body; pass nil if neither circuit contains one. A
// callee must publish exactly one output.
func Equivalent(a, b *fuse.Circuit, m *fuse.Module) (bool, error) {
	ins1, outs1 := a.Inputs(), a.Outputs()
	ins2, outs2 := b.Inputs(), b.Outputs()
	if len(ins1) != len(ins2) {
		return false, fmt.Errorf("equiv: input arity mismatch: %d vs %d", len(ins1), len(ins2))
	}
	if len(outs1) != len(outs2) {
		return false, fmt.Errorf("equiv: output arity mismatch: %d vs %d", len(outs1), len(outs2))
	}

	c := logic.NewCCap(4 * (a.Len() + b.Len() + 1))
	sharedInputs := make([]z.Lit, len(ins1))
	for i := range sharedInputs {
		sharedInputs[i] = c.Lit()
	}

	litsA, err := compile(c, a, sharedInputs, m)
	if err != nil {
		return false, err
	}
	litsB, err := compile(c, b, sharedInputs, m)
	if err != nil {
		return false, err
	}

	var diffs []z.Lit
	for i := range outs1 {
		la := litsA[outs1[i].Inputs[0].Producer]
		lb := litsB[outs2[i].Inputs[0].Producer]
		diffs = append(diffs, c.Xor(la, lb))
	}
	anyDiff := c.Ors(diffs...)

	g := gini.New()
	c.ToCnf(g)
	g.Assume(anyDiff)
	result := g.Solve()
	// result == -1 (UNSAT): no assignment makes the circuits disagree.
	return result == -1, nil
}

// compile lowers circuit's Bool nodes into logic.C literals, returning each
// node's literal keyed by NodeId. inputs supplies the literal for circuit's
// Input nodes in declaration order, shared across both circuits being
// compared so And/Or/Xor gates of a and b read the same input variables. m
// resolves any CallSubcircuit node's callee by recursive inlining; it may
// be nil if circuit has none.
func compile(c *logic.C, circuit *fuse.Circuit, inputs []z.Lit, m *fuse.Module) (map[fuse.NodeId]z.Lit, error) {
	lits := make(map[fuse.NodeId]z.Lit, circuit.Len())
	inputIdx := 0
	for _, n := range circuit.Nodes() {
		if n.Outputs != nil && len(n.Outputs) > 0 && n.Outputs[0].Type != fuse.Bool && n.Op != fuse.Output {
			return nil, fmt.Errorf("equiv: node %d has non-Bool type %s, unsupported", n.ID, n.Outputs[0].Type)
		}
		switch n.Op {
		case fuse.Input:
			lits[n.ID] = inputs[inputIdx]
			inputIdx++
		case fuse.Constant:
			if n.Payload.Bool() {
				lits[n.ID] = c.T
			} else {
				lits[n.ID] = c.F
			}
		case fuse.And:
			lits[n.ID] = c.Ands(operandLits(n, lits)...)
		case fuse.Or:
			lits[n.ID] = c.Ors(operandLits(n, lits)...)
		case fuse.Xor:
			ops := operandLits(n, lits)
			acc := ops[0]
			for _, o := range ops[1:] {
				acc = c.Xor(acc, o)
			}
			lits[n.ID] = acc
		case fuse.Not:
			lits[n.ID] = c.Not(lits[n.Inputs[0].Producer])
		case fuse.Nand:
			lits[n.ID] = c.Not(c.Ands(operandLits(n, lits)...))
		case fuse.Nor:
			lits[n.ID] = c.Not(c.Ors(operandLits(n, lits)...))
		case fuse.Xnor:
			ops := operandLits(n, lits)
			acc := ops[0]
			for _, o := range ops[1:] {
				acc = c.Xor(acc, o)
			}
			lits[n.ID] = c.Not(acc)
		case fuse.Mux:
			ops := operandLits(n, lits)
			cond, a, b := ops[0], ops[1], ops[2]
			lits[n.ID] = c.Or(c.And(cond, a), c.And(c.Not(cond), b))
		case fuse.Output:
			// Outputs contribute no literal of their own; Equivalent reads
			// straight through to their producer's literal.
		case fuse.CallSubcircuit:
			if m == nil {
				return nil, fmt.Errorf("equiv: node %d calls subcircuit %q but no module was supplied", n.ID, n.Subcircuit)
			}
			callee, ok := m.Circuit(n.Subcircuit)
			if !ok {
				return nil, fmt.Errorf("equiv: node %d calls undefined subcircuit %q", n.ID, n.Subcircuit)
			}
			calleeOutputs := callee.Outputs()
			if len(calleeOutputs) != 1 {
				return nil, fmt.Errorf("equiv: subcircuit %q publishes %d outputs, only single-output callees are supported", n.Subcircuit, len(calleeOutputs))
			}
			calleeLits, err := compile(c, callee, operandLits(n, lits), m)
			if err != nil {
				return nil, err
			}
			lits[n.ID] = calleeLits[calleeOutputs[0].Inputs[0].Producer]
		default:
			return nil, fmt.Errorf("equiv: node %d has unsupported operation %s", n.ID, n.Op)
		}
	}
	return lits, nil
}

func operandLits(n fuse.Node, lits map[fuse.NodeId]z.Lit) []z.Lit {
	out := make([]z.Lit, len(n.Inputs))
	for i, in := range n.Inputs {
		out[i] = lits[in.Producer]
	}
	return out
}
