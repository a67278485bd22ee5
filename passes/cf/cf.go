// Package cf implements constant folding: replacing a node whose every
// input traces back to a Constant with a single Constant node carrying the
// precomputed result, evaluated through opset's per-(operation, type)
// dispatch table.
package cf

import (
	"github.com/sirupsen/logrus"

	"github.com/fuse-ir/fuse"
	"github.com/fuse-ir/fuse/opset"
	"github.com/fuse-ir/fuse/payload"
)

// Result summarizes one constant-folding run over a circuit.
type Result struct {
	TotalNodes  int
	FoldedNodes int
}

// Circuit folds every fully-constant node of c into a Constant, returning a
// new Circuit. DNE is the caller's responsibility afterward: folding a node
// does not remove the Constant nodes it replaced from the graph on its own,
// it only turns now-unused computation nodes into unreferenced dead weight.
// If a fully-constant node's (operation, type) pair has no evaluator
// registered in opset, Circuit aborts and returns
// ErrUnsupportedOperationForType; c itself is never mutated.
func Circuit(c *fuse.Circuit) (*fuse.Circuit, Result, error) {
	out := fuse.NewCircuit(c.Name)
	values := make(map[fuse.NodeId]payload.Value, c.Len())
	remap := make(map[fuse.NodeId]fuse.NodeId, c.Len())
	res := Result{TotalNodes: c.Len()}

	for _, n := range c.Nodes() {
		newID, folded, err := foldNode(c, out, n, values, remap)
		if err != nil {
			return nil, Result{}, err
		}
		remap[n.ID] = newID
		if folded {
			res.FoldedNodes++
			logrus.WithFields(logrus.Fields{
				"circuit":   c.Name,
				"node_id":   n.ID,
				"operation": n.Op,
				"type":      n.OutputType().Type,
			}).Debug("cf: folded node")
		}
	}

	logrus.WithFields(logrus.Fields{
		"circuit":      c.Name,
		"folded_count": res.FoldedNodes,
		"total_count":  res.TotalNodes,
	}).Debug("cf: circuit summary")
	return out, res, nil
}

// foldNode appends n's replacement into out: a Constant if n is
// computational, fully determined inputs, and its (op, type) pair is
// registered in opset; an input-rewritten copy of n otherwise.
func foldNode(c, out *fuse.Circuit, n fuse.Node, values map[fuse.NodeId]payload.Value, remap map[fuse.NodeId]fuse.NodeId) (fuse.NodeId, bool, error) {
	if n.Op == fuse.Constant {
		values[n.ID] = *n.Payload
		return out.AddConstant(*n.Payload, n.Outputs[0]), false, nil
	}

	rewritten := make([]fuse.Edge, len(n.Inputs))
	operands := make([]payload.Value, len(n.Inputs))
	allConst := !n.Op.IsMeta() && len(n.Inputs) > 0
	for i, in := range n.Inputs {
		rewritten[i] = fuse.Edge{Producer: remap[in.Producer], Offset: in.Offset}
		v, ok := values[in.Producer]
		if !ok || !allConst {
			allConst = false
			continue
		}
		if in.Offset != 0 {
			v = v.Index(int(in.Offset))
		}
		operands[i] = v
	}

	if !allConst {
		return mirror(out, n, rewritten), false, nil
	}

	operandType := operandTypeOf(c, n)
	result, err := opset.Apply(n.Op, operandType, operands)
	if err != nil {
		return 0, false, err
	}

	id := out.AddConstant(result, n.Outputs[0])
	values[n.ID] = result
	return id, true, nil
}

// operandTypeOf returns the opset dispatch key's Type component for n: the
// output type for Merge (the assembled result's type has no single operand
// to read it from, every bit operand is Bool), the first operand's
// producer output type otherwise — this is the operating type for gates,
// arithmetic, and comparisons alike (comparisons publish Bool but operate
// over their operands' type, e.g. Gt on two Int32s).
func operandTypeOf(c *fuse.Circuit, n fuse.Node) fuse.PrimitiveType {
	if n.Op == fuse.Merge || len(n.Inputs) == 0 {
		return n.Outputs[0].Type
	}
	in := n.Inputs[0]
	producer, ok := c.Node(in.Producer)
	if !ok {
		return n.Outputs[0].Type
	}
	return producer.Outputs[in.Offset].Type
}

func mirror(out *fuse.Circuit, n fuse.Node, rewritten []fuse.Edge) fuse.NodeId {
	switch n.Op {
	case fuse.Input:
		return out.AddInput(n.InputName, n.Outputs[0])
	case fuse.Output:
		return out.AddOutput(rewritten[0], n.Outputs[0])
	case fuse.CallSubcircuit:
		return out.AddCall(n.Subcircuit, rewritten, n.Outputs)
	default:
		return out.AddGateMulti(n.Op, rewritten, n.Outputs)
	}
}
