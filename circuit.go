package fuse

import (
	"github.com/pkg/errors"

	"github.com/fuse-ir/fuse/payload"
)

// Circuit is a single named dataflow graph: an arena of Nodes in
// topological (here, also insertion) order. Passes operate on a Circuit in
// place; Retain produces a pruned copy for dead-node elimination.
type Circuit struct {
	Name string

	nodes     []Node
	index     map[NodeId]int
	nextID    NodeId
	finalized bool
}

// NewCircuit returns an empty Circuit ready for incremental construction
// via its Add* builder methods.
func NewCircuit(name string) *Circuit {
	return &Circuit{Name: name, index: make(map[NodeId]int)}
}

func (c *Circuit) alloc(n Node) NodeId {
	n.ID = c.nextID
	c.index[n.ID] = len(c.nodes)
	c.nodes = append(c.nodes, n)
	c.nextID++
	c.finalized = false
	return n.ID
}

// AddInput declares a new Input node named name with output type dt.
func (c *Circuit) AddInput(name string, dt DataType) NodeId {
	return c.alloc(Node{Op: Input, Outputs: []DataType{dt}, InputName: name})
}

// AddConstant adds a Constant node carrying v, typed dt.
func (c *Circuit) AddConstant(v payload.Value, dt DataType) NodeId {
	vv := v
	return c.alloc(Node{Op: Constant, Outputs: []DataType{dt}, Payload: &vv})
}

// AddGate adds a computational node for op over inputs, publishing a single
// output of type out.
func (c *Circuit) AddGate(op PrimitiveOperation, inputs []Edge, out DataType) NodeId {
	return c.AddGateMulti(op, inputs, []DataType{out})
}

// AddGateMulti adds a computational node for op over inputs, publishing
// every DataType in outputs in order. AddGate is the common single-output
// case; this exists for ops such as Split that publish more than one.
func (c *Circuit) AddGateMulti(op PrimitiveOperation, inputs []Edge, outputs []DataType) NodeId {
	return c.alloc(Node{Op: op, Inputs: inputs, Outputs: outputs})
}

// AddSplit adds a Split node decomposing in (of integer type t) into
// t.NumBits() Bool outputs, least-significant bit first.
func (c *Circuit) AddSplit(in Edge, t PrimitiveType) NodeId {
	n := t.NumBits()
	outs := make([]DataType, n)
	for i := range outs {
		outs[i] = Scalar(Bool)
	}
	return c.alloc(Node{Op: Split, Inputs: []Edge{in}, Outputs: outs})
}

// AddMerge adds a Merge node recomposing bits (most-significant first) into
// a single value of type t.
func (c *Circuit) AddMerge(bits []Edge, t PrimitiveType) NodeId {
	return c.alloc(Node{Op: Merge, Inputs: bits, Outputs: []DataType{Scalar(t)}})
}

// AddCall adds a CallSubcircuit node invoking subcircuit with the given
// inputs, publishing len(outputs) results.
func (c *Circuit) AddCall(subcircuit string, inputs []Edge, outputs []DataType) NodeId {
	return c.alloc(Node{Op: CallSubcircuit, Inputs: inputs, Outputs: outputs, Subcircuit: subcircuit})
}

// AddOutput marks in as a published result of the circuit.
func (c *Circuit) AddOutput(in Edge, dt DataType) NodeId {
	return c.alloc(Node{Op: Output, Inputs: []Edge{in}, Outputs: []DataType{dt}})
}

// Node returns the node with the given id, and whether it is present.
func (c *Circuit) Node(id NodeId) (*Node, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.nodes[i], true
}

// Nodes returns the circuit's nodes in order. The returned slice aliases
// internal storage and must not be mutated by length.
func (c *Circuit) Nodes() []Node {
	return c.nodes
}

// Len returns the number of nodes in the circuit.
func (c *Circuit) Len() int {
	return len(c.nodes)
}

// Outputs returns the circuit's Output nodes in order.
func (c *Circuit) Outputs() []Node {
	var outs []Node
	for _, n := range c.nodes {
		if n.Op == Output {
			outs = append(outs, n)
		}
	}
	return outs
}

// Inputs returns the circuit's Input nodes in order.
func (c *Circuit) Inputs() []Node {
	var ins []Node
	for _, n := range c.nodes {
		if n.Op == Input {
			ins = append(ins, n)
		}
	}
	return ins
}

// SetInputs replaces the Inputs of node id in place, e.g. to flatten a
// chain of associative gates into one multi-input node. The circuit must
// be re-Finalized before further use; SetInputs clears the finalized flag.
func (c *Circuit) SetInputs(id NodeId, inputs []Edge) error {
	slot, ok := c.index[id]
	if !ok {
		return errors.Wrapf(ErrInvariantViolation, "circuit %q: SetInputs on missing node %d", c.Name, id)
	}
	c.nodes[slot].Inputs = inputs
	c.finalized = false
	return nil
}

// ReplaceAllUses rewrites every Input across the circuit whose Producer is
// old to read from with instead, e.g. to bypass a node whose value has been
// proven equal to one of its own ancestors (double-negation cancellation).
// old itself is left untouched; it becomes dead weight for a later DNE pass
// to remove. The circuit must be re-Finalized before further use.
func (c *Circuit) ReplaceAllUses(old NodeId, with Edge) error {
	if _, ok := c.index[old]; !ok {
		return errors.Wrapf(ErrInvariantViolation, "circuit %q: ReplaceAllUses on missing node %d", c.Name, old)
	}
	for slot := range c.nodes {
		for i, in := range c.nodes[slot].Inputs {
			if in.Producer == old {
				c.nodes[slot].Inputs[i] = with
			}
		}
	}
	c.finalized = false
	return nil
}

// Finalize checks the circuit's invariants: every input references a node
// that precedes it in arena order (no forward or self references, and no
// dangling producer), and every Offset is in range of its producer's
// published outputs. It is idempotent and safe to call more than once.
func (c *Circuit) Finalize() error {
	for slot, n := range c.nodes {
		for _, in := range n.Inputs {
			prodSlot, ok := c.index[in.Producer]
			if !ok {
				return errors.Wrapf(ErrInvariantViolation, "circuit %q: node %d references missing producer %d", c.Name, n.ID, in.Producer)
			}
			if prodSlot >= slot {
				return errors.Wrapf(ErrInvariantViolation, "circuit %q: node %d references producer %d out of topological order", c.Name, n.ID, in.Producer)
			}
			prod := c.nodes[prodSlot]
			if int(in.Offset) >= len(prod.Outputs) {
				return errors.Wrapf(ErrInvariantViolation, "circuit %q: node %d offset %d out of range for producer %d with %d outputs", c.Name, n.ID, in.Offset, in.Producer, len(prod.Outputs))
			}
		}
		if n.Op == CallSubcircuit && n.Subcircuit == "" {
			return errors.Wrapf(ErrInvariantViolation, "circuit %q: node %d is CallSubcircuit with no callee name", c.Name, n.ID)
		}
	}
	c.finalized = true
	return nil
}

// Finalized reports whether Finalize has succeeded at least once since the
// last structural mutation. Passes that mutate a Circuit in place are
// responsible for re-finalizing before handing it to the next pass.
func (c *Circuit) Finalized() bool {
	return c.finalized
}

// Retain returns a new Circuit containing only the nodes whose id is a key
// of live, in their original relative order, with every Input rewritten to
// the retained node's new id. live must be closed under producer
// dependency: if a node is retained, every node it reads from must be
// retained too, or Retain returns ErrInvariantViolation.
func (c *Circuit) Retain(live map[NodeId]struct{}) (*Circuit, error) {
	out := NewCircuit(c.Name)
	remap := make(map[NodeId]NodeId, len(live))
	for _, n := range c.nodes {
		if _, ok := live[n.ID]; !ok {
			continue
		}
		cp := n
		cp.Inputs = make([]Edge, len(n.Inputs))
		for i, in := range n.Inputs {
			newProd, ok := remap[in.Producer]
			if !ok {
				return nil, errors.Wrapf(ErrInvariantViolation, "circuit %q: retained node %d depends on pruned producer %d", c.Name, n.ID, in.Producer)
			}
			cp.Inputs[i] = Edge{Producer: newProd, Offset: in.Offset}
		}
		newID := out.alloc(cp)
		remap[n.ID] = newID
	}
	return out, nil
}
