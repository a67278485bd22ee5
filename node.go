package fuse

import "github.com/fuse-ir/fuse/payload"

// NodeId identifies a Node within a single Circuit's arena. Every circuit
// numbers its nodes from 0, and Retain (with the passes built on it)
// renumbers the nodes it keeps, so an id is not stable across such a pass.
type NodeId uint32

// Edge is one edge into a Node: the producer NodeId and, for producers
// with more than one published output (Split, a multi-output
// CallSubcircuit), which output element to read.
type Edge struct {
	Producer NodeId
	Offset   Offset
}

// Node is one vertex of a Circuit's dataflow graph.
type Node struct {
	ID        NodeId
	Op        PrimitiveOperation
	Inputs    []Edge
	Outputs   []DataType

	// Subcircuit names the callee circuit for a CallSubcircuit node.
	Subcircuit string

	// Payload carries the folded/literal value of a Constant node. Nil for
	// every other operation.
	Payload *payload.Value

	// InputName identifies an Input node among a circuit's declared
	// parameters; empty for every other operation.
	InputName string
}

// OutputType returns the DataType of the node's first (or only) published
// output. Panics if the node publishes no output.
func (n *Node) OutputType() DataType {
	return n.Outputs[0]
}

// IsConstant reports whether n is a Constant node with a populated Payload.
func (n *Node) IsConstant() bool {
	return n.Op == Constant && n.Payload != nil
}
