// Package fuse is an intermediate representation and optimization toolkit
// for boolean/arithmetic circuits used by secure multi-party computation
// backends.
//
// A Module groups named Circuits under a designated entry point. A Circuit
// is a typed dataflow graph of Nodes: inputs, constants, gates, bit
// splits/merges, and subcircuit calls. Three passes operate on this object
// model: dead-node elimination (passes/dne), constant folding (passes/cf),
// and frequent-subcircuit replacement / instruction vectorization
// (passes/fsr, passes/vectorize).
//
// Frontends that parse a text or binary format into a Module, backends that
// emit a Module to a visualization or an MPC evaluator, and the on-disk
// serialization format itself are out of scope here; this package is the IR
// and its transformation passes only.
package fuse
