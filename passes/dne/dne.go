// Package dne implements dead-node elimination: pruning a Circuit down to
// the nodes its Output nodes transitively depend on, and pruning a Module
// down to the circuits reachable from its entry point's call graph.
package dne

import (
	"github.com/sirupsen/logrus"

	"github.com/fuse-ir/fuse"
)

// Result summarizes one elimination run.
type Result struct {
	NodesBefore     int
	NodesAfter      int
	CircuitsBefore  int
	CircuitsAfter   int
	RemovedCircuits []string
}

// Circuit prunes c down to the nodes reachable, by producer edges, from its
// Output nodes. It returns a new Circuit; c is left untouched.
func Circuit(c *fuse.Circuit) (*fuse.Circuit, Result, error) {
	live := reachableFromOutputs(c)
	pruned, err := c.Retain(live)
	if err != nil {
		return nil, Result{}, err
	}
	res := Result{NodesBefore: c.Len(), NodesAfter: pruned.Len()}
	logrus.WithFields(logrus.Fields{
		"circuit": c.Name,
		"before":  res.NodesBefore,
		"after":   res.NodesAfter,
	}).Debug("dne: circuit pruned")
	return pruned, res, nil
}

func reachableFromOutputs(c *fuse.Circuit) map[fuse.NodeId]struct{} {
	live := make(map[fuse.NodeId]struct{})
	var visit func(id fuse.NodeId)
	visit = func(id fuse.NodeId) {
		if _, seen := live[id]; seen {
			return
		}
		live[id] = struct{}{}
		n, ok := c.Node(id)
		if !ok {
			return
		}
		for _, in := range n.Inputs {
			visit(in.Producer)
		}
	}
	for _, n := range c.Nodes() {
		if n.Op == fuse.Output {
			visit(n.ID)
		}
	}
	return live
}

// Options configures a module-level run.
type Options struct {
	// RemoveUnusedCircuits additionally deletes circuits unreachable from
	// the module's entry point via CallSubcircuit edges, after per-circuit
	// node pruning.
	RemoveUnusedCircuits bool
}

// Module prunes every circuit in m in place (each circuit's dead nodes are
// removed) and, if opts.RemoveUnusedCircuits is set, deletes circuits the
// entry circuit never reaches.
func Module(m *fuse.Module, opts Options) (Result, error) {
	res := Result{CircuitsBefore: m.Len()}
	for _, name := range m.Order() {
		c, _ := m.Circuit(name)
		pruned, nodeRes, err := Circuit(c)
		if err != nil {
			return Result{}, err
		}
		res.NodesBefore += nodeRes.NodesBefore
		res.NodesAfter += nodeRes.NodesAfter
		m.AddCircuit(pruned)
	}

	if opts.RemoveUnusedCircuits {
		live := reachableCircuits(m)
		for _, name := range m.Order() {
			if _, ok := live[name]; !ok {
				m.RemoveCircuit(name)
				res.RemovedCircuits = append(res.RemovedCircuits, name)
			}
		}
	}
	res.CircuitsAfter = m.Len()

	logrus.WithFields(logrus.Fields{
		"circuits_before": res.CircuitsBefore,
		"circuits_after":  res.CircuitsAfter,
		"nodes_before":    res.NodesBefore,
		"nodes_after":     res.NodesAfter,
	}).Info("dne: module pruned")
	return res, nil
}

func reachableCircuits(m *fuse.Module) map[string]struct{} {
	graph := m.CallGraph()
	live := make(map[string]struct{})
	var visit func(name string)
	visit = func(name string) {
		if _, seen := live[name]; seen {
			return
		}
		live[name] = struct{}{}
		for callee := range graph[name] {
			visit(callee)
		}
	}
	visit(m.Entry)
	return live
}
