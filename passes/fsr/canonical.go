package fsr

import (
	"fmt"
	"strings"

	"github.com/fuse-ir/fuse"
)

// candidate is one occurrence of a mined pattern: root is the node whose
// value the pattern computes, interior is every node the pattern covers
// (root included, in original-circuit order; on commit the root becomes the
// call node and the rest are left for DNE to delete), and leaves
// are the pattern's external operands in canonical left-to-right order.
type candidate struct {
	key      string
	root     fuse.NodeId
	interior []fuse.NodeId
	leaves   []fuse.Edge
}

// absorbable reports whether node n, encountered at the given depth while
// expanding a candidate, can become interior to the pattern rather than a
// leaf: it must have a single definite output (so the call site can read
// it at offset 0), must not be a data source or a meta operation, must
// still be inside the depth budget, and — except at the root itself, which
// becomes the call node its outside consumers keep reading — must have no
// consumer outside the pattern, so deleting it after extraction is safe.
func absorbable(n *fuse.Node, depth, maxDepth int, consumers map[fuse.NodeId]int) bool {
	if n == nil || depth >= maxDepth {
		return false
	}
	switch n.Op {
	case fuse.Input, fuse.Constant, fuse.Output, fuse.CallSubcircuit, fuse.Loop, fuse.SelectOffset, fuse.Custom, fuse.Split, fuse.Merge:
		return false
	}
	if len(n.Outputs) != 1 {
		return false
	}
	if depth == 0 {
		return true
	}
	return consumers[n.ID] == 1
}

// buildCandidate expands the pattern rooted at rootID up to maxDepth,
// producing its canonical key alongside the interior/leaf sets a commit
// needs.
func buildCandidate(c *fuse.Circuit, rootID fuse.NodeId, maxDepth int, consumers map[fuse.NodeId]int) candidate {
	var leaves []fuse.Edge
	var interior []fuse.NodeId

	var visit func(in fuse.Edge, depth int) string
	visit = func(in fuse.Edge, depth int) string {
		n, ok := c.Node(in.Producer)
		var np *fuse.Node
		if ok {
			np = n
		}
		if !absorbable(np, depth, maxDepth, consumers) {
			idx := len(leaves)
			leaves = append(leaves, in)
			return fmt.Sprintf("L%d", idx)
		}
		interior = append(interior, n.ID)
		parts := make([]string, len(n.Inputs))
		for i, cin := range n.Inputs {
			parts[i] = visit(cin, depth+1)
		}
		// The element type is part of the key, not just the operation: two
		// structurally identical subgraphs over different PrimitiveTypes
		// are different patterns (And on UInt8 and And on UInt32 are not
		// interchangeable), so they must never be merged into one call site.
		return fmt.Sprintf("(%s@%s#%d %s)", n.Op, n.Outputs[0].Type, len(n.Inputs), strings.Join(parts, " "))
	}

	key := visit(fuse.Edge{Producer: rootID}, 0)
	return candidate{key: key, root: rootID, interior: interior, leaves: leaves}
}

// rootCandidates returns every node id eligible to root a pattern: a
// computational, single-output, non-meta node (the same class buildCandidate
// allows as interior at depth 0).
func rootCandidates(c *fuse.Circuit) []fuse.NodeId {
	var roots []fuse.NodeId
	for _, n := range c.Nodes() {
		n := n
		if absorbable(&n, 0, 1, nil) {
			roots = append(roots, n.ID)
		}
	}
	return roots
}

// topDownRootCandidates returns nodes consumed only by Output nodes (or not
// consumed at all) — the roots strategy 3 (top-down) starts from.
func topDownRootCandidates(c *fuse.Circuit, consumers map[fuse.NodeId]int) []fuse.NodeId {
	consumedByOutputOnly := make(map[fuse.NodeId]bool)
	for _, n := range c.Nodes() {
		if n.Op != fuse.Output {
			continue
		}
		consumedByOutputOnly[n.Inputs[0].Producer] = true
	}
	var roots []fuse.NodeId
	for _, n := range c.Nodes() {
		n := n
		if !absorbable(&n, 0, 1, nil) {
			continue
		}
		if consumers[n.ID] == 0 || consumedByOutputOnly[n.ID] {
			roots = append(roots, n.ID)
		}
	}
	return roots
}

// group buckets candidates by canonical key, counting each root once per
// key (several strategies and depths can rediscover the same occurrence),
// and discards singleton groups (a pattern occurring once is never
// profitable to factor out).
func group(cands []candidate) map[string][]candidate {
	type occurrence struct {
		key  string
		root fuse.NodeId
	}
	seen := make(map[occurrence]bool)
	byKey := make(map[string][]candidate)
	for _, cand := range cands {
		o := occurrence{cand.key, cand.root}
		if seen[o] {
			continue
		}
		seen[o] = true
		byKey[cand.key] = append(byKey[cand.key], cand)
	}
	for k, v := range byKey {
		if len(v) < 2 {
			delete(byKey, k)
		}
	}
	return byKey
}

// score approximates gates saved if every occurrence of key is replaced by
// one subcircuit call: (occurrences - 1) * (nodes_per_occurrence - eps).
const scoreEpsilon = 0.01

func score(occurrences []candidate) float64 {
	if len(occurrences) == 0 {
		return 0
	}
	n := float64(len(occurrences))
	nodesPer := float64(len(occurrences[0].interior))
	return (n - 1) * (nodesPer - scoreEpsilon)
}

// best picks the highest-scoring key in byKey, breaking ties toward the
// smaller (cheaper to verify) pattern.
func best(byKey map[string][]candidate) (string, []candidate, float64) {
	var bestKey string
	var bestOccs []candidate
	bestScore := -1.0
	for k, occs := range byKey {
		s := score(occs)
		if s <= 0 {
			continue
		}
		switch {
		case s > bestScore:
			bestScore, bestKey, bestOccs = s, k, occs
		case s == bestScore && len(occs[0].interior) < len(bestOccs[0].interior):
			bestKey, bestOccs = k, occs
		}
	}
	return bestKey, bestOccs, bestScore
}
