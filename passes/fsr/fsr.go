// Package fsr implements frequent-subcircuit replacement: mining a
// circuit for a recurring pattern and factoring its most profitable
// occurrence set into a subcircuit plus CallSubcircuit call sites.
//
// Each node's canonical key (pattern shape -> list of occurrences) is
// built bottom-up from its operation, element type, and arity, so two
// structurally identical subgraphs hash to the same bucket regardless of
// where in the circuit they appear.
package fsr

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fuse-ir/fuse"
	"github.com/fuse-ir/fuse/passes/dne"
)

// Options configures one FSR run.
type Options struct {
	// TryModes bounds how many mining strategies (in ascending cost order)
	// are attempted before the best-so-far result is committed.
	TryModes int
	// MaxRounds bounds how many winner-commit iterations the pass performs
	// against the same circuit; each round re-mines after the previous
	// winner's occurrences are removed. Zero means unlimited (bounded only
	// by the context and by positive-score availability).
	MaxRounds int
}

// Result summarizes one run.
type Result struct {
	CircuitsCreated []string
	Replacements    int
	NodesRemoved    int
	BudgetExceeded  bool
}

var strategies = []func(c *fuse.Circuit, consumers map[fuse.NodeId]int) []candidate{
	mineBottomUp,
	mineBottomUpGrow,
	mineTopDown,
}

// Run mines circuitName within m for a recurring pattern and commits the
// highest-scoring non-overlapping occurrence set it finds, round after
// round, until ctx is done or no candidate has positive score. The circuit
// is mutated in place (the root node of each committed occurrence is
// rewritten into the CallSubcircuit node; a DNE pass removes the rest of
// the now-unreferenced interior nodes).
func Run(ctx context.Context, m *fuse.Module, circuitName string, opts Options) (Result, error) {
	c, ok := m.Circuit(circuitName)
	if !ok {
		return Result{}, fmt.Errorf("fsr: circuit %q not found in module", circuitName)
	}

	tryModes := opts.TryModes
	if tryModes <= 0 || tryModes > len(strategies) {
		tryModes = len(strategies)
	}

	res := Result{}
	round := 0
	for {
		if opts.MaxRounds > 0 && round >= opts.MaxRounds {
			break
		}
		select {
		case <-ctx.Done():
			res.BudgetExceeded = true
			return finish(c, res)
		default:
		}

		consumers := consumerCounts(c)
		var all []candidate
		for i := 0; i < tryModes; i++ {
			all = append(all, strategies[i](c, consumers)...)
		}
		byKey := group(all)
		key, occs, sc := best(byKey)
		if sc <= 0 {
			break
		}

		committed, newCircuits, err := commit(c, m, key, occs)
		if err != nil {
			return Result{}, err
		}
		if committed == 0 {
			break
		}
		res.Replacements += committed
		res.NodesRemoved += committed * len(occs[0].interior)
		res.CircuitsCreated = append(res.CircuitsCreated, newCircuits...)
		round++

		// The replaced interior nodes are now unreachable but still
		// physically present; without pruning them a later round would
		// rediscover and "re-commit" the same dead occurrences forever.
		// Composing with DNE between rounds is internal bookkeeping, not a
		// substitute for the caller's own post-FSR DNE pass.
		pruned, _, err := dne.Circuit(c)
		if err != nil {
			return Result{}, err
		}
		m.AddCircuit(pruned)
		c = pruned

		logrus.WithFields(logrus.Fields{
			"circuit":     circuitName,
			"round":       round,
			"occurrences": committed,
			"score":       sc,
		}).Debug("fsr: committed winning pattern")
	}

	return finish(c, res)
}

func finish(c *fuse.Circuit, res Result) (Result, error) {
	if err := c.Finalize(); err != nil {
		return Result{}, err
	}
	return res, nil
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

func mineBottomUp(c *fuse.Circuit, consumers map[fuse.NodeId]int) []candidate {
	var out []candidate
	for _, root := range rootCandidates(c) {
		out = append(out, buildCandidate(c, root, 2, consumers))
		out = append(out, buildCandidate(c, root, 3, consumers))
	}
	return out
}

// mineBottomUpGrow seeds from bottom-up's frequent (depth<=3) keys and
// tries growing each occurrence's root by one more level; a grown key that
// does not keep the same occurrence count is a dead end and is dropped in
// favor of its depth-3 parent, already present in base.
func mineBottomUpGrow(c *fuse.Circuit, consumers map[fuse.NodeId]int) []candidate {
	base := mineBottomUp(c, consumers)
	byKey := group(base)
	var out []candidate
	out = append(out, base...)
	for _, occs := range byKey {
		var grown []candidate
		for _, occ := range occs {
			g := buildCandidate(c, occ.root, 4, consumers)
			grown = append(grown, g)
		}
		for _, g := range group(grown) {
			if len(g) == len(occs) {
				out = append(out, g...)
			}
		}
	}
	return out
}

func mineTopDown(c *fuse.Circuit, consumers map[fuse.NodeId]int) []candidate {
	var out []candidate
	for _, root := range topDownRootCandidates(c, consumers) {
		out = append(out, buildCandidate(c, root, 3, consumers))
	}
	return out
}
