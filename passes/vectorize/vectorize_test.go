package vectorize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuse-ir/fuse"
	"github.com/fuse-ir/fuse/internal/equiv"
	"github.com/fuse-ir/fuse/passes/vectorize"
)

// snapshot returns an independent copy of c, for comparing against a
// later in-place mutation of c itself.
func snapshot(t *testing.T, c *fuse.Circuit) *fuse.Circuit {
	t.Helper()
	live := make(map[fuse.NodeId]struct{}, c.Len())
	for _, n := range c.Nodes() {
		live[n.ID] = struct{}{}
	}
	cp, err := c.Retain(live)
	require.NoError(t, err)
	return cp
}

// buildXorTree builds a balanced binary tree of Xor over n leaf inputs,
// each intermediate node having exactly one consumer.
func buildXorTree(t *testing.T, n int) (*fuse.Circuit, fuse.NodeId) {
	t.Helper()
	c := fuse.NewCircuit("xor_tree")
	var layer []fuse.NodeId
	for i := 0; i < n; i++ {
		layer = append(layer, c.AddInput("in", fuse.Scalar(fuse.Bool)))
	}
	for len(layer) > 1 {
		var next []fuse.NodeId
		for i := 0; i+1 < len(layer); i += 2 {
			g := c.AddGate(fuse.Xor, []fuse.Edge{{Producer: layer[i]}, {Producer: layer[i+1]}}, fuse.Scalar(fuse.Bool))
			next = append(next, g)
		}
		if len(layer)%2 == 1 {
			next = append(next, layer[len(layer)-1])
		}
		layer = next
	}
	root := layer[0]
	c.AddOutput(fuse.Edge{Producer: root}, fuse.Scalar(fuse.Bool))
	require.NoError(t, c.Finalize())
	return c, root
}

func TestCircuit_FusesXorTreeIntoOneWideGate(t *testing.T) {
	c, root := buildXorTree(t, 8)
	res, err := vectorize.Circuit(c, vectorize.Params{Op: fuse.Xor, MinGates: 3, MaxDepth: 8})
	require.NoError(t, err)
	// The two depth-2 interior nodes flatten to 4 inputs each and the root
	// then flattens through them to all 8 leaves: three rewrites in total.
	// The two interior nodes become unreachable once the root bypasses
	// them, left for a subsequent DNE pass to remove.
	assert.Equal(t, 3, res.NodesRewritten)

	n, ok := c.Node(root)
	require.True(t, ok)
	assert.Len(t, n.Inputs, 8)
}

func TestCircuit_StopsAtMultiConsumerBoundary(t *testing.T) {
	c := fuse.NewCircuit("shared_subexpr")
	a := c.AddInput("a", fuse.Scalar(fuse.Bool))
	b := c.AddInput("b", fuse.Scalar(fuse.Bool))
	x := c.AddInput("x", fuse.Scalar(fuse.Bool))
	shared := c.AddGate(fuse.Xor, []fuse.Edge{{Producer: a}, {Producer: b}}, fuse.Scalar(fuse.Bool))
	top := c.AddGate(fuse.Xor, []fuse.Edge{{Producer: shared}, {Producer: x}}, fuse.Scalar(fuse.Bool))
	// shared has a second consumer besides top.
	c.AddOutput(fuse.Edge{Producer: shared}, fuse.Scalar(fuse.Bool))
	c.AddOutput(fuse.Edge{Producer: top}, fuse.Scalar(fuse.Bool))
	require.NoError(t, c.Finalize())

	res, err := vectorize.Circuit(c, vectorize.Params{Op: fuse.Xor, MinGates: 2, MaxDepth: 8})
	require.NoError(t, err)
	assert.Equal(t, 0, res.NodesRewritten)

	n, ok := c.Node(top)
	require.True(t, ok)
	assert.Len(t, n.Inputs, 2)
}

func TestCircuit_DoubleNegationBypassesBothNots(t *testing.T) {
	c := fuse.NewCircuit("double_not")
	x := c.AddInput("x", fuse.Scalar(fuse.Bool))
	inner := c.AddGate(fuse.Not, []fuse.Edge{{Producer: x}}, fuse.Scalar(fuse.Bool))
	outer := c.AddGate(fuse.Not, []fuse.Edge{{Producer: inner}}, fuse.Scalar(fuse.Bool))
	c.AddOutput(fuse.Edge{Producer: outer}, fuse.Scalar(fuse.Bool))
	require.NoError(t, c.Finalize())

	res, err := vectorize.Circuit(c, vectorize.Params{Op: fuse.Not})
	require.NoError(t, err)
	assert.Equal(t, 1, res.NodesRewritten)

	outputs := c.Outputs()
	require.Len(t, outputs, 1)
	assert.Equal(t, x, outputs[0].Inputs[0].Producer)
}

// TestCircuit_FusedXorTreePreservesSemantics checks vectorization by
// exhaustive SAT equivalence rather than a hand-picked input sample: the
// fused circuit must compute the same function as the tree it replaced.
func TestCircuit_FusedXorTreePreservesSemantics(t *testing.T) {
	c, _ := buildXorTree(t, 8)
	before := snapshot(t, c)

	_, err := vectorize.Circuit(c, vectorize.Params{Op: fuse.Xor, MinGates: 3, MaxDepth: 8})
	require.NoError(t, err)

	eq, err := equiv.Equivalent(before, c, nil)
	require.NoError(t, err)
	assert.True(t, eq, "fused circuit must compute the same function as the original tree")
}
