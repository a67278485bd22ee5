package fuse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuse-ir/fuse"
	"github.com/fuse-ir/fuse/payload"
)

func buildAddCircuit(t *testing.T) *fuse.Circuit {
	t.Helper()
	c := fuse.NewCircuit("add_one")
	x := c.AddInput("x", fuse.Scalar(fuse.UInt8))
	one := c.AddConstant(payload.ScalarUInt(fuse.UInt8, 1), fuse.Scalar(fuse.UInt8))
	sum := c.AddGate(fuse.Add, []fuse.Edge{{Producer: x}, {Producer: one}}, fuse.Scalar(fuse.UInt8))
	c.AddOutput(fuse.Edge{Producer: sum}, fuse.Scalar(fuse.UInt8))
	require.NoError(t, c.Finalize())
	return c
}

func TestCircuit_FinalizeAcceptsWellFormedGraph(t *testing.T) {
	c := buildAddCircuit(t)
	assert.True(t, c.Finalized())
	assert.Equal(t, 4, c.Len())
	assert.Len(t, c.Outputs(), 1)
	assert.Len(t, c.Inputs(), 1)
}

func TestCircuit_FinalizeRejectsForwardReference(t *testing.T) {
	c := fuse.NewCircuit("bad")
	x := c.AddInput("x", fuse.Scalar(fuse.Bool))
	// Build a node that references a producer id one higher than itself:
	// the gate (id 2) reads id 3, a node that is only allocated after it.
	y := c.AddInput("y", fuse.Scalar(fuse.Bool))
	bad := c.AddGate(fuse.And, []fuse.Edge{{Producer: x}, {Producer: y + 2}}, fuse.Scalar(fuse.Bool))
	later := c.AddInput("later", fuse.Scalar(fuse.Bool))
	_ = bad
	_ = later
	err := c.Finalize()
	require.Error(t, err)
	assert.ErrorIs(t, err, fuse.ErrInvariantViolation)
}

func TestCircuit_RetainPrunesAndRemapsIds(t *testing.T) {
	c := buildAddCircuit(t)
	// Keep only the output and its direct producer chain.
	live := map[fuse.NodeId]struct{}{}
	for _, n := range c.Nodes() {
		live[n.ID] = struct{}{}
	}
	pruned, err := c.Retain(live)
	require.NoError(t, err)
	require.NoError(t, pruned.Finalize())
	assert.Equal(t, c.Len(), pruned.Len())
}

func TestCircuit_RetainRejectsOpenSet(t *testing.T) {
	c := buildAddCircuit(t)
	outputs := c.Outputs()
	require.Len(t, outputs, 1)
	live := map[fuse.NodeId]struct{}{outputs[0].ID: {}}
	_, err := c.Retain(live)
	require.Error(t, err)
	assert.ErrorIs(t, err, fuse.ErrInvariantViolation)
}
