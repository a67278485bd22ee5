package dne_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuse-ir/fuse"
	"github.com/fuse-ir/fuse/passes/dne"
	"github.com/fuse-ir/fuse/payload"
)

func TestCircuit_DropsNodeNotReachableFromAnyOutput(t *testing.T) {
	c := fuse.NewCircuit("has_dead_node")
	x := c.AddInput("x", fuse.Scalar(fuse.UInt32))
	// Live chain: x + 1 -> output.
	one := c.AddConstant(payload.ScalarUInt(fuse.UInt32, 1), fuse.Scalar(fuse.UInt32))
	live := c.AddGate(fuse.Add, []fuse.Edge{{Producer: x}, {Producer: one}}, fuse.Scalar(fuse.UInt32))
	c.AddOutput(fuse.Edge{Producer: live}, fuse.Scalar(fuse.UInt32))
	// Dead chain: never read by an Output.
	two := c.AddConstant(payload.ScalarUInt(fuse.UInt32, 2), fuse.Scalar(fuse.UInt32))
	c.AddGate(fuse.Mul, []fuse.Edge{{Producer: x}, {Producer: two}}, fuse.Scalar(fuse.UInt32))
	require.NoError(t, c.Finalize())

	pruned, res, err := dne.Circuit(c)
	require.NoError(t, err)
	require.NoError(t, pruned.Finalize())
	assert.Equal(t, 6, res.NodesBefore)
	assert.Equal(t, 4, res.NodesAfter)
	assert.Len(t, pruned.Outputs(), 1)
}

func TestModule_RemoveUnusedCircuitsDropsUnreachableCallee(t *testing.T) {
	reachable := fuse.NewCircuit("reachable")
	rx := reachable.AddInput("x", fuse.Scalar(fuse.Bool))
	reachable.AddOutput(fuse.Edge{Producer: rx}, fuse.Scalar(fuse.Bool))
	require.NoError(t, reachable.Finalize())

	orphan := fuse.NewCircuit("orphan")
	ox := orphan.AddInput("x", fuse.Scalar(fuse.Bool))
	orphan.AddOutput(fuse.Edge{Producer: ox}, fuse.Scalar(fuse.Bool))
	require.NoError(t, orphan.Finalize())

	main := fuse.NewCircuit("main")
	mx := main.AddInput("x", fuse.Scalar(fuse.Bool))
	call := main.AddCall("reachable", []fuse.Edge{{Producer: mx}}, []fuse.DataType{fuse.Scalar(fuse.Bool)})
	main.AddOutput(fuse.Edge{Producer: call}, fuse.Scalar(fuse.Bool))
	require.NoError(t, main.Finalize())

	m := fuse.NewModule("main")
	m.AddCircuit(reachable)
	m.AddCircuit(orphan)
	m.AddCircuit(main)

	res, err := dne.Module(m, dne.Options{RemoveUnusedCircuits: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan"}, res.RemovedCircuits)
	_, ok := m.Circuit("orphan")
	assert.False(t, ok)
	_, ok = m.Circuit("reachable")
	assert.True(t, ok)
}
