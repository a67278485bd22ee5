package fuse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuse-ir/fuse"
)

func buildCallerCallee(t *testing.T) *fuse.Module {
	t.Helper()
	callee := fuse.NewCircuit("double")
	x := callee.AddInput("x", fuse.Scalar(fuse.UInt32))
	sum := callee.AddGate(fuse.Add, []fuse.Edge{{Producer: x}, {Producer: x}}, fuse.Scalar(fuse.UInt32))
	callee.AddOutput(fuse.Edge{Producer: sum}, fuse.Scalar(fuse.UInt32))
	require.NoError(t, callee.Finalize())

	main := fuse.NewCircuit("main")
	mx := main.AddInput("x", fuse.Scalar(fuse.UInt32))
	call := main.AddCall("double", []fuse.Edge{{Producer: mx}}, []fuse.DataType{fuse.Scalar(fuse.UInt32)})
	main.AddOutput(fuse.Edge{Producer: call}, fuse.Scalar(fuse.UInt32))
	require.NoError(t, main.Finalize())

	m := fuse.NewModule("main")
	m.AddCircuit(callee)
	m.AddCircuit(main)
	return m
}

func TestModule_CallGraphFindsDirectCallees(t *testing.T) {
	m := buildCallerCallee(t)
	graph := m.CallGraph()
	_, calls := graph["main"]["double"]
	assert.True(t, calls)
	assert.Empty(t, graph["double"])
}

func TestModule_CheckCallGraphDetectsMissingSubcircuit(t *testing.T) {
	m := buildCallerCallee(t)
	m.RemoveCircuit("double")
	err := m.CheckCallGraph()
	require.Error(t, err)
	assert.ErrorIs(t, err, fuse.ErrMissingSubcircuit)
}

func TestModule_OrderPreservesInsertion(t *testing.T) {
	m := buildCallerCallee(t)
	assert.Equal(t, []string{"double", "main"}, m.Order())
}
