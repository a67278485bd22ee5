package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuse-ir/fuse"
	"github.com/fuse-ir/fuse/payload"
	"github.com/fuse-ir/fuse/view"
)

func TestDecode_RoundTripsNodeIdsOpsAndInputs(t *testing.T) {
	c := fuse.NewCircuit("roundtrip")
	x := c.AddInput("x", fuse.Scalar(fuse.UInt32))
	one := c.AddConstant(payload.ScalarUInt(fuse.UInt32, 1), fuse.Scalar(fuse.UInt32))
	sum := c.AddGate(fuse.Add, []fuse.Edge{{Producer: x}, {Producer: one}}, fuse.Scalar(fuse.UInt32))
	c.AddOutput(fuse.Edge{Producer: sum}, fuse.Scalar(fuse.UInt32))
	require.NoError(t, c.Finalize())

	buf := view.Encode(c)
	decoded, err := view.Decode(buf)
	require.NoError(t, err)

	assert.Equal(t, "roundtrip", decoded.Name)
	assert.Equal(t, c.Len(), decoded.NodeCount())

	for i, want := range c.Nodes() {
		got := decoded.Node(i)
		assert.Equal(t, want.ID, got.ID())
		assert.Equal(t, want.Op, got.Op())
		assert.Equal(t, want.Inputs, got.Inputs())
	}
}

func TestDecode_RejectsTruncatedBuffer(t *testing.T) {
	_, err := view.Decode([]byte{1, 2, 3})
	require.Error(t, err)
}
