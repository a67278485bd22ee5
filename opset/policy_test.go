package opset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuse-ir/fuse"
	"github.com/fuse-ir/fuse/opset"
	"github.com/fuse-ir/fuse/payload"
)

func TestApply_AddWrapsAtDeclaredUnsignedWidth(t *testing.T) {
	a := payload.ScalarUInt(fuse.UInt8, 250)
	b := payload.ScalarUInt(fuse.UInt8, 10)
	out, err := opset.Apply(fuse.Add, fuse.UInt8, []payload.Value{a, b})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), out.UInt())
}

func TestApply_AndOnFloatIsUnsupported(t *testing.T) {
	_, err := opset.Apply(fuse.And, fuse.Float, []payload.Value{payload.ScalarFloat(1), payload.ScalarFloat(2)})
	require.Error(t, err)
	assert.ErrorIs(t, err, fuse.ErrUnsupportedOperationForType)
}

func TestApply_DivisionByZeroConstantIsInvariantViolation(t *testing.T) {
	a := payload.ScalarInt(fuse.Int32, 10)
	zero := payload.ScalarInt(fuse.Int32, 0)
	_, err := opset.Apply(fuse.Div, fuse.Int32, []payload.Value{a, zero})
	require.Error(t, err)
	assert.ErrorIs(t, err, fuse.ErrInvariantViolation)
}

func TestApply_SplitIsLittleEndian(t *testing.T) {
	five := payload.ScalarUInt(fuse.UInt8, 5) // 0b00000101
	out, err := opset.Apply(fuse.Split, fuse.UInt8, []payload.Value{five})
	require.NoError(t, err)
	bits := out.Bools()
	require.Len(t, bits, 8)
	assert.True(t, bits[0])
	assert.False(t, bits[1])
	assert.True(t, bits[2])
	for i := 3; i < 8; i++ {
		assert.False(t, bits[i])
	}
}

func TestApply_MergeIsBigEndian(t *testing.T) {
	// Most-significant bit first: 1,0,1 followed by five zero bits = 0b10100000 = 160.
	bits := []payload.Value{
		payload.ScalarBool(true),
		payload.ScalarBool(false),
		payload.ScalarBool(true),
		payload.ScalarBool(false),
		payload.ScalarBool(false),
		payload.ScalarBool(false),
		payload.ScalarBool(false),
		payload.ScalarBool(false),
	}
	out, err := opset.Apply(fuse.Merge, fuse.UInt8, bits)
	require.NoError(t, err)
	assert.Equal(t, uint64(160), out.UInt())
}

func TestApply_SplitThenMergeDoesNotRoundTripWithoutReversal(t *testing.T) {
	v := payload.ScalarUInt(fuse.UInt8, 5)
	split, err := opset.Apply(fuse.Split, fuse.UInt8, []payload.Value{v})
	require.NoError(t, err)
	bits := split.Bools()
	asValues := make([]payload.Value, len(bits))
	for i, b := range bits {
		asValues[i] = payload.ScalarBool(b)
	}
	merged, err := opset.Apply(fuse.Merge, fuse.UInt8, asValues)
	require.NoError(t, err)
	assert.NotEqual(t, v.UInt(), merged.UInt())
}

func TestApply_MuxSelectsBranchByCondition(t *testing.T) {
	cond := payload.ScalarBool(true)
	a := payload.ScalarInt(fuse.Int32, 1)
	b := payload.ScalarInt(fuse.Int32, 2)
	out, err := opset.Apply(fuse.Mux, fuse.Int32, []payload.Value{cond, a, b})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Int())
}

func TestAccumulate_FoldsVariadicChainLeftToRight(t *testing.T) {
	ops := []payload.Value{
		payload.ScalarUInt(fuse.UInt8, 100),
		payload.ScalarUInt(fuse.UInt8, 100),
		payload.ScalarUInt(fuse.UInt8, 100),
	}
	out, err := opset.Accumulate(fuse.Add, fuse.UInt8, ops)
	require.NoError(t, err)
	assert.Equal(t, uint64(300-256), out.UInt())
}
