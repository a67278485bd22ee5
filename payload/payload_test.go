package payload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fuse-ir/fuse"
	"github.com/fuse-ir/fuse/payload"
)

func TestScalarUInt_WrapsAtDeclaredWidth(t *testing.T) {
	v := payload.ScalarUInt(fuse.UInt8, 300)
	assert.Equal(t, uint64(300-256), v.UInt())
}

func TestScalarInt_WrapsAtDeclaredWidth(t *testing.T) {
	v := payload.ScalarInt(fuse.Int8, 200)
	assert.Equal(t, int64(int8(200)), v.Int())
}

func TestBoolVector_IndexExtractsElement(t *testing.T) {
	v := payload.BoolVector([]bool{true, false, true})
	assert.True(t, v.IsVector())
	assert.Equal(t, 3, v.Len())
	assert.False(t, v.Index(1).Bool())
	assert.True(t, v.Index(2).Bool())
}

func TestValue_EqualComparesDeclaredTypeAndElements(t *testing.T) {
	a := payload.ScalarUInt(fuse.UInt16, 42)
	b := payload.ScalarUInt(fuse.UInt16, 42)
	c := payload.ScalarUInt(fuse.UInt32, 42)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestValue_AsFloat64WidensAcrossFamilies(t *testing.T) {
	assert.Equal(t, 3.0, payload.ScalarInt(fuse.Int32, 3).AsFloat64())
	assert.Equal(t, 3.0, payload.ScalarUInt(fuse.UInt32, 3).AsFloat64())
	assert.Equal(t, 3.0, payload.ScalarDouble(3.0).AsFloat64())
}
