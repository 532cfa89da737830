package containers

import (
	"testing"

	"github.com/cstrainge/sorth/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestArrayDeepCopyIndependence exercises testable property 3:
// after value.Copy, mutating the copy's reachable containers does not
// affect the original.
func TestArrayDeepCopyIndependence(t *testing.T) {
	original := value.Ref_(value.Array, NewArrayFrom([]value.Value{
		value.Int_(1), value.Int_(2), value.Int_(3),
	}))

	cp := original.Copy()
	arr, ok := cp.AsRef()
	require.True(t, ok)
	arr.(*Array).Set(0, value.Int_(99))

	orig, ok := original.AsRef()
	require.True(t, ok)
	v, ok := orig.(*Array).Get(0)
	require.True(t, ok)
	assert.Equal(t, int64(1), mustInt(v), "mutating the copy must not affect the original")
}

// TestStructurallyEqualValuesHashEqual exercises the hashing half of
// property 3: hashes of independently-constructed structurally-equal
// values are equal.
func TestStructurallyEqualValuesHashEqual(t *testing.T) {
	a := NewArrayFrom([]value.Value{value.Int_(1), value.String_("x")})
	b := NewArrayFrom([]value.Value{value.Int_(1), value.String_("x")})

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	c := NewArrayFrom([]value.Value{value.Int_(2), value.String_("x")})
	assert.False(t, a.Equal(c))
}

// TestDataObjectDeepCopyIndependence covers the same property for
// structures: New() deep-copies defaults, and Copy on a Value wrapping a
// DataObject produces an independent instance.
func TestDataObjectDeepCopyIndependence(t *testing.T) {
	def := NewDefinition("pt", false, []string{"x", "y"}, []value.Value{value.Int_(0), value.Int_(0)})
	obj := def.New()
	obj.Set(0, value.Int_(3))

	v := value.Ref_(value.Structure, obj)
	cp := v.Copy()
	cpRef, ok := cp.AsRef()
	require.True(t, ok)
	cpRef.(*DataObject).Set(0, value.Int_(42))

	x, _ := obj.Get(0)
	assert.Equal(t, int64(3), mustInt(x), "copy mutation must not reach the original instance")
}

// TestByteBufferIntRoundTrip exercises testable property 9: for
// integer N in the writable range of byte-size k, write_int(k, N) at
// position p then set_position(p); read_int(k, signed=true) yields N; for
// unsigned, equal bit-pattern.
func TestByteBufferIntRoundTrip(t *testing.T) {
	cases := []struct {
		size int
		n    int64
	}{
		{1, -1}, {1, 127}, {2, -32768}, {2, 32767},
		{4, -2147483648}, {4, 2147483647},
		{8, -9223372036854775808}, {8, 9223372036854775807},
	}

	for _, c := range cases {
		b := NewByteBuffer(8)
		require.NoError(t, b.WriteInt(c.size, c.n))
		require.NoError(t, b.SetPosition(0))
		got, err := b.ReadInt(c.size, true)
		require.NoError(t, err)
		assert.Equal(t, c.n, got)
	}
}

func TestByteBufferUnsignedBitPattern(t *testing.T) {
	b := NewByteBuffer(1)
	require.NoError(t, b.WriteInt(1, -1))
	require.NoError(t, b.SetPosition(0))
	got, err := b.ReadInt(1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(255), got)
}

func mustInt(v value.Value) int64 {
	n, _ := v.AsInt()
	return n
}
