package memprobe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		v    Value
	}{
		{"u8", NewU8(0xAB)},
		{"u16", NewU16(0xBEEF)},
		{"u32", NewU32(0xDEADBEEF)},
		{"u64", NewU64(0x0123456789ABCDEF)},
		{"i8", NewI8(-5)},
		{"i16", NewI16(-1234)},
		{"i32", NewI32(-1234567)},
		{"i64", NewI64(-123456789012)},
		{"f32", NewF32(3.14)},
		{"f64", NewF64(2.71828)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decoded, err := DecodeValue(tc.v.Type(), tc.v.Encode())
			require.NoError(t, err)
			assert.Equal(t, tc.v.Encode(), decoded.Encode())
		})
	}
}

func TestCompareEqual(t *testing.T) {
	a := NewU32(42).Encode()
	b := NewU32(42).Encode()
	c := NewU32(43).Encode()

	ok, err := Compare(TypeU32, OpEqual, a, b)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Compare(TypeU32, OpEqual, a, c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompareSignedVsUnsigned(t *testing.T) {
	// 0xFFFFFFFF as i32 is -1 (less than 0); as u32 it's the max value.
	neg := NewI32(-1).Encode()
	zero := NewI32(0).Encode()

	ok, err := Compare(TypeI32, OpLessEq, neg, zero)
	require.NoError(t, err)
	assert.True(t, ok, "signed -1 should be <= 0")

	unsignedNeg := NewU32(0xFFFFFFFF).Encode()
	unsignedZero := NewU32(0).Encode()
	ok, err = Compare(TypeU32, OpLessEq, unsignedNeg, unsignedZero)
	require.NoError(t, err)
	assert.False(t, ok, "unsigned 0xFFFFFFFF should not be <= 0")
}

func TestCompareFloatNaNNeverEqual(t *testing.T) {
	nan := NewF64(math.NaN()).Encode()
	ok, err := Compare(TypeF64, OpEqual, nan, nan)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompareApproxWithinEpsilon(t *testing.T) {
	a := NewF32(10.0).Encode()
	b := NewF32(10.5).Encode()
	ok, err := Compare(TypeF32, OpApprox, a, b)
	require.NoError(t, err)
	assert.True(t, ok)

	c := NewF32(12.0).Encode()
	ok, err = Compare(TypeF32, OpApprox, a, c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompareUnchangedAlwaysTrue(t *testing.T) {
	a := NewU8(7).Encode()
	ok, err := Compare(TypeU8, OpUnchanged, a, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestScanTypeSize(t *testing.T) {
	sizes := map[ScanType]int{
		TypeU8: 1, TypeI8: 1,
		TypeU16: 2, TypeI16: 2,
		TypeU32: 4, TypeI32: 4, TypeF32: 4,
		TypeU64: 8, TypeI64: 8, TypeF64: 8,
	}
	for typ, want := range sizes {
		assert.Equal(t, want, typ.Size(), typ.String())
	}
}
