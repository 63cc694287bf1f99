package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		value float64
		size  int
	}{
		{"INT positive", TypeInt, 10, 2},
		{"INT negative", TypeInt, -1234, 2},
		{"INT min", TypeInt, -32768, 2},
		{"INT max", TypeInt, 32767, 2},
		{"DINT negative", TypeDInt, -5, 4},
		{"DINT large", TypeDInt, 2147483647, 4},
		{"WORD", TypeWord, 65535, 2},
		{"DWORD", TypeDWord, 4294967295, 4},
		{"BYTE", TypeByte, 200, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Encode(tt.typ, NumberValue(tt.value))
			require.NoError(t, err)
			require.Len(t, buf, tt.size)

			got, err := Decode(tt.typ, buf)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got.Float())
		})
	}
}

func TestEncodeDecodeReal(t *testing.T) {
	buf, err := Encode(TypeReal, NumberValue(3.14))
	require.NoError(t, err)
	require.Len(t, buf, 4)

	got, err := Decode(TypeReal, buf)
	require.NoError(t, err)
	// Single precision loses bits; the round-trip must stay inside the
	// comparison tolerance.
	assert.InDelta(t, 3.14, got.Float(), RealTolerance)
	assert.True(t, Equal(TypeReal, NumberValue(3.14), got))
}

func TestEncodeKnownRepresentations(t *testing.T) {
	buf, err := Encode(TypeInt, NumberValue(10))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x0A}, buf)

	buf, err = Encode(TypeDInt, NumberValue(-5))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFB}, buf)

	buf, err = Encode(TypeWord, NumberValue(0xABCD))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB, 0xCD}, buf)
}

func TestEncodeRangeErrors(t *testing.T) {
	tests := []struct {
		typ   Type
		value float64
	}{
		{TypeByte, 256},
		{TypeByte, -1},
		{TypeInt, 40000},
		{TypeInt, -40000},
		{TypeWord, -1},
		{TypeWord, 70000},
		{TypeDInt, 3e9},
		{TypeDWord, -1},
	}

	for _, tt := range tests {
		_, err := Encode(tt.typ, NumberValue(tt.value))
		assert.Error(t, err, "%s %v", tt.typ, tt.value)
	}
}

func TestEncodeRejectsNonInteger(t *testing.T) {
	_, err := Encode(TypeInt, NumberValue(1.5))
	assert.Error(t, err)
}

func TestEncodeDecodeBoolRejected(t *testing.T) {
	_, err := Encode(TypeBool, BoolValue(true))
	assert.Error(t, err)

	_, err = Decode(TypeBool, []byte{0x01})
	assert.Error(t, err)
}

func TestUnknownType(t *testing.T) {
	_, err := Size("STRING")
	assert.Error(t, err)
	assert.False(t, Valid("STRING"))

	_, err = Encode("STRING", NumberValue(1))
	assert.Error(t, err)
}

func TestSetBitPreservesSiblings(t *testing.T) {
	b := byte(0b10100101)

	got := SetBit(b, 3, true)
	assert.Equal(t, byte(0b10101101), got)

	got = SetBit(got, 3, false)
	assert.Equal(t, b, got)

	// Clearing an already clear bit changes nothing.
	assert.Equal(t, b, SetBit(b, 1, false))
}

func TestGetBit(t *testing.T) {
	b := byte(0b00001000)
	assert.True(t, GetBit(b, 3))
	for _, bit := range []int{0, 1, 2, 4, 5, 6, 7} {
		assert.False(t, GetBit(b, bit), "bit %d", bit)
	}
}

func TestEqualRealTolerance(t *testing.T) {
	// Just inside the tolerance.
	assert.True(t, Equal(TypeReal, NumberValue(3.14), NumberValue(3.1400001)))
	// A difference of exactly 1e-6 falls outside the strict bound.
	assert.False(t, Equal(TypeReal, NumberValue(3.14), NumberValue(3.140001)))
}

func TestEqualBoolCoercion(t *testing.T) {
	// Plans may declare booleans as 0/1.
	assert.True(t, Equal(TypeBool, NumberValue(1), BoolValue(true)))
	assert.True(t, Equal(TypeBool, NumberValue(0), BoolValue(false)))
	assert.False(t, Equal(TypeBool, BoolValue(true), BoolValue(false)))
}

func TestEqualExactIntegers(t *testing.T) {
	assert.True(t, Equal(TypeInt, NumberValue(10), NumberValue(10)))
	assert.False(t, Equal(TypeInt, NumberValue(10), NumberValue(11)))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "200", NumberValue(200).String())
	assert.Equal(t, "-5", NumberValue(-5).String())
	assert.Equal(t, "12.5", NumberValue(12.5).String())
}
