package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Type identifies one of the PLC data types a step may address.
type Type string

const (
	TypeBool  Type = "BOOL"
	TypeByte  Type = "BYTE"
	TypeInt   Type = "INT"
	TypeDInt  Type = "DINT"
	TypeWord  Type = "WORD"
	TypeDWord Type = "DWORD"
	TypeReal  Type = "REAL"
)

// RealTolerance is the absolute tolerance used when comparing REAL values.
const RealTolerance = 1e-6

// Size returns the byte width of a type within a data block. BOOL occupies
// a single bit inside its containing byte and reports a width of 1 because
// reads and writes always move the whole byte.
func Size(t Type) (int, error) {
	switch t {
	case TypeBool, TypeByte:
		return 1, nil
	case TypeInt, TypeWord:
		return 2, nil
	case TypeDInt, TypeDWord, TypeReal:
		return 4, nil
	default:
		return 0, fmt.Errorf("unknown data type: %q", t)
	}
}

// Valid reports whether t is a recognized type tag.
func Valid(t Type) bool {
	_, err := Size(t)
	return err == nil
}

// Encode converts a value into its big-endian representation for the given
// type. BOOL is rejected here: a boolean lives inside a shared byte and must
// be placed with SetBit against the byte read from the device.
func Encode(t Type, v Value) ([]byte, error) {
	if t == TypeReal {
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, math.Float32bits(float32(v.Float())))
		return buf, nil
	}

	if t == TypeBool {
		return nil, fmt.Errorf("BOOL is bit-addressed and cannot be encoded standalone")
	}

	n, err := v.Int()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", t, err)
	}

	switch t {
	case TypeByte:
		if n < 0 || n > math.MaxUint8 {
			return nil, fmt.Errorf("value %d out of range for BYTE", n)
		}
		return []byte{byte(n)}, nil
	case TypeInt:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, fmt.Errorf("value %d out of range for INT", n)
		}
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(int16(n)))
		return buf, nil
	case TypeWord:
		if n < 0 || n > math.MaxUint16 {
			return nil, fmt.Errorf("value %d out of range for WORD", n)
		}
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(n))
		return buf, nil
	case TypeDInt:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("value %d out of range for DINT", n)
		}
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(int32(n)))
		return buf, nil
	case TypeDWord:
		if n < 0 || n > math.MaxUint32 {
			return nil, fmt.Errorf("value %d out of range for DWORD", n)
		}
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(n))
		return buf, nil
	default:
		return nil, fmt.Errorf("unknown data type: %q", t)
	}
}

// Decode converts a big-endian buffer back into a value of the given type.
// The buffer must be exactly Size(t) bytes. BOOL is rejected: use GetBit on
// the containing byte instead.
func Decode(t Type, buf []byte) (Value, error) {
	size, err := Size(t)
	if err != nil {
		return Value{}, err
	}
	if t == TypeBool {
		return Value{}, fmt.Errorf("BOOL is bit-addressed and cannot be decoded standalone")
	}
	if len(buf) != size {
		return Value{}, fmt.Errorf("decode %s: expected %d bytes, got %d", t, size, len(buf))
	}

	switch t {
	case TypeByte:
		return NumberValue(float64(buf[0])), nil
	case TypeInt:
		return NumberValue(float64(int16(binary.BigEndian.Uint16(buf)))), nil
	case TypeWord:
		return NumberValue(float64(binary.BigEndian.Uint16(buf))), nil
	case TypeDInt:
		return NumberValue(float64(int32(binary.BigEndian.Uint32(buf)))), nil
	case TypeDWord:
		return NumberValue(float64(binary.BigEndian.Uint32(buf))), nil
	case TypeReal:
		return NumberValue(float64(math.Float32frombits(binary.BigEndian.Uint32(buf)))), nil
	default:
		return Value{}, fmt.Errorf("unknown data type: %q", t)
	}
}

// SetBit returns b with the given bit forced to v, all other bits untouched.
func SetBit(b byte, bit int, v bool) byte {
	if v {
		return b | 1<<uint(bit)
	}
	return b &^ (1 << uint(bit))
}

// GetBit extracts the given bit from b.
func GetBit(b byte, bit int) bool {
	return b&(1<<uint(bit)) != 0
}

// Equal compares an expected against an actual value with the comparison
// semantics of the type: REAL within RealTolerance, BOOL as boolean equality,
// everything else exact.
func Equal(t Type, expected, actual Value) bool {
	switch t {
	case TypeReal:
		return math.Abs(actual.Float()-expected.Float()) < RealTolerance
	case TypeBool:
		return actual.Bool() == expected.Bool()
	default:
		return actual.Float() == expected.Float()
	}
}
