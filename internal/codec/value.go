package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is a scalar taken from a test plan or read back from the device:
// either a boolean or a number. Plans are JSON/YAML documents, so numbers
// arrive as float64; integer types are range-checked at encode time.
type Value struct {
	boolean bool
	number  float64
	isBool  bool
}

func BoolValue(b bool) Value {
	return Value{boolean: b, isBool: true}
}

func NumberValue(f float64) Value {
	return Value{number: f}
}

// IsBool reports whether the value was given as a boolean literal.
func (v Value) IsBool() bool { return v.isBool }

// Bool coerces the value to a boolean. Numbers follow the usual truthiness
// rule: anything nonzero is true.
func (v Value) Bool() bool {
	if v.isBool {
		return v.boolean
	}
	return v.number != 0
}

// Float coerces the value to a float64, mapping booleans to 0 and 1.
func (v Value) Float() float64 {
	if v.isBool {
		if v.boolean {
			return 1
		}
		return 0
	}
	return v.number
}

// Int returns the value as an integer, failing on booleans given where a
// number is required only if they carry a fractional part (they never do)
// and on non-integral numbers.
func (v Value) Int() (int64, error) {
	f := v.Float()
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("value %v is not an integer", f)
	}
	return int64(f), nil
}

func (v Value) String() string {
	if v.isBool {
		return strconv.FormatBool(v.boolean)
	}
	return strconv.FormatFloat(v.number, 'g', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isBool {
		return json.Marshal(v.boolean)
	}
	return json.Marshal(v.number)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case bool:
		*v = BoolValue(x)
	case float64:
		*v = NumberValue(x)
	default:
		return fmt.Errorf("value must be a boolean or a number, got %T", raw)
	}
	return nil
}
