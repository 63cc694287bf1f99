package plan

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jorik41/plctester/internal/codec"
)

// Plan is the top-level test plan: an ordered list of modules. Order is
// significant everywhere in the hierarchy; names need not be unique.
type Plan struct {
	Modules []Module `json:"modules"`
}

// Module groups the test cases for one PLC program unit.
type Module struct {
	Name  string     `json:"name"`
	Tests []TestCase `json:"tests"`
}

// TestCase is an ordered list of steps executed in declaration order.
type TestCase struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// Step is the atomic write/verify action. The start, data_type, write and
// expected fields accept a scalar or a list in the document; they are
// normalized to lists at decode time so nothing downstream branches on the
// shape. Fields this tool does not interpret are preserved for round-trips.
type Step struct {
	Description string
	DBNumber    int
	Start       AddressList
	DataType    TypeList
	Write       ValueList // nil when the step declares no writes
	Expected    ValueList // nil when the step declares no checks
	DelayMS     int

	extra map[string]json.RawMessage
}

// AddressList is a scalar-or-list address field, already parsed into
// Address values.
type AddressList []Address

// TypeList is a scalar-or-list data type field.
type TypeList []codec.Type

// ValueList is a scalar-or-list value field.
type ValueList []codec.Value

func (s *Step) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			delete(raw, key)
			return nil
		}
		delete(raw, key)
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("step field %q: %w", key, err)
		}
		return nil
	}

	*s = Step{}
	if err := take("description", &s.Description); err != nil {
		return err
	}
	if err := take("db_number", &s.DBNumber); err != nil {
		return err
	}
	if err := take("start", &s.Start); err != nil {
		return err
	}
	if err := take("data_type", &s.DataType); err != nil {
		return err
	}
	if err := take("write", &s.Write); err != nil {
		return err
	}
	if err := take("expected", &s.Expected); err != nil {
		return err
	}
	if err := take("delay_ms", &s.DelayMS); err != nil {
		return err
	}

	if len(raw) > 0 {
		s.extra = raw
	}
	return nil
}

func (s Step) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.extra)+7)
	for k, v := range s.extra {
		out[k] = v
	}

	put := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = data
		return nil
	}

	if err := put("description", s.Description); err != nil {
		return nil, err
	}
	if err := put("db_number", s.DBNumber); err != nil {
		return nil, err
	}
	if err := put("start", s.Start); err != nil {
		return nil, err
	}
	if err := put("data_type", s.DataType); err != nil {
		return nil, err
	}
	if s.Write != nil {
		if err := put("write", s.Write); err != nil {
			return nil, err
		}
	}
	if s.Expected != nil {
		if err := put("expected", s.Expected); err != nil {
			return nil, err
		}
	}
	if s.DelayMS != 0 {
		if err := put("delay_ms", s.DelayMS); err != nil {
			return nil, err
		}
	}

	return json.Marshal(out)
}

func (l *AddressList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	items, ok := raw.([]any)
	if !ok {
		items = []any{raw}
	}

	addrs := make(AddressList, 0, len(items))
	for _, item := range items {
		var text string
		switch x := item.(type) {
		case json.Number:
			// A literal like 4.2 is a bit address, not a float; the
			// untouched token keeps the distinction.
			text = x.String()
		case string:
			text = x
		default:
			return fmt.Errorf("address must be an integer or \"byte.bit\" string, got %T", item)
		}
		addr, err := ParseAddress(text)
		if err != nil {
			return err
		}
		addrs = append(addrs, addr)
	}

	*l = addrs
	return nil
}

func (l AddressList) MarshalJSON() ([]byte, error) {
	// Plain byte offsets marshal back as integers, bit addresses as strings,
	// matching the document forms they were parsed from.
	elem := func(a Address) any {
		if a.HasBit {
			return a.String()
		}
		return a.Byte
	}
	if len(l) == 1 {
		return json.Marshal(elem(l[0]))
	}
	out := make([]any, len(l))
	for i, a := range l {
		out[i] = elem(a)
	}
	return json.Marshal(out)
}

func (l *TypeList) UnmarshalJSON(data []byte) error {
	var one codec.Type
	if err := json.Unmarshal(data, &one); err == nil {
		*l = TypeList{one}
		return nil
	}
	var many []codec.Type
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("data_type must be a string or a list of strings")
	}
	*l = many
	return nil
}

func (l TypeList) MarshalJSON() ([]byte, error) {
	if len(l) == 1 {
		return json.Marshal(l[0])
	}
	return json.Marshal([]codec.Type(l))
}

func (l *ValueList) UnmarshalJSON(data []byte) error {
	var one codec.Value
	if err := json.Unmarshal(data, &one); err == nil {
		*l = ValueList{one}
		return nil
	}
	var many []codec.Value
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("value must be a scalar or a list of scalars")
	}
	*l = many
	return nil
}

func (l ValueList) MarshalJSON() ([]byte, error) {
	if len(l) == 1 {
		return json.Marshal(l[0])
	}
	return json.Marshal([]codec.Value(l))
}
