package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/jorik41/plctester/internal/codec"
	"github.com/jorik41/plctester/internal/plan"
	"github.com/jorik41/plctester/internal/s7"
)

// StepExecutor runs single test steps against a memory port. It holds no
// state between steps; each step re-attempts I/O independently.
type StepExecutor struct {
	port s7.MemoryPort
}

func New(port s7.MemoryPort) *StepExecutor {
	return &StepExecutor{port: port}
}

// action is one fully resolved address of a step: everything scalar-or-list
// has been flattened away before execution touches the device.
type action struct {
	addr     plan.Address
	typ      codec.Type
	write    *codec.Value
	expected *codec.Value
}

// Execute runs one step: optional delay, then the write/verify sequence for
// every declared address. A returned error aborts the remaining addresses of
// this step only; the partial result is still meaningful. Configuration
// errors are detected before any I/O happens.
func (e *StepExecutor) Execute(ctx context.Context, step *plan.Step, index int) (StepResult, error) {
	result := StepResult{Index: index, Description: step.Description}

	actions, err := normalize(step)
	if err != nil {
		return result, err
	}

	if step.DelayMS > 0 {
		select {
		case <-time.After(time.Duration(step.DelayMS) * time.Millisecond):
		case <-ctx.Done():
			return result, ctx.Err()
		}
	}

	for _, act := range actions {
		outcome, err := e.run(step.DBNumber, act)
		if err != nil {
			return result, err
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result, nil
}

func (e *StepExecutor) run(dbNumber int, act action) (AddressOutcome, error) {
	if act.typ == codec.TypeBool {
		return e.runBool(dbNumber, act)
	}

	outcome := AddressOutcome{Address: act.addr, Type: act.typ}

	size, err := codec.Size(act.typ)
	if err != nil {
		return outcome, configError(err.Error())
	}

	if act.write != nil {
		buf, err := codec.Encode(act.typ, *act.write)
		if err != nil {
			return outcome, configError(err.Error())
		}
		if err := e.port.WriteDB(dbNumber, act.addr.Byte, buf); err != nil {
			return outcome, err
		}
		outcome.Wrote = true
	}

	if act.expected != nil {
		buf, err := e.port.ReadDB(dbNumber, act.addr.Byte, size)
		if err != nil {
			return outcome, err
		}
		actual, err := codec.Decode(act.typ, buf)
		if err != nil {
			return outcome, err
		}
		outcome.Checked = true
		outcome.Expected = *act.expected
		outcome.Actual = actual
		outcome.Passed = codec.Equal(act.typ, *act.expected, actual)
	}

	return outcome, nil
}

// runBool handles the bit-addressed case: writes are a read-modify-write of
// the containing byte so sibling bits stay untouched.
func (e *StepExecutor) runBool(dbNumber int, act action) (AddressOutcome, error) {
	outcome := AddressOutcome{Address: act.addr, Type: act.typ}

	if act.write != nil {
		cur, err := e.port.ReadDB(dbNumber, act.addr.Byte, 1)
		if err != nil {
			return outcome, err
		}
		modified := codec.SetBit(cur[0], act.addr.Bit, act.write.Bool())
		if err := e.port.WriteDB(dbNumber, act.addr.Byte, []byte{modified}); err != nil {
			return outcome, err
		}
		outcome.Wrote = true
	}

	if act.expected != nil {
		buf, err := e.port.ReadDB(dbNumber, act.addr.Byte, 1)
		if err != nil {
			return outcome, err
		}
		actual := codec.BoolValue(codec.GetBit(buf[0], act.addr.Bit))
		outcome.Checked = true
		outcome.Expected = *act.expected
		outcome.Actual = actual
		outcome.Passed = codec.Equal(codec.TypeBool, *act.expected, actual)
	}

	return outcome, nil
}

// normalize flattens the step's scalar-or-list fields into one action per
// address and rejects inconsistent declarations before any device I/O.
func normalize(step *plan.Step) ([]action, error) {
	if len(step.Start) == 0 {
		return nil, configError("step declares no addresses")
	}

	types := step.DataType
	switch {
	case len(types) == 1:
		// A single tag broadcasts across all addresses.
	case len(types) == len(step.Start):
	default:
		return nil, configErrorf("%d data types for %d addresses", len(types), len(step.Start))
	}

	if len(step.Write) > len(step.Start) {
		return nil, configErrorf("write list has %d values for %d addresses", len(step.Write), len(step.Start))
	}
	if len(step.Expected) > len(step.Start) {
		return nil, configErrorf("expected list has %d values for %d addresses", len(step.Expected), len(step.Start))
	}

	actions := make([]action, 0, len(step.Start))
	for i, addr := range step.Start {
		typ := types[0]
		if len(types) > 1 {
			typ = types[i]
		}
		if !codec.Valid(typ) {
			return nil, configErrorf("unknown data type: %q", typ)
		}
		if typ == codec.TypeBool && !addr.HasBit {
			return nil, configErrorf("BOOL at %s requires a byte.bit address", addr)
		}
		if typ != codec.TypeBool && addr.HasBit {
			return nil, configErrorf("%s at %s: bit addresses are only valid for BOOL", typ, addr)
		}

		act := action{addr: addr, typ: typ}
		if i < len(step.Write) {
			v := step.Write[i]
			if typ != codec.TypeBool {
				// Reject unencodable write values here so no earlier address
				// of the step has touched the device yet.
				if _, err := codec.Encode(typ, v); err != nil {
					return nil, configError(err.Error())
				}
			}
			act.write = &v
		}
		if i < len(step.Expected) {
			v := step.Expected[i]
			act.expected = &v
		}
		actions = append(actions, act)
	}

	return actions, nil
}

func configErrorf(format string, args ...any) error {
	return configError(fmt.Sprintf(format, args...))
}
