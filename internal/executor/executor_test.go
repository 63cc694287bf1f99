package executor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jorik41/plctester/internal/codec"
	"github.com/jorik41/plctester/internal/plan"
	"github.com/jorik41/plctester/internal/s7/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPort(t *testing.T) *sim.Port {
	t.Helper()
	port := sim.New()
	require.NoError(t, port.Connect())
	return port
}

func addr(t *testing.T, s string) plan.Address {
	t.Helper()
	a, err := plan.ParseAddress(s)
	require.NoError(t, err)
	return a
}

func values(vs ...float64) plan.ValueList {
	out := make(plan.ValueList, len(vs))
	for i, v := range vs {
		out[i] = codec.NumberValue(v)
	}
	return out
}

func TestExecuteWriteOnlyAlwaysPasses(t *testing.T) {
	port := newPort(t)
	exec := New(port)

	step := &plan.Step{
		Description: "write setpoint",
		DBNumber:    1,
		Start:       plan.AddressList{addr(t, "0")},
		DataType:    plan.TypeList{codec.TypeInt},
		Write:       values(1500),
	}

	result, err := exec.Execute(context.Background(), step, 1)
	require.NoError(t, err)
	assert.True(t, result.Passed())
	assert.Empty(t, result.Failures())
	require.Len(t, result.Outcomes, 1)
	assert.True(t, result.Outcomes[0].Wrote)
	assert.False(t, result.Outcomes[0].Checked)

	assert.Equal(t, []byte{0x05, 0xDC}, port.Block(1)[:2])
}

func TestExecuteExpectedOnlyNeverMutates(t *testing.T) {
	port := newPort(t)
	port.Seed(2, []byte{0x00, 0x0A, 0xDE, 0xAD})
	exec := New(port)

	step := &plan.Step{
		Description: "check counter",
		DBNumber:    2,
		Start:       plan.AddressList{addr(t, "0")},
		DataType:    plan.TypeList{codec.TypeInt},
		Expected:    values(11), // wrong on purpose
	}

	result, err := exec.Execute(context.Background(), step, 1)
	require.NoError(t, err)
	assert.False(t, result.Passed())

	// The failed check must not have touched device memory.
	assert.Equal(t, []byte{0x00, 0x0A, 0xDE, 0xAD}, port.Block(2))
}

func TestExecuteMultiAddressVerify(t *testing.T) {
	port := newPort(t)
	port.Seed(1, []byte{0x00, 0x0A, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFB})
	exec := New(port)

	step := &plan.Step{
		Description: "counter pair",
		DBNumber:    1,
		Start:       plan.AddressList{addr(t, "0"), addr(t, "4")},
		DataType:    plan.TypeList{codec.TypeInt, codec.TypeDInt},
		Expected:    values(10, -5),
	}

	result, err := exec.Execute(context.Background(), step, 1)
	require.NoError(t, err)
	assert.True(t, result.Passed())
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, float64(10), result.Outcomes[0].Actual.Float())
	assert.Equal(t, float64(-5), result.Outcomes[1].Actual.Float())
}

func TestExecuteSingleTypeBroadcast(t *testing.T) {
	port := newPort(t)
	exec := New(port)

	step := &plan.Step{
		Description: "three words",
		DBNumber:    1,
		Start:       plan.AddressList{addr(t, "0"), addr(t, "2"), addr(t, "4")},
		DataType:    plan.TypeList{codec.TypeWord},
		Write:       values(1, 2, 3),
		Expected:    values(1, 2, 3),
	}

	result, err := exec.Execute(context.Background(), step, 1)
	require.NoError(t, err)
	assert.True(t, result.Passed())
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03}, port.Block(1))
}

func TestExecuteShorterListsLeaveRemainderAlone(t *testing.T) {
	port := newPort(t)
	exec := New(port)

	// One write value for two addresses: only the first address is written,
	// and nothing is checked.
	step := &plan.Step{
		Description: "partial write",
		DBNumber:    1,
		Start:       plan.AddressList{addr(t, "0"), addr(t, "2")},
		DataType:    plan.TypeList{codec.TypeInt},
		Write:       values(10),
	}

	result, err := exec.Execute(context.Background(), step, 1)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 2)
	assert.True(t, result.Outcomes[0].Wrote)
	assert.False(t, result.Outcomes[1].Wrote)
	assert.Equal(t, []byte{0x00, 0x0A}, port.Block(1))
}

func TestExecuteBoolWritePreservesSiblingBits(t *testing.T) {
	port := newPort(t)
	port.Seed(3, []byte{0, 0, 0, 0, 0, 0b10100101})
	exec := New(port)

	step := &plan.Step{
		Description: "set start bit",
		DBNumber:    3,
		Start:       plan.AddressList{addr(t, "5.3")},
		DataType:    plan.TypeList{codec.TypeBool},
		Write:       plan.ValueList{codec.BoolValue(true)},
		Expected:    plan.ValueList{codec.BoolValue(true)},
	}

	result, err := exec.Execute(context.Background(), step, 1)
	require.NoError(t, err)
	assert.True(t, result.Passed())
	assert.Equal(t, byte(0b10101101), port.Block(3)[5])
}

func TestExecuteBoolExpectedFailure(t *testing.T) {
	port := newPort(t)
	exec := New(port)

	step := &plan.Step{
		Description: "running flag high",
		DBNumber:    3,
		Start:       plan.AddressList{addr(t, "0.1")},
		DataType:    plan.TypeList{codec.TypeBool},
		Expected:    plan.ValueList{codec.BoolValue(true)},
	}

	result, err := exec.Execute(context.Background(), step, 4)
	require.NoError(t, err)
	assert.False(t, result.Passed())
	require.Len(t, result.Failures(), 1)
	assert.Equal(t, "step 4 (running flag high) at 0.1: expected true got false", result.Failures()[0])
}

func TestExecuteRealTolerance(t *testing.T) {
	port := newPort(t)
	exec := New(port)

	write := &plan.Step{
		Description: "write ratio",
		DBNumber:    1,
		Start:       plan.AddressList{addr(t, "0")},
		DataType:    plan.TypeList{codec.TypeReal},
		Write:       values(3.14),
	}
	_, err := exec.Execute(context.Background(), write, 1)
	require.NoError(t, err)

	check := &plan.Step{
		Description: "ratio within tolerance",
		DBNumber:    1,
		Start:       plan.AddressList{addr(t, "0")},
		DataType:    plan.TypeList{codec.TypeReal},
		Expected:    values(3.1400001),
	}
	result, err := exec.Execute(context.Background(), check, 2)
	require.NoError(t, err)
	assert.True(t, result.Passed())

	// A stored value 1e-6 away lands just outside the tolerance.
	write.Write = values(3.140001)
	_, err = exec.Execute(context.Background(), write, 3)
	require.NoError(t, err)

	check.Expected = values(3.14)
	result, err = exec.Execute(context.Background(), check, 4)
	require.NoError(t, err)
	assert.False(t, result.Passed())
}

func TestExecuteRangeErrorRejectedBeforeIO(t *testing.T) {
	port := newPort(t)
	exec := New(port)

	// The second write value is unencodable; the first address must not be
	// touched either.
	step := &plan.Step{
		Description: "partially invalid write",
		DBNumber:    1,
		Start:       plan.AddressList{addr(t, "0"), addr(t, "1")},
		DataType:    plan.TypeList{codec.TypeByte},
		Write:       values(5, 300),
	}

	result, err := exec.Execute(context.Background(), step, 1)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.Empty(t, result.Outcomes)
	assert.Empty(t, port.Block(1))
}

func TestExecuteDelayHonored(t *testing.T) {
	port := newPort(t)
	exec := New(port)

	step := &plan.Step{
		Description: "settle then check",
		DBNumber:    1,
		Start:       plan.AddressList{addr(t, "0")},
		DataType:    plan.TypeList{codec.TypeByte},
		Expected:    values(0),
		DelayMS:     30,
	}

	started := time.Now()
	result, err := exec.Execute(context.Background(), step, 1)
	require.NoError(t, err)
	assert.True(t, result.Passed())
	assert.GreaterOrEqual(t, time.Since(started), 30*time.Millisecond)
}

func TestExecuteDelayCancelled(t *testing.T) {
	port := newPort(t)
	exec := New(port)

	step := &plan.Step{
		Description: "long settle",
		DBNumber:    1,
		Start:       plan.AddressList{addr(t, "0")},
		DataType:    plan.TypeList{codec.TypeByte},
		Expected:    values(0),
		DelayMS:     5000,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := exec.Execute(ctx, step, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		step plan.Step
	}{
		{
			name: "no addresses",
			step: plan.Step{DataType: plan.TypeList{codec.TypeInt}},
		},
		{
			name: "type count mismatch",
			step: plan.Step{
				Start:    plan.AddressList{{Byte: 0}, {Byte: 2}, {Byte: 4}},
				DataType: plan.TypeList{codec.TypeInt, codec.TypeInt},
			},
		},
		{
			name: "write list longer than addresses",
			step: plan.Step{
				Start:    plan.AddressList{{Byte: 0}},
				DataType: plan.TypeList{codec.TypeInt},
				Write:    values(1, 2),
			},
		},
		{
			name: "expected list longer than addresses",
			step: plan.Step{
				Start:    plan.AddressList{{Byte: 0}},
				DataType: plan.TypeList{codec.TypeInt},
				Expected: values(1, 2),
			},
		},
		{
			name: "unknown type tag",
			step: plan.Step{
				Start:    plan.AddressList{{Byte: 0}},
				DataType: plan.TypeList{"STRING"},
			},
		},
		{
			name: "BOOL without bit address",
			step: plan.Step{
				Start:    plan.AddressList{{Byte: 0}},
				DataType: plan.TypeList{codec.TypeBool},
			},
		},
		{
			name: "bit address on INT",
			step: plan.Step{
				Start:    plan.AddressList{{Byte: 0, Bit: 2, HasBit: true}},
				DataType: plan.TypeList{codec.TypeInt},
			},
		},
		{
			name: "write value out of range",
			step: plan.Step{
				Start:    plan.AddressList{{Byte: 0}},
				DataType: plan.TypeList{codec.TypeByte},
				Write:    values(300),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := newPort(t)
			exec := New(port)

			_, err := exec.Execute(context.Background(), &tt.step, 1)
			require.Error(t, err)
			assert.True(t, IsConfigError(err), "expected a config error, got %v", err)
		})
	}
}

// failPort wraps a sim port and fails I/O touching one byte offset.
type failPort struct {
	*sim.Port
	failOffset int
}

func (p *failPort) ReadDB(dbNumber, start, size int) ([]byte, error) {
	if start == p.failOffset {
		return nil, fmt.Errorf("read DB%d@%d failed: connection reset", dbNumber, start)
	}
	return p.Port.ReadDB(dbNumber, start, size)
}

func (p *failPort) WriteDB(dbNumber, start int, data []byte) error {
	if start == p.failOffset {
		return fmt.Errorf("write DB%d@%d failed: connection reset", dbNumber, start)
	}
	return p.Port.WriteDB(dbNumber, start, data)
}

func TestExecuteTransportErrorAbortsStep(t *testing.T) {
	port := newPort(t)
	exec := New(&failPort{Port: port, failOffset: 2})

	step := &plan.Step{
		Description: "two writes",
		DBNumber:    1,
		Start:       plan.AddressList{addr(t, "0"), addr(t, "2"), addr(t, "4")},
		DataType:    plan.TypeList{codec.TypeInt},
		Write:       values(1, 2, 3),
	}

	result, err := exec.Execute(context.Background(), step, 1)
	require.Error(t, err)
	assert.False(t, IsConfigError(err))
	// The first address completed before the failure aborted the step.
	require.Len(t, result.Outcomes, 1)
	assert.True(t, result.Outcomes[0].Wrote)
}
