package executor

import (
	"errors"
	"fmt"

	"github.com/jorik41/plctester/internal/codec"
	"github.com/jorik41/plctester/internal/plan"
)

// AddressOutcome records what happened at one address of a step. A write-only
// address is never checked and therefore never fails.
type AddressOutcome struct {
	Address  plan.Address `json:"address"`
	Type     codec.Type   `json:"type"`
	Wrote    bool         `json:"wrote"`
	Checked  bool         `json:"checked"`
	Passed   bool         `json:"passed"`
	Expected codec.Value  `json:"expected,omitempty"`
	Actual   codec.Value  `json:"actual,omitempty"`
}

// StepResult is the outcome of one step. Index is 1-based within the test
// case, matching how failures are reported to operators.
type StepResult struct {
	Index       int              `json:"index"`
	Description string           `json:"description"`
	Outcomes    []AddressOutcome `json:"outcomes"`
}

// Passed reports the step verdict: the logical AND over all checked
// addresses. Unchecked addresses count as passes.
func (r StepResult) Passed() bool {
	for _, o := range r.Outcomes {
		if o.Checked && !o.Passed {
			return false
		}
	}
	return true
}

// Failures returns one human-readable line per failed check, in address
// order.
func (r StepResult) Failures() []string {
	var lines []string
	for _, o := range r.Outcomes {
		if o.Checked && !o.Passed {
			lines = append(lines, fmt.Sprintf("step %d (%s) at %s: expected %s got %s",
				r.Index, r.Description, o.Address, o.Expected, o.Actual))
		}
	}
	return lines
}

// ConfigError marks an inconsistency in the step declaration itself:
// unknown type tag, mismatched list lengths, a BOOL without a bit address.
// It aborts the offending step before any device I/O.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.msg
}

func configError(msg string) error {
	return &ConfigError{msg: msg}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
