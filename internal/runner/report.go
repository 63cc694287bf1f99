package runner

import (
	"time"

	"github.com/google/uuid"
	"github.com/jorik41/plctester/internal/executor"
)

type Verdict string

const (
	VerdictPassed Verdict = "PASSED"
	VerdictFailed Verdict = "FAILED"
)

// CaseResult is the aggregated outcome of one test case: exactly one verdict
// plus the ordered failure lines attributing each failure to a step.
type CaseResult struct {
	Name     string                `json:"name"`
	Verdict  Verdict               `json:"verdict"`
	Failures []string              `json:"failures,omitempty"`
	Steps    []executor.StepResult `json:"steps"`
}

type ModuleResult struct {
	Name  string       `json:"name"`
	Cases []CaseResult `json:"cases"`
}

// Report is the structured result of one plan execution.
type Report struct {
	RunID       uuid.UUID      `json:"run_id"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	Modules     []ModuleResult `json:"modules"`
}

// Passed reports whether every test case in the run passed.
func (r *Report) Passed() bool {
	_, failed := r.Counts()
	return failed == 0
}

// Counts returns the number of passed and failed test cases.
func (r *Report) Counts() (passed, failed int) {
	for _, m := range r.Modules {
		for _, c := range m.Cases {
			if c.Verdict == VerdictPassed {
				passed++
			} else {
				failed++
			}
		}
	}
	return passed, failed
}
