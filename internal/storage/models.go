package storage

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	StatusPending RunStatus = "pending"
	StatusRunning RunStatus = "running"
	StatusPassed  RunStatus = "passed"
	StatusFailed  RunStatus = "failed"
	StatusError   RunStatus = "error"
)

// StoredPlan is a test plan document kept in the database. The document is
// the raw JSON plan, stored as JSONB so uninterpreted fields survive.
type StoredPlan struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Document  []byte    `json:"document"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Run is one execution of a stored plan.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	PlanID      uuid.UUID  `json:"plan_id"`
	Status      RunStatus  `json:"status"`
	Report      []byte     `json:"report,omitempty"` // JSONB runner.Report
	Error       string     `json:"error,omitempty"`
	CasesPassed int        `json:"cases_passed"`
	CasesFailed int        `json:"cases_failed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CaseRecord is one test case verdict inside a run, denormalized for
// querying without unpacking the full report. The serial ID preserves
// insertion order.
type CaseRecord struct {
	ID         int64     `json:"id"`
	RunID      uuid.UUID `json:"run_id"`
	ModuleName string    `json:"module_name"`
	CaseName   string    `json:"case_name"`
	Verdict    string    `json:"verdict"`
	Failures   []string  `json:"failures,omitempty"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
