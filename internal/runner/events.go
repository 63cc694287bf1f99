package runner

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventRunStarted    EventType = "run_started"
	EventModuleStarted EventType = "module_started"
	EventCaseStarted   EventType = "case_started"
	EventStepStarted   EventType = "step_started"
	EventCaseCompleted EventType = "case_completed"
	EventRunCompleted  EventType = "run_completed"
	EventRunFailed     EventType = "run_failed"
)

// Event is a progress notification emitted while a plan runs. Consumers get
// them synchronously on the execution goroutine and must not block.
type Event struct {
	Type      EventType `json:"type"`
	RunID     uuid.UUID `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module,omitempty"`
	Case      string    `json:"case,omitempty"`
	StepIndex int       `json:"step_index,omitempty"`
	StepName  string    `json:"step_name,omitempty"`
	Verdict   Verdict   `json:"verdict,omitempty"`
	Failures  []string  `json:"failures,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// EventSink receives progress events during a run.
type EventSink interface {
	Publish(Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Publish(Event) {}
