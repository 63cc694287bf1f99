package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jorik41/plctester/internal/config"
	"github.com/jorik41/plctester/internal/plan"
	"github.com/jorik41/plctester/internal/s7"
	"github.com/jorik41/plctester/internal/storage"
	"go.uber.org/zap"
)

// PortFactory builds a fresh memory port for one run. Each run gets its own
// port because a port must never be shared between concurrent executions.
type PortFactory func() s7.MemoryPort

// Service executes stored plans asynchronously and persists run records. It
// is the glue between the REST surface and the synchronous Runner.
type Service struct {
	storage *storage.PostgresClient
	sink    EventSink
	logger  *zap.Logger
	opts    Options
	newPort PortFactory

	mu      sync.Mutex
	running map[uuid.UUID]struct{}
}

func NewService(store *storage.PostgresClient, cfg *config.Config, sink EventSink, logger *zap.Logger) *Service {
	plc := cfg.PLC
	return &Service{
		storage: store,
		sink:    sink,
		logger:  logger,
		opts:    Options{StopOnError: cfg.Runner.StopOnError},
		newPort: func() s7.MemoryPort {
			return s7.NewClient(plc.Address, plc.Rack, plc.Slot, plc.Timeout)
		},
		running: make(map[uuid.UUID]struct{}),
	}
}

// SetPortFactory overrides how device ports are built, e.g. to run stored
// plans against the simulator.
func (s *Service) SetPortFactory(f PortFactory) {
	s.newPort = f
}

// StartRun loads a stored plan, records a pending run and executes it in the
// background. Only one run may be active at a time: the port is a single
// exclusive resource.
func (s *Service) StartRun(ctx context.Context, planID uuid.UUID) (*storage.Run, error) {
	s.mu.Lock()
	if len(s.running) > 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("a run is already in progress")
	}
	runID := uuid.New()
	s.running[runID] = struct{}{}
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		delete(s.running, runID)
		s.mu.Unlock()
	}

	stored, err := s.storage.GetPlan(ctx, planID)
	if err != nil {
		release()
		return nil, err
	}

	p, err := plan.Parse(stored.Document)
	if err != nil {
		release()
		return nil, fmt.Errorf("stored plan is invalid: %w", err)
	}

	run := &storage.Run{
		ID:        runID,
		PlanID:    planID,
		Status:    storage.StatusPending,
		StartedAt: time.Now(),
	}
	if err := s.storage.CreateRun(ctx, run); err != nil {
		release()
		return nil, err
	}

	go func() {
		defer release()
		s.execute(run, p)
	}()

	return run, nil
}

func (s *Service) execute(run *storage.Run, p *plan.Plan) {
	ctx := context.Background()

	run.Status = storage.StatusRunning
	if err := s.storage.UpdateRun(ctx, run); err != nil {
		s.logger.Error("Failed to update run", zap.Error(err))
	}

	r := New(s.newPort(), s.logger, s.opts, s.sink)
	report, err := r.RunWithID(ctx, p, run.ID)

	now := time.Now()
	run.CompletedAt = &now

	if report != nil {
		run.CasesPassed, run.CasesFailed = report.Counts()
		if data, merr := json.Marshal(report); merr == nil {
			run.Report = data
		}
		s.persistCaseRecords(ctx, run.ID, report)
	}

	switch {
	case err != nil:
		run.Status = storage.StatusError
		run.Error = err.Error()
	case run.CasesFailed > 0:
		run.Status = storage.StatusFailed
	default:
		run.Status = storage.StatusPassed
	}

	if err := s.storage.UpdateRun(ctx, run); err != nil {
		s.logger.Error("Failed to update run", zap.Error(err))
	}
}

func (s *Service) persistCaseRecords(ctx context.Context, runID uuid.UUID, report *Report) {
	var records []storage.CaseRecord
	for _, m := range report.Modules {
		for _, c := range m.Cases {
			records = append(records, storage.CaseRecord{
				RunID:      runID,
				ModuleName: m.Name,
				CaseName:   c.Name,
				Verdict:    string(c.Verdict),
				Failures:   c.Failures,
			})
		}
	}
	if len(records) == 0 {
		return
	}
	if err := s.storage.SaveCaseRecords(ctx, records); err != nil {
		s.logger.Error("Failed to persist case results", zap.Error(err))
	}
}
