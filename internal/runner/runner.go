package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jorik41/plctester/internal/executor"
	"github.com/jorik41/plctester/internal/plan"
	"github.com/jorik41/plctester/internal/s7"
	"go.uber.org/zap"
)

// Options tune run behavior.
type Options struct {
	// StopOnError makes any step error (transport or configuration) abort
	// the remaining run instead of continuing with the next step.
	StopOnError bool
}

// Runner executes a plan: modules, test cases and steps strictly in
// declaration order, each step exactly once, no retries. It owns the port's
// connect/disconnect lifecycle for the duration of one run.
type Runner struct {
	port   s7.MemoryPort
	exec   *executor.StepExecutor
	sink   EventSink
	logger *zap.Logger
	opts   Options
}

func New(port s7.MemoryPort, logger *zap.Logger, opts Options, sink EventSink) *Runner {
	if sink == nil {
		sink = NopSink{}
	}
	return &Runner{
		port:   port,
		exec:   executor.New(port),
		sink:   sink,
		logger: logger,
		opts:   opts,
	}
}

// Run executes the whole plan against the port. The returned report is
// complete unless the connection could not be established or StopOnError cut
// the run short; in the latter case the partial report accompanies the error.
func (r *Runner) Run(ctx context.Context, p *plan.Plan) (*Report, error) {
	return r.RunWithID(ctx, p, uuid.New())
}

// RunWithID is Run with a caller-chosen run ID, so callers that persist run
// records before execution can correlate events and report.
func (r *Runner) RunWithID(ctx context.Context, p *plan.Plan, runID uuid.UUID) (*Report, error) {
	report := &Report{
		RunID:     runID,
		StartedAt: time.Now(),
	}

	if err := r.port.Connect(); err != nil {
		r.publish(Event{Type: EventRunFailed, RunID: report.RunID, Error: err.Error()})
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		if err := r.port.Disconnect(); err != nil {
			r.logger.Warn("Disconnect failed", zap.Error(err))
		}
	}()

	r.logger.Info("Plan execution started",
		zap.String("run_id", report.RunID.String()),
		zap.Int("modules", len(p.Modules)))
	r.publish(Event{Type: EventRunStarted, RunID: report.RunID})

	for _, module := range p.Modules {
		r.logger.Info("Module started", zap.String("module", module.Name))
		r.publish(Event{Type: EventModuleStarted, RunID: report.RunID, Module: module.Name})

		moduleResult := ModuleResult{Name: module.Name}
		for _, test := range module.Tests {
			caseResult, err := r.runCase(ctx, report.RunID, module.Name, &test)
			moduleResult.Cases = append(moduleResult.Cases, caseResult)

			if err != nil && r.opts.StopOnError {
				report.Modules = append(report.Modules, moduleResult)
				report.CompletedAt = time.Now()
				r.publish(Event{Type: EventRunFailed, RunID: report.RunID, Error: err.Error()})
				return report, fmt.Errorf("run aborted: %w", err)
			}
		}
		report.Modules = append(report.Modules, moduleResult)
	}

	report.CompletedAt = time.Now()
	passed, failed := report.Counts()
	r.logger.Info("Plan execution completed",
		zap.String("run_id", report.RunID.String()),
		zap.Int("cases_passed", passed),
		zap.Int("cases_failed", failed))
	r.publish(Event{Type: EventRunCompleted, RunID: report.RunID})

	return report, nil
}

// runCase executes one test case. Step errors are captured as failure lines
// and the remaining steps still run; the returned error is non-nil only so
// StopOnError can propagate it, it never crosses the case boundary otherwise.
func (r *Runner) runCase(ctx context.Context, runID uuid.UUID, moduleName string, test *plan.TestCase) (CaseResult, error) {
	r.logger.Info("Test case started",
		zap.String("module", moduleName),
		zap.String("case", test.Name))
	r.publish(Event{Type: EventCaseStarted, RunID: runID, Module: moduleName, Case: test.Name})

	result := CaseResult{Name: test.Name, Verdict: VerdictPassed}
	var firstErr error

	for i := range test.Steps {
		step := &test.Steps[i]
		index := i + 1

		r.publish(Event{
			Type: EventStepStarted, RunID: runID,
			Module: moduleName, Case: test.Name,
			StepIndex: index, StepName: step.Description,
		})

		stepResult, err := r.exec.Execute(ctx, step, index)
		result.Steps = append(result.Steps, stepResult)
		result.Failures = append(result.Failures, stepResult.Failures()...)

		if err != nil {
			r.logger.Warn("Step failed",
				zap.String("case", test.Name),
				zap.Int("step", index),
				zap.Error(err))
			result.Failures = append(result.Failures,
				fmt.Sprintf("step %d (%s): %v", index, step.Description, err))
			if firstErr == nil {
				firstErr = err
			}
			if r.opts.StopOnError {
				break
			}
			continue
		}
	}

	if len(result.Failures) > 0 {
		result.Verdict = VerdictFailed
	}

	r.logger.Info("Test case completed",
		zap.String("case", test.Name),
		zap.String("verdict", string(result.Verdict)),
		zap.Int("failures", len(result.Failures)))
	r.publish(Event{
		Type: EventCaseCompleted, RunID: runID,
		Module: moduleName, Case: test.Name,
		Verdict: result.Verdict, Failures: result.Failures,
	})

	return result, firstErr
}

func (r *Runner) publish(ev Event) {
	ev.Timestamp = time.Now()
	r.sink.Publish(ev)
}
