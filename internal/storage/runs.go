package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateRun records a new run in its initial state.
func (p *PostgresClient) CreateRun(ctx context.Context, run *Run) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO runs (id, plan_id, status, started_at)
		VALUES ($1, $2, $3, $4)
	`, run.ID, run.PlanID, run.Status, run.StartedAt)

	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// UpdateRun stores the current state of a run.
func (p *PostgresClient) UpdateRun(ctx context.Context, run *Run) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE runs
		SET status = $2, report = $3, error = $4,
		    cases_passed = $5, cases_failed = $6, completed_at = $7
		WHERE id = $1
	`, run.ID, run.Status, run.Report, run.Error,
		run.CasesPassed, run.CasesFailed, run.CompletedAt)

	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// GetRun loads one run by ID.
func (p *PostgresClient) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := p.pool.QueryRow(ctx, `
		SELECT id, plan_id, status, report, error,
		       cases_passed, cases_failed, started_at, completed_at
		FROM runs
		WHERE id = $1
	`, runID).Scan(
		&run.ID, &run.PlanID, &run.Status, &run.Report, &run.Error,
		&run.CasesPassed, &run.CasesFailed, &run.StartedAt, &run.CompletedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("run not found: %s", runID)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the runs of one plan, newest first.
func (p *PostgresClient) ListRuns(ctx context.Context, planID uuid.UUID) ([]Run, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, plan_id, status, error,
		       cases_passed, cases_failed, started_at, completed_at
		FROM runs
		WHERE plan_id = $1
		ORDER BY started_at DESC
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.PlanID, &run.Status, &run.Error,
			&run.CasesPassed, &run.CasesFailed, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveCaseRecords stores the per-case verdicts of a completed run in one
// transaction.
func (p *PostgresClient) SaveCaseRecords(ctx context.Context, records []CaseRecord) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		_, err := tx.Exec(ctx, `
			INSERT INTO case_results (run_id, module_name, case_name, verdict, failures)
			VALUES ($1, $2, $3, $4, $5)
		`, rec.RunID, rec.ModuleName, rec.CaseName, rec.Verdict, rec.Failures)

		if err != nil {
			return fmt.Errorf("failed to insert case result: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetCaseRecords returns the case verdicts of a run in insertion order.
func (p *PostgresClient) GetCaseRecords(ctx context.Context, runID uuid.UUID) ([]CaseRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, run_id, module_name, case_name, verdict, failures
		FROM case_results
		WHERE run_id = $1
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load case results: %w", err)
	}
	defer rows.Close()

	records := make([]CaseRecord, 0)
	for rows.Next() {
		var rec CaseRecord
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.ModuleName,
			&rec.CaseName, &rec.Verdict, &rec.Failures); err != nil {
			return nil, fmt.Errorf("failed to scan case result: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
