package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SavePlan stores a plan document and returns its assigned ID.
func (p *PostgresClient) SavePlan(ctx context.Context, name string, document []byte) (uuid.UUID, error) {
	var id uuid.UUID
	err := p.pool.QueryRow(ctx, `
		INSERT INTO plans (plan_name, document)
		VALUES ($1, $2)
		RETURNING id
	`, name, document).Scan(&id)

	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert plan: %w", err)
	}
	return id, nil
}

// GetPlan loads one stored plan by ID.
func (p *PostgresClient) GetPlan(ctx context.Context, planID uuid.UUID) (*StoredPlan, error) {
	var sp StoredPlan
	err := p.pool.QueryRow(ctx, `
		SELECT id, plan_name, document, created_at, updated_at
		FROM plans
		WHERE id = $1
	`, planID).Scan(&sp.ID, &sp.Name, &sp.Document, &sp.CreatedAt, &sp.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan not found: %s", planID)
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return &sp, nil
}

// ListPlans returns all stored plans, newest first, without documents.
func (p *PostgresClient) ListPlans(ctx context.Context) ([]StoredPlan, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, plan_name, created_at, updated_at
		FROM plans
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	plans := make([]StoredPlan, 0)
	for rows.Next() {
		var sp StoredPlan
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, sp)
	}
	return plans, rows.Err()
}

// UpdatePlan replaces the document of a stored plan.
func (p *PostgresClient) UpdatePlan(ctx context.Context, planID uuid.UUID, document []byte) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE plans
		SET document = $2, updated_at = now()
		WHERE id = $1
	`, planID, document)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan not found: %s", planID)
	}
	return nil
}

// DeletePlan removes a stored plan and its runs.
func (p *PostgresClient) DeletePlan(ctx context.Context, planID uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, planID)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan not found: %s", planID)
	}
	return nil
}
