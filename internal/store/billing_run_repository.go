package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
)

// BillingRunRepository records which (landlord, year, month) cycles already
// generated, as a queryable fact instead of client-local state.
type BillingRunRepository struct {
	db *sql.DB
}

// Get retrieves the run record for a landlord's month, if any
func (r *BillingRunRepository) Get(ctx context.Context, landlordID uuid.UUID, year, month int) (*model.BillingRun, error) {
	query := `
		SELECT landlord_id, year, month, generated, skipped, created_at
		FROM billing_runs
		WHERE landlord_id = $1 AND year = $2 AND month = $3
	`
	run := &model.BillingRun{}
	err := r.db.QueryRowContext(ctx, query, landlordID, year, month).Scan(
		&run.LandlordID, &run.Year, &run.Month, &run.Generated, &run.Skipped,
		&run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Create records a completed cycle. ErrDuplicate means another session
// recorded the same month first.
func (r *BillingRunRepository) Create(ctx context.Context, run *model.BillingRun) error {
	query := `
		INSERT INTO billing_runs (landlord_id, year, month, generated, skipped, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	run.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		run.LandlordID, run.Year, run.Month, run.Generated, run.Skipped, run.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}
