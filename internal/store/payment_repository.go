package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
)

const paymentColumns = `id, bill_id, tenant_id, landlord_id, amount, method,
	reference_number, payment_date, status, submitted_by, submitter_role, created_at`

// PaymentRepository handles database operations for payments
type PaymentRepository struct {
	db *sql.DB
}

func scanPayment(row interface{ Scan(...interface{}) error }) (*model.Payment, error) {
	p := &model.Payment{}
	var reference sql.NullString
	err := row.Scan(
		&p.ID, &p.BillID, &p.TenantID, &p.LandlordID, &p.Amount, &p.Method,
		&reference, &p.PaymentDate, &p.Status, &p.SubmittedBy, &p.SubmitterRole,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ReferenceNumber = reference.String
	return p, nil
}

// Create inserts a new payment attempt
func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.BillID, p.TenantID, p.LandlordID, p.Amount, p.Method,
		nullString(p.ReferenceNumber), p.PaymentDate, p.Status, p.SubmittedBy,
		p.SubmitterRole, p.CreatedAt,
	)
	return err
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// UpdateStatus moves a payment between verification states
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	query := `UPDATE payments SET status = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByBill retrieves every payment attempt recorded against a bill
func (r *PaymentRepository) ListByBill(ctx context.Context, billID uuid.UUID) ([]model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE bill_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
