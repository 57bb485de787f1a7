package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
)

const billColumns = `id, tenant_id, landlord_id, room_id, room_number, property_address,
	type, items, total_amount, due_date, status, is_auto_generated, paid_date,
	payment_method, payment_reference, version, created_at, updated_at`

// BillRepository handles database operations for bills
type BillRepository struct {
	db *sql.DB
}

func scanBill(row interface{ Scan(...interface{}) error }) (*model.Bill, error) {
	b := &model.Bill{}
	var roomID uuid.NullUUID
	var roomNumber, address, method, reference sql.NullString
	var paidDate sql.NullTime
	var items []byte
	err := row.Scan(
		&b.ID, &b.TenantID, &b.LandlordID, &roomID, &roomNumber, &address,
		&b.Type, &items, &b.TotalAmount, &b.DueDate, &b.Status,
		&b.IsAutoGenerated, &paidDate, &method, &reference, &b.Version,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if roomID.Valid {
		b.RoomID = &roomID.UUID
	}
	b.RoomNumber = roomNumber.String
	b.PropertyAddress = address.String
	if paidDate.Valid {
		b.PaidDate = &paidDate.Time
	}
	b.PaymentMethod = method.String
	b.PaymentReference = reference.String
	if len(items) > 0 {
		if err := json.Unmarshal(items, &b.Items); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Create inserts a new bill. A unique violation on the auto-generated
// per-(tenant, month) index comes back as ErrDuplicate so a concurrent
// generation counts it as skipped instead of failing the cycle.
func (r *BillRepository) Create(ctx context.Context, b *model.Bill) error {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	b.Version = 1
	items, err := json.Marshal(b.Items)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = r.db.ExecContext(ctx, query,
		b.ID, b.TenantID, b.LandlordID, b.RoomID, nullString(b.RoomNumber),
		nullString(b.PropertyAddress), b.Type, items, b.TotalAmount, b.DueDate,
		b.Status, b.IsAutoGenerated, b.PaidDate, nullString(b.PaymentMethod),
		nullString(b.PaymentReference), b.Version, b.CreatedAt, b.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Update rewrites the mutable bill fields under the version check. Zero rows
// means the bill changed since it was read; the caller re-fetches.
func (r *BillRepository) Update(ctx context.Context, b *model.Bill) error {
	items, err := json.Marshal(b.Items)
	if err != nil {
		return err
	}
	query := `
		UPDATE bills
		SET items = $3, total_amount = $4, status = $5, paid_date = $6,
		    payment_method = $7, payment_reference = $8,
		    version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		b.ID, b.Version, items, b.TotalAmount, b.Status, b.PaidDate,
		nullString(b.PaymentMethod), nullString(b.PaymentReference),
	).Scan(&b.Version, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrVersionConflict
	}
	return err
}

// GetByID retrieves a bill by ID
func (r *BillRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1`
	b, err := scanBill(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

// ListRentForTenantBetween retrieves the tenant's rent bills with a due date
// inside [from, to]. This is the generator's idempotency check.
func (r *BillRepository) ListRentForTenantBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]model.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE tenant_id = $1 AND type = $2 AND due_date BETWEEN $3 AND $4
	`
	return r.list(ctx, query, tenantID, model.BillTypeRent, from, to)
}

// ListPendingByLandlord retrieves a landlord's bills still awaiting payment
func (r *BillRepository) ListPendingByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE landlord_id = $1 AND status = $2
		ORDER BY due_date
	`
	return r.list(ctx, query, landlordID, model.BillStatusPending)
}

// ListByLandlord retrieves all bills for a landlord
func (r *BillRepository) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE landlord_id = $1 ORDER BY due_date`
	return r.list(ctx, query, landlordID)
}

func (r *BillRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Bill, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
