package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
)

const leaseColumns = `id, tenant_id, landlord_id, room_id, room_number, property_address,
	monthly_rent, security_deposit, start_date, end_date, occupants, total_occupants,
	max_occupants, is_active, payment_due_day, created_at, updated_at`

// LeaseRepository handles database operations for leases
type LeaseRepository struct {
	db *sql.DB
}

func scanLease(row interface{ Scan(...interface{}) error }) (*model.Lease, error) {
	l := &model.Lease{}
	var roomID uuid.NullUUID
	var address sql.NullString
	var endDate sql.NullTime
	var dueDay sql.NullInt64
	var occupants []byte
	err := row.Scan(
		&l.ID, &l.TenantID, &l.LandlordID, &roomID, &l.RoomNumber, &address,
		&l.MonthlyRent, &l.SecurityDeposit, &l.StartDate, &endDate, &occupants,
		&l.TotalOccupants, &l.MaxOccupants, &l.IsActive, &dueDay,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if roomID.Valid {
		l.RoomID = &roomID.UUID
	}
	l.PropertyAddress = address.String
	if endDate.Valid {
		l.EndDate = &endDate.Time
	}
	if dueDay.Valid {
		d := int(dueDay.Int64)
		l.PaymentDueDay = &d
	}
	if len(occupants) > 0 {
		if err := json.Unmarshal(occupants, &l.Occupants); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// CreateClaimingRoom inserts the lease and flips its room unavailable in one
// transaction. The room update is conditional on the availability flag, so a
// concurrent claim on the same room loses here rather than double-letting it.
// Returns ErrRoomTaken when the room was claimed first and ErrDuplicate when
// the tenant or room already has an active lease.
func (r *LeaseRepository) CreateClaimingRoom(ctx context.Context, l *model.Lease) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	claim := `
		UPDATE rooms
		SET is_available = false, occupant_id = $2, updated_at = now()
		WHERE id = $1 AND is_available = true
	`
	res, err := tx.ExecContext(ctx, claim, l.RoomID, l.TenantID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRoomTaken
	}

	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	occupants, err := json.Marshal(l.Occupants)
	if err != nil {
		return err
	}
	insert := `
		INSERT INTO leases (` + leaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = tx.ExecContext(ctx, insert,
		l.ID, l.TenantID, l.LandlordID, l.RoomID, l.RoomNumber,
		nullString(l.PropertyAddress), l.MonthlyRent, l.SecurityDeposit,
		l.StartDate, l.EndDate, occupants, l.TotalOccupants, l.MaxOccupants,
		l.IsActive, nullInt(l.PaymentDueDay), l.CreatedAt, l.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// EndFreeingRoom deactivates the lease and releases its room in one
// transaction. The lease row is retained for historical queries.
func (r *LeaseRepository) EndFreeingRoom(ctx context.Context, l *model.Lease) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	end := `
		UPDATE leases
		SET is_active = false, end_date = $2, updated_at = $2
		WHERE id = $1 AND is_active = true
	`
	res, err := tx.ExecContext(ctx, end, l.ID, now)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	if l.RoomID != nil {
		free := `
			UPDATE rooms
			SET is_available = true, occupant_id = NULL, updated_at = $2
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, free, l.RoomID, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	l.IsActive = false
	l.EndDate = &now
	l.UpdatedAt = now
	return nil
}

// UpdateOccupants overwrites the occupant list and count
func (r *LeaseRepository) UpdateOccupants(ctx context.Context, l *model.Lease) error {
	occupants, err := json.Marshal(l.Occupants)
	if err != nil {
		return err
	}
	query := `
		UPDATE leases
		SET occupants = $2, total_occupants = $3, updated_at = now()
		WHERE id = $1 AND is_active = true
		RETURNING updated_at
	`
	err = r.db.QueryRowContext(ctx, query, l.ID, occupants, l.TotalOccupants).Scan(&l.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrVersionConflict
	}
	return err
}

// GetByID retrieves a lease by ID
func (r *LeaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE id = $1`
	l, err := scanLease(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return l, err
}

// GetActiveByTenant retrieves the tenant's active lease, if any
func (r *LeaseRepository) GetActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*model.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE tenant_id = $1 AND is_active = true`
	l, err := scanLease(r.db.QueryRowContext(ctx, query, tenantID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return l, err
}

// GetActiveByRoom retrieves the active lease referencing a room, if any
func (r *LeaseRepository) GetActiveByRoom(ctx context.Context, roomID uuid.UUID) (*model.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE room_id = $1 AND is_active = true`
	l, err := scanLease(r.db.QueryRowContext(ctx, query, roomID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return l, err
}

// ListActiveByLandlord retrieves all active leases for a landlord
func (r *LeaseRepository) ListActiveByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE landlord_id = $1 AND is_active = true ORDER BY created_at`
	return r.list(ctx, query, landlordID)
}

// ListByLandlord retrieves all leases for a landlord, ended ones included
func (r *LeaseRepository) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE landlord_id = $1 ORDER BY created_at`
	return r.list(ctx, query, landlordID)
}

func (r *LeaseRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Lease, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
