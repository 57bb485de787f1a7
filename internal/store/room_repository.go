package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
)

const roomColumns = `id, property_id, property_address, number, floor, monthly_rent,
	security_deposit, max_occupants, is_available, occupant_id, created_at, updated_at`

// RoomRepository handles database operations for rooms
type RoomRepository struct {
	db *sql.DB
}

func scanRoom(row interface{ Scan(...interface{}) error }) (*model.Room, error) {
	rm := &model.Room{}
	var propertyID, occupantID uuid.NullUUID
	var address sql.NullString
	err := row.Scan(
		&rm.ID, &propertyID, &address, &rm.Number, &rm.Floor, &rm.MonthlyRent,
		&rm.SecurityDeposit, &rm.MaxOccupants, &rm.IsAvailable, &occupantID,
		&rm.CreatedAt, &rm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if propertyID.Valid {
		rm.PropertyID = &propertyID.UUID
	}
	if occupantID.Valid {
		rm.OccupantID = &occupantID.UUID
	}
	rm.PropertyAddress = address.String
	return rm, nil
}

// Create inserts a new room
func (r *RoomRepository) Create(ctx context.Context, rm *model.Room) error {
	query := `
		INSERT INTO rooms (` + roomColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	rm.ID = uuid.New()
	rm.CreatedAt = time.Now()
	rm.UpdatedAt = rm.CreatedAt
	_, err := r.db.ExecContext(ctx, query,
		rm.ID, rm.PropertyID, nullString(rm.PropertyAddress), rm.Number, rm.Floor,
		rm.MonthlyRent, rm.SecurityDeposit, rm.MaxOccupants, rm.IsAvailable,
		rm.OccupantID, rm.CreatedAt, rm.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID retrieves a room by ID
func (r *RoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	rm, err := scanRoom(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rm, err
}

// ListForProperty retrieves the candidate rooms of a property: rows linked by
// id plus legacy rows linked only by the denormalized address. The entity
// resolver makes the final membership call.
func (r *RoomRepository) ListForProperty(ctx context.Context, propertyID uuid.UUID, address string) ([]model.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE property_id = $1 OR (property_id IS NULL AND property_address = $2)
		ORDER BY number
	`
	rows, err := r.db.QueryContext(ctx, query, propertyID, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	return out, rows.Err()
}

// Update rewrites the mutable room fields
func (r *RoomRepository) Update(ctx context.Context, rm *model.Room) error {
	query := `
		UPDATE rooms
		SET monthly_rent = $2, security_deposit = $3, max_occupants = $4,
		    is_available = $5, occupant_id = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		rm.ID, rm.MonthlyRent, rm.SecurityDeposit, rm.MaxOccupants,
		rm.IsAvailable, rm.OccupantID,
	).Scan(&rm.UpdatedAt)
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
