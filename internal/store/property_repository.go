package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
)

// PropertyRepository handles database operations for properties
type PropertyRepository struct {
	db *sql.DB
}

// Create inserts a new property
func (r *PropertyRepository) Create(ctx context.Context, p *model.Property) error {
	query := `
		INSERT INTO properties (id, landlord_id, name, address, floor_count, room_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.LandlordID, p.Name, p.Address, p.FloorCount, p.RoomCount,
		p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID retrieves a property by ID
func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	query := `
		SELECT id, landlord_id, name, address, floor_count, room_count, created_at, updated_at
		FROM properties
		WHERE id = $1
	`
	p := &model.Property{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.LandlordID, &p.Name, &p.Address, &p.FloorCount, &p.RoomCount,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByLandlord retrieves all properties owned by a landlord
func (r *PropertyRepository) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Property, error) {
	query := `
		SELECT id, landlord_id, name, address, floor_count, room_count, created_at, updated_at
		FROM properties
		WHERE landlord_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, landlordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Property
	for rows.Next() {
		var p model.Property
		if err := rows.Scan(
			&p.ID, &p.LandlordID, &p.Name, &p.Address, &p.FloorCount, &p.RoomCount,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
