package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
)

const maintenanceColumns = `id, tenant_id, room_id, room_number, property_address,
	title, description, status, created_at, updated_at`

// MaintenanceRepository handles database operations for maintenance requests
type MaintenanceRepository struct {
	db *sql.DB
}

// Create inserts a new maintenance request
func (r *MaintenanceRepository) Create(ctx context.Context, m *model.MaintenanceRequest) error {
	query := `
		INSERT INTO maintenance_requests (` + maintenanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.TenantID, m.RoomID, nullString(m.RoomNumber),
		nullString(m.PropertyAddress), m.Title, m.Description, m.Status,
		m.CreatedAt, m.UpdatedAt,
	)
	return err
}

// ListAll retrieves every maintenance request; the stats aggregator narrows
// them to a property through the entity resolver.
func (r *MaintenanceRepository) ListAll(ctx context.Context) ([]model.MaintenanceRequest, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MaintenanceRequest
	for rows.Next() {
		var m model.MaintenanceRequest
		var roomID uuid.NullUUID
		var roomNumber, address sql.NullString
		if err := rows.Scan(
			&m.ID, &m.TenantID, &roomID, &roomNumber, &address,
			&m.Title, &m.Description, &m.Status, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if roomID.Valid {
			m.RoomID = &roomID.UUID
		}
		m.RoomNumber = roomNumber.String
		m.PropertyAddress = address.String
		out = append(out, m)
	}
	return out, rows.Err()
}
