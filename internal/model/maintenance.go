package model

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceStatus string

const (
	MaintenanceOpen       MaintenanceStatus = "open"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceResolved   MaintenanceStatus = "resolved"
)

// MaintenanceRequest represents the maintenance_requests table.
type MaintenanceRequest struct {
	ID              uuid.UUID         `json:"id"`
	TenantID        uuid.UUID         `json:"tenant_id"`
	RoomID          *uuid.UUID        `json:"room_id,omitempty"`
	RoomNumber      string            `json:"room_number,omitempty"`
	PropertyAddress string            `json:"property_address,omitempty"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Status          MaintenanceStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
