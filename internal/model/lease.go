package model

import (
	"time"

	"github.com/google/uuid"
)

// Lease represents the leases table. The lease is the source of truth for
// occupancy; the room row mirrors it for fast listing and is written in the
// same transaction as any lease change. RoomID may be absent on rows imported
// from the legacy client, which linked by room number and property address.
type Lease struct {
	ID              uuid.UUID  `json:"id"`
	TenantID        uuid.UUID  `json:"tenant_id"`
	LandlordID      uuid.UUID  `json:"landlord_id"`
	RoomID          *uuid.UUID `json:"room_id,omitempty"`
	RoomNumber      string     `json:"room_number"`
	PropertyAddress string     `json:"property_address,omitempty"`
	MonthlyRent     float64    `json:"monthly_rent"`
	SecurityDeposit float64    `json:"security_deposit"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Occupants       []string   `json:"occupants"` // capacity-1: the primary tenant; otherwise the additional occupants gathered after signing
	TotalOccupants  int        `json:"total_occupants"`
	MaxOccupants    int        `json:"max_occupants"`
	IsActive        bool       `json:"is_active"`
	PaymentDueDay   *int       `json:"payment_due_day,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AwaitingOccupants reports whether the lease still needs the follow-up
// occupant-collection step. Capacity-1 rooms never do.
func (l *Lease) AwaitingOccupants() bool {
	return l.IsActive && l.MaxOccupants > 1 && len(l.Occupants) == 0
}
