package model

import (
	"time"

	"github.com/google/uuid"
)

// Property represents the properties table
type Property struct {
	ID         uuid.UUID `json:"id"`
	LandlordID uuid.UUID `json:"landlord_id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	FloorCount int       `json:"floor_count"`
	RoomCount  int       `json:"room_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Room represents the rooms table. Room numbers are unique only within a
// property; two buildings can both have a "1A". PropertyID and
// PropertyAddress are both optional on legacy rows but must agree when set.
type Room struct {
	ID              uuid.UUID  `json:"id"`
	PropertyID      *uuid.UUID `json:"property_id,omitempty"`
	PropertyAddress string     `json:"property_address,omitempty"`
	Number          string     `json:"number"`
	Floor           int        `json:"floor"`
	MonthlyRent     float64    `json:"monthly_rent"`
	SecurityDeposit float64    `json:"security_deposit"`
	MaxOccupants    int        `json:"max_occupants"`
	IsAvailable     bool       `json:"is_available"`
	OccupantID      *uuid.UUID `json:"occupant_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
