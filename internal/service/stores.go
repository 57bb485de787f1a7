package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
)

// Store interfaces the services consume. internal/store provides the
// postgres implementations; tests provide in-memory fakes.

type PropertyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Property, error)
}

type RoomStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	ListForProperty(ctx context.Context, propertyID uuid.UUID, address string) ([]model.Room, error)
}

type LeaseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Lease, error)
	GetActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*model.Lease, error)
	GetActiveByRoom(ctx context.Context, roomID uuid.UUID) (*model.Lease, error)
	ListActiveByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Lease, error)
	ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Lease, error)
	CreateClaimingRoom(ctx context.Context, l *model.Lease) error
	EndFreeingRoom(ctx context.Context, l *model.Lease) error
	UpdateOccupants(ctx context.Context, l *model.Lease) error
}

type BillStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	Create(ctx context.Context, b *model.Bill) error
	Update(ctx context.Context, b *model.Bill) error
	ListRentForTenantBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]model.Bill, error)
	ListPendingByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Bill, error)
	ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Bill, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error
}

type SettingsStore interface {
	GetByLandlord(ctx context.Context, landlordID uuid.UUID) (*model.BillingSettings, error)
	ListLandlords(ctx context.Context) ([]uuid.UUID, error)
}

type RunStore interface {
	Get(ctx context.Context, landlordID uuid.UUID, year, month int) (*model.BillingRun, error)
	Create(ctx context.Context, run *model.BillingRun) error
}

type MaintenanceStore interface {
	ListAll(ctx context.Context) ([]model.MaintenanceRequest, error)
}

// Marker is the advisory cross-session flag (redis-backed in production).
// A nil Marker disables the suppression; correctness never depends on it.
type Marker interface {
	TryMark(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Principal is the already-authenticated acting user, supplied by the
// session layer. The engine performs no authentication of its own.
type Principal struct {
	ID          uuid.UUID
	Role        model.Role
	DisplayName string
}
