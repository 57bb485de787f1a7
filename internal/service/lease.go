package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
	"github.com/glennDGreatest/CasaLink-sub000/internal/store"
)

// LeaseService owns the canonical occupancy state: which room is leased by
// which tenant, how many occupants, and the lease dates. The room row is a
// denormalized mirror and is written in the same transaction as the lease.
type LeaseService struct {
	leases LeaseStore
	rooms  RoomStore
}

func NewLeaseService(leases LeaseStore, rooms RoomStore) *LeaseService {
	return &LeaseService{leases: leases, rooms: rooms}
}

type CreateLeaseInput struct {
	TenantID          uuid.UUID
	LandlordID        uuid.UUID
	PrimaryTenantName string
	RoomID            uuid.UUID
	StartDate         time.Time
	PaymentDueDay     *int
}

// CreateLease onboards a tenant into a room. Availability is re-checked
// conditionally at write time, so losing a race on the room surfaces as
// ErrRoomUnavailable rather than a double-let. Capacity-1 rooms skip the
// occupant-collection step entirely: their occupant list is complete at
// creation.
func (s *LeaseService) CreateLease(ctx context.Context, in CreateLeaseInput) (*model.Lease, error) {
	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, notFound("room", in.RoomID)
	}
	if !room.IsAvailable {
		return nil, ErrRoomUnavailable
	}
	if active, err := s.leases.GetActiveByRoom(ctx, room.ID); err != nil {
		return nil, err
	} else if active != nil {
		return nil, ErrRoomUnavailable
	}
	if active, err := s.leases.GetActiveByTenant(ctx, in.TenantID); err != nil {
		return nil, err
	} else if active != nil {
		return nil, ConflictError("tenant already has an active lease")
	}

	start := in.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	lease := &model.Lease{
		TenantID:        in.TenantID,
		LandlordID:      in.LandlordID,
		RoomID:          &room.ID,
		RoomNumber:      room.Number,
		PropertyAddress: room.PropertyAddress,
		MonthlyRent:     room.MonthlyRent,
		SecurityDeposit: room.SecurityDeposit,
		StartDate:       start,
		MaxOccupants:    room.MaxOccupants,
		TotalOccupants:  1,
		IsActive:        true,
		PaymentDueDay:   in.PaymentDueDay,
	}
	if room.MaxOccupants == 1 {
		lease.Occupants = []string{in.PrimaryTenantName}
	} else {
		lease.Occupants = []string{}
	}

	if err := s.leases.CreateClaimingRoom(ctx, lease); err != nil {
		switch {
		case errors.Is(err, store.ErrRoomTaken):
			return nil, ErrRoomUnavailable
		case errors.Is(err, store.ErrDuplicate):
			return nil, ConflictError("tenant or room already has an active lease")
		}
		return nil, err
	}

	log.Info().
		Str("lease_id", lease.ID.String()).
		Str("room", lease.RoomNumber).
		Bool("awaiting_occupants", lease.AwaitingOccupants()).
		Msg("Lease created")
	return lease, nil
}

// RecordOccupants stores the additional occupants of a lease. The primary
// tenant is always implicit, hence the +1 in the capacity check. The list
// and count are overwritten, not merged.
func (s *LeaseService) RecordOccupants(ctx context.Context, leaseID uuid.UUID, names []string) (*model.Lease, error) {
	lease, err := s.leases.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, notFound("lease", leaseID)
	}
	if !lease.IsActive {
		return nil, ConflictError("lease has ended")
	}
	if len(names)+1 > lease.MaxOccupants {
		return nil, ErrOccupancyExceeded
	}

	lease.Occupants = names
	lease.TotalOccupants = len(names) + 1
	if err := s.leases.UpdateOccupants(ctx, lease); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, ConflictError("lease has ended")
		}
		return nil, err
	}
	return lease, nil
}

// EndLease closes the tenancy: the lease deactivates and its room frees in
// one transaction. The lease row stays for historical stats; a later tenancy
// is a new lease, never a reopened one.
func (s *LeaseService) EndLease(ctx context.Context, leaseID uuid.UUID) (*model.Lease, error) {
	lease, err := s.leases.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, notFound("lease", leaseID)
	}
	if !lease.IsActive {
		return nil, ConflictError("lease already ended")
	}

	if err := s.leases.EndFreeingRoom(ctx, lease); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, ConflictError("lease already ended")
		}
		return nil, err
	}

	log.Info().Str("lease_id", lease.ID.String()).Msg("Lease ended")
	return lease, nil
}
