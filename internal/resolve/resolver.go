package resolve

import (
	"strings"

	"github.com/google/uuid"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
)

// Ref is the set of links a record may carry back to a property. Legacy rows
// populate these inconsistently: some have ids, some only a denormalized
// address string, some only a bare room number shared across properties.
type Ref struct {
	PropertyID      *uuid.UUID
	RoomID          *uuid.UUID
	PropertyAddress string
	RoomNumber      string
}

// Scope is one property plus its rooms, prepared for membership checks.
// Build it once per property and reuse it for every record filtered against
// that property.
type Scope struct {
	propertyID uuid.UUID
	address    string
	roomIDs    map[uuid.UUID]struct{}
	roomNums   map[string]struct{}
}

// NewScope prepares a membership scope for the given property. Rooms that do
// not belong to the property (by their own id/address links) are ignored
// rather than widening the scope.
func NewScope(property *model.Property, rooms []model.Room) *Scope {
	s := &Scope{
		propertyID: property.ID,
		address:    normalize(property.Address),
		roomIDs:    make(map[uuid.UUID]struct{}, len(rooms)),
		roomNums:   make(map[string]struct{}, len(rooms)),
	}
	for _, r := range rooms {
		if r.PropertyID != nil && *r.PropertyID != property.ID {
			continue
		}
		if r.PropertyID == nil && normalize(r.PropertyAddress) != s.address {
			continue
		}
		s.roomIDs[r.ID] = struct{}{}
		s.roomNums[normalize(r.Number)] = struct{}{}
	}
	return s
}

// Contains decides whether a record belongs to the scoped property. Tiers are
// evaluated in strict order, first match wins:
//
//  1. explicit property or room id,
//  2. explicit property-address string,
//  3. bare room number — only when the record carries no explicit link that
//     points somewhere else.
//
// A record whose address names a different property is rejected even if its
// room number coincidentally matches one of ours. Every property-scoped
// filter in the engine must route through here; a second copy of this rule
// that drifts even slightly reintroduces cross-property leakage.
func (s *Scope) Contains(ref Ref) bool {
	// Id tier.
	if ref.PropertyID != nil && *ref.PropertyID == s.propertyID {
		return true
	}
	if ref.RoomID != nil {
		if _, ok := s.roomIDs[*ref.RoomID]; ok {
			return true
		}
	}
	// Address tier.
	addr := normalize(ref.PropertyAddress)
	if addr != "" && addr == s.address {
		return true
	}
	// Room-number tier: a bare number only counts when no explicit link on
	// the record points at some other property.
	if num := normalize(ref.RoomNumber); num != "" {
		if ref.PropertyID != nil || ref.RoomID != nil || addr != "" {
			return false
		}
		_, ok := s.roomNums[num]
		return ok
	}
	return false
}

// PropertyID returns the id of the scoped property.
func (s *Scope) PropertyID() uuid.UUID { return s.propertyID }

// RoomCount returns the number of rooms resolved into the scope.
func (s *Scope) RoomCount() int { return len(s.roomIDs) }

func normalize(v string) string { return strings.TrimSpace(v) }

// RoomRef builds the membership ref of a room record.
func RoomRef(r *model.Room) Ref {
	return Ref{
		PropertyID:      r.PropertyID,
		PropertyAddress: r.PropertyAddress,
		RoomNumber:      r.Number,
	}
}

// LeaseRef builds the membership ref of a lease record.
func LeaseRef(l *model.Lease) Ref {
	return Ref{
		RoomID:          l.RoomID,
		PropertyAddress: l.PropertyAddress,
		RoomNumber:      l.RoomNumber,
	}
}

// BillRef builds the membership ref of a bill record.
func BillRef(b *model.Bill) Ref {
	return Ref{
		RoomID:          b.RoomID,
		PropertyAddress: b.PropertyAddress,
		RoomNumber:      b.RoomNumber,
	}
}

// MaintenanceRef builds the membership ref of a maintenance request.
func MaintenanceRef(m *model.MaintenanceRequest) Ref {
	return Ref{
		RoomID:          m.RoomID,
		PropertyAddress: m.PropertyAddress,
		RoomNumber:      m.RoomNumber,
	}
}

// FilterRooms returns the rooms that resolve to the scoped property.
func FilterRooms(s *Scope, rooms []model.Room) []model.Room {
	out := make([]model.Room, 0, len(rooms))
	for _, r := range rooms {
		if s.Contains(RoomRef(&r)) {
			out = append(out, r)
		}
	}
	return out
}

// FilterLeases returns the leases that resolve to the scoped property.
func FilterLeases(s *Scope, leases []model.Lease) []model.Lease {
	out := make([]model.Lease, 0, len(leases))
	for _, l := range leases {
		if s.Contains(LeaseRef(&l)) {
			out = append(out, l)
		}
	}
	return out
}

// FilterBills returns the bills that resolve to the scoped property.
func FilterBills(s *Scope, bills []model.Bill) []model.Bill {
	out := make([]model.Bill, 0, len(bills))
	for _, b := range bills {
		if s.Contains(BillRef(&b)) {
			out = append(out, b)
		}
	}
	return out
}

// FilterMaintenance returns the maintenance requests that resolve to the
// scoped property.
func FilterMaintenance(s *Scope, reqs []model.MaintenanceRequest) []model.MaintenanceRequest {
	out := make([]model.MaintenanceRequest, 0, len(reqs))
	for _, m := range reqs {
		if s.Contains(MaintenanceRef(&m)) {
			out = append(out, m)
		}
	}
	return out
}
