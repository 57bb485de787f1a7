package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
	"github.com/glennDGreatest/CasaLink-sub000/internal/resolve"
)

// Stats are the per-property figures shown on the landlord dashboard.
type Stats struct {
	PropertyID       uuid.UUID `json:"property_id"`
	RoomCount        int       `json:"room_count"`
	ActiveLeaseCount int       `json:"active_lease_count"`
	OccupancyRate    float64   `json:"occupancy_rate"`
	PaidRentBills    int       `json:"paid_rent_bills"`
	PendingRentBills int       `json:"pending_rent_bills"`
	CollectionRate   float64   `json:"collection_rate"`
	MonthlyRevenue   float64   `json:"monthly_revenue"`
	PendingAmount    float64   `json:"pending_amount"`
	OverdueCount     int       `json:"overdue_count"`
	OpenMaintenance  int       `json:"open_maintenance"`
}

// IsRentBill classifies a bill as rent: either it is typed rent, or any line
// description mentions "rent" case-insensitively. The substring fallback
// tolerates legacy manually-created bills that carry no type; whether to
// drop it once every bill is properly typed is an open question, kept here
// on purpose rather than silently resolved.
func IsRentBill(b *model.Bill) bool {
	if b.Type == model.BillTypeRent {
		return true
	}
	for _, it := range b.Items {
		if strings.Contains(strings.ToLower(it.Description), "rent") {
			return true
		}
	}
	return false
}

// Aggregate computes the property's figures from full record lists. Every
// list is narrowed through the entity resolver first; all counts come from
// the narrowed collections. Prorating global counts by room share is wrong —
// occupancy and rent vary per property — and deliberately absent.
func Aggregate(scope *resolve.Scope, leases []model.Lease, bills []model.Bill, rooms []model.Room, maints []model.MaintenanceRequest, now time.Time) Stats {
	scopedRooms := resolve.FilterRooms(scope, rooms)
	scopedLeases := resolve.FilterLeases(scope, leases)
	scopedBills := resolve.FilterBills(scope, bills)
	scopedMaints := resolve.FilterMaintenance(scope, maints)

	st := Stats{
		PropertyID: scope.PropertyID(),
		RoomCount:  len(scopedRooms),
	}
	for _, l := range scopedLeases {
		if l.IsActive {
			st.ActiveLeaseCount++
		}
	}
	if st.RoomCount > 0 {
		st.OccupancyRate = float64(st.ActiveLeaseCount) / float64(st.RoomCount)
	}

	first := firstOfMonth(now)
	last := lastOfMonth(now)
	for i := range scopedBills {
		b := &scopedBills[i]
		if IsRentBill(b) && !b.DueDate.Before(first) && !b.DueDate.After(last) {
			if b.Status == model.BillStatusPaid {
				st.PaidRentBills++
			} else {
				st.PendingRentBills++
			}
		}
		if b.Status == model.BillStatusPaid {
			if b.PaidDate != nil && !b.PaidDate.Before(first) && !b.PaidDate.After(last) {
				st.MonthlyRevenue += b.TotalAmount
			}
		} else {
			st.PendingAmount += b.TotalAmount
			if b.Status == model.BillStatusPending && now.After(b.DueDate) {
				st.OverdueCount++
			}
		}
	}
	if total := st.PaidRentBills + st.PendingRentBills; total > 0 {
		st.CollectionRate = float64(st.PaidRentBills) / float64(total)
	}

	for _, m := range scopedMaints {
		if m.Status != model.MaintenanceResolved {
			st.OpenMaintenance++
		}
	}
	return st
}

// StatsService loads a property's records and aggregates them.
type StatsService struct {
	properties  PropertyStore
	rooms       RoomStore
	leases      LeaseStore
	bills       BillStore
	maintenance MaintenanceStore
}

func NewStatsService(properties PropertyStore, rooms RoomStore, leases LeaseStore, bills BillStore, maintenance MaintenanceStore) *StatsService {
	return &StatsService{
		properties:  properties,
		rooms:       rooms,
		leases:      leases,
		bills:       bills,
		maintenance: maintenance,
	}
}

// PropertyStats aggregates the landlord's records for one property.
func (s *StatsService) PropertyStats(ctx context.Context, landlordID, propertyID uuid.UUID, now time.Time) (*Stats, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil || property.LandlordID != landlordID {
		return nil, notFound("property", propertyID)
	}

	rooms, err := s.rooms.ListForProperty(ctx, property.ID, property.Address)
	if err != nil {
		return nil, err
	}
	scope := resolve.NewScope(property, rooms)

	leases, err := s.leases.ListByLandlord(ctx, landlordID)
	if err != nil {
		return nil, err
	}
	bills, err := s.bills.ListByLandlord(ctx, landlordID)
	if err != nil {
		return nil, err
	}
	maints, err := s.maintenance.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	st := Aggregate(scope, leases, bills, rooms, maints, now)
	return &st, nil
}
