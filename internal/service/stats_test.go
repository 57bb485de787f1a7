package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
	"github.com/glennDGreatest/CasaLink-sub000/internal/resolve"
)

func setupStatsService() (*StatsService, *fakeStore) {
	f := newFakeStore()
	return NewStatsService(fakeProperties{f}, fakeRooms{f}, fakeLeases{f}, fakeBills{f}, f), f
}

func addProperty(f *fakeStore, landlordID uuid.UUID, name, address string) model.Property {
	property := model.Property{
		ID:         uuid.New(),
		LandlordID: landlordID,
		Name:       name,
		Address:    address,
	}
	f.properties[property.ID] = property
	return property
}

func addPropertyRoom(f *fakeStore, propertyID uuid.UUID, number string, available bool) model.Room {
	room := model.Room{
		ID:           uuid.New(),
		PropertyID:   &propertyID,
		Number:       number,
		MaxOccupants: 1,
		IsAvailable:  available,
	}
	f.rooms[room.ID] = room
	return room
}

func TestStatsService_PropertyStats(t *testing.T) {
	svc, f := setupStatsService()
	ctx := context.Background()
	landlordID := uuid.New()
	property := addProperty(f, landlordID, "Sampaloc Flats", "12 Earnshaw St")
	roomA := addPropertyRoom(f, property.ID, "1A", false)
	roomB := addPropertyRoom(f, property.ID, "1B", false)
	addPropertyRoom(f, property.ID, "2A", true)
	addPropertyRoom(f, property.ID, "2B", true)

	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	for _, room := range []model.Room{roomA, roomB} {
		roomID := room.ID
		lease := model.Lease{
			ID: uuid.New(), TenantID: uuid.New(), LandlordID: landlordID,
			RoomID: &roomID, RoomNumber: room.Number, IsActive: true,
		}
		f.leases[lease.ID] = lease
	}

	paidDate := time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)
	roomAID, roomBID := roomA.ID, roomB.ID
	paid := model.Bill{
		ID: uuid.New(), TenantID: uuid.New(), LandlordID: landlordID,
		RoomID: &roomAID, Type: model.BillTypeRent, TotalAmount: 12000,
		DueDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:  model.BillStatusPaid, PaidDate: &paidDate, Version: 2,
	}
	overdue := model.Bill{
		ID: uuid.New(), TenantID: uuid.New(), LandlordID: landlordID,
		RoomID: &roomBID, Type: model.BillTypeRent, TotalAmount: 9500,
		DueDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:  model.BillStatusPending, Version: 1,
	}
	f.bills[paid.ID] = paid
	f.bills[overdue.ID] = overdue

	f.maints = append(f.maints,
		model.MaintenanceRequest{ID: uuid.New(), RoomID: &roomAID, Status: model.MaintenanceOpen},
		model.MaintenanceRequest{ID: uuid.New(), RoomID: &roomBID, Status: model.MaintenanceResolved},
	)

	st, err := svc.PropertyStats(ctx, landlordID, property.ID, now)
	assert.NoError(t, err)
	assert.Equal(t, property.ID, st.PropertyID)
	assert.Equal(t, 4, st.RoomCount)
	assert.Equal(t, 2, st.ActiveLeaseCount)
	assert.Equal(t, 0.5, st.OccupancyRate)
	assert.Equal(t, 1, st.PaidRentBills)
	assert.Equal(t, 1, st.PendingRentBills)
	assert.Equal(t, 0.5, st.CollectionRate)
	assert.Equal(t, 12000.0, st.MonthlyRevenue)
	assert.Equal(t, 9500.0, st.PendingAmount)
	assert.Equal(t, 1, st.OverdueCount)
	assert.Equal(t, 1, st.OpenMaintenance)
}

func TestStatsService_PropertyStats_NotOwned(t *testing.T) {
	svc, f := setupStatsService()
	property := addProperty(f, uuid.New(), "Sampaloc Flats", "12 Earnshaw St")

	_, err := svc.PropertyStats(context.Background(), uuid.New(), property.ID, time.Now())
	var nf NotFoundError
	assert.ErrorAs(t, err, &nf)
}

// Two buildings both have a room "1A". Records that name the other building's
// address must never bleed into this one's figures, even though the bare room
// number matches.
func TestStatsService_PropertyStats_SharedRoomNumberIsolated(t *testing.T) {
	svc, f := setupStatsService()
	ctx := context.Background()
	landlordID := uuid.New()
	earnshaw := addProperty(f, landlordID, "Earnshaw", "12 Earnshaw St")
	espana := addProperty(f, landlordID, "Espana", "400 Espana Blvd")
	addPropertyRoom(f, earnshaw.ID, "1A", false)
	addPropertyRoom(f, espana.ID, "1A", false)

	hereLease := model.Lease{
		ID: uuid.New(), TenantID: uuid.New(), LandlordID: landlordID,
		RoomNumber: "1A", PropertyAddress: "12 Earnshaw St", IsActive: true,
	}
	otherLease := model.Lease{
		ID: uuid.New(), TenantID: uuid.New(), LandlordID: landlordID,
		RoomNumber: "1A", PropertyAddress: "400 Espana Blvd", IsActive: true,
	}
	f.leases[hereLease.ID] = hereLease
	f.leases[otherLease.ID] = otherLease

	otherBill := model.Bill{
		ID: uuid.New(), TenantID: otherLease.TenantID, LandlordID: landlordID,
		RoomNumber: "1A", PropertyAddress: "400 Espana Blvd",
		Type: model.BillTypeRent, TotalAmount: 15000,
		DueDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:  model.BillStatusPending, Version: 1,
	}
	f.bills[otherBill.ID] = otherBill

	st, err := svc.PropertyStats(ctx, landlordID, earnshaw.ID,
		time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, 1, st.RoomCount)
	assert.Equal(t, 1, st.ActiveLeaseCount)
	assert.Equal(t, 0, st.PendingRentBills)
	assert.Equal(t, 0.0, st.PendingAmount)
}

func TestAggregate_LegacyBareRoomNumber(t *testing.T) {
	property := model.Property{ID: uuid.New(), Address: "12 Earnshaw St"}
	rooms := []model.Room{
		{ID: uuid.New(), PropertyID: &property.ID, Number: "1A"},
	}
	scope := resolve.NewScope(&property, rooms)

	// Imported rows carry nothing but the room number.
	leases := []model.Lease{
		{ID: uuid.New(), RoomNumber: "1A", IsActive: true},
		{ID: uuid.New(), RoomNumber: "9Z", IsActive: true},
	}

	st := Aggregate(scope, leases, nil, rooms, nil, time.Now())
	assert.Equal(t, 1, st.ActiveLeaseCount)
	assert.Equal(t, 1.0, st.OccupancyRate)
}

func TestAggregate_RevenueOnlyCountsThisMonth(t *testing.T) {
	property := model.Property{ID: uuid.New(), Address: "12 Earnshaw St"}
	roomID := uuid.New()
	rooms := []model.Room{{ID: roomID, PropertyID: &property.ID, Number: "1A"}}
	scope := resolve.NewScope(&property, rooms)

	febPaid := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	marPaid := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	bills := []model.Bill{
		{
			ID: uuid.New(), RoomID: &roomID, Type: model.BillTypeRent, TotalAmount: 12000,
			DueDate: time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC),
			Status:  model.BillStatusPaid, PaidDate: &febPaid,
		},
		{
			ID: uuid.New(), RoomID: &roomID, Type: model.BillTypeRent, TotalAmount: 12000,
			DueDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
			Status:  model.BillStatusPaid, PaidDate: &marPaid,
		},
	}

	st := Aggregate(scope, nil, bills, rooms, nil, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 12000.0, st.MonthlyRevenue)
	assert.Equal(t, 1, st.PaidRentBills)
}

func TestIsRentBill(t *testing.T) {
	typed := model.Bill{Type: model.BillTypeRent}
	assert.True(t, IsRentBill(&typed))

	legacy := model.Bill{
		Type:  model.BillTypeOther,
		Items: []model.BillItem{{Description: "March RENT + water", Amount: 12500}},
	}
	assert.True(t, IsRentBill(&legacy))

	utility := model.Bill{
		Type:  model.BillTypeUtility,
		Items: []model.BillItem{{Description: "Electricity", Amount: 1800}},
	}
	assert.False(t, IsRentBill(&utility))
}
