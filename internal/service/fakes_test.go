package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
	"github.com/glennDGreatest/CasaLink-sub000/internal/store"
)

// fakeStore is a mutex-guarded in-memory stand-in for the postgres
// repositories, honoring the same sentinel errors and version semantics.
type fakeStore struct {
	mu         sync.Mutex
	properties map[uuid.UUID]model.Property
	rooms      map[uuid.UUID]model.Room
	leases     map[uuid.UUID]model.Lease
	bills      map[uuid.UUID]model.Bill
	payments   map[uuid.UUID]model.Payment
	settings   map[uuid.UUID]model.BillingSettings
	runs       map[string]model.BillingRun
	maints     []model.MaintenanceRequest

	failBillCreateFor map[uuid.UUID]error // tenant id -> injected error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		properties:        make(map[uuid.UUID]model.Property),
		rooms:             make(map[uuid.UUID]model.Room),
		leases:            make(map[uuid.UUID]model.Lease),
		bills:             make(map[uuid.UUID]model.Bill),
		payments:          make(map[uuid.UUID]model.Payment),
		settings:          make(map[uuid.UUID]model.BillingSettings),
		runs:              make(map[string]model.BillingRun),
		failBillCreateFor: make(map[uuid.UUID]error),
	}
}

func copyBill(b model.Bill) model.Bill {
	items := make([]model.BillItem, len(b.Items))
	copy(items, b.Items)
	b.Items = items
	return b
}

func copyLease(l model.Lease) model.Lease {
	occ := make([]string, len(l.Occupants))
	copy(occ, l.Occupants)
	l.Occupants = occ
	return l
}

// PropertyStore

func (f *fakeStore) GetPropertyByID(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.properties[id]; ok {
		return &p, nil
	}
	return nil, nil
}

// RoomStore

func (f *fakeStore) GetRoomByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rooms[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeStore) ListForProperty(ctx context.Context, propertyID uuid.UUID, address string) ([]model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Room
	for _, r := range f.rooms {
		if (r.PropertyID != nil && *r.PropertyID == propertyID) ||
			(r.PropertyID == nil && r.PropertyAddress == address) {
			out = append(out, r)
		}
	}
	return out, nil
}

// LeaseStore

func (f *fakeStore) GetLeaseByID(ctx context.Context, id uuid.UUID) (*model.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.leases[id]; ok {
		l = copyLease(l)
		return &l, nil
	}
	return nil, nil
}

func (f *fakeStore) GetActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*model.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leases {
		if l.TenantID == tenantID && l.IsActive {
			l = copyLease(l)
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetActiveByRoom(ctx context.Context, roomID uuid.UUID) (*model.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leases {
		if l.RoomID != nil && *l.RoomID == roomID && l.IsActive {
			l = copyLease(l)
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListActiveByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Lease
	for _, l := range f.leases {
		if l.LandlordID == landlordID && l.IsActive {
			out = append(out, copyLease(l))
		}
	}
	return out, nil
}

func (f *fakeStore) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Lease
	for _, l := range f.leases {
		if l.LandlordID == landlordID {
			out = append(out, copyLease(l))
		}
	}
	return out, nil
}

func (f *fakeStore) CreateClaimingRoom(ctx context.Context, l *model.Lease) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[*l.RoomID]
	if !ok || !room.IsAvailable {
		return store.ErrRoomTaken
	}
	for _, existing := range f.leases {
		if !existing.IsActive {
			continue
		}
		if existing.TenantID == l.TenantID || (existing.RoomID != nil && *existing.RoomID == *l.RoomID) {
			return store.ErrDuplicate
		}
	}
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	room.IsAvailable = false
	room.OccupantID = &l.TenantID
	f.rooms[room.ID] = room
	f.leases[l.ID] = copyLease(*l)
	return nil
}

func (f *fakeStore) EndFreeingRoom(ctx context.Context, l *model.Lease) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.leases[l.ID]
	if !ok || !stored.IsActive {
		return store.ErrVersionConflict
	}
	now := time.Now()
	stored.IsActive = false
	stored.EndDate = &now
	stored.UpdatedAt = now
	f.leases[l.ID] = stored
	if stored.RoomID != nil {
		if room, ok := f.rooms[*stored.RoomID]; ok {
			room.IsAvailable = true
			room.OccupantID = nil
			f.rooms[room.ID] = room
		}
	}
	l.IsActive = false
	l.EndDate = &now
	return nil
}

func (f *fakeStore) UpdateOccupants(ctx context.Context, l *model.Lease) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.leases[l.ID]
	if !ok || !stored.IsActive {
		return store.ErrVersionConflict
	}
	stored.Occupants = append([]string(nil), l.Occupants...)
	stored.TotalOccupants = l.TotalOccupants
	stored.UpdatedAt = time.Now()
	f.leases[l.ID] = stored
	return nil
}

// BillStore

func monthKey(t time.Time) string {
	return fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
}

func (f *fakeStore) GetBillByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bills[id]; ok {
		b = copyBill(b)
		return &b, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateBill(ctx context.Context, b *model.Bill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failBillCreateFor[b.TenantID]; ok {
		return err
	}
	if b.IsAutoGenerated && b.Type == model.BillTypeRent {
		for _, existing := range f.bills {
			if existing.IsAutoGenerated && existing.Type == model.BillTypeRent &&
				existing.TenantID == b.TenantID && monthKey(existing.DueDate) == monthKey(b.DueDate) {
				return store.ErrDuplicate
			}
		}
	}
	b.ID = uuid.New()
	b.Version = 1
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.bills[b.ID] = copyBill(*b)
	return nil
}

func (f *fakeStore) UpdateBill(ctx context.Context, b *model.Bill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bills[b.ID]
	if !ok || stored.Version != b.Version {
		return store.ErrVersionConflict
	}
	b.Version++
	b.UpdatedAt = time.Now()
	f.bills[b.ID] = copyBill(*b)
	return nil
}

func (f *fakeStore) ListRentForTenantBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]model.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Bill
	for _, b := range f.bills {
		if b.TenantID == tenantID && b.Type == model.BillTypeRent &&
			!b.DueDate.Before(from) && !b.DueDate.After(to) {
			out = append(out, copyBill(b))
		}
	}
	return out, nil
}

func (f *fakeStore) ListPendingByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Bill
	for _, b := range f.bills {
		if b.LandlordID == landlordID && b.Status == model.BillStatusPending {
			out = append(out, copyBill(b))
		}
	}
	return out, nil
}

func (f *fakeStore) ListBillsByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Bill
	for _, b := range f.bills {
		if b.LandlordID == landlordID {
			out = append(out, copyBill(b))
		}
	}
	return out, nil
}

// PaymentStore

func (f *fakeStore) CreatePayment(ctx context.Context, p *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	f.payments[p.ID] = *p
	return nil
}

func (f *fakeStore) GetPaymentByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeStore) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return errors.New("payment not found")
	}
	p.Status = status
	f.payments[id] = p
	return nil
}

// SettingsStore

func (f *fakeStore) GetByLandlord(ctx context.Context, landlordID uuid.UUID) (*model.BillingSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.settings[landlordID]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeStore) ListLandlords(ctx context.Context) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for id := range f.settings {
		out = append(out, id)
	}
	return out, nil
}

// RunStore

func runKey(landlordID uuid.UUID, year, month int) string {
	return fmt.Sprintf("%s:%d-%02d", landlordID, year, month)
}

func (f *fakeStore) GetRun(ctx context.Context, landlordID uuid.UUID, year, month int) (*model.BillingRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.runs[runKey(landlordID, year, month)]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateRun(ctx context.Context, run *model.BillingRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := runKey(run.LandlordID, run.Year, run.Month)
	if _, ok := f.runs[key]; ok {
		return store.ErrDuplicate
	}
	run.CreatedAt = time.Now()
	f.runs[key] = *run
	return nil
}

// MaintenanceStore

func (f *fakeStore) ListAll(ctx context.Context) ([]model.MaintenanceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.MaintenanceRequest(nil), f.maints...), nil
}

// Interface adapters: the concrete repositories expose these method names,
// the fake shares one struct, so thin views bind them per interface.

type fakeProperties struct{ *fakeStore }

func (f fakeProperties) GetByID(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	return f.GetPropertyByID(ctx, id)
}

type fakeRooms struct{ *fakeStore }

func (f fakeRooms) GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	return f.GetRoomByID(ctx, id)
}

type fakeLeases struct{ *fakeStore }

func (f fakeLeases) GetByID(ctx context.Context, id uuid.UUID) (*model.Lease, error) {
	return f.GetLeaseByID(ctx, id)
}

type fakeBills struct{ *fakeStore }

func (f fakeBills) GetByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	return f.GetBillByID(ctx, id)
}

func (f fakeBills) Create(ctx context.Context, b *model.Bill) error {
	return f.CreateBill(ctx, b)
}

func (f fakeBills) Update(ctx context.Context, b *model.Bill) error {
	return f.UpdateBill(ctx, b)
}

func (f fakeBills) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]model.Bill, error) {
	return f.ListBillsByLandlord(ctx, landlordID)
}

type fakePayments struct{ *fakeStore }

func (f fakePayments) Create(ctx context.Context, p *model.Payment) error {
	return f.CreatePayment(ctx, p)
}

func (f fakePayments) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return f.GetPaymentByID(ctx, id)
}

func (f fakePayments) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	return f.UpdatePaymentStatus(ctx, id, status)
}

type fakeRuns struct{ *fakeStore }

func (f fakeRuns) Get(ctx context.Context, landlordID uuid.UUID, year, month int) (*model.BillingRun, error) {
	return f.GetRun(ctx, landlordID, year, month)
}

func (f fakeRuns) Create(ctx context.Context, run *model.BillingRun) error {
	return f.CreateRun(ctx, run)
}

// fakeMarker mimics the redis SetNX advisory marker.
type fakeMarker struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func newFakeMarker() *fakeMarker {
	return &fakeMarker{keys: make(map[string]bool)}
}

func (m *fakeMarker) TryMark(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}
