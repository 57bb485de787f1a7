package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
	"github.com/glennDGreatest/CasaLink-sub000/internal/monitoring"
	"github.com/glennDGreatest/CasaLink-sub000/internal/store"
)

// maxCycleWorkers bounds the fan-out across leases during a cycle.
const maxCycleWorkers = 8

// BillingService generates the monthly rent bills and applies late fees.
type BillingService struct {
	leases   LeaseStore
	bills    BillStore
	settings SettingsStore
}

func NewBillingService(leases LeaseStore, bills BillStore, settings SettingsStore) *BillingService {
	return &BillingService{leases: leases, bills: bills, settings: settings}
}

// CycleResult is the operator-facing summary of one generation cycle.
// Per-lease failures are counted in Skipped, never raised as errors: one
// failing lease must not abort generation for the others.
type CycleResult struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
}

// GenerateMonthlyBills creates one pending rent bill per active lease for
// the month containing now. The per-lease existence check — re-verified
// right before each write and backed by a uniqueness constraint on
// auto-generated rent bills — is the idempotency boundary: running the cycle
// twice in a month yields the same bill set as running it once.
func (s *BillingService) GenerateMonthlyBills(ctx context.Context, landlordID uuid.UUID, now time.Time) (CycleResult, error) {
	started := time.Now()
	settings, err := s.settings.GetByLandlord(ctx, landlordID)
	if err != nil {
		return CycleResult{}, err
	}
	if settings == nil {
		return CycleResult{}, notFound("billing settings for landlord", landlordID)
	}

	leases, err := s.leases.ListActiveByLandlord(ctx, landlordID)
	if err != nil {
		return CycleResult{}, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		sem    = make(chan struct{}, maxCycleWorkers)
		result CycleResult
	)
	for i := range leases {
		lease := leases[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			generated := s.generateForLease(ctx, &lease, settings, now)
			mu.Lock()
			if generated {
				result.Generated++
			} else {
				result.Skipped++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	monitoring.CycleDuration.Observe(time.Since(started).Seconds())
	log.Info().
		Str("landlord_id", landlordID.String()).
		Int("generated", result.Generated).
		Int("skipped", result.Skipped).
		Msg("Monthly billing cycle finished")
	return result, nil
}

// generateForLease creates the lease's bill for the month unless one already
// exists. All failure paths count as skipped.
func (s *BillingService) generateForLease(ctx context.Context, lease *model.Lease, settings *model.BillingSettings, now time.Time) bool {
	if lease.MonthlyRent <= 0 {
		log.Warn().
			Str("lease_id", lease.ID.String()).
			Float64("monthly_rent", lease.MonthlyRent).
			Msg("Skipping lease with non-positive rent")
		monitoring.BillsSkipped.WithLabelValues("non_positive_rent").Inc()
		return false
	}

	first := firstOfMonth(now)
	last := lastOfMonth(now)
	existing, err := s.bills.ListRentForTenantBetween(ctx, lease.TenantID, first, last)
	if err != nil {
		log.Error().Err(err).Str("lease_id", lease.ID.String()).Msg("Failed to check existing bills")
		monitoring.BillsSkipped.WithLabelValues("store_error").Inc()
		return false
	}
	if len(existing) > 0 {
		monitoring.BillsSkipped.WithLabelValues("already_billed").Inc()
		return false
	}

	dueDay := settings.DefaultPaymentDay
	if lease.PaymentDueDay != nil {
		dueDay = *lease.PaymentDueDay
	}
	bill := &model.Bill{
		TenantID:        lease.TenantID,
		LandlordID:      lease.LandlordID,
		RoomID:          lease.RoomID,
		RoomNumber:      lease.RoomNumber,
		PropertyAddress: lease.PropertyAddress,
		Type:            model.BillTypeRent,
		Items: []model.BillItem{
			{Description: "Monthly Rent", Amount: lease.MonthlyRent, Type: model.ItemTypeRent},
		},
		TotalAmount:     lease.MonthlyRent,
		DueDate:         dueDateIn(now, dueDay),
		Status:          model.BillStatusPending,
		IsAutoGenerated: true,
	}
	if err := s.bills.Create(ctx, bill); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// A concurrent cycle won the insert; same outcome as the
			// existence check catching it.
			monitoring.BillsSkipped.WithLabelValues("already_billed").Inc()
			return false
		}
		log.Error().Err(err).Str("lease_id", lease.ID.String()).Msg("Failed to create bill")
		monitoring.BillsSkipped.WithLabelValues("store_error").Inc()
		return false
	}
	monitoring.BillsGenerated.Inc()
	return true
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func lastOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 23, 59, 59, 0, t.Location())
}

// dueDateIn places day inside t's month, clamped to the month's length so a
// due day of 31 lands on the 28th/29th/30th where needed.
func dueDateIn(t time.Time, day int) time.Time {
	if day < 1 {
		day = 1
	}
	if max := daysInMonth(t); day > max {
		day = max
	}
	return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
