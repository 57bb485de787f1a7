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

// FeeResult is the operator-facing summary of one late-fee pass.
type FeeResult struct {
	Applied int `json:"applied"`
}

// ApplyLateFees appends the configured late fee to every pending bill whose
// due date is more than the grace period in the past. Idempotency rides on
// the line-item type, not a separate flag: a bill that already carries a
// late_fee item is never charged again, no matter how often the pass runs.
func (s *BillingService) ApplyLateFees(ctx context.Context, landlordID uuid.UUID, now time.Time) (FeeResult, error) {
	settings, err := s.settings.GetByLandlord(ctx, landlordID)
	if err != nil {
		return FeeResult{}, err
	}
	if settings == nil {
		return FeeResult{}, notFound("billing settings for landlord", landlordID)
	}
	if !settings.AutoLateFeeEnabled || settings.LateFeeAmount <= 0 {
		return FeeResult{}, nil
	}

	pending, err := s.bills.ListPendingByLandlord(ctx, landlordID)
	if err != nil {
		return FeeResult{}, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		sem    = make(chan struct{}, maxCycleWorkers)
		result FeeResult
	)
	for i := range pending {
		bill := pending[i]
		if !overdueBeyondGrace(&bill, settings.GracePeriodDays, now) || bill.HasItemType(model.ItemTypeLateFee) {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if s.applyFee(ctx, &bill, settings.LateFeeAmount) {
				mu.Lock()
				result.Applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if result.Applied > 0 {
		log.Info().
			Str("landlord_id", landlordID.String()).
			Int("applied", result.Applied).
			Msg("Late fees applied")
	}
	return result, nil
}

func (s *BillingService) applyFee(ctx context.Context, bill *model.Bill, amount float64) bool {
	bill.Items = append(bill.Items, model.BillItem{
		Description: "Late Fee",
		Amount:      amount,
		Type:        model.ItemTypeLateFee,
	})
	bill.TotalAmount += amount
	if err := s.bills.Update(ctx, bill); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			// The bill changed under us (possibly fee'd by another session);
			// the next pass re-evaluates it from fresh state.
			return false
		}
		log.Error().Err(err).Str("bill_id", bill.ID.String()).Msg("Failed to apply late fee")
		return false
	}
	monitoring.LateFeesApplied.Inc()
	return true
}

// overdueBeyondGrace reports whether the bill's due date lies more than
// grace days in the past.
func overdueBeyondGrace(bill *model.Bill, graceDays int, now time.Time) bool {
	return now.After(bill.DueDate.AddDate(0, 0, graceDays))
}
