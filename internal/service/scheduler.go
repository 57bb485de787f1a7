package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
	"github.com/glennDGreatest/CasaLink-sub000/internal/monitoring"
	"github.com/glennDGreatest/CasaLink-sub000/internal/store"
)

// markerTTL keeps the advisory redis flag alive past the month it guards.
const markerTTL = 35 * 24 * time.Hour

// Scheduler decides when a monthly cycle must run. There is no central cron:
// any session (a worker tick, two landlord browser tabs, a manual "Generate
// Now") may call in concurrently. The scheduler's checks are advisory; the
// generator's per-lease existence check and the database constraints are the
// correctness boundary.
type Scheduler struct {
	billing  *BillingService
	settings SettingsStore
	runs     RunStore
	marker   Marker // nil disables the cross-session suppression
}

func NewScheduler(billing *BillingService, settings SettingsStore, runs RunStore, marker Marker) *Scheduler {
	return &Scheduler{billing: billing, settings: settings, runs: runs, marker: marker}
}

// ShouldRunCycle reports whether a new monthly cycle is due: first of the
// month, not yet recorded for this (year, month).
func ShouldRunCycle(today time.Time, hasRun bool) bool {
	return today.Day() == 1 && !hasRun
}

// RunCycleIfDue triggers the landlord's cycle for today's month when it is
// due. force models the manual "Generate Now" action: it bypasses the
// day-of-month gate and the auto-billing flag but never the already-ran
// checks. A nil result means nothing was due.
func (s *Scheduler) RunCycleIfDue(ctx context.Context, landlordID uuid.UUID, today time.Time, force bool) (*CycleResult, error) {
	settings, err := s.settings.GetByLandlord(ctx, landlordID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, notFound("billing settings for landlord", landlordID)
	}
	if !settings.AutoBillingEnabled && !force {
		return nil, nil
	}

	year, month := today.Year(), int(today.Month())
	run, err := s.runs.Get(ctx, landlordID, year, month)
	if err != nil {
		return nil, err
	}
	if run != nil {
		return nil, nil
	}
	if !force && !ShouldRunCycle(today, false) {
		return nil, nil
	}

	if s.marker != nil && !force {
		key := fmt.Sprintf("billing:run:%s:%d-%02d", landlordID, year, month)
		won, err := s.marker.TryMark(ctx, key, markerTTL)
		if err != nil {
			// Advisory only; a dead redis never blocks billing.
			log.Warn().Err(err).Msg("Advisory billing marker unavailable")
		} else if !won {
			return nil, nil
		}
	}

	result, err := s.billing.GenerateMonthlyBills(ctx, landlordID, today)
	if err != nil {
		monitoring.CycleFailures.Inc()
		monitoring.Alert("monthly billing cycle failed", map[string]string{
			"landlord_id": landlordID.String(),
			"month":       fmt.Sprintf("%d-%02d", year, month),
		})
		return nil, err
	}

	record := &model.BillingRun{
		LandlordID: landlordID,
		Year:       year,
		Month:      month,
		Generated:  result.Generated,
		Skipped:    result.Skipped,
	}
	if err := s.runs.Create(ctx, record); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			log.Info().Str("landlord_id", landlordID.String()).Msg("Cycle already recorded by another session")
		} else {
			// The run record is bookkeeping; generation itself is idempotent.
			log.Warn().Err(err).Str("landlord_id", landlordID.String()).Msg("Failed to record billing run")
		}
	}
	return &result, nil
}

// Run is the daily loop: every tick it offers each configured landlord a
// cycle (self-gating on the first of the month) and a late-fee pass. Both
// passes are idempotent, so the coarse hourly tick is harmless.
func (s *Scheduler) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	s.sweep(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			s.sweep(ctx, t)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context, today time.Time) {
	landlords, err := s.settings.ListLandlords(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list landlords for billing sweep")
		return
	}
	for _, landlordID := range landlords {
		if result, err := s.RunCycleIfDue(ctx, landlordID, today, false); err != nil {
			log.Error().Err(err).Str("landlord_id", landlordID.String()).Msg("Billing cycle failed")
		} else if result != nil {
			log.Info().
				Str("landlord_id", landlordID.String()).
				Int("generated", result.Generated).
				Int("skipped", result.Skipped).
				Msg("Billing cycle ran")
		}

		if _, err := s.billing.ApplyLateFees(ctx, landlordID, today); err != nil {
			log.Error().Err(err).Str("landlord_id", landlordID.String()).Msg("Late fee pass failed")
		}
	}
}
