package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
)

// SettingsRepository handles the per-landlord billing settings row, with a
// redis read-through cache in front of it.
type SettingsRepository struct {
	db    *sql.DB
	redis RedisClient
}

func settingsKey(landlordID uuid.UUID) string {
	return fmt.Sprintf("billing:settings:%s", landlordID)
}

// GetByLandlord retrieves a landlord's billing settings
func (r *SettingsRepository) GetByLandlord(ctx context.Context, landlordID uuid.UUID) (*model.BillingSettings, error) {
	if r.redis != nil {
		cached, err := r.redis.Get(ctx, settingsKey(landlordID)).Result()
		if err == nil {
			s := &model.BillingSettings{}
			if err := json.Unmarshal([]byte(cached), s); err == nil {
				return s, nil
			}
		}
	}

	query := `
		SELECT landlord_id, auto_billing_enabled, default_payment_day, late_fee_amount,
		       grace_period_days, auto_late_fee_enabled, updated_at
		FROM billing_settings
		WHERE landlord_id = $1
	`
	s := &model.BillingSettings{}
	err := r.db.QueryRowContext(ctx, query, landlordID).Scan(
		&s.LandlordID, &s.AutoBillingEnabled, &s.DefaultPaymentDay, &s.LateFeeAmount,
		&s.GracePeriodDays, &s.AutoLateFeeEnabled, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(s); err == nil {
			r.redis.SetEx(ctx, settingsKey(landlordID), data, 1*time.Hour)
		}
	}
	return s, nil
}

// ListLandlords retrieves the landlords with a settings row, i.e. everyone
// the billing sweep should consider.
func (r *SettingsRepository) ListLandlords(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT landlord_id FROM billing_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Upsert writes the settings row and invalidates the cache
func (r *SettingsRepository) Upsert(ctx context.Context, s *model.BillingSettings) error {
	query := `
		INSERT INTO billing_settings (landlord_id, auto_billing_enabled, default_payment_day,
			late_fee_amount, grace_period_days, auto_late_fee_enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (landlord_id) DO UPDATE
		SET auto_billing_enabled = EXCLUDED.auto_billing_enabled,
		    default_payment_day = EXCLUDED.default_payment_day,
		    late_fee_amount = EXCLUDED.late_fee_amount,
		    grace_period_days = EXCLUDED.grace_period_days,
		    auto_late_fee_enabled = EXCLUDED.auto_late_fee_enabled,
		    updated_at = now()
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		s.LandlordID, s.AutoBillingEnabled, s.DefaultPaymentDay, s.LateFeeAmount,
		s.GracePeriodDays, s.AutoLateFeeEnabled,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Del(ctx, settingsKey(s.LandlordID))
	}
	return nil
}
