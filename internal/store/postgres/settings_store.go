package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// SettingsStore implements domain.SettingsStore using PostgreSQL.
type SettingsStore struct {
	pool *pgxpool.Pool
}

// NewSettingsStore creates a SettingsStore backed by the given connection pool.
func NewSettingsStore(pool *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

// Get returns the owner's cost parameters, or domain.ErrSettingsNotFound
// when none are configured.
func (s *SettingsStore) Get(ctx context.Context, userID string) (domain.UserSettings, error) {
	var out domain.UserSettings
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, packaging_cost, tax_enabled, tax_rate, risk_buffer,
			liquidity_days_low, liquidity_days_medium, liquidity_days_high
		 FROM user_settings WHERE user_id = $1`,
		userID,
	).Scan(
		&out.UserID, &out.PackagingCost, &out.TaxEnabled, &out.TaxRate, &out.RiskBuffer,
		&out.LiquidityDaysLow, &out.LiquidityDaysMedium, &out.LiquidityDaysHigh,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.UserSettings{}, domain.ErrSettingsNotFound
		}
		return domain.UserSettings{}, fmt.Errorf("postgres: get settings for %s: %w", userID, err)
	}
	return out, nil
}

// Upsert inserts or replaces the owner's cost parameters.
func (s *SettingsStore) Upsert(ctx context.Context, settings domain.UserSettings) error {
	const query = `
		INSERT INTO user_settings (
			user_id, packaging_cost, tax_enabled, tax_rate, risk_buffer,
			liquidity_days_low, liquidity_days_medium, liquidity_days_high, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			packaging_cost        = EXCLUDED.packaging_cost,
			tax_enabled           = EXCLUDED.tax_enabled,
			tax_rate              = EXCLUDED.tax_rate,
			risk_buffer           = EXCLUDED.risk_buffer,
			liquidity_days_low    = EXCLUDED.liquidity_days_low,
			liquidity_days_medium = EXCLUDED.liquidity_days_medium,
			liquidity_days_high   = EXCLUDED.liquidity_days_high,
			updated_at            = NOW()`

	_, err := s.pool.Exec(ctx, query,
		settings.UserID, settings.PackagingCost, settings.TaxEnabled, settings.TaxRate,
		settings.RiskBuffer, settings.LiquidityDaysLow, settings.LiquidityDaysMedium,
		settings.LiquidityDaysHigh,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert settings for %s: %w", settings.UserID, err)
	}
	return nil
}
