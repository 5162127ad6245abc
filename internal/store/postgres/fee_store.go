package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// FeeStore implements domain.FeeStore using PostgreSQL.
type FeeStore struct {
	pool *pgxpool.Pool
}

// NewFeeStore creates a FeeStore backed by the given connection pool.
func NewFeeStore(pool *pgxpool.Pool) *FeeStore {
	return &FeeStore{pool: pool}
}

// ListByUser returns the owner's platform fee rows.
func (s *FeeStore) ListByUser(ctx context.Context, userID string) ([]domain.PlatformFee, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, platform, fee_percent, fee_fixed
		 FROM platform_fees WHERE user_id = $1`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list platform fees: %w", err)
	}
	defer rows.Close()

	var fees []domain.PlatformFee
	for rows.Next() {
		var f domain.PlatformFee
		var platform string
		if err := rows.Scan(&f.UserID, &platform, &f.FeePercent, &f.FeeFixed); err != nil {
			return nil, fmt.Errorf("postgres: scan platform fee: %w", err)
		}
		f.Platform = domain.Platform(platform)
		fees = append(fees, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list platform fees rows: %w", err)
	}
	return fees, nil
}

// Replace swaps the owner's entire fee schedule for the given rows in one
// transaction.
func (s *FeeStore) Replace(ctx context.Context, userID string, fees []domain.PlatformFee) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin fee replace: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM platform_fees WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("postgres: clear platform fees: %w", err)
	}

	batch := &pgx.Batch{}
	for _, f := range fees {
		batch.Queue(
			`INSERT INTO platform_fees (user_id, platform, fee_percent, fee_fixed)
			 VALUES ($1, $2, $3, $4)`,
			userID, string(f.Platform), f.FeePercent, f.FeeFixed,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range fees {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("postgres: insert platform fee %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("postgres: close fee batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit fee replace: %w", err)
	}
	return nil
}
