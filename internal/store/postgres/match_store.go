package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// MatchStore implements domain.MatchStore using PostgreSQL.
type MatchStore struct {
	pool *pgxpool.Pool
}

// NewMatchStore creates a MatchStore backed by the given connection pool.
func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{pool: pool}
}

// Upsert inserts or replaces the match for a listing. A listing has at most
// one match; later upserts overwrite the product, confidence, and method.
func (s *MatchStore) Upsert(ctx context.Context, m domain.ListingProductMatch) error {
	const query = `
		INSERT INTO listing_product_match (listing_id, product_id, user_id, confidence, method)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (listing_id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			confidence = EXCLUDED.confidence,
			method     = EXCLUDED.method,
			matched_at = NOW()`

	_, err := s.pool.Exec(ctx, query,
		m.ListingID, m.ProductID, m.UserID, m.Confidence, m.Method,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert match for listing %s: %w", m.ListingID, err)
	}
	return nil
}

// GetByListing retrieves the match for one of the owner's listings.
func (s *MatchStore) GetByListing(ctx context.Context, userID, listingID string) (domain.ListingProductMatch, error) {
	var m domain.ListingProductMatch
	err := s.pool.QueryRow(ctx,
		`SELECT listing_id, product_id, user_id, confidence, method
		 FROM listing_product_match WHERE user_id = $1 AND listing_id = $2`,
		userID, listingID,
	).Scan(&m.ListingID, &m.ProductID, &m.UserID, &m.Confidence, &m.Method)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.ListingProductMatch{}, domain.ErrNotFound
		}
		return domain.ListingProductMatch{}, fmt.Errorf("postgres: get match for listing %s: %w", listingID, err)
	}
	return m, nil
}
