package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// ListingStore implements domain.ListingStore using PostgreSQL.
type ListingStore struct {
	pool *pgxpool.Pool
}

// NewListingStore creates a ListingStore backed by the given connection pool.
func NewListingStore(pool *pgxpool.Pool) *ListingStore {
	return &ListingStore{pool: pool}
}

const listingCols = `id, user_id, platform, url, title, price, currency,
	shipping_price, category, item_condition, location, images, is_demo, imported_at`

// Upsert inserts or overwrites a listing on the (user, platform, url) key.
// The persisted row keeps its original id and import timestamp on re-import.
func (s *ListingStore) Upsert(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Images == nil {
		l.Images = []string{}
	}

	const query = `
		INSERT INTO listings (
			id, user_id, platform, url, title, price, currency,
			shipping_price, category, item_condition, location, images, is_demo
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13
		)
		ON CONFLICT (user_id, platform, url) DO UPDATE SET
			title          = EXCLUDED.title,
			price          = EXCLUDED.price,
			currency       = EXCLUDED.currency,
			shipping_price = EXCLUDED.shipping_price,
			category       = EXCLUDED.category,
			item_condition = EXCLUDED.item_condition,
			location       = EXCLUDED.location,
			images         = EXCLUDED.images,
			is_demo        = EXCLUDED.is_demo
		RETURNING ` + listingCols

	row := s.pool.QueryRow(ctx, query,
		l.ID, l.UserID, string(l.Platform), l.URL, l.Title, l.Price, l.Currency,
		l.ShippingPrice, l.Category, string(l.Condition), l.Location, l.Images, l.IsDemo,
	)
	out, err := scanListing(row)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("postgres: upsert listing %s: %w", l.URL, err)
	}
	return out, nil
}

// GetByID retrieves one of the owner's listings by id.
func (s *ListingStore) GetByID(ctx context.Context, userID, id string) (domain.Listing, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+listingCols+` FROM listings WHERE user_id = $1 AND id = $2`,
		userID, id)
	l, err := scanListing(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Listing{}, domain.ErrNotFound
		}
		return domain.Listing{}, fmt.Errorf("postgres: get listing %s: %w", id, err)
	}
	return l, nil
}

// ListRecent returns the owner's listings most recently imported first,
// optionally filtered by platform and demo flag.
func (s *ListingStore) ListRecent(ctx context.Context, userID string, f domain.ListingFilter) ([]domain.Listing, error) {
	query := `SELECT ` + listingCols + ` FROM listings WHERE user_id = $1`
	args := []any{userID}
	argIdx := 2

	if len(f.Platforms) > 0 {
		platforms := make([]string, len(f.Platforms))
		for i, p := range f.Platforms {
			platforms[i] = string(p)
		}
		query += fmt.Sprintf(" AND platform = ANY($%d)", argIdx)
		args = append(args, platforms)
		argIdx++
	}
	if !f.IncludeDemo {
		query += " AND is_demo = FALSE"
	}

	query += " ORDER BY imported_at DESC"

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, f.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list listings rows: %w", err)
	}
	return listings, nil
}

// HasReal reports whether the owner has any non-demo listings.
func (s *ListingStore) HasReal(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM listings WHERE user_id = $1 AND is_demo = FALSE)`,
		userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: check real listings: %w", err)
	}
	return exists, nil
}

func scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	var platform, condition string
	err := row.Scan(
		&l.ID, &l.UserID, &platform, &l.URL, &l.Title, &l.Price, &l.Currency,
		&l.ShippingPrice, &l.Category, &condition, &l.Location, &l.Images,
		&l.IsDemo, &l.ImportedAt,
	)
	if err != nil {
		return domain.Listing{}, err
	}
	l.Platform = domain.Platform(platform)
	l.Condition = domain.Condition(condition)
	return l, nil
}
