package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// SaleStore implements domain.ObservedSaleStore using PostgreSQL. Observed
// sales are append-only; there is no update or delete path.
type SaleStore struct {
	pool *pgxpool.Pool
}

// NewSaleStore creates a SaleStore backed by the given connection pool.
func NewSaleStore(pool *pgxpool.Pool) *SaleStore {
	return &SaleStore{pool: pool}
}

// Insert stores a new observed sale and returns it with its generated id.
func (s *SaleStore) Insert(ctx context.Context, sale domain.ObservedSale) (domain.ObservedSale, error) {
	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}

	var productID *string
	if sale.ProductID != "" {
		productID = &sale.ProductID
	}

	const query = `
		INSERT INTO observed_sales (
			id, user_id, platform, product_id, sold_price, sold_at,
			item_condition, url, notes, is_demo
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.pool.Exec(ctx, query,
		sale.ID, sale.UserID, string(sale.Platform), productID, sale.SoldPrice,
		sale.SoldAt, string(sale.Condition), sale.URL, sale.Notes, sale.IsDemo,
	)
	if err != nil {
		return domain.ObservedSale{}, fmt.Errorf("postgres: insert observed sale: %w", err)
	}
	return sale, nil
}

// ListRecent returns observed sales matching the filter, most recently sold
// first.
func (s *SaleStore) ListRecent(ctx context.Context, userID string, f domain.SaleFilter) ([]domain.ObservedSale, error) {
	query := `SELECT id, user_id, platform, product_id, sold_price, sold_at,
		item_condition, url, notes, is_demo
		FROM observed_sales WHERE user_id = $1`
	args := []any{userID}
	argIdx := 2

	if f.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", argIdx)
		args = append(args, f.ProductID)
		argIdx++
	}
	if f.Platform != "" {
		query += fmt.Sprintf(" AND platform = $%d", argIdx)
		args = append(args, string(f.Platform))
		argIdx++
	}
	if !f.IncludeDemo {
		query += " AND is_demo = FALSE"
	}

	query += " ORDER BY sold_at DESC"

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, f.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list observed sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.ObservedSale
	for rows.Next() {
		var sale domain.ObservedSale
		var platform, condition string
		var productID *string
		if err := rows.Scan(
			&sale.ID, &sale.UserID, &platform, &productID, &sale.SoldPrice,
			&sale.SoldAt, &condition, &sale.URL, &sale.Notes, &sale.IsDemo,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan observed sale: %w", err)
		}
		sale.Platform = domain.Platform(platform)
		sale.Condition = domain.Condition(condition)
		if productID != nil {
			sale.ProductID = *productID
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list observed sales rows: %w", err)
	}
	return sales, nil
}
