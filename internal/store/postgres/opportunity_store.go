package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
// The INSERT ... ON CONFLICT upsert is atomic, which is what makes
// concurrent refreshes of the same key safe (last write wins).
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates an OpportunityStore backed by the given
// connection pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// Upsert inserts or fully overwrites the opportunity for its
// (user, buy_listing_id, sell_platform) key.
func (s *OpportunityStore) Upsert(ctx context.Context, o domain.Opportunity) error {
	const query = `
		INSERT INTO opportunities (
			user_id, buy_listing_id, sell_platform, product_id,
			est_sell_price, net_margin, roi, breakeven_sell_price,
			est_days_to_sell, demand_score, liquidity_score, total_score,
			is_demo, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, NOW()
		)
		ON CONFLICT (user_id, buy_listing_id, sell_platform) DO UPDATE SET
			product_id           = EXCLUDED.product_id,
			est_sell_price       = EXCLUDED.est_sell_price,
			net_margin           = EXCLUDED.net_margin,
			roi                  = EXCLUDED.roi,
			breakeven_sell_price = EXCLUDED.breakeven_sell_price,
			est_days_to_sell     = EXCLUDED.est_days_to_sell,
			demand_score         = EXCLUDED.demand_score,
			liquidity_score      = EXCLUDED.liquidity_score,
			total_score          = EXCLUDED.total_score,
			is_demo              = EXCLUDED.is_demo,
			updated_at           = NOW()`

	_, err := s.pool.Exec(ctx, query,
		o.UserID, o.BuyListingID, string(o.SellPlatform), o.ProductID,
		o.EstSellPrice, o.NetMargin, o.ROI, o.BreakevenSellPrice,
		o.EstDaysToSell, o.DemandScore, o.LiquidityScore, o.TotalScore,
		o.IsDemo,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert opportunity %s/%s: %w", o.BuyListingID, o.SellPlatform, err)
	}
	return nil
}

// ListByUser returns the owner's opportunities ordered by total score
// descending.
func (s *OpportunityStore) ListByUser(ctx context.Context, userID string, includeDemo bool, limit int) ([]domain.Opportunity, error) {
	query := `SELECT user_id, buy_listing_id, sell_platform, product_id,
		est_sell_price, net_margin, roi, breakeven_sell_price,
		est_days_to_sell, demand_score, liquidity_score, total_score,
		is_demo, updated_at
		FROM opportunities WHERE user_id = $1`
	args := []any{userID}

	if !includeDemo {
		query += " AND is_demo = FALSE"
	}
	query += " ORDER BY total_score DESC"
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var o domain.Opportunity
		var platform string
		if err := rows.Scan(
			&o.UserID, &o.BuyListingID, &platform, &o.ProductID,
			&o.EstSellPrice, &o.NetMargin, &o.ROI, &o.BreakevenSellPrice,
			&o.EstDaysToSell, &o.DemandScore, &o.LiquidityScore, &o.TotalScore,
			&o.IsDemo, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		o.SellPlatform = domain.Platform(platform)
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list opportunities rows: %w", err)
	}
	return opps, nil
}
