package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// ProductStore implements domain.ProductStore using PostgreSQL.
type ProductStore struct {
	pool *pgxpool.Pool
}

// NewProductStore creates a ProductStore backed by the given connection pool.
func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

const productCols = `id, user_id, canonical_name, category, aliases, liquidity_class, is_demo`

// Insert stores a new product. A canonical-name collision for the same owner
// yields domain.ErrAlreadyExists.
func (s *ProductStore) Insert(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Aliases == nil {
		p.Aliases = []string{}
	}
	if p.LiquidityClass == "" {
		p.LiquidityClass = domain.LiquidityMedium
	}

	const query = `
		INSERT INTO products (id, user_id, canonical_name, category, aliases, liquidity_class, is_demo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, canonical_name) DO NOTHING
		RETURNING ` + productCols

	row := s.pool.QueryRow(ctx, query,
		p.ID, p.UserID, p.CanonicalName, p.Category, p.Aliases, string(p.LiquidityClass), p.IsDemo,
	)
	out, err := scanProduct(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrAlreadyExists
		}
		return domain.Product{}, fmt.Errorf("postgres: insert product %q: %w", p.CanonicalName, err)
	}
	return out, nil
}

// GetByID retrieves one of the owner's products by id.
func (s *ProductStore) GetByID(ctx context.Context, userID, id string) (domain.Product, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE user_id = $1 AND id = $2`,
		userID, id)
	p, err := scanProduct(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, fmt.Errorf("postgres: get product %s: %w", id, err)
	}
	return p, nil
}

// GetByCanonicalName retrieves a product by its exact canonical name.
func (s *ProductStore) GetByCanonicalName(ctx context.Context, userID, name string) (domain.Product, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE user_id = $1 AND canonical_name = $2`,
		userID, name)
	p, err := scanProduct(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, fmt.Errorf("postgres: get product by name %q: %w", name, err)
	}
	return p, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var class string
	err := row.Scan(&p.ID, &p.UserID, &p.CanonicalName, &p.Category, &p.Aliases, &class, &p.IsDemo)
	if err != nil {
		return domain.Product{}, err
	}
	p.LiquidityClass = domain.LiquidityClass(class)
	return p, nil
}
