package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// ResolveProduct maps a listing to its canonical product, creating one when
// no product with the same canonical name exists for the owner.
//
// A listing that already has a match record keeps it for life: the existing
// product is returned unchanged regardless of the current title. Otherwise
// the listing title is truncated to the canonical-name bound and matched
// against existing products by exact name; a hit links to that product and a
// miss creates a new one (liquidity medium, category copied from the
// listing). Either way the new link is recorded with method "auto_title" and
// confidence 0.7.
func (e *Engine) ResolveProduct(ctx context.Context, l domain.Listing) (domain.Product, error) {
	match, err := e.stores.Matches.GetByListing(ctx, l.UserID, l.ID)
	if err == nil {
		product, err := e.stores.Products.GetByID(ctx, l.UserID, match.ProductID)
		if err != nil {
			// The match points at a product that no longer exists. Surface it
			// as a not-found so the caller can treat it as a per-record
			// inconsistency rather than a fatal failure.
			return domain.Product{}, fmt.Errorf("engine: matched product %s for listing %s: %w", match.ProductID, l.ID, err)
		}
		return product, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Product{}, fmt.Errorf("engine: lookup match for listing %s: %w", l.ID, err)
	}

	canonical := domain.CanonicalName(l.Title)

	product, err := e.stores.Products.GetByCanonicalName(ctx, l.UserID, canonical)
	if errors.Is(err, domain.ErrNotFound) {
		product, err = e.stores.Products.Insert(ctx, domain.Product{
			UserID:         l.UserID,
			CanonicalName:  canonical,
			Category:       l.Category,
			Aliases:        []string{},
			LiquidityClass: domain.LiquidityMedium,
			IsDemo:         l.IsDemo,
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			// A concurrent import created the product between the lookup and
			// the insert. Link to the winner instead of failing.
			product, err = e.stores.Products.GetByCanonicalName(ctx, l.UserID, canonical)
			if err != nil {
				return domain.Product{}, fmt.Errorf("engine: lookup product %q after insert conflict: %w", canonical, err)
			}
		} else if err != nil {
			return domain.Product{}, fmt.Errorf("engine: create product %q: %w", canonical, err)
		} else {
			e.logger.InfoContext(ctx, "product created",
				slog.String("product_id", product.ID),
				slog.String("canonical_name", canonical),
			)
		}
	} else if err != nil {
		return domain.Product{}, fmt.Errorf("engine: lookup product %q: %w", canonical, err)
	}

	err = e.stores.Matches.Upsert(ctx, domain.ListingProductMatch{
		ListingID:  l.ID,
		ProductID:  product.ID,
		UserID:     l.UserID,
		Confidence: domain.MatchConfidenceAutoTitle,
		Method:     domain.MatchMethodAutoTitle,
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("engine: link listing %s to product %s: %w", l.ID, product.ID, err)
	}

	return product, nil
}
