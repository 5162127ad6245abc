package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// SaleStore is an in-memory domain.ObservedSaleStore.
type SaleStore struct {
	mu   sync.RWMutex
	rows []domain.ObservedSale
}

// NewSaleStore creates an empty SaleStore.
func NewSaleStore() *SaleStore {
	return &SaleStore{}
}

func (s *SaleStore) Insert(_ context.Context, sale domain.ObservedSale) (domain.ObservedSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}
	s.rows = append(s.rows, sale)
	return sale, nil
}

func (s *SaleStore) ListRecent(_ context.Context, userID string, f domain.SaleFilter) ([]domain.ObservedSale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ObservedSale
	for _, r := range s.rows {
		if r.UserID != userID {
			continue
		}
		if f.ProductID != "" && r.ProductID != f.ProductID {
			continue
		}
		if f.Platform != "" && r.Platform != f.Platform {
			continue
		}
		if !f.IncludeDemo && r.IsDemo {
			continue
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SoldAt.After(out[j].SoldAt)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
