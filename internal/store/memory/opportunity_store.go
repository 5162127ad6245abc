package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

type oppKey struct {
	userID    string
	listingID string
	platform  domain.Platform
}

// OpportunityStore is an in-memory domain.OpportunityStore.
type OpportunityStore struct {
	mu   sync.RWMutex
	rows map[oppKey]domain.Opportunity
}

// NewOpportunityStore creates an empty OpportunityStore.
func NewOpportunityStore() *OpportunityStore {
	return &OpportunityStore{rows: make(map[oppKey]domain.Opportunity)}
}

func (s *OpportunityStore) Upsert(_ context.Context, o domain.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[oppKey{o.UserID, o.BuyListingID, o.SellPlatform}] = o
	return nil
}

func (s *OpportunityStore) ListByUser(_ context.Context, userID string, includeDemo bool, limit int) ([]domain.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Opportunity
	for k, o := range s.rows {
		if k.userID != userID {
			continue
		}
		if !includeDemo && o.IsDemo {
			continue
		}
		out = append(out, o)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].BuyListingID < out[j].BuyListingID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
