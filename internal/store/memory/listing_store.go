// Package memory provides in-memory implementations of the domain store
// interfaces. They back the engine and handler tests and are safe for
// concurrent use, but persist nothing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// ListingStore is an in-memory domain.ListingStore.
type ListingStore struct {
	mu   sync.RWMutex
	rows map[string]domain.Listing // by ID
	seq  map[string]int            // insertion order, for stable sorting
	next int
}

// NewListingStore creates an empty ListingStore.
func NewListingStore() *ListingStore {
	return &ListingStore{
		rows: make(map[string]domain.Listing),
		seq:  make(map[string]int),
	}
}

func (s *ListingStore) Upsert(_ context.Context, l domain.Listing) (domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.rows {
		if existing.UserID == l.UserID && existing.Platform == l.Platform && existing.URL == l.URL {
			l.ID = id
			l.ImportedAt = existing.ImportedAt
			s.rows[id] = l
			return l, nil
		}
	}

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.ImportedAt.IsZero() {
		l.ImportedAt = time.Now().UTC()
	}
	s.rows[l.ID] = l
	s.next++
	s.seq[l.ID] = s.next
	return l, nil
}

func (s *ListingStore) GetByID(_ context.Context, userID, id string) (domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.rows[id]
	if !ok || l.UserID != userID {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, nil
}

func (s *ListingStore) ListRecent(_ context.Context, userID string, f domain.ListingFilter) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Listing
	for _, l := range s.rows {
		if l.UserID != userID {
			continue
		}
		if !f.IncludeDemo && l.IsDemo {
			continue
		}
		if len(f.Platforms) > 0 && !containsPlatform(f.Platforms, l.Platform) {
			continue
		}
		out = append(out, l)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ImportedAt.Equal(out[j].ImportedAt) {
			return out[i].ImportedAt.After(out[j].ImportedAt)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *ListingStore) HasReal(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.rows {
		if l.UserID == userID && !l.IsDemo {
			return true, nil
		}
	}
	return false, nil
}

func containsPlatform(ps []domain.Platform, p domain.Platform) bool {
	for _, v := range ps {
		if v == p {
			return true
		}
	}
	return false
}
