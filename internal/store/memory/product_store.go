package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// ProductStore is an in-memory domain.ProductStore.
type ProductStore struct {
	mu   sync.RWMutex
	rows map[string]domain.Product // by ID
}

// NewProductStore creates an empty ProductStore.
func NewProductStore() *ProductStore {
	return &ProductStore{rows: make(map[string]domain.Product)}
}

func (s *ProductStore) Insert(_ context.Context, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.rows {
		if existing.UserID == p.UserID && existing.CanonicalName == p.CanonicalName {
			return domain.Product{}, domain.ErrAlreadyExists
		}
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.rows[p.ID] = p
	return p, nil
}

func (s *ProductStore) GetByID(_ context.Context, userID, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.rows[id]
	if !ok || p.UserID != userID {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *ProductStore) GetByCanonicalName(_ context.Context, userID, name string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.rows {
		if p.UserID == userID && p.CanonicalName == name {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

// Delete removes a product. It exists so tests can simulate dangling match
// records; the engine itself never deletes products.
func (s *ProductStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.rows[id]
	if !ok || p.UserID != userID {
		return domain.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// MatchStore is an in-memory domain.MatchStore.
type MatchStore struct {
	mu   sync.RWMutex
	rows map[string]domain.ListingProductMatch // by listing ID
}

// NewMatchStore creates an empty MatchStore.
func NewMatchStore() *MatchStore {
	return &MatchStore{rows: make(map[string]domain.ListingProductMatch)}
}

func (s *MatchStore) Upsert(_ context.Context, m domain.ListingProductMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[m.ListingID] = m
	return nil
}

func (s *MatchStore) GetByListing(_ context.Context, userID, listingID string) (domain.ListingProductMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.rows[listingID]
	if !ok || m.UserID != userID {
		return domain.ListingProductMatch{}, domain.ErrNotFound
	}
	return m, nil
}
