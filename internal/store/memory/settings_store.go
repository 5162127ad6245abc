package memory

import (
	"context"
	"sync"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// SettingsStore is an in-memory domain.SettingsStore.
type SettingsStore struct {
	mu   sync.RWMutex
	rows map[string]domain.UserSettings
}

// NewSettingsStore creates an empty SettingsStore.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{rows: make(map[string]domain.UserSettings)}
}

func (s *SettingsStore) Get(_ context.Context, userID string) (domain.UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.rows[userID]
	if !ok {
		return domain.UserSettings{}, domain.ErrSettingsNotFound
	}
	return settings, nil
}

func (s *SettingsStore) Upsert(_ context.Context, settings domain.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[settings.UserID] = settings
	return nil
}

// FeeStore is an in-memory domain.FeeStore.
type FeeStore struct {
	mu   sync.RWMutex
	rows map[string][]domain.PlatformFee
}

// NewFeeStore creates an empty FeeStore.
func NewFeeStore() *FeeStore {
	return &FeeStore{rows: make(map[string][]domain.PlatformFee)}
}

func (s *FeeStore) ListByUser(_ context.Context, userID string) ([]domain.PlatformFee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fees := make([]domain.PlatformFee, len(s.rows[userID]))
	copy(fees, s.rows[userID])
	return fees, nil
}

func (s *FeeStore) Replace(_ context.Context, userID string, fees []domain.PlatformFee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]domain.PlatformFee, len(fees))
	copy(rows, fees)
	for i := range rows {
		rows[i].UserID = userID
	}
	s.rows[userID] = rows
	return nil
}
