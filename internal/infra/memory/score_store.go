package memory

import (
	"context"
	"sync"

	"quizdash/internal/domain"
)

// ScoreStore is an in-memory implementation of ledger.Store, used in tests
// and demos.
type ScoreStore struct {
	mu      sync.RWMutex
	entries []domain.HighScoreEntry
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{}
}

func (s *ScoreStore) Load(_ context.Context) ([]domain.HighScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]domain.HighScoreEntry, len(s.entries))
	copy(entries, s.entries)
	return entries, nil
}

func (s *ScoreStore) Save(_ context.Context, entries []domain.HighScoreEntry) error {
	copied := make([]domain.HighScoreEntry, len(entries))
	copy(copied, entries)
	s.mu.Lock()
	s.entries = copied
	s.mu.Unlock()
	return nil
}
