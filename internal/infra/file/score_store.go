// Package file persists the high-score list as a single JSON document on
// disk, the durable local storage used by default.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"quizdash/internal/domain"
)

// ScoreStore reads and writes one JSON-encoded ordered list. An absent file
// loads as an empty list; an unparsable file is treated the same way rather
// than crashing the game.
type ScoreStore struct {
	path string
	mu   sync.Mutex
}

func NewScoreStore(path string) *ScoreStore {
	return &ScoreStore{path: path}
}

func (s *ScoreStore) Load(_ context.Context) ([]domain.HighScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []domain.HighScoreEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read high scores: %w", err)
	}

	var entries []domain.HighScoreEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("high score file unreadable, starting empty")
		return []domain.HighScoreEntry{}, nil
	}
	return entries, nil
}

func (s *ScoreStore) Save(_ context.Context, entries []domain.HighScoreEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode high scores: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create high score dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write high scores: %w", err)
	}
	return nil
}
