package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"quizdash/internal/domain"
)

const scoreKey = "quizdash:highscores"

// ScoreStore keeps the high-score list as a single JSON value in Redis,
// mirroring the one-key local storage contract. A missing key loads as an
// empty list; a corrupt value is recovered as empty.
type ScoreStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScoreStore builds a store. A non-zero ttl expires the list after
// inactivity; zero keeps it forever.
func NewScoreStore(client *redis.Client, ttl time.Duration) *ScoreStore {
	return &ScoreStore{client: client, ttl: ttl}
}

func (s *ScoreStore) Load(ctx context.Context) ([]domain.HighScoreEntry, error) {
	data, err := s.client.Get(ctx, scoreKey).Bytes()
	if err == redis.Nil {
		return []domain.HighScoreEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read high scores: %w", err)
	}

	var entries []domain.HighScoreEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Msg("high score key unreadable, starting empty")
		return []domain.HighScoreEntry{}, nil
	}
	return entries, nil
}

func (s *ScoreStore) Save(ctx context.Context, entries []domain.HighScoreEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode high scores: %w", err)
	}
	if err := s.client.Set(ctx, scoreKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("write high scores: %w", err)
	}
	return nil
}
