package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizdash/internal/domain"
)

// ScoreStore persists the ordered high-score list in Postgres; rank is the
// list position.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Load(ctx context.Context) ([]domain.HighScoreEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, time_seconds FROM highscores ORDER BY rank`)
	if err != nil {
		return nil, fmt.Errorf("load high scores: %w", err)
	}
	defer rows.Close()

	entries := []domain.HighScoreEntry{}
	for rows.Next() {
		var entry domain.HighScoreEntry
		if err := rows.Scan(&entry.Name, &entry.TimeSeconds); err != nil {
			return nil, fmt.Errorf("scan high score: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read high scores: %w", err)
	}
	return entries, nil
}

func (s *ScoreStore) Save(ctx context.Context, entries []domain.HighScoreEntry) error {
	return s.pool.BeginTxFunc(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM highscores`); err != nil {
			return fmt.Errorf("clear high scores: %w", err)
		}
		for rank, entry := range entries {
			if _, err := tx.Exec(ctx,
				`INSERT INTO highscores (rank, name, time_seconds) VALUES ($1, $2, $3)`,
				rank+1, entry.Name, entry.TimeSeconds,
			); err != nil {
				return fmt.Errorf("insert high score: %w", err)
			}
		}
		return nil
	})
}
