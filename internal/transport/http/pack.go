package http

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"quizdash/internal/domain"
)

// ChainQuestion is one link of the served question chain. Questions with
// alternatives are answered by option key; the rest by free text, compared
// case-insensitively.
type ChainQuestion struct {
	Prompt       string            `yaml:"prompt" json:"prompt"`
	Alternatives map[string]string `yaml:"alternatives,omitempty" json:"alternatives,omitempty"`
	Answer       string            `yaml:"answer" json:"answer"`
	Limit        int               `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// PackLoader fetches the question pack from a backing store.
type PackLoader interface {
	LoadPack(ctx context.Context) ([]ChainQuestion, error)
}

// YAMLPackLoader reads the pack from a YAML file.
type YAMLPackLoader struct {
	path string
}

func NewYAMLPackLoader(path string) *YAMLPackLoader {
	return &YAMLPackLoader{path: path}
}

func (l *YAMLPackLoader) LoadPack(_ context.Context) ([]ChainQuestion, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read question pack: %w", err)
	}
	var pack struct {
		Questions []ChainQuestion `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse question pack: %w", err)
	}
	if len(pack.Questions) == 0 {
		return nil, fmt.Errorf("question pack %s is empty", l.path)
	}
	return pack.Questions, nil
}

// PGPackLoader reads the pack from the questions table, ordered by position.
type PGPackLoader struct {
	pool *pgxpool.Pool
}

func NewPGPackLoader(pool *pgxpool.Pool) *PGPackLoader {
	return &PGPackLoader{pool: pool}
}

func (l *PGPackLoader) LoadPack(ctx context.Context) ([]ChainQuestion, error) {
	rows, err := l.pool.Query(ctx, `SELECT prompt, alternatives, answer, limit_seconds FROM questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load question pack: %w", err)
	}
	defer rows.Close()

	questions := []ChainQuestion{}
	for rows.Next() {
		var q ChainQuestion
		var alternatives []byte
		if err := rows.Scan(&q.Prompt, &alternatives, &q.Answer, &q.Limit); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if len(alternatives) > 0 {
			if err := json.Unmarshal(alternatives, &q.Alternatives); err != nil {
				return nil, fmt.Errorf("decode alternatives: %w", err)
			}
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read question pack: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("questions table is empty")
	}
	return questions, nil
}

// StaticPackLoader serves a fixed pack (tests/demos).
type StaticPackLoader struct {
	questions []ChainQuestion
}

func NewStaticPackLoader(questions []ChainQuestion) *StaticPackLoader {
	return &StaticPackLoader{questions: questions}
}

func (l *StaticPackLoader) LoadPack(_ context.Context) ([]ChainQuestion, error) {
	if len(l.questions) == 0 {
		return nil, domain.ErrQuestionNotFound
	}
	return l.questions, nil
}

// PackRepository caches the pack with a TTL to avoid re-reading the backing
// store on every request.
type PackRepository struct {
	loader PackLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.RWMutex
	cached    []ChainQuestion
	expiresAt time.Time
}

func NewPackRepository(loader PackLoader, ttl time.Duration) *PackRepository {
	return &PackRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
	}
}

func (r *PackRepository) GetPack(ctx context.Context) ([]ChainQuestion, error) {
	now := r.clock()

	r.mu.RLock()
	if r.cached != nil && r.expiresAt.After(now) {
		cached := r.cached
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("pack", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.cached != nil && r.expiresAt.After(now) {
			cached := r.cached
			r.mu.RUnlock()
			return cached, nil
		}
		r.mu.RUnlock()

		pack, err := r.loader.LoadPack(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cached = pack
		r.expiresAt = now.Add(r.ttl)
		r.mu.Unlock()
		return pack, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]ChainQuestion), nil
}
