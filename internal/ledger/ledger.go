// Package ledger maintains the bounded, sorted high-score list and fans out
// snapshots to subscribers.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"quizdash/internal/domain"
)

// DefaultCapacity bounds the ledger to the best five results.
const DefaultCapacity = 5

// Store persists the ordered high-score list. Absent state loads as an empty
// list; implementations recover from corrupt state the same way rather than
// failing.
type Store interface {
	Load(ctx context.Context) ([]domain.HighScoreEntry, error)
	Save(ctx context.Context, entries []domain.HighScoreEntry) error
}

// Ledger owns the best-results list: add re-sorts ascending by time,
// truncates to capacity, persists, and broadcasts the new scoreboard. It never
// mutates game state itself; the play-again request is surfaced as a signal
// for the orchestrator to act on.
type Ledger struct {
	store    Store
	capacity int
	now      func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Scoreboard]struct{}

	playAgain chan struct{}
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithCapacity overrides the entry cap.
func WithCapacity(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithClock overrides the timestamp source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:       store,
		capacity:    DefaultCapacity,
		now:         time.Now,
		subscribers: make(map[chan domain.Scoreboard]struct{}),
		playAgain:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add records a result: append, sort ascending by time, truncate to capacity,
// persist, broadcast. Returns the persisted list.
func (l *Ledger) Add(ctx context.Context, name string, timeSeconds float64) ([]domain.HighScoreEntry, error) {
	entries, err := l.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load high scores: %w", err)
	}

	entries = append(entries, domain.HighScoreEntry{Name: name, TimeSeconds: timeSeconds})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TimeSeconds < entries[j].TimeSeconds
	})
	if len(entries) > l.capacity {
		entries = entries[:l.capacity]
	}

	if err := l.store.Save(ctx, entries); err != nil {
		return nil, fmt.Errorf("save high scores: %w", err)
	}

	log.Info().Str("player", name).Float64("time_seconds", timeSeconds).Int("entries", len(entries)).Msg("high score recorded")

	l.broadcast(entries)
	return entries, nil
}

// Entries returns the currently persisted list; absent state is an empty list.
func (l *Ledger) Entries(ctx context.Context) ([]domain.HighScoreEntry, error) {
	return l.store.Load(ctx)
}

// Subscribe returns a channel receiving scoreboard snapshots, primed with the
// current state. The caller must invoke the returned cancel function to avoid
// leaks.
func (l *Ledger) Subscribe(ctx context.Context) (<-chan domain.Scoreboard, func(), error) {
	entries, err := l.store.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load high scores: %w", err)
	}

	ch := make(chan domain.Scoreboard, 8)

	l.mu.Lock()
	l.subscribers[ch] = struct{}{}
	l.mu.Unlock()

	ch <- l.snapshot(entries)

	cancel := func() {
		l.mu.Lock()
		if _, ok := l.subscribers[ch]; ok {
			delete(l.subscribers, ch)
			close(ch)
		}
		l.mu.Unlock()
	}
	return ch, cancel, nil
}

// RequestPlayAgain signals an explicit user request to restart. Repeated
// requests before the orchestrator reacts collapse into one.
func (l *Ledger) RequestPlayAgain() {
	select {
	case l.playAgain <- struct{}{}:
	default:
	}
}

// PlayAgain returns the channel carrying play-again requests.
func (l *Ledger) PlayAgain() <-chan struct{} {
	return l.playAgain
}

func (l *Ledger) broadcast(entries []domain.HighScoreEntry) {
	board := l.snapshot(entries)

	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subscribers {
		select {
		case ch <- board:
		default:
			// Drop the stale snapshot so a slow subscriber never blocks the
			// game loop.
			select {
			case <-ch:
			default:
			}
			ch <- board
		}
	}
}

func (l *Ledger) snapshot(entries []domain.HighScoreEntry) domain.Scoreboard {
	copied := make([]domain.HighScoreEntry, len(entries))
	copy(copied, entries)
	return domain.Scoreboard{Entries: copied, UpdatedAt: l.now()}
}
