package game

import (
	"strings"
	"sync"

	"quizdash/internal/domain"
)

// Collector is the one-shot name form: it accepts at most one valid player
// name and publishes it once. The owner discards the instance after use.
type Collector struct {
	mu   sync.Mutex
	used bool

	names chan string
}

func NewCollector() *Collector {
	return &Collector{names: make(chan string, 1)}
}

// Names returns the channel carrying the single successful name submission.
func (c *Collector) Names() <-chan string {
	return c.names
}

// Submit validates the name and publishes the trimmed value. An empty name is
// a validation error handled locally by the caller; nothing is published.
// Submissions after the first valid one are ignored.
func (c *Collector) Submit(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return domain.ErrEmptyName
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.used {
		return nil
	}
	c.used = true
	c.names <- trimmed
	return nil
}
