package game

import (
	"strings"
	"sync"

	"quizdash/internal/domain"
)

// View renders the active question. Implementations live outside the core.
type View interface {
	ShowQuestion(q domain.Question)
}

// Presenter holds exactly one active question and validates submissions
// against it. Valid submissions are published on the answers channel, once per
// user action. The presenter does not rate-limit; the orchestrator treats only
// the first submission per question as authoritative.
type Presenter struct {
	view View

	mu      sync.Mutex
	current *domain.Question

	answers chan string
}

func NewPresenter(view View) *Presenter {
	return &Presenter{
		view:    view,
		answers: make(chan string, 8),
	}
}

// Answers returns the channel carrying validated answer submissions.
func (p *Presenter) Answers() <-chan string {
	return p.answers
}

// Show replaces the current question wholesale (no merge with previous state)
// and re-renders. Submissions buffered for the previous question are dropped:
// they refer to a question that no longer exists.
func (p *Presenter) Show(q domain.Question) {
	p.mu.Lock()
	question := q
	p.current = &question
	for {
		select {
		case <-p.answers:
			continue
		default:
		}
		break
	}
	p.mu.Unlock()

	if p.view != nil {
		p.view.ShowQuestion(q)
	}
}

// Submit validates raw input against the active question and publishes the
// answer value. Validation failures are reported to the caller and publish
// nothing: a missing selection or blank free-text answer is a UX stop, not a
// game event.
func (p *Presenter) Submit(raw string) error {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()

	if current == nil {
		return domain.ErrNoActiveQuestion
	}

	switch current.Kind {
	case domain.KindChoice:
		key := strings.TrimSpace(raw)
		if _, ok := current.Options[key]; !ok {
			return domain.ErrNoSelection
		}
		p.publish(key)
	case domain.KindFreeText:
		trimmed := strings.TrimSpace(raw)
		if len(trimmed) == 0 {
			return domain.ErrBlankAnswer
		}
		p.publish(trimmed)
	default:
		return domain.ErrNoActiveQuestion
	}
	return nil
}

func (p *Presenter) publish(answer string) {
	select {
	case p.answers <- answer:
	default:
		// The buffer only fills when the player re-submits faster than the
		// orchestrator resolves; extra submissions are non-authoritative
		// anyway.
	}
}
