package game

import (
	"errors"
	"testing"
	"time"

	"quizdash/internal/domain"
)

func choiceQuestion() domain.Question {
	return domain.Question{
		Text: "Pick the right option",
		Kind: domain.KindChoice,
		Options: map[string]string{
			"a": "Wrong",
			"b": "Right",
		},
	}
}

func textQuestion() domain.Question {
	return domain.Question{Text: "What is 2 + 2?", Kind: domain.KindFreeText}
}

func expectAnswer(t *testing.T, p *Presenter, want string) {
	t.Helper()
	select {
	case got := <-p.Answers():
		if got != want {
			t.Fatalf("expected answer %q, got %q", want, got)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected answer %q, got none", want)
	}
}

func expectNoAnswer(t *testing.T, p *Presenter) {
	t.Helper()
	select {
	case got := <-p.Answers():
		t.Fatalf("unexpected answer %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubmitChoiceEmitsOnce(t *testing.T) {
	p := NewPresenter(nil)
	p.Show(choiceQuestion())

	if err := p.Submit("b"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	expectAnswer(t, p, "b")
	expectNoAnswer(t, p)
}

func TestSubmitChoiceWithoutSelectionIsSuppressed(t *testing.T) {
	p := NewPresenter(nil)
	p.Show(choiceQuestion())

	if err := p.Submit(""); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if err := p.Submit("z"); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection for unknown key, got %v", err)
	}
	expectNoAnswer(t, p)
}

func TestSubmitFreeTextTrims(t *testing.T) {
	p := NewPresenter(nil)
	p.Show(textQuestion())

	if err := p.Submit("  4  "); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	expectAnswer(t, p, "4")
}

func TestSubmitBlankFreeTextIsRejected(t *testing.T) {
	p := NewPresenter(nil)
	p.Show(textQuestion())

	// A single space must be rejected the same as an empty string: the check
	// is on trimmed length, not on any particular whitespace value.
	for _, raw := range []string{"", " ", "   ", "\t"} {
		if err := p.Submit(raw); !errors.Is(err, domain.ErrBlankAnswer) {
			t.Fatalf("expected ErrBlankAnswer for %q, got %v", raw, err)
		}
	}
	expectNoAnswer(t, p)
}

func TestSubmitWithoutQuestion(t *testing.T) {
	p := NewPresenter(nil)
	if err := p.Submit("4"); !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("expected ErrNoActiveQuestion, got %v", err)
	}
}

func TestShowReplacesQuestionAndDropsStaleAnswers(t *testing.T) {
	p := NewPresenter(nil)
	p.Show(textQuestion())

	if err := p.Submit("stale"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// The buffered answer belongs to the replaced question and must not
	// carry over.
	p.Show(choiceQuestion())
	expectNoAnswer(t, p)

	if err := p.Submit("4"); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected validation against the new question, got %v", err)
	}
	if err := p.Submit("a"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	expectAnswer(t, p, "a")
}

type recordingView struct {
	shown []domain.Question
}

func (v *recordingView) ShowQuestion(q domain.Question) {
	v.shown = append(v.shown, q)
}

func TestShowRenders(t *testing.T) {
	view := &recordingView{}
	p := NewPresenter(view)

	p.Show(textQuestion())
	p.Show(choiceQuestion())

	if len(view.shown) != 2 {
		t.Fatalf("expected 2 renders, got %d", len(view.shown))
	}
	if view.shown[0].Kind != domain.KindFreeText || view.shown[1].Kind != domain.KindChoice {
		t.Fatalf("unexpected render order: %+v", view.shown)
	}
}
