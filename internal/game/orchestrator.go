// Package game contains the quiz orchestration core: the session state
// machine, the per-question countdown, and the components it mediates.
package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"quizdash/internal/domain"
	"quizdash/internal/ledger"
	"quizdash/internal/quizhttp"
)

// QuizClient is the protocol client the orchestrator drives: one GET per
// question, one POST per answer.
type QuizClient interface {
	FetchQuestion(ctx context.Context, url string) (quizhttp.QuestionPayload, error)
	SubmitAnswer(ctx context.Context, url, answer string) (quizhttp.AnswerResult, error)
}

// ScoreView reveals or hides the scoreboard. Rendering lives outside the core.
type ScoreView interface {
	Reveal(entries []domain.HighScoreEntry)
	Hide()
}

// Alerter surfaces user-facing messages from the orchestration loop.
type Alerter interface {
	Alert(msg string)
}

// Options configure an Orchestrator.
type Options struct {
	// StartURL is the first question of the chain.
	StartURL string
	// DefaultLimit is the per-question limit in seconds when the payload
	// carries none.
	DefaultLimit int
}

// Orchestrator owns the game state machine. It is the single subscriber
// wiring collector, presenter, countdown, and ledger together; session and
// per-question sub-state are mutated only by its own run loop.
//
// States: Idle -> AwaitingName -> InProgress -> Resolved -> AwaitingName via
// restart. Within InProgress each question is Unresolved until exactly one of
// {answer submission, timer expiry} resolves it; the loser of that race is a
// no-op.
type Orchestrator struct {
	client  QuizClient
	scores  *ledger.Ledger
	clock   clockwork.Clock
	opts    Options
	view    View
	display Display
	board   ScoreView
	alerter Alerter

	mu        sync.Mutex
	session   *domain.Session
	collector *Collector
	presenter *Presenter
	countdown *Countdown
}

func NewOrchestrator(client QuizClient, scores *ledger.Ledger, clock clockwork.Clock, opts Options, view View, display Display, board ScoreView, alerter Alerter) *Orchestrator {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimitSeconds
	}
	return &Orchestrator{
		client:  client,
		scores:  scores,
		clock:   clock,
		opts:    opts,
		view:    view,
		display: display,
		board:   board,
		alerter: alerter,
	}
}

// Run drives full games until ctx is cancelled or a transport failure ends
// the loop: collect a name, play through the chain, reveal the scoreboard,
// wait for a play-again request, restart.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		collector := o.Restart()

		var name string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case name = <-collector.Names():
		}

		if err := o.Play(ctx, name); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-o.scores.PlayAgain():
		}
	}
}

// Restart tears down any residual presenter, countdown, and collector, resets
// the session, hides the scoreboard, and returns a fresh collector awaiting
// the next player name. Calling it repeatedly is safe and leaves exactly one
// collector active.
func (o *Orchestrator) Restart() *Collector {
	collector := NewCollector()

	o.mu.Lock()
	countdown := o.countdown
	o.countdown = nil
	o.presenter = nil
	o.session = nil
	o.collector = collector
	o.mu.Unlock()

	if countdown != nil {
		countdown.Stop()
	}
	if o.board != nil {
		o.board.Hide()
	}

	log.Debug().Msg("game reset, awaiting player name")
	return collector
}

// Play runs a single session from the first question to termination. The
// returned error is nil for every game-ending outcome (win, timeout, wrong
// answer); only transport failures and cancellation propagate.
func (o *Orchestrator) Play(ctx context.Context, playerName string) error {
	session := &domain.Session{
		ID:         uuid.New(),
		PlayerName: playerName,
		StartedAt:  o.clock.Now(),
		NextURL:    o.opts.StartURL,
	}
	presenter := NewPresenter(o.view)

	o.mu.Lock()
	o.session = session
	o.collector = nil // name collector is one-shot, discarded after use
	o.presenter = presenter
	o.mu.Unlock()

	log.Info().Str("session_id", session.ID.String()).Str("player", playerName).Msg("game started")

	url := o.opts.StartURL
	for {
		payload, err := o.client.FetchQuestion(ctx, url)
		if err != nil {
			o.abort(session)
			return fmt.Errorf("fetch question: %w", err)
		}

		next, advanced, err := o.playQuestion(ctx, session, presenter, payload)
		if err != nil {
			o.abort(session)
			return err
		}
		if !advanced {
			return nil
		}
		url = next
	}
}

// playQuestion presents one question and resolves the race between answer
// submission and timer expiry. It returns the next question URL and whether
// the game continues.
func (o *Orchestrator) playQuestion(ctx context.Context, session *domain.Session, presenter *Presenter, payload quizhttp.QuestionPayload) (string, bool, error) {
	presenter.Show(classify(payload))

	o.setSubmitURL(session, payload.NextURL)

	limit := payload.Limit
	if limit <= 0 {
		limit = o.opts.DefaultLimit
	}
	countdown := NewCountdown(o.clock, limit, o.display)
	o.replaceCountdown(countdown)
	countdown.Start()

	select {
	case <-ctx.Done():
		o.detachCountdown(countdown)
		return "", false, ctx.Err()

	case answer := <-presenter.Answers():
		// The countdown is stopped and drained before the scoring call, so
		// an expiry landing during network latency cannot also resolve this
		// question.
		o.detachCountdown(countdown)
		return o.resolveAnswer(ctx, session, answer)

	case <-countdown.Expired():
		o.detachCountdown(countdown)
		log.Info().Str("session_id", session.ID.String()).Msg("time expired")
		o.setCorrect(session, false)
		o.endGame(ctx, session)
		return "", false, nil
	}
}

// resolveAnswer posts the answer and classifies the outcome: 400 ends the
// game as a wrong answer, an empty next URL exhausts the chain, anything else
// advances.
func (o *Orchestrator) resolveAnswer(ctx context.Context, session *domain.Session, answer string) (string, bool, error) {
	result, err := o.client.SubmitAnswer(ctx, o.submitURL(session), answer)
	if errors.Is(err, domain.ErrWrongAnswer) {
		if o.alerter != nil {
			o.alerter.Alert("Wrong answer!")
		}
		o.setCorrect(session, false)
		o.endGame(ctx, session)
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("submit answer: %w", err)
	}

	o.setCorrect(session, true)

	if result.NextURL == "" {
		o.markAllAnswered(session)
		o.endGame(ctx, session)
		return "", false, nil
	}
	return result.NextURL, true, nil
}

// endGame is the terminal transition. It is idempotent: re-entering it scores
// nothing and re-renders nothing. The ledger gains an entry iff every
// question was answered and the last answer was correct; a timeout or wrong
// final answer reveals the scoreboard without recording.
func (o *Orchestrator) endGame(ctx context.Context, session *domain.Session) {
	o.mu.Lock()
	if session.Over {
		o.mu.Unlock()
		return
	}
	session.Over = true
	won := session.AllAnswered && session.LastAnswerCorrect
	countdown := o.countdown
	o.countdown = nil
	o.presenter = nil
	o.mu.Unlock()

	if countdown != nil {
		countdown.Stop()
	}

	elapsed := roundSeconds(o.clock.Now().Sub(session.StartedAt).Seconds())

	var entries []domain.HighScoreEntry
	if won {
		recorded, err := o.scores.Add(ctx, session.PlayerName, elapsed)
		if err != nil {
			log.Error().Err(err).Str("session_id", session.ID.String()).Msg("recording high score failed")
		} else {
			entries = recorded
		}
	}
	if entries == nil {
		loaded, err := o.scores.Entries(ctx)
		if err != nil {
			log.Error().Err(err).Msg("loading high scores failed")
		}
		entries = loaded
	}

	if o.board != nil {
		o.board.Reveal(entries)
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Bool("won", won).
		Float64("elapsed_seconds", elapsed).
		Msg("game over")
}

// abort terminates the session on a transport failure: full teardown, no
// scoring, no scoreboard reveal. The error propagates to the caller.
func (o *Orchestrator) abort(session *domain.Session) {
	o.mu.Lock()
	session.Over = true
	countdown := o.countdown
	o.countdown = nil
	o.presenter = nil
	o.mu.Unlock()

	if countdown != nil {
		countdown.Stop()
	}
}

// HandleInput routes a line of user input to whichever component currently
// awaits it: the collector while a name is pending, the presenter while a
// question is live, and the play-again flow once the game is over.
func (o *Orchestrator) HandleInput(raw string) error {
	o.mu.Lock()
	collector := o.collector
	presenter := o.presenter
	session := o.session
	o.mu.Unlock()

	switch {
	case collector != nil:
		return collector.Submit(raw)
	case session != nil && !session.Over && presenter != nil:
		return presenter.Submit(raw)
	case session != nil && session.Over:
		reply := strings.ToLower(strings.TrimSpace(raw))
		if reply == "y" || reply == "yes" {
			o.scores.RequestPlayAgain()
			return nil
		}
		return domain.ErrGameOver
	default:
		return domain.ErrNoActiveQuestion
	}
}

// Session returns a copy of the live session state, if any.
func (o *Orchestrator) Session() (domain.Session, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return domain.Session{}, false
	}
	return *o.session, true
}

// detachCountdown makes the expiry path unreachable: the tick schedule is
// cancelled, the loop has exited, and any expiry that slipped in beforehand
// is discarded. This runs synchronously, before any blocking call, so the
// first event to reach the run loop stays the only resolution.
func (o *Orchestrator) detachCountdown(countdown *Countdown) {
	countdown.Stop()

	o.mu.Lock()
	if o.countdown == countdown {
		o.countdown = nil
	}
	o.mu.Unlock()

	select {
	case <-countdown.Expired():
	default:
	}
}

// replaceCountdown installs the countdown for the entering question,
// cancelling any leftover schedule from the previous one. Leaked duplicate
// tickers across questions are a defect this guards against.
func (o *Orchestrator) replaceCountdown(countdown *Countdown) {
	o.mu.Lock()
	previous := o.countdown
	o.countdown = countdown
	o.mu.Unlock()

	if previous != nil && previous != countdown {
		previous.Stop()
	}
}

func (o *Orchestrator) setSubmitURL(session *domain.Session, url string) {
	o.mu.Lock()
	session.NextURL = url
	o.mu.Unlock()
}

func (o *Orchestrator) submitURL(session *domain.Session) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return session.NextURL
}

func (o *Orchestrator) setCorrect(session *domain.Session, correct bool) {
	o.mu.Lock()
	session.LastAnswerCorrect = correct
	o.mu.Unlock()
}

func (o *Orchestrator) markAllAnswered(session *domain.Session) {
	o.mu.Lock()
	session.AllAnswered = true
	o.mu.Unlock()
}

// classify maps the wire payload onto a Question: the presence of the
// alternatives field makes it a choice question, its absence free-text.
func classify(payload quizhttp.QuestionPayload) domain.Question {
	q := domain.Question{Text: payload.Question}
	if len(payload.Alternatives) > 0 {
		q.Kind = domain.KindChoice
		q.Options = payload.Alternatives
	} else {
		q.Kind = domain.KindFreeText
	}
	return q
}

// roundSeconds keeps elapsed time at two-decimal precision.
func roundSeconds(seconds float64) float64 {
	return math.Round(seconds*100) / 100
}
