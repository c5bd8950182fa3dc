package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuestionKind distinguishes how a question is answered.
type QuestionKind string

const (
	// KindChoice questions carry a fixed option set; the answer is an option key.
	KindChoice QuestionKind = "choice"
	// KindFreeText questions accept typed input.
	KindFreeText QuestionKind = "free-text"
)

// Question is the active question as presented to the player. It is immutable
// once fetched and replaced wholesale on each fetch.
type Question struct {
	Text    string
	Kind    QuestionKind
	Options map[string]string // option key -> display label, choice only
}

// Session is the live state of one play-through, from name entry to game end.
// It is created on name submission, mutated only by the orchestrator, and
// replaced on restart. Over == true is terminal: no further network calls,
// timer starts, or submissions are processed for the session.
type Session struct {
	ID                uuid.UUID
	PlayerName        string
	StartedAt         time.Time
	AllAnswered       bool
	LastAnswerCorrect bool
	Over              bool
	NextURL           string
}

// HighScoreEntry is one recorded result on the ledger.
type HighScoreEntry struct {
	Name        string  `json:"name"`
	TimeSeconds float64 `json:"time"`
}

// Scoreboard captures the ordered ledger for subscribers.
type Scoreboard struct {
	Entries   []HighScoreEntry `json:"entries"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
