package domain

import "errors"

var (
	// ErrEmptyName is reported when the submitted player name trims to nothing.
	ErrEmptyName = errors.New("player name cannot be empty")
	// ErrNoSelection is reported when a choice question is submitted without a
	// valid option key selected.
	ErrNoSelection = errors.New("no option selected")
	// ErrBlankAnswer is reported when a free-text answer trims to nothing.
	ErrBlankAnswer = errors.New("answer cannot be blank")
	// ErrNoActiveQuestion is reported when input arrives with no question shown.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrWrongAnswer is the expected-failure protocol outcome (HTTP 400 on
	// submit). It ends the game; it is not a transport failure.
	ErrWrongAnswer = errors.New("wrong answer")
	// ErrGameOver is reported when a submission reaches a terminated session.
	ErrGameOver = errors.New("game is over")
	// ErrQuestionNotFound indicates a requested chain question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
)
