package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been opened.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidQuiz wraps structural problems found by Quiz.Validate.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrNotStarted is returned for session operations that need a started session.
	ErrNotStarted = errors.New("quiz session not started")
	// ErrAlreadyStarted is returned when starting a session twice.
	ErrAlreadyStarted = errors.New("quiz session already started")
	// ErrSessionCompleted is returned for mutations after completion; only reset is allowed.
	ErrSessionCompleted = errors.New("quiz session completed")
	// ErrRetryNotAllowed is returned when resetting a completed session whose settings forbid retries.
	ErrRetryNotAllowed = errors.New("quiz retry not allowed")
	// ErrIndexOutOfRange is returned when navigating outside the question list.
	ErrIndexOutOfRange = errors.New("question index out of range")
)
