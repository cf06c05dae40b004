package domain

import "time"

// State is the lifecycle position of a quiz session.
type State string

const (
	StateNotStarted State = "not-started"
	StateInProgress State = "in-progress"
	StateCompleted  State = "completed"
)

// SessionState is the mutable state held by a session.
type SessionState struct {
	CurrentQuestionIndex int
	Answers              map[string]Answer
	IsStarted            bool
	IsCompleted          bool
	StartTime            *time.Time
	EndTime              *time.Time
}

// State derives the lifecycle position from the flags.
func (s SessionState) State() State {
	switch {
	case s.IsCompleted:
		return StateCompleted
	case s.IsStarted:
		return StateInProgress
	default:
		return StateNotStarted
	}
}

// SessionSnapshot is a read-only copy of a session sent to clients.
type SessionSnapshot struct {
	ID                   string            `json:"id"`
	QuizID               string            `json:"quizId"`
	UserID               string            `json:"userId"`
	Title                string            `json:"title,omitempty"`
	State                State             `json:"state"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	TotalQuestions       int               `json:"totalQuestions"`
	Question             *Question         `json:"question,omitempty"` // public form of the current question
	Answers              map[string]Answer `json:"answers"`
	Answered             []string          `json:"answered"`
	CanProceed           bool              `json:"canProceed"`
	Settings             Settings          `json:"settings"`
	Remaining            *int              `json:"remaining,omitempty"`
	StartTime            *time.Time        `json:"startTime,omitempty"`
	EndTime              *time.Time        `json:"endTime,omitempty"`
	Report               *Report           `json:"report,omitempty"`
}
