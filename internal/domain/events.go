package domain

import "time"

// EventType names the notifications a session emits to its observers.
type EventType string

const (
	EventQuestionChange EventType = "questionChange"
	EventAnswerChange   EventType = "answerChange"
	EventTimer          EventType = "timer"
	EventCompleted      EventType = "completed"
)

// TimerLevel grades how close a countdown is to expiry.
type TimerLevel string

const (
	TimerNormal   TimerLevel = "normal"
	TimerWarning  TimerLevel = "warning"
	TimerCritical TimerLevel = "critical"
)

// Event is a single session notification. Only the fields relevant to Type are set.
type Event struct {
	Type       EventType  `json:"type"`
	SessionID  string     `json:"sessionId"`
	QuestionID string     `json:"questionId,omitempty"`
	Answer     *Answer    `json:"answer,omitempty"`
	Current    int        `json:"current,omitempty"` // 1-based
	Total      int        `json:"total,omitempty"`
	Progress   int        `json:"progress,omitempty"`
	Remaining  *int       `json:"remaining,omitempty"`
	Clock      string     `json:"clock,omitempty"`
	Level      TimerLevel `json:"level,omitempty"`
	Report     *Report    `json:"report,omitempty"`
	At         time.Time  `json:"at"`
}
