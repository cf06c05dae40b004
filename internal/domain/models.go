package domain

import (
	"fmt"
	"time"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	SingleChoice   QuestionType = "single-choice"
	MultipleChoice QuestionType = "multiple-choice"
	Boolean        QuestionType = "boolean"
	Text           QuestionType = "text"
)

// HasOptions reports whether the type is answered by picking option values.
func (t QuestionType) HasOptions() bool {
	return t == SingleChoice || t == MultipleChoice || t == Boolean
}

// Option represents a possible answer for a question. Value is what answers are
// compared against; ID only identifies the option for display.
type Option struct {
	ID    string `json:"id" yaml:"id"`
	Text  string `json:"text" yaml:"text"`
	Value string `json:"value" yaml:"value"`
}

// Question models a quiz question of any supported type.
type Question struct {
	ID            string       `json:"id" yaml:"id"`
	Text          string       `json:"question" yaml:"question"`
	Type          QuestionType `json:"type" yaml:"type"`
	Options       []Option     `json:"options,omitempty" yaml:"options,omitempty"`
	CorrectAnswer *Answer      `json:"correctAnswer,omitempty" yaml:"correctAnswer,omitempty"`
	Explanation   string       `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Points        int          `json:"points,omitempty" yaml:"points,omitempty"` // defaults to 1 if zero
	Required      bool         `json:"required,omitempty" yaml:"required,omitempty"`
}

// Weight returns the question's points, defaulting to 1.
func (q Question) Weight() int {
	if q.Points == 0 {
		return 1
	}
	return q.Points
}

// Public strips the correct answer and explanation so the question can be shown to a taker.
func (q Question) Public() Question {
	q.CorrectAnswer = nil
	q.Explanation = ""
	return q
}

// Settings carries the per-session configuration recognized by the engine.
type Settings struct {
	ShuffleQuestions bool `json:"shuffleQuestions" yaml:"shuffleQuestions"`
	ShuffleOptions   bool `json:"shuffleOptions" yaml:"shuffleOptions"`
	TimeLimit        int  `json:"timeLimit,omitempty" yaml:"timeLimit,omitempty"` // seconds, 0 disables the timer
	// PassPercentage of 0 means the default threshold of 70; a zero threshold cannot be expressed.
	PassPercentage   int  `json:"passPercentage,omitempty" yaml:"passPercentage,omitempty"`
	ShowExplanations bool `json:"showExplanations" yaml:"showExplanations"` // reveal explanations in reports
	AllowRetry       bool `json:"allowRetry" yaml:"allowRetry"`             // allow resetting a completed session
}

// Quiz is a collection of questions plus optional settings overriding the service defaults.
type Quiz struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title,omitempty" yaml:"title,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Questions   []Question `json:"questions" yaml:"questions"`
	Settings    *Settings  `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Validate checks the structural invariants choice questions rely on.
func (q Quiz) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing quiz id", ErrInvalidQuiz)
	}
	seen := make(map[string]struct{}, len(q.Questions))
	for i, question := range q.Questions {
		if question.ID == "" {
			return fmt.Errorf("%w: missing id of question %d", ErrInvalidQuiz, i)
		}
		if _, dup := seen[question.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidQuiz, question.ID)
		}
		seen[question.ID] = struct{}{}

		switch question.Type {
		case SingleChoice, MultipleChoice, Boolean, Text:
		default:
			return fmt.Errorf("%w: unknown type %q of question %q", ErrInvalidQuiz, question.Type, question.ID)
		}
		if question.Points < 0 {
			return fmt.Errorf("%w: negative points of question %q", ErrInvalidQuiz, question.ID)
		}
		if question.CorrectAnswer != nil && question.CorrectAnswer.IsEmpty() {
			return fmt.Errorf("%w: empty correct answer of question %q", ErrInvalidQuiz, question.ID)
		}
		if !question.Type.HasOptions() {
			continue
		}
		if len(question.Options) == 0 {
			return fmt.Errorf("%w: question %q has no options", ErrInvalidQuiz, question.ID)
		}
		if question.CorrectAnswer == nil {
			continue
		}
		values := make(map[string]struct{}, len(question.Options))
		for _, opt := range question.Options {
			values[opt.Value] = struct{}{}
		}
		for _, v := range question.CorrectAnswer.Values() {
			if _, ok := values[v]; !ok {
				return fmt.Errorf("%w: correct value %q of question %q is not an option", ErrInvalidQuiz, v, question.ID)
			}
		}
	}
	return nil
}

// QuizAnswer is the scored record of one question.
type QuizAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     Answer `json:"answer"`
	IsCorrect  bool   `json:"isCorrect"`
	Points     int    `json:"points"`
}

// QuizResult is the outcome of scoring a question set against an answer map.
type QuizResult struct {
	TotalQuestions int          `json:"totalQuestions"`
	CorrectAnswers int          `json:"correctAnswers"`
	TotalPoints    int          `json:"totalPoints"`
	EarnedPoints   int          `json:"earnedPoints"`
	Percentage     int          `json:"percentage"`
	Answers        []QuizAnswer `json:"answers"`
	TimeSpent      *int         `json:"timeSpent,omitempty"` // seconds, set by the session layer
}

// Report decorates a result with presentation data: grade, pass flag and explanations.
type Report struct {
	QuizResult
	Grade          string            `json:"grade"`
	Passed         bool              `json:"passed"`
	PassPercentage int               `json:"passPercentage"`
	Explanations   map[string]string `json:"explanations,omitempty"`
}

// ResultRecord is a completed session's result as stored by result repositories.
type ResultRecord struct {
	ID          string     `json:"id"`
	QuizID      string     `json:"quizId"`
	SessionID   string     `json:"sessionId"`
	UserID      string     `json:"userId"`
	Result      QuizResult `json:"result"`
	CompletedAt time.Time  `json:"completedAt"`
}

// LeaderboardEntry is a best-percentage view of a quiz taker.
type LeaderboardEntry struct {
	UserID     string `json:"userId"`
	Percentage int    `json:"percentage"`
}
