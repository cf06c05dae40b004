package app

import (
	"context"
	"log"
	"sync"
	"time"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/quiz"

	"github.com/google/uuid"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResultRepository stores completed session results.
type ResultRepository interface {
	SaveResult(ctx context.Context, record domain.ResultRecord) error
	ListResults(ctx context.Context, quizID string, limit int) ([]domain.ResultRecord, error)
}

// Leaderboard keeps each taker's best percentage per quiz.
type Leaderboard interface {
	Record(ctx context.Context, quizID, userID string, percentage int) error
	Top(ctx context.Context, quizID string, limit int) ([]domain.LeaderboardEntry, error)
}

// ServiceOption customizes a QuizService.
type ServiceOption func(*QuizService)

// WithResults persists completed results.
func WithResults(results ResultRepository) ServiceOption {
	return func(s *QuizService) { s.results = results }
}

// WithLeaderboard records completed percentages.
func WithLeaderboard(board Leaderboard) ServiceOption {
	return func(s *QuizService) { s.board = board }
}

// WithDefaults sets the settings used for quizzes that carry none.
func WithDefaults(settings domain.Settings) ServiceOption {
	return func(s *QuizService) { s.defaults = settings }
}

// WithServiceClock is test-only for deterministic timestamps.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *QuizService) { s.now = now }
}

// WithSessionTick sets the countdown tick interval of new sessions; zero means
// countdowns are driven manually.
func WithSessionTick(d time.Duration) ServiceOption {
	return func(s *QuizService) { s.tick = d }
}

// QuizService contains the quiz-taking use cases.
type QuizService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	results  ResultRepository
	board    Leaderboard
	defaults domain.Settings
	now      func() time.Time
	tick     time.Duration

	mu          sync.Mutex
	subscribers map[string]map[chan domain.Event]struct{}
}

func NewQuizService(sessions SessionRepository, quizzes QuizRepository, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		sessions:    sessions,
		quizzes:     quizzes,
		defaults:    domain.Settings{PassPercentage: quiz.DefaultPassPercentage},
		now:         time.Now,
		tick:        time.Second,
		subscribers: make(map[string]map[chan domain.Event]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a session at rest for a taker.
func (s *QuizService) Open(ctx context.Context, quizID, userID string) (domain.SessionSnapshot, error) {
	q, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}

	id := uuid.NewString()
	settings := s.settingsFor(q)
	session := NewSession(id, userID, q, settings,
		WithClock(s.now),
		WithTickInterval(s.tick),
		WithHooks(s.hooksFor(id, userID, q, settings)),
	)
	s.sessions.Save(session)
	log.Printf("session %s opened for quiz %s by %s", id, quizID, userID)
	return session.Snapshot(), nil
}

// Start begins the session's run.
func (s *QuizService) Start(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	return s.apply(sessionID, (*Session).Start)
}

// Answer records an answer for a question.
func (s *QuizService) Answer(_ context.Context, sessionID, questionID string, answer domain.Answer) (domain.SessionSnapshot, error) {
	return s.apply(sessionID, func(session *Session) error {
		return session.SetAnswer(questionID, answer)
	})
}

// Next moves forward, completing the session past the last question.
func (s *QuizService) Next(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	return s.apply(sessionID, (*Session).Next)
}

// Previous moves back one question.
func (s *QuizService) Previous(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	return s.apply(sessionID, (*Session).Previous)
}

// GoTo jumps to a 0-based question index.
func (s *QuizService) GoTo(_ context.Context, sessionID string, index int) (domain.SessionSnapshot, error) {
	return s.apply(sessionID, func(session *Session) error {
		return session.GoTo(index)
	})
}

// Complete finishes the session and scores it.
func (s *QuizService) Complete(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	return s.apply(sessionID, (*Session).Complete)
}

// Reset returns the session to its initial state. Completed sessions are only
// reset when their settings allow retries.
func (s *QuizService) Reset(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	return s.apply(sessionID, (*Session).Retry)
}

// Snapshot returns the current view of a session.
func (s *QuizService) Snapshot(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Subscribe returns a channel that receives a session's events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.Event, func(), error) {
	if _, ok := s.sessions.Get(sessionID); !ok {
		return nil, nil, domain.ErrSessionNotFound
	}

	ch := make(chan domain.Event, 16)
	s.mu.Lock()
	subs, ok := s.subscribers[sessionID]
	if !ok {
		subs = make(map[chan domain.Event]struct{})
		s.subscribers[sessionID] = subs
	}
	subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if subs, ok := s.subscribers[sessionID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(s.subscribers, sessionID)
			}
		}
	}
	return ch, cancel, nil
}

// Close stops the session's timer, drops it and closes its subscriptions.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)

	s.mu.Lock()
	for ch := range s.subscribers[sessionID] {
		close(ch)
	}
	delete(s.subscribers, sessionID)
	s.mu.Unlock()
	log.Printf("session %s closed", sessionID)
}

// Quiz returns a quiz in its public form along with the effective settings.
func (s *QuizService) Quiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	q, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	settings := s.settingsFor(q)
	public := domain.Quiz{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Questions:   make([]domain.Question, 0, len(q.Questions)),
		Settings:    &settings,
	}
	for _, question := range q.Questions {
		public.Questions = append(public.Questions, question.Public())
	}
	return public, nil
}

// Score grades an answer map against a quiz without a session.
func (s *QuizService) Score(ctx context.Context, quizID string, answers map[string]domain.Answer) (domain.Report, error) {
	q, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Report{}, err
	}
	result := quiz.CalculateScore(q.Questions, answers)
	return quiz.BuildReport(result, q.Questions, s.settingsFor(q)), nil
}

// Validate reports whether answer is acceptable for a question of a quiz.
func (s *QuizService) Validate(ctx context.Context, quizID, questionID string, answer domain.Answer) (bool, error) {
	q, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return false, err
	}
	for _, question := range q.Questions {
		if question.ID == questionID {
			return quiz.ValidateAnswer(question, answer), nil
		}
	}
	return false, domain.ErrQuestionNotFound
}

// Results lists stored results of a quiz, newest first.
func (s *QuizService) Results(ctx context.Context, quizID string, limit int) ([]domain.ResultRecord, error) {
	if s.results == nil {
		return []domain.ResultRecord{}, nil
	}
	return s.results.ListResults(ctx, quizID, limit)
}

// Leaderboard lists the best percentages of a quiz.
func (s *QuizService) Leaderboard(ctx context.Context, quizID string, limit int) ([]domain.LeaderboardEntry, error) {
	if s.board == nil {
		return []domain.LeaderboardEntry{}, nil
	}
	return s.board.Top(ctx, quizID, limit)
}

func (s *QuizService) apply(sessionID string, op func(*Session) error) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	if err := op(session); err != nil {
		return session.Snapshot(), err
	}
	return session.Snapshot(), nil
}

func (s *QuizService) settingsFor(q domain.Quiz) domain.Settings {
	settings := s.defaults
	if q.Settings != nil {
		settings = *q.Settings
	}
	if settings.PassPercentage <= 0 {
		settings.PassPercentage = quiz.DefaultPassPercentage
	}
	return settings
}

func (s *QuizService) hooksFor(sessionID, userID string, q domain.Quiz, settings domain.Settings) Hooks {
	return Hooks{
		OnQuestionChange: func(current, total int) {
			s.broadcast(sessionID, domain.Event{
				Type:     domain.EventQuestionChange,
				Current:  current,
				Total:    total,
				Progress: quiz.Progress(current, total),
			})
		},
		OnAnswerChange: func(questionID string, answer domain.Answer) {
			s.broadcast(sessionID, domain.Event{
				Type:       domain.EventAnswerChange,
				QuestionID: questionID,
				Answer:     &answer,
			})
		},
		OnTick: func(remaining int, level domain.TimerLevel) {
			s.broadcast(sessionID, domain.Event{
				Type:      domain.EventTimer,
				Remaining: &remaining,
				Clock:     quiz.FormatTime(remaining),
				Level:     level,
			})
		},
		OnComplete: func(result domain.QuizResult) {
			report := quiz.BuildReport(result, q.Questions, settings)
			s.broadcast(sessionID, domain.Event{Type: domain.EventCompleted, Report: &report})
			s.record(sessionID, userID, q.ID, result)
		},
	}
}

// record persists a completed result; failures are logged, not surfaced.
func (s *QuizService) record(sessionID, userID, quizID string, result domain.QuizResult) {
	log.Printf("session %s completed: %d/%d correct, %d%%", sessionID, result.CorrectAnswers, result.TotalQuestions, result.Percentage)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.results != nil {
		record := domain.ResultRecord{
			ID:          uuid.NewString(),
			QuizID:      quizID,
			SessionID:   sessionID,
			UserID:      userID,
			Result:      result,
			CompletedAt: s.now(),
		}
		if err := s.results.SaveResult(ctx, record); err != nil {
			log.Printf("save result for session %s: %v", sessionID, err)
		}
	}
	if s.board != nil {
		if err := s.board.Record(ctx, quizID, userID, result.Percentage); err != nil {
			log.Printf("record leaderboard for session %s: %v", sessionID, err)
		}
	}
}

func (s *QuizService) broadcast(sessionID string, event domain.Event) {
	event.SessionID = sessionID
	event.At = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers[sessionID] {
		select {
		case ch <- event:
		default:
			// drop the oldest update so a slow client never blocks the session
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
