package app

import (
	"sort"
	"sync"
	"time"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/quiz"
)

// Hooks are the observer callbacks of a session. Any of them may be nil. They
// run after the session lock is released, in the order the changes happened.
type Hooks struct {
	OnComplete       func(result domain.QuizResult)
	OnAnswerChange   func(questionID string, answer domain.Answer)
	OnQuestionChange func(current, total int) // current is 1-based
	OnTick           func(remaining int, level domain.TimerLevel)
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithClock overrides time.Now, for deterministic timestamps in tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithHooks registers observer callbacks.
func WithHooks(hooks Hooks) SessionOption {
	return func(s *Session) { s.hooks = hooks }
}

// WithTickInterval sets how often the countdown ticks. Zero leaves the
// countdown to be driven manually through Session.Tick.
func WithTickInterval(d time.Duration) SessionOption {
	return func(s *Session) { s.tickEvery = d }
}

// Session is one taker's run through a quiz: NotStarted -> InProgress ->
// Completed, with Reset returning to NotStarted from any state.
type Session struct {
	id        string
	userID    string
	quiz      domain.Quiz
	settings  domain.Settings
	now       func() time.Time
	hooks     Hooks
	tickEvery time.Duration

	mu        sync.Mutex
	questions []domain.Question // presentation order, fixed for the current run
	state     domain.SessionState
	result    *domain.QuizResult
	countdown *Countdown
	run       int
}

func NewSession(id, userID string, q domain.Quiz, settings domain.Settings, opts ...SessionOption) *Session {
	s := &Session{
		id:        id,
		userID:    userID,
		quiz:      q,
		settings:  settings,
		now:       time.Now,
		tickEvery: time.Second,
		state:     domain.SessionState{Answers: make(map[string]domain.Answer)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string     { return s.id }
func (s *Session) QuizID() string { return s.quiz.ID }
func (s *Session) UserID() string { return s.userID }

func (s *Session) Settings() domain.Settings { return s.settings }

// State returns the current lifecycle position.
func (s *Session) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.State()
}

// Result returns the scored result once the session is completed.
func (s *Session) Result() (domain.QuizResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.QuizResult{}, false
	}
	return *s.result, true
}

// Questions returns the presentation order of the current run, or the quiz
// order before the session starts.
func (s *Session) Questions() []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Question, len(s.currentQuestionsLocked()))
	copy(out, s.currentQuestionsLocked())
	return out
}

// Start materializes the question order and starts the countdown if the
// settings carry a time limit.
func (s *Session) Start() error {
	return s.transition(func(fx *effects) error {
		switch s.state.State() {
		case domain.StateCompleted:
			return domain.ErrSessionCompleted
		case domain.StateInProgress:
			return domain.ErrAlreadyStarted
		}

		s.questions = quiz.Arrange(s.quiz.Questions, s.settings)
		now := s.now()
		s.state.IsStarted = true
		s.state.StartTime = &now
		s.state.CurrentQuestionIndex = 0
		s.run++

		if s.settings.TimeLimit > 0 {
			s.countdown = NewCountdown(s.settings.TimeLimit)
			if s.tickEvery > 0 {
				run := s.run
				s.countdown.Start(s.tickEvery,
					func(remaining int) { s.onTick(run, remaining) },
					func() { s.timeUp(run) },
				)
			}
		}
		s.questionChangedLocked(fx)
		return nil
	})
}

// SetAnswer upserts the answer for a question of this quiz. The answer is not
// validated; once every question holds a valid answer the session completes.
func (s *Session) SetAnswer(questionID string, answer domain.Answer) error {
	return s.transition(func(fx *effects) error {
		if err := s.requireInProgressLocked(); err != nil {
			return err
		}
		if !s.hasQuestionLocked(questionID) {
			return domain.ErrQuestionNotFound
		}

		s.state.Answers[questionID] = answer
		if hook := s.hooks.OnAnswerChange; hook != nil {
			fx.add(func() { hook(questionID, answer) })
		}

		if s.allAnsweredLocked() {
			s.completeLocked(fx, false)
		}
		return nil
	})
}

// Next advances one question; on the last question it completes the session.
func (s *Session) Next() error {
	return s.transition(func(fx *effects) error {
		if err := s.requireInProgressLocked(); err != nil {
			return err
		}
		if s.state.CurrentQuestionIndex < len(s.questions)-1 {
			s.state.CurrentQuestionIndex++
			s.questionChangedLocked(fx)
			return nil
		}
		s.completeLocked(fx, false)
		return nil
	})
}

// Previous moves back one question, staying at the first.
func (s *Session) Previous() error {
	return s.transition(func(fx *effects) error {
		if err := s.requireInProgressLocked(); err != nil {
			return err
		}
		if s.state.CurrentQuestionIndex > 0 {
			s.state.CurrentQuestionIndex--
			s.questionChangedLocked(fx)
		}
		return nil
	})
}

// GoTo jumps to a 0-based question index. Out-of-range indices are rejected
// with ErrIndexOutOfRange and leave the session untouched.
func (s *Session) GoTo(index int) error {
	return s.transition(func(fx *effects) error {
		if err := s.requireInProgressLocked(); err != nil {
			return err
		}
		if index < 0 || index >= len(s.questions) {
			return domain.ErrIndexOutOfRange
		}
		if index != s.state.CurrentQuestionIndex {
			s.state.CurrentQuestionIndex = index
			s.questionChangedLocked(fx)
		}
		return nil
	})
}

// Complete scores the session regardless of how many questions are answered.
func (s *Session) Complete() error {
	return s.transition(func(fx *effects) error {
		if err := s.requireInProgressLocked(); err != nil {
			return err
		}
		s.completeLocked(fx, false)
		return nil
	})
}

// Tick advances the countdown by one second when no background driver runs.
func (s *Session) Tick() {
	s.mu.Lock()
	countdown, run := s.countdown, s.run
	s.mu.Unlock()
	if countdown == nil {
		return
	}
	remaining, expired := countdown.Tick()
	s.onTick(run, remaining)
	if expired {
		s.timeUp(run)
	}
}

// Remaining returns the countdown's seconds left, if the session has one.
func (s *Session) Remaining() (int, bool) {
	s.mu.Lock()
	countdown := s.countdown
	s.mu.Unlock()
	if countdown == nil {
		return 0, false
	}
	return countdown.Remaining(), true
}

// Reset discards answers and timestamps and returns to NotStarted.
func (s *Session) Reset() error {
	return s.transition(func(fx *effects) error {
		s.resetLocked(fx)
		return nil
	})
}

// Retry is Reset as offered to takers: a completed session may only be
// reset when the settings allow retries.
func (s *Session) Retry() error {
	return s.transition(func(fx *effects) error {
		if s.state.IsCompleted && !s.settings.AllowRetry {
			return domain.ErrRetryNotAllowed
		}
		s.resetLocked(fx)
		return nil
	})
}

func (s *Session) resetLocked(fx *effects) {
	moved := s.state.CurrentQuestionIndex != 0
	s.stopCountdownLocked(fx, false)
	s.countdown = nil
	s.state = domain.SessionState{Answers: make(map[string]domain.Answer)}
	s.result = nil
	s.questions = nil
	s.run++
	if moved {
		s.questionChangedLocked(fx)
	}
}

// Close stops the countdown and waits for its goroutine to exit.
func (s *Session) Close() {
	_ = s.transition(func(fx *effects) error {
		s.run++
		s.stopCountdownLocked(fx, false)
		return nil
	})
}

// Snapshot copies the session for clients; the current question is sent in
// its public form.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions := s.currentQuestionsLocked()
	snap := domain.SessionSnapshot{
		ID:                   s.id,
		QuizID:               s.quiz.ID,
		UserID:               s.userID,
		Title:                s.quiz.Title,
		State:                s.state.State(),
		CurrentQuestionIndex: s.state.CurrentQuestionIndex,
		TotalQuestions:       len(questions),
		Answers:              make(map[string]domain.Answer, len(s.state.Answers)),
		Answered:             make([]string, 0, len(s.state.Answers)),
		Settings:             s.settings,
		StartTime:            s.state.StartTime,
		EndTime:              s.state.EndTime,
	}
	for id, answer := range s.state.Answers {
		snap.Answers[id] = answer
		snap.Answered = append(snap.Answered, id)
	}
	sort.Strings(snap.Answered)

	if s.state.IsStarted && !s.state.IsCompleted && s.state.CurrentQuestionIndex < len(questions) {
		current := questions[s.state.CurrentQuestionIndex]
		public := current.Public()
		snap.Question = &public
		snap.CanProceed = quiz.ValidateAnswer(current, s.answerLocked(current.ID))
	}
	if s.countdown != nil {
		remaining := s.countdown.Remaining()
		snap.Remaining = &remaining
	}
	if s.result != nil {
		report := quiz.BuildReport(*s.result, questions, s.settings)
		snap.Report = &report
	}
	return snap
}

// effects collects callbacks and teardown that must run outside the lock.
type effects struct {
	calls []func()
	wait  *Countdown
}

func (fx *effects) add(call func()) {
	fx.calls = append(fx.calls, call)
}

func (fx *effects) flush() {
	if fx.wait != nil {
		fx.wait.Wait()
	}
	for _, call := range fx.calls {
		call()
	}
}

func (s *Session) transition(fn func(fx *effects) error) error {
	fx := &effects{}
	s.mu.Lock()
	err := fn(fx)
	s.mu.Unlock()
	fx.flush()
	return err
}

func (s *Session) requireInProgressLocked() error {
	switch s.state.State() {
	case domain.StateNotStarted:
		return domain.ErrNotStarted
	case domain.StateCompleted:
		return domain.ErrSessionCompleted
	}
	return nil
}

func (s *Session) completeLocked(fx *effects, fromTimer bool) {
	end := s.now()
	s.state.IsCompleted = true
	s.state.EndTime = &end

	result := quiz.CalculateScore(s.questions, s.state.Answers)
	if s.state.StartTime != nil {
		spent := int(end.Sub(*s.state.StartTime) / time.Second)
		result.TimeSpent = &spent
	}
	s.result = &result
	s.stopCountdownLocked(fx, fromTimer)

	if hook := s.hooks.OnComplete; hook != nil {
		fx.add(func() { hook(result) })
	}
}

// stopCountdownLocked cancels the driver. Waiting for it to exit is deferred
// until the lock is released and skipped when called from the driver itself.
func (s *Session) stopCountdownLocked(fx *effects, fromTimer bool) {
	if s.countdown == nil {
		return
	}
	s.countdown.Stop()
	if !fromTimer {
		fx.wait = s.countdown
	}
}

func (s *Session) onTick(run, remaining int) {
	s.mu.Lock()
	live := run == s.run && s.state.State() == domain.StateInProgress
	limit := s.settings.TimeLimit
	s.mu.Unlock()
	if !live {
		return
	}
	if hook := s.hooks.OnTick; hook != nil {
		hook(remaining, timerLevel(remaining, limit))
	}
}

func (s *Session) timeUp(run int) {
	_ = s.transition(func(fx *effects) error {
		if run != s.run || s.state.State() != domain.StateInProgress {
			return nil
		}
		s.completeLocked(fx, true)
		return nil
	})
}

func (s *Session) questionChangedLocked(fx *effects) {
	hook := s.hooks.OnQuestionChange
	if hook == nil {
		return
	}
	current, total := s.state.CurrentQuestionIndex+1, len(s.currentQuestionsLocked())
	fx.add(func() { hook(current, total) })
}

func (s *Session) currentQuestionsLocked() []domain.Question {
	if s.questions != nil {
		return s.questions
	}
	return s.quiz.Questions
}

func (s *Session) hasQuestionLocked(questionID string) bool {
	for _, q := range s.questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}

func (s *Session) answerLocked(questionID string) domain.Answer {
	if answer, ok := s.state.Answers[questionID]; ok {
		return answer
	}
	return domain.Single("")
}

func (s *Session) allAnsweredLocked() bool {
	if len(s.state.Answers) != len(s.questions) {
		return false
	}
	for _, q := range s.questions {
		if !quiz.ValidateAnswer(q, s.answerLocked(q.ID)) {
			return false
		}
	}
	return true
}
