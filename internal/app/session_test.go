package app_test

import (
	"errors"
	"testing"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

type recorder struct {
	completed []domain.QuizResult
	answers   []string
	positions [][2]int
	ticks     []int
}

func (r *recorder) hooks() app.Hooks {
	return app.Hooks{
		OnComplete:       func(result domain.QuizResult) { r.completed = append(r.completed, result) },
		OnAnswerChange:   func(questionID string, _ domain.Answer) { r.answers = append(r.answers, questionID) },
		OnQuestionChange: func(current, total int) { r.positions = append(r.positions, [2]int{current, total}) },
		OnTick:           func(remaining int, _ domain.TimerLevel) { r.ticks = append(r.ticks, remaining) },
	}
}

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func ptr[T any](v T) *T { return &v }

func newTestSession(settings domain.Settings, rec *recorder, clock *fakeClock) *app.Session {
	return app.NewSession("s1", "u1", sampleQuiz(), settings,
		app.WithClock(clock.now),
		app.WithHooks(rec.hooks()),
		app.WithTickInterval(0),
	)
}

func TestSessionLifecycle(t *testing.T) {
	rec := &recorder{}
	clock := newFakeClock()
	session := newTestSession(domain.Settings{}, rec, clock)

	if session.State() != domain.StateNotStarted {
		t.Fatalf("expected not started, got %s", session.State())
	}
	if err := session.SetAnswer("q1", domain.Single("4")); !errors.Is(err, domain.ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}

	if err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.Start(); !errors.Is(err, domain.ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
	if len(rec.positions) != 1 || rec.positions[0] != [2]int{1, 3} {
		t.Fatalf("expected initial question change 1/3, got %v", rec.positions)
	}

	if err := session.SetAnswer("q1", domain.Single("4")); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := session.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := session.Previous(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if err := session.Previous(); err != nil {
		t.Fatalf("previous at first question: %v", err)
	}
	if snap := session.Snapshot(); snap.CurrentQuestionIndex != 0 {
		t.Fatalf("expected index clamped at 0, got %d", snap.CurrentQuestionIndex)
	}

	clock.advance(42 * time.Second)
	if err := session.Complete(); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(rec.completed) != 1 {
		t.Fatalf("expected one completion, got %d", len(rec.completed))
	}
	result := rec.completed[0]
	if result.CorrectAnswers != 1 || result.TotalPoints != 4 || result.EarnedPoints != 2 || result.Percentage != 50 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.TimeSpent == nil || *result.TimeSpent != 42 {
		t.Fatalf("expected 42s spent, got %v", result.TimeSpent)
	}

	if err := session.Complete(); !errors.Is(err, domain.ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
	if err := session.SetAnswer("q2", domain.Single("x")); !errors.Is(err, domain.ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
	if len(rec.completed) != 1 {
		t.Fatalf("completion must fire once, got %d", len(rec.completed))
	}

	snap := session.Snapshot()
	if snap.State != domain.StateCompleted || snap.Report == nil || snap.Report.Grade != "F" || snap.Report.Passed {
		t.Fatalf("unexpected completed snapshot %+v", snap)
	}
}

func TestSessionNextOnLastQuestionCompletes(t *testing.T) {
	rec := &recorder{}
	session := newTestSession(domain.Settings{}, rec, newFakeClock())
	_ = session.Start()

	for i := 0; i < 2; i++ {
		if err := session.Next(); err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
	}
	if session.State() != domain.StateInProgress {
		t.Fatalf("expected in progress on last question")
	}
	if err := session.Next(); err != nil {
		t.Fatalf("next on last: %v", err)
	}
	if session.State() != domain.StateCompleted || len(rec.completed) != 1 {
		t.Fatalf("expected completion after last question")
	}
	if rec.completed[0].CorrectAnswers != 0 || len(rec.completed[0].Answers) != 3 {
		t.Fatalf("unanswered questions must score zero, got %+v", rec.completed[0])
	}
}

func TestSessionGoToRejectsOutOfRange(t *testing.T) {
	rec := &recorder{}
	session := newTestSession(domain.Settings{}, rec, newFakeClock())
	_ = session.Start()

	if err := session.GoTo(2); err != nil {
		t.Fatalf("goto: %v", err)
	}
	for _, index := range []int{-1, 3, 100} {
		if err := session.GoTo(index); !errors.Is(err, domain.ErrIndexOutOfRange) {
			t.Fatalf("GoTo(%d): expected ErrIndexOutOfRange, got %v", index, err)
		}
	}
	if snap := session.Snapshot(); snap.CurrentQuestionIndex != 2 {
		t.Fatalf("rejected goto must not move, got %d", snap.CurrentQuestionIndex)
	}
	if err := session.GoTo(2); err != nil {
		t.Fatalf("goto same index: %v", err)
	}
	if len(rec.positions) != 2 || rec.positions[1] != [2]int{3, 3} {
		t.Fatalf("expected question changes [1/3 3/3], got %v", rec.positions)
	}
}

func TestSessionAutoCompletesWhenAllAnswersValid(t *testing.T) {
	rec := &recorder{}
	session := newTestSession(domain.Settings{}, rec, newFakeClock())
	_ = session.Start()

	_ = session.SetAnswer("q1", domain.Single("4"))
	_ = session.SetAnswer("q2", domain.Multi("2"))
	// invalid answer: all answered but not all valid
	_ = session.SetAnswer("q3", domain.Single(""))
	if session.State() != domain.StateInProgress {
		t.Fatalf("must not auto-complete with an invalid answer")
	}

	_ = session.SetAnswer("q3", domain.Single("Paris"))
	if session.State() != domain.StateCompleted || len(rec.completed) != 1 {
		t.Fatalf("expected auto-completion")
	}
	if len(rec.answers) != 4 {
		t.Fatalf("expected 4 answer changes, got %v", rec.answers)
	}
}

func TestSessionRejectsUnknownQuestion(t *testing.T) {
	session := newTestSession(domain.Settings{}, &recorder{}, newFakeClock())
	_ = session.Start()
	if err := session.SetAnswer("nope", domain.Single("1")); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestSessionTimeUpScoresExistingAnswers(t *testing.T) {
	rec := &recorder{}
	session := newTestSession(domain.Settings{TimeLimit: 3}, rec, newFakeClock())
	_ = session.Start()
	_ = session.SetAnswer("q1", domain.Single("4"))

	for i := 0; i < 5; i++ {
		session.Tick()
	}
	if session.State() != domain.StateCompleted {
		t.Fatalf("expected completion on time up")
	}
	if len(rec.completed) != 1 || rec.completed[0].EarnedPoints != 2 {
		t.Fatalf("expected one completion with 2 points, got %+v", rec.completed)
	}
	if len(rec.ticks) != 3 || rec.ticks[2] != 0 {
		t.Fatalf("expected ticks [2 1 0], got %v", rec.ticks)
	}
	if remaining, ok := session.Remaining(); !ok || remaining != 0 {
		t.Fatalf("expected 0 remaining, got %d", remaining)
	}
}

func TestSessionBackgroundTimerCompletes(t *testing.T) {
	done := make(chan domain.QuizResult, 1)
	session := app.NewSession("s1", "u1", sampleQuiz(), domain.Settings{TimeLimit: 2},
		app.WithTickInterval(time.Millisecond),
		app.WithHooks(app.Hooks{OnComplete: func(r domain.QuizResult) { done <- r }}),
	)
	if err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case result := <-done:
		if result.CorrectAnswers != 0 {
			t.Fatalf("expected empty score, got %+v", result)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timer did not complete the session")
	}
	session.Close()
}

func TestSessionResetReturnsToInitialState(t *testing.T) {
	rec := &recorder{}
	session := newTestSession(domain.Settings{TimeLimit: 60}, rec, newFakeClock())
	_ = session.Start()
	_ = session.SetAnswer("q1", domain.Single("4"))
	_ = session.GoTo(1)

	if err := session.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	snap := session.Snapshot()
	if snap.State != domain.StateNotStarted || snap.CurrentQuestionIndex != 0 || len(snap.Answers) != 0 {
		t.Fatalf("expected initial state, got %+v", snap)
	}
	if snap.StartTime != nil || snap.EndTime != nil || snap.Report != nil {
		t.Fatalf("expected timestamps and report cleared")
	}

	// ticks from the previous run's countdown are ignored
	session.Tick()
	if len(rec.completed) != 0 {
		t.Fatalf("reset session must not complete")
	}

	if err := session.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if session.State() != domain.StateInProgress {
		t.Fatalf("expected in progress after restart")
	}
}

func TestSessionShuffleFixedForRun(t *testing.T) {
	session := app.NewSession("s1", "u1", sampleQuiz(), domain.Settings{ShuffleQuestions: true, ShuffleOptions: true}, app.WithTickInterval(0))
	_ = session.Start()

	first := session.Questions()
	for i := 0; i < 5; i++ {
		_ = session.Next()
		_ = session.Previous()
	}
	again := session.Questions()
	for i := range first {
		if first[i].ID != again[i].ID {
			t.Fatalf("question order changed mid-session")
		}
	}
}

func TestSnapshotHidesCorrectAnswer(t *testing.T) {
	session := newTestSession(domain.Settings{}, &recorder{}, newFakeClock())
	_ = session.Start()

	snap := session.Snapshot()
	if snap.Question == nil || snap.Question.ID != "q1" {
		t.Fatalf("expected current question q1, got %+v", snap.Question)
	}
	if snap.Question.CorrectAnswer != nil || snap.Question.Explanation != "" {
		t.Fatalf("snapshot leaked the answer key")
	}
	if snap.CanProceed {
		t.Fatalf("cannot proceed without an answer")
	}
	_ = session.SetAnswer("q1", domain.Single("3"))
	if !session.Snapshot().CanProceed {
		t.Fatalf("valid answer should allow proceeding")
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Basics",
		Questions: []domain.Question{
			{
				ID:   "q1",
				Text: "What is 2 + 2?",
				Type: domain.SingleChoice,
				Options: []domain.Option{
					{ID: "o1", Text: "3", Value: "3"},
					{ID: "o2", Text: "4", Value: "4"},
				},
				CorrectAnswer: ptr(domain.Single("4")),
				Explanation:   "Basic arithmetic.",
				Points:        2,
			},
			{
				ID:   "q2",
				Text: "Select the primes",
				Type: domain.MultipleChoice,
				Options: []domain.Option{
					{ID: "o1", Text: "2", Value: "2"},
					{ID: "o2", Text: "3", Value: "3"},
					{ID: "o3", Text: "4", Value: "4"},
				},
				CorrectAnswer: ptr(domain.Multi("2", "3")),
			},
			{
				ID:            "q3",
				Text:          "Capital of France?",
				Type:          domain.Text,
				CorrectAnswer: ptr(domain.Single("Paris")),
				Required:      true,
			},
		},
	}
}

func TestSessionRetryNeedsAllowRetryOnceCompleted(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(domain.Settings{}, &recorder{}, clock)

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Retry(); err != nil {
		t.Fatalf("retry in progress should be allowed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := s.Complete(); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := s.Retry(); !errors.Is(err, domain.ErrRetryNotAllowed) {
		t.Fatalf("expected ErrRetryNotAllowed, got %v", err)
	}
	if s.State() != domain.StateCompleted {
		t.Fatalf("refused retry must leave the session completed, got %s", s.State())
	}
	if err := s.Reset(); err != nil || s.State() != domain.StateNotStarted {
		t.Fatalf("reset is always available, got %v %s", err, s.State())
	}

	allowed := newTestSession(domain.Settings{AllowRetry: true}, &recorder{}, clock)
	_ = allowed.Start()
	_ = allowed.Complete()
	if err := allowed.Retry(); err != nil || allowed.State() != domain.StateNotStarted {
		t.Fatalf("expected retry to reset, got %v %s", err, allowed.State())
	}
}

func TestSnapshotExplanationsFollowSettings(t *testing.T) {
	clock := newFakeClock()
	for _, show := range []bool{false, true} {
		s := newTestSession(domain.Settings{ShowExplanations: show}, &recorder{}, clock)
		_ = s.Start()
		_ = s.Complete()
		report := s.Snapshot().Report
		if report == nil {
			t.Fatalf("expected report after completion")
		}
		if got := report.Explanations["q1"] != ""; got != show {
			t.Fatalf("show=%v: explanations %v", show, report.Explanations)
		}
	}
}
