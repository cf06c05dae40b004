package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-engine/internal/domain"
)

// ResultStore keeps completed results in process memory.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string][]domain.ResultRecord
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string][]domain.ResultRecord)}
}

func (s *ResultStore) SaveResult(_ context.Context, record domain.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[record.QuizID] = append(s.results[record.QuizID], record)
	return nil
}

// ListResults returns the newest results first; limit <= 0 returns all.
func (s *ResultStore) ListResults(_ context.Context, quizID string, limit int) ([]domain.ResultRecord, error) {
	s.mu.RLock()
	stored := s.results[quizID]
	out := make([]domain.ResultRecord, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	s.mu.RUnlock()

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Leaderboard keeps best percentages in process memory.
type Leaderboard struct {
	mu   sync.RWMutex
	best map[string]map[string]int
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{best: make(map[string]map[string]int)}
}

func (l *Leaderboard) Record(_ context.Context, quizID, userID string, percentage int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	scores, ok := l.best[quizID]
	if !ok {
		scores = make(map[string]int)
		l.best[quizID] = scores
	}
	if prev, seen := scores[userID]; !seen || percentage > prev {
		scores[userID] = percentage
	}
	return nil
}

// Top orders by percentage desc, then user id.
func (l *Leaderboard) Top(_ context.Context, quizID string, limit int) ([]domain.LeaderboardEntry, error) {
	l.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(l.best[quizID]))
	for userID, percentage := range l.best[quizID] {
		entries = append(entries, domain.LeaderboardEntry{UserID: userID, Percentage: percentage})
	}
	l.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Percentage != entries[j].Percentage {
			return entries[i].Percentage > entries[j].Percentage
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
