package redis

import (
	"context"
	"sync"
	"time"

	"quiz-engine/internal/app"

	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions own timers and observers, so they stay in a local map.
//   - Redis holds a liveness marker per session (quiz and user ids) so other
//     instances and operators can see which sessions are live.
//   - Session state is not written back; quiz state does not survive a restart.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Save(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	// best-effort liveness marker
	_ = s.client.HSet(context.Background(), s.key(session.ID()),
		"quizId", session.QuizID(),
		"userId", session.UserID(),
	).Err()
	if s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(session.ID()), s.ttl).Err()
	}
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok && s.ttl > 0 {
		// sliding expiry while the session is in use
		_ = s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err()
	}
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
