package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"topic-quiz-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Controllers stay in a local map since their fetches and subscribers are in-process.
// Redis holds a liveness marker per session, refreshed on activity, so operators can see how many are open.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Controller
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Controller),
	}
}

func (s *SessionStore) GetOrCreate(sessionID string, create func(id string) *app.Controller) *app.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctrl, ok := s.sessions[sessionID]; ok {
		s.touch(sessionID)
		return ctrl
	}
	ctrl := create(sessionID)
	s.sessions[sessionID] = ctrl
	// best-effort liveness marker
	s.touch(sessionID)
	return ctrl
}

func (s *SessionStore) Get(sessionID string) (*app.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctrl, ok := s.sessions[sessionID]
	return ctrl, ok
}

func (s *SessionStore) DeleteIfIdle(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	if ctrl.CloseIfIdle() {
		delete(s.sessions, sessionID)
		_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
	}
}

// Touch refreshes the liveness marker of a session this instance holds.
func (s *SessionStore) Touch(sessionID string) {
	s.mu.RLock()
	_, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		s.touch(sessionID)
	}
}

// Live counts sessions with a liveness marker in Redis, across every instance sharing it.
func (s *SessionStore) Live(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.key("*"), 100).Result()
		if err != nil {
			return 0, err
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

func (s *SessionStore) touch(sessionID string) {
	_ = s.client.Set(context.Background(), s.key(sessionID), "1", s.ttl).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
