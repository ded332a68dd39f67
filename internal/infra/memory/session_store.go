package memory

import (
	"sync"

	"topic-quiz-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Controller
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Controller),
	}
}

func (s *SessionStore) GetOrCreate(sessionID string, create func(id string) *app.Controller) *app.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctrl, ok := s.sessions[sessionID]; ok {
		return ctrl
	}
	ctrl := create(sessionID)
	s.sessions[sessionID] = ctrl
	return ctrl
}

func (s *SessionStore) Get(sessionID string) (*app.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctrl, ok := s.sessions[sessionID]
	return ctrl, ok
}

// DeleteIfIdle closes and forgets the session when it has no subscribers left.
func (s *SessionStore) DeleteIfIdle(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	if ctrl.CloseIfIdle() {
		delete(s.sessions, sessionID)
	}
}

// Touch is a no-op: in-process sessions live until released.
func (s *SessionStore) Touch(string) {}

// Len is the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
