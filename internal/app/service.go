package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/logger"
)

// SessionRepository abstracts where live controllers are kept (in-memory, Redis-aware, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string, create func(id string) *Controller) *Controller
	Get(sessionID string) (*Controller, bool)
	DeleteIfIdle(sessionID string)
	// Touch records activity on a live session.
	Touch(sessionID string)
}

// Service hands out one controller per session.
type Service struct {
	sessions SessionRepository
	source   QuestionSource
	opts     ControllerOptions
	log      *logger.Logger
}

func NewService(store SessionRepository, source QuestionSource, opts ControllerOptions) *Service {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Service{sessions: store, source: source, opts: opts, log: opts.Logger}
}

// NewController is exported for infrastructure layers and tests that need a controller
// wired like the service's own.
func (s *Service) NewController(id string) *Controller {
	return NewController(id, s.source, s.opts)
}

// Open returns the controller for sessionID, creating it when needed.
// An empty id starts a fresh session; a non-empty id must be a UUID.
func (s *Service) Open(_ context.Context, sessionID string) (*Controller, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if _, err := uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("%w: malformed id", domain.ErrSessionNotFound)
	}
	created := false
	ctrl := s.sessions.GetOrCreate(sessionID, func(id string) *Controller {
		created = true
		return s.NewController(id)
	})
	if created {
		s.log.Debug("session opened", "session_id", sessionID)
	}
	return ctrl, nil
}

const attachAttempts = 3

// Attach opens the session and subscribes to it in one step. A controller closed by a concurrent
// Release between lookup and subscription is skipped and the session is opened again.
func (s *Service) Attach(ctx context.Context, sessionID string) (*Controller, <-chan Snapshot, func(), error) {
	for i := 0; i < attachAttempts; i++ {
		ctrl, err := s.Open(ctx, sessionID)
		if err != nil {
			return nil, nil, nil, err
		}
		updates, cancel, ok := ctrl.subscribe()
		if ok {
			return ctrl, updates, cancel, nil
		}
		// Keep the id so the caller lands in the reopened session.
		sessionID = ctrl.ID()
		s.log.Debug("session closed while attaching, reopening", "session_id", sessionID)
	}
	return nil, nil, nil, fmt.Errorf("%w: closed while attaching", domain.ErrSessionNotFound)
}

// Get returns an existing controller.
func (s *Service) Get(_ context.Context, sessionID string) (*Controller, error) {
	ctrl, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return ctrl, nil
}

// Touch marks the session as active, keeping shared liveness markers fresh.
func (s *Service) Touch(_ context.Context, sessionID string) {
	s.sessions.Touch(sessionID)
}

// Release drops the session once nobody observes it anymore. Its state is discarded.
func (s *Service) Release(_ context.Context, sessionID string) {
	s.sessions.DeleteIfIdle(sessionID)
}
