package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/logger"
	"topic-quiz-service/internal/questionset"
	"topic-quiz-service/internal/quiz"
)

// QuestionSource produces a complete question set for a topic or fails.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, topic string) ([]domain.Question, error)
}

// ControllerOptions tunes a controller. Zero values fall back to defaults.
type ControllerOptions struct {
	QuestionCount int
	FetchTimeout  time.Duration
	Logger        *logger.Logger
}

const defaultFetchTimeout = 45 * time.Second

// Controller is the screen state machine for one session: home, loading, quiz, results.
// All transitions happen under mu; the only asynchronous step is the question fetch.
type Controller struct {
	id      string
	source  QuestionSource
	count   int
	timeout time.Duration
	log     *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	fetch  sync.WaitGroup

	mu          sync.Mutex
	closed      bool
	version     uint64
	screen      domain.Screen
	lastError   string
	topic       string
	questions   []domain.Question
	engine      *quiz.Engine
	results     []domain.QuizResult
	summary     *quiz.Summary
	attempt     uint64
	cancelFetch context.CancelFunc
	subscribers map[chan Snapshot]struct{}
}

// NewController starts a session on the home screen.
func NewController(id string, source QuestionSource, opts ControllerOptions) *Controller {
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = domain.DefaultQuestionCount
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		id:          id,
		source:      source,
		count:       opts.QuestionCount,
		timeout:     opts.FetchTimeout,
		log:         opts.Logger.With("session_id", id),
		ctx:         ctx,
		cancel:      cancel,
		screen:      domain.ScreenHome,
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// StartQuiz moves from home to loading and begins generating questions for topic.
// While a fetch is in flight further starts are rejected with domain.ErrFetchInFlight.
func (c *Controller) StartQuiz(topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return domain.ErrEmptyTopic
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrSessionNotFound
	}
	switch {
	case c.cancelFetch != nil:
		return domain.ErrFetchInFlight
	case c.screen != domain.ScreenHome:
		return fmt.Errorf("%w: start from %s", domain.ErrInvalidTransition, c.screen)
	}

	c.attempt++
	attempt := c.attempt
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	c.cancelFetch = cancel
	c.screen = domain.ScreenLoading
	c.lastError = ""
	c.topic = topic
	c.clearAttemptLocked()
	c.broadcastLocked()

	c.log.Info("generating questions", "topic", topic, "attempt", attempt)
	c.fetch.Add(1)
	go c.runFetch(ctx, attempt, topic)
	return nil
}

func (c *Controller) runFetch(ctx context.Context, attempt uint64, topic string) {
	defer c.fetch.Done()
	started := time.Now()
	questions, err := c.source.FetchQuestions(ctx, topic)
	if err == nil {
		err = questionset.Validate(questions, c.count)
	}
	c.completeFetch(attempt, questions, err, time.Since(started))
}

func (c *Controller) completeFetch(attempt uint64, questions []domain.Question, err error, took time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if attempt != c.attempt || c.screen != domain.ScreenLoading || c.closed {
		c.log.Debug("discarding superseded fetch", "attempt", attempt, "current", c.attempt)
		return
	}
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}

	var engine *quiz.Engine
	if err == nil {
		engine, err = quiz.NewEngine(questions)
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		c.log.Error("question generation failed", "topic", c.topic, "attempt", attempt, "took", took, "error", err)
		c.screen = domain.ScreenHome
		c.lastError = domain.GenerationFailureMessage
		c.clearAttemptLocked()
		c.broadcastLocked()
		return
	}

	c.log.Info("questions ready", "topic", c.topic, "attempt", attempt, "count", len(questions), "took", took)
	c.questions = append([]domain.Question(nil), questions...)
	c.engine = engine
	c.lastError = ""
	c.screen = domain.ScreenQuiz
	c.broadcastLocked()
}

// SelectOption records a tentative answer for the current question.
func (c *Controller) SelectOption(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.screen != domain.ScreenQuiz {
		return fmt.Errorf("%w: select on %s", domain.ErrInvalidTransition, c.screen)
	}
	if err := c.engine.SelectOption(index); err != nil {
		return err
	}
	c.broadcastLocked()
	return nil
}

// Next confirms the tentative answer; after the last question the results screen is shown.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.screen != domain.ScreenQuiz {
		return fmt.Errorf("%w: next on %s", domain.ErrInvalidTransition, c.screen)
	}
	finished, err := c.engine.ConfirmAndAdvance()
	if err != nil {
		return err
	}
	if !finished {
		c.broadcastLocked()
		return nil
	}

	results := c.engine.Results()
	summary, err := quiz.Summarize(c.questions, results)
	if err != nil {
		// Results come straight from the engine, so this is a broken invariant.
		c.log.Error("scoring failed", "error", err)
		c.screen = domain.ScreenHome
		c.lastError = domain.GenerationFailureMessage
		c.clearAttemptLocked()
		c.broadcastLocked()
		return err
	}
	c.results = results
	c.summary = &summary
	c.engine = nil
	c.screen = domain.ScreenResults
	c.log.Info("quiz finished", "topic", c.topic, "score", summary.Score, "total", summary.Total)
	c.broadcastLocked()
	return nil
}

// Cancel abandons the quiz in progress and returns home without an error.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.screen != domain.ScreenQuiz {
		return fmt.Errorf("%w: cancel on %s", domain.ErrInvalidTransition, c.screen)
	}
	c.engine.Cancel()
	c.goHomeLocked()
	return nil
}

// Restart returns home from any screen, dropping the attempt. A pending fetch is superseded.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.goHomeLocked()
}

func (c *Controller) goHomeLocked() {
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
		// Bumping the attempt makes the pending completion a no-op.
		c.attempt++
	}
	c.screen = domain.ScreenHome
	c.lastError = ""
	c.topic = ""
	c.clearAttemptLocked()
	c.broadcastLocked()
}

func (c *Controller) clearAttemptLocked() {
	c.questions = nil
	c.engine = nil
	c.results = nil
	c.summary = nil
}

// Loading reports whether a fetch is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelFetch != nil
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Questions returns the active question set, nil outside quiz and results.
func (c *Controller) Questions() []domain.Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.questions == nil {
		return nil
	}
	return append([]domain.Question(nil), c.questions...)
}

// Results returns the finished result list, nil outside results.
func (c *Controller) Results() []domain.QuizResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.results == nil {
		return nil
	}
	return append([]domain.QuizResult(nil), c.results...)
}

// Subscribe returns a channel receiving a snapshot after every transition, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
// On a closed controller the channel is already closed.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch, cancel, _ := c.subscribe()
	return ch, cancel
}

func (c *Controller) subscribe() (<-chan Snapshot, func(), bool) {
	ch := make(chan Snapshot, 8)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}, false
	}
	c.subscribers[ch] = struct{}{}
	ch <- c.snapshotLocked()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel, true
}

// Close stops any fetch and detaches all observers.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// CloseIfIdle closes the controller only when nobody is subscribed, and reports whether it did.
// The check and the close are atomic with respect to Subscribe.
func (c *Controller) CloseIfIdle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.subscribers) > 0 {
		return false
	}
	c.closeLocked()
	return true
}

func (c *Controller) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	c.cancelFetch = nil
	c.cancel()
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

// Wait blocks until background fetches have returned.
func (c *Controller) Wait() {
	c.fetch.Wait()
}

func (c *Controller) broadcastLocked() {
	c.version++
	snap := c.snapshotLocked()
	for ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow reader never blocks a transition.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID: c.id,
		Version:   c.version,
		Screen:    c.screen,
		Error:     c.lastError,
		Topic:     c.topic,
	}
	switch c.screen {
	case domain.ScreenQuiz:
		snap.Quiz = quizState(c.engine)
	case domain.ScreenResults:
		summary := *c.summary
		summary.Review = append([]quiz.ReviewItem(nil), c.summary.Review...)
		snap.Results = &summary
	}
	return snap
}
