package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"topic-quiz-service/internal/app"
	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/questionset"
)

// CachedSource caches generated question sets by topic with a TTL to avoid repeated provider calls.
type CachedSource struct {
	next  app.QuestionSource
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewCachedSource(next app.QuestionSource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		next:  next,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedSet),
	}
}

func (s *CachedSource) FetchQuestions(ctx context.Context, topic string) ([]domain.Question, error) {
	key := domain.NormalizeTopic(topic)
	if questions, ok := s.lookup(key); ok {
		return questions, nil
	}

	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another caller filled it.
		if questions, ok := s.lookup(key); ok {
			return questions, nil
		}

		questions, err := s.next.FetchQuestions(ctx, topic)
		if err != nil {
			return nil, err
		}
		if err := questionset.Validate(questions, 0); err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.cache[key] = cachedSet{
			questions: questions,
			expiresAt: s.clock().Add(s.ttlWithJitter()),
		}
		s.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

func (s *CachedSource) lookup(key string) ([]domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[key]
	if !ok || !entry.expiresAt.After(s.clock()) {
		return nil, false
	}
	return append([]domain.Question(nil), entry.questions...), true
}

func (s *CachedSource) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(s.ttl) / 10
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}
