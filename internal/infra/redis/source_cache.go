package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"topic-quiz-service/internal/app"
	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/logger"
	"topic-quiz-service/internal/questionset"
)

// CachedSource caches generated question sets in Redis and falls back to the next source on a miss.
// Sets are stored as JSON: SET quiz:questions:{topicKey} [...] EX ttl
type CachedSource struct {
	client *redis.Client
	next   app.QuestionSource
	ttl    time.Duration
	log    *logger.Logger
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewCachedSource(client *redis.Client, next app.QuestionSource, ttl time.Duration, log *logger.Logger) *CachedSource {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedSource{
		client: client,
		next:   next,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *CachedSource) FetchQuestions(ctx context.Context, topic string) ([]domain.Question, error) {
	key := s.key(domain.NormalizeTopic(topic))
	if questions, ok := s.lookup(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := s.lookup(ctx, key); ok {
			return questions, nil
		}

		questions, err := s.next.FetchQuestions(ctx, topic)
		if err != nil {
			return nil, err
		}
		if err := questionset.Validate(questions, 0); err != nil {
			return nil, err
		}

		payload, err := json.Marshal(questions)
		if err == nil {
			err = s.client.Set(ctx, key, payload, s.ttlWithJitter()).Err()
		}
		if err != nil {
			s.log.Warn("question cache write failed", "key", key, "error", err)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

// lookup treats unreadable or invalid cache entries as misses.
func (s *CachedSource) lookup(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("question cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	questions, err := questionset.Decode(raw, 0)
	if err != nil {
		s.log.Warn("discarding invalid cached question set", "key", key, "error", err)
		_ = s.client.Del(ctx, key).Err()
		return nil, false
	}
	return questions, true
}

func (s *CachedSource) key(topicKey string) string {
	return "quiz:questions:" + topicKey
}

func (s *CachedSource) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	jitterMax := int64(s.ttl) / 10
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}
