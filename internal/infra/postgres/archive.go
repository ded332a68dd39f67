package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"topic-quiz-service/internal/app"
	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/logger"
	"topic-quiz-service/internal/questionset"
)

// Querier is the subset of *pgxpool.Pool the archive needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Archive records every generated question set in question_sets. With a positive
// reuse window it serves the newest archived set for a topic instead of generating one.
type Archive struct {
	db          Querier
	next        app.QuestionSource
	reuseWindow time.Duration
	log         *logger.Logger
	clock       func() time.Time
}

func NewArchive(db Querier, next app.QuestionSource, reuseWindow time.Duration, log *logger.Logger) *Archive {
	if log == nil {
		log = logger.Nop()
	}
	return &Archive{
		db:          db,
		next:        next,
		reuseWindow: reuseWindow,
		log:         log,
		clock:       time.Now,
	}
}

func (a *Archive) FetchQuestions(ctx context.Context, topic string) ([]domain.Question, error) {
	key := domain.NormalizeTopic(topic)
	if a.reuseWindow > 0 {
		if questions, ok := a.recent(ctx, key); ok {
			a.log.Debug("serving archived question set", "topic_key", key)
			return questions, nil
		}
	}

	questions, err := a.next.FetchQuestions(ctx, topic)
	if err != nil {
		return nil, err
	}
	if err := questionset.Validate(questions, 0); err != nil {
		return nil, err
	}
	if err := a.store(ctx, key, topic, questions); err != nil {
		a.log.Warn("archive write failed", "topic_key", key, "error", err)
	}
	return questions, nil
}

func (a *Archive) recent(ctx context.Context, key string) ([]domain.Question, bool) {
	var raw []byte
	err := a.db.QueryRow(ctx,
		`SELECT questions FROM question_sets WHERE topic_key=$1 AND created_at > $2 ORDER BY created_at DESC LIMIT 1`,
		key, a.clock().Add(-a.reuseWindow),
	).Scan(&raw)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			a.log.Warn("archive read failed", "topic_key", key, "error", err)
		}
		return nil, false
	}
	questions, err := questionset.Decode(raw, 0)
	if err != nil {
		a.log.Warn("ignoring invalid archived question set", "topic_key", key, "error", err)
		return nil, false
	}
	return questions, true
}

func (a *Archive) store(ctx context.Context, key, topic string, questions []domain.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal question set: %w", err)
	}
	_, err = a.db.Exec(ctx,
		`INSERT INTO question_sets (id, topic_key, topic, questions, created_at) VALUES ($1, $2, $3, $4::jsonb, $5)`,
		uuid.New(), key, topic, string(data), a.clock(),
	)
	if err != nil {
		return fmt.Errorf("insert question set: %w", err)
	}
	return nil
}
