package postgres

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"topic-quiz-service/internal/app"
	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/infra/memory"
)

type fakeRow struct {
	raw []byte
	err error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.raw
	return nil
}

// fakeDB keeps inserted rows in memory and answers the reuse query from them.
type fakeDB struct {
	rows      []archivedRow
	execErr   error
	queryErr  error
	lastQuery []interface{}
}

type archivedRow struct {
	topicKey  string
	topic     string
	questions string
	createdAt time.Time
}

func (d *fakeDB) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	d.lastQuery = args
	if d.queryErr != nil {
		return fakeRow{err: d.queryErr}
	}
	key := args[0].(string)
	since := args[1].(time.Time)
	for i := len(d.rows) - 1; i >= 0; i-- {
		row := d.rows[i]
		if row.topicKey == key && row.createdAt.After(since) {
			return fakeRow{raw: []byte(row.questions)}
		}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func (d *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	if d.execErr != nil {
		return nil, d.execErr
	}
	if !strings.HasPrefix(sql, "INSERT INTO question_sets") {
		return nil, errors.New("unexpected statement")
	}
	d.rows = append(d.rows, archivedRow{
		topicKey:  args[1].(string),
		topic:     args[2].(string),
		questions: args[3].(string),
		createdAt: args[4].(time.Time),
	})
	return pgconn.CommandTag("INSERT 0 1"), nil
}

type countingSource struct {
	app.QuestionSource
	calls atomic.Int32
}

func (s *countingSource) FetchQuestions(ctx context.Context, topic string) ([]domain.Question, error) {
	s.calls.Add(1)
	return s.QuestionSource.FetchQuestions(ctx, topic)
}

func newArchive(db *fakeDB, window time.Duration) (*Archive, *countingSource, *time.Time) {
	source := &countingSource{QuestionSource: memory.NewStaticSource(memory.DemoSets())}
	archive := NewArchive(db, source, window, nil)
	now := time.Unix(1_700_000_000, 0)
	archive.clock = func() time.Time { return now }
	return archive, source, &now
}

func TestArchiveRecordsGeneratedSets(t *testing.T) {
	db := &fakeDB{}
	archive, source, _ := newArchive(db, 0)

	for i := 0; i < 2; i++ {
		if _, err := archive.FetchQuestions(context.Background(), "Space"); err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	if source.calls.Load() != 2 {
		t.Fatalf("without a reuse window every fetch generates, got %d calls", source.calls.Load())
	}
	if len(db.rows) != 2 || db.rows[0].topicKey != "space" || db.rows[0].topic != "Space" {
		t.Fatalf("unexpected archived rows %+v", db.rows)
	}
}

func TestArchiveReusesWithinWindow(t *testing.T) {
	db := &fakeDB{}
	archive, source, now := newArchive(db, time.Hour)

	first, err := archive.FetchQuestions(context.Background(), "Space")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	*now = now.Add(30 * time.Minute)
	second, err := archive.FetchQuestions(context.Background(), "space")
	if err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if source.calls.Load() != 1 {
		t.Fatalf("expected archived set to be reused, got %d calls", source.calls.Load())
	}
	if second[0].ID != first[0].ID || len(second) != len(first) {
		t.Fatalf("expected the archived set back")
	}

	*now = now.Add(2 * time.Hour)
	if _, err := archive.FetchQuestions(context.Background(), "Space"); err != nil {
		t.Fatalf("fetch 3: %v", err)
	}
	if source.calls.Load() != 2 {
		t.Fatalf("expected a fresh set outside the window, got %d calls", source.calls.Load())
	}
}

func TestArchiveWriteFailureDoesNotFailFetch(t *testing.T) {
	db := &fakeDB{execErr: errors.New("connection refused")}
	archive, _, _ := newArchive(db, 0)

	questions, err := archive.FetchQuestions(context.Background(), "Math Fun")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}
}

func TestArchiveReadFailureFallsBackToProvider(t *testing.T) {
	db := &fakeDB{queryErr: errors.New("timeout")}
	archive, source, _ := newArchive(db, time.Hour)

	if _, err := archive.FetchQuestions(context.Background(), "Space"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if source.calls.Load() != 1 {
		t.Fatalf("expected provider fallback, got %d calls", source.calls.Load())
	}
}

func TestArchiveIgnoresInvalidArchivedSets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	db := &fakeDB{rows: []archivedRow{{
		topicKey:  "space",
		questions: `[{"id":"1","question":"Q?","options":["a","b"],"correctAnswerIndex":0}]`,
		createdAt: now,
	}}}
	archive, source, _ := newArchive(db, time.Hour)

	questions, err := archive.FetchQuestions(context.Background(), "Space")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if source.calls.Load() != 1 || len(questions) != 5 {
		t.Fatalf("expected provider set, calls=%d len=%d", source.calls.Load(), len(questions))
	}
}

func TestArchivePropagatesProviderFailure(t *testing.T) {
	db := &fakeDB{}
	archive, _, _ := newArchive(db, time.Hour)

	if _, err := archive.FetchQuestions(context.Background(), "Unknown"); !errors.Is(err, domain.ErrTopicNotFound) {
		t.Fatalf("expected topic not found, got %v", err)
	}
	if len(db.rows) != 0 {
		t.Fatalf("failures must not be archived")
	}
}
