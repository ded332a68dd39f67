package quiz_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/quiz"
)

func TestEngineRejectsEmptySet(t *testing.T) {
	if _, err := quiz.NewEngine(nil); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestEngineFinishesWithOneResultPerQuestion(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for n := 1; n <= 7; n++ {
		for round := 0; round < 20; round++ {
			questions := sampleQuestions(n, rnd)
			engine, err := quiz.NewEngine(questions)
			if err != nil {
				t.Fatalf("new engine: %v", err)
			}
			picks := make([]int, n)
			for i := 0; i < n; i++ {
				if engine.Index() != i {
					t.Fatalf("n=%d: expected index %d, got %d", n, i, engine.Index())
				}
				picks[i] = rnd.Intn(domain.OptionCount)
				if err := engine.SelectOption(picks[i]); err != nil {
					t.Fatalf("select: %v", err)
				}
				finished, err := engine.ConfirmAndAdvance()
				if err != nil {
					t.Fatalf("advance: %v", err)
				}
				if finished != (i == n-1) {
					t.Fatalf("n=%d: finished=%v at question %d", n, finished, i)
				}
			}

			results := engine.Results()
			if len(results) != n {
				t.Fatalf("n=%d: expected %d results, got %d", n, n, len(results))
			}
			for i, r := range results {
				if r.QuestionIndex != i {
					t.Fatalf("n=%d: result %d has question index %d", n, i, r.QuestionIndex)
				}
				if r.SelectedOptionIndex != picks[i] {
					t.Fatalf("n=%d: result %d selected %d, want %d", n, i, r.SelectedOptionIndex, picks[i])
				}
				if want := picks[i] == questions[i].CorrectAnswerIndex; r.IsCorrect != want {
					t.Fatalf("n=%d: result %d isCorrect=%v, want %v", n, i, r.IsCorrect, want)
				}
			}
		}
	}
}

func TestConfirmWithoutSelectionIsNoOp(t *testing.T) {
	engine := newEngine(t, 3)

	finished, err := engine.ConfirmAndAdvance()
	if !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if finished || engine.Index() != 0 || engine.Answered() != 0 {
		t.Fatalf("expected no transition, got index=%d answered=%d", engine.Index(), engine.Answered())
	}

	// The selection is cleared after each confirmed answer.
	_ = engine.SelectOption(1)
	if _, err := engine.ConfirmAndAdvance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := engine.ConfirmAndAdvance(); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection on the second question, got %v", err)
	}
	if engine.Index() != 1 || engine.Answered() != 1 {
		t.Fatalf("expected to stay on question 2, got index=%d answered=%d", engine.Index(), engine.Answered())
	}
}

func TestSelectOutOfRangeIsNoOp(t *testing.T) {
	engine := newEngine(t, 2)
	if err := engine.SelectOption(2); err != nil {
		t.Fatalf("select: %v", err)
	}
	for _, idx := range []int{-1, domain.OptionCount, 99} {
		if err := engine.SelectOption(idx); !errors.Is(err, domain.ErrOptionOutOfRange) {
			t.Fatalf("select %d: expected ErrOptionOutOfRange, got %v", idx, err)
		}
	}
	if sel, ok := engine.Selection(); !ok || sel != 2 {
		t.Fatalf("expected previous selection 2 to survive, got %d (%v)", sel, ok)
	}
}

func TestSelectionCanChangeBeforeConfirm(t *testing.T) {
	engine := newEngine(t, 1)
	_ = engine.SelectOption(3)
	_ = engine.SelectOption(0)
	if _, err := engine.ConfirmAndAdvance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	results := engine.Results()
	if len(results) != 1 || results[0].SelectedOptionIndex != 0 {
		t.Fatalf("expected last selection to win, got %+v", results)
	}
}

func TestFinishedEngineRejectsFurtherActions(t *testing.T) {
	engine := newEngine(t, 1)
	_ = engine.SelectOption(0)
	_, _ = engine.ConfirmAndAdvance()

	if err := engine.SelectOption(1); !errors.Is(err, domain.ErrQuizOver) {
		t.Fatalf("expected ErrQuizOver, got %v", err)
	}
	if _, err := engine.ConfirmAndAdvance(); !errors.Is(err, domain.ErrQuizOver) {
		t.Fatalf("expected ErrQuizOver, got %v", err)
	}
	if len(engine.Results()) != 1 {
		t.Fatalf("results must not change after finishing")
	}
	if engine.Progress() != 100 {
		t.Fatalf("expected 100%% progress, got %v", engine.Progress())
	}
}

func TestCancelDiscardsResults(t *testing.T) {
	engine := newEngine(t, 3)
	_ = engine.SelectOption(0)
	_, _ = engine.ConfirmAndAdvance()
	_ = engine.SelectOption(1)

	engine.Cancel()

	if !engine.Cancelled() {
		t.Fatalf("expected cancelled engine")
	}
	if engine.Results() != nil || engine.Answered() != 0 {
		t.Fatalf("expected results discarded")
	}
	if _, ok := engine.Selection(); ok {
		t.Fatalf("expected tentative selection discarded")
	}
	if err := engine.SelectOption(0); !errors.Is(err, domain.ErrQuizOver) {
		t.Fatalf("expected ErrQuizOver after cancel, got %v", err)
	}
}

func TestProgressCountsCurrentQuestion(t *testing.T) {
	engine := newEngine(t, 5)
	if engine.Progress() != 20 {
		t.Fatalf("expected 20%%, got %v", engine.Progress())
	}
	_ = engine.SelectOption(0)
	_, _ = engine.ConfirmAndAdvance()
	if engine.Progress() != 40 {
		t.Fatalf("expected 40%%, got %v", engine.Progress())
	}
}

func newEngine(t *testing.T, n int) *quiz.Engine {
	t.Helper()
	engine, err := quiz.NewEngine(sampleQuestions(n, rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func sampleQuestions(n int, rnd *rand.Rand) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			ID:                 fmt.Sprintf("q%d", i+1),
			Question:           fmt.Sprintf("Question %d?", i+1),
			Options:            []string{"alpha", "bravo", "charlie", "delta"},
			CorrectAnswerIndex: rnd.Intn(domain.OptionCount),
		}
	}
	return questions
}
