// Package quiz holds the per-attempt answering state machine and the scoring of finished attempts.
package quiz

import (
	"topic-quiz-service/internal/domain"
)

const noSelection = -1

// Engine walks a fixed question sequence, one confirmed answer per question.
// It is not safe for concurrent use; the owning controller serializes calls.
type Engine struct {
	questions []domain.Question
	index     int
	selected  int
	results   []domain.QuizResult
	finished  bool
	cancelled bool
}

// NewEngine starts an attempt at the first question.
func NewEngine(questions []domain.Question) (*Engine, error) {
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	qs := make([]domain.Question, len(questions))
	copy(qs, questions)
	return &Engine{
		questions: qs,
		selected:  noSelection,
		results:   make([]domain.QuizResult, 0, len(qs)),
	}, nil
}

// SelectOption records a tentative choice for the current question, replacing any earlier one.
func (e *Engine) SelectOption(index int) error {
	if e.finished || e.cancelled {
		return domain.ErrQuizOver
	}
	if index < 0 || index >= len(e.questions[e.index].Options) {
		return domain.ErrOptionOutOfRange
	}
	e.selected = index
	return nil
}

// ConfirmAndAdvance commits the tentative choice and moves on.
// It reports whether the attempt is now finished.
func (e *Engine) ConfirmAndAdvance() (bool, error) {
	if e.finished || e.cancelled {
		return e.finished, domain.ErrQuizOver
	}
	if e.selected == noSelection {
		return false, domain.ErrNoSelection
	}

	current := e.questions[e.index]
	e.results = append(e.results, domain.QuizResult{
		QuestionIndex:       e.index,
		SelectedOptionIndex: e.selected,
		IsCorrect:           e.selected == current.CorrectAnswerIndex,
	})
	e.selected = noSelection

	if e.index == len(e.questions)-1 {
		e.finished = true
		return true, nil
	}
	e.index++
	return false, nil
}

// Cancel abandons the attempt. No result list is produced.
func (e *Engine) Cancel() {
	if e.finished {
		return
	}
	e.cancelled = true
	e.results = nil
	e.selected = noSelection
}

// Index is the zero-based position of the current question.
func (e *Engine) Index() int { return e.index }

// Total is the number of questions in the attempt.
func (e *Engine) Total() int { return len(e.questions) }

// Current returns the question awaiting an answer.
func (e *Engine) Current() domain.Question { return e.questions[e.index] }

// Selection returns the tentative choice, if any.
func (e *Engine) Selection() (int, bool) {
	if e.selected == noSelection {
		return 0, false
	}
	return e.selected, true
}

func (e *Engine) Finished() bool  { return e.finished }
func (e *Engine) Cancelled() bool { return e.cancelled }

// IsLast reports whether the current question is the final one.
func (e *Engine) IsLast() bool { return e.index == len(e.questions)-1 }

// Results returns the complete result list once finished, nil before that.
func (e *Engine) Results() []domain.QuizResult {
	if !e.finished {
		return nil
	}
	out := make([]domain.QuizResult, len(e.results))
	copy(out, e.results)
	return out
}

// Answered is the number of confirmed answers so far.
func (e *Engine) Answered() int { return len(e.results) }

// Progress is the share of the quiz reached, counting the current question, in percent.
func (e *Engine) Progress() float64 {
	if e.finished {
		return 100
	}
	return float64(e.index+1) / float64(len(e.questions)) * 100
}
