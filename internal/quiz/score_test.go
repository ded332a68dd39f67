package quiz_test

import (
	"errors"
	"reflect"
	"testing"

	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/quiz"
)

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		percentage float64
		want       quiz.Tier
	}{
		{100, quiz.TierPerfect},
		{99.99, quiz.TierGreat},
		{80, quiz.TierGreat},
		{79.999, quiz.TierGood},
		{60, quiz.TierGood},
		{59.9, quiz.TierNeedsPractice},
		{0, quiz.TierNeedsPractice},
	}
	for _, tc := range cases {
		if got := quiz.TierFor(tc.percentage); got != tc.want {
			t.Fatalf("TierFor(%v) = %q, want %q", tc.percentage, got, tc.want)
		}
	}
}

func TestSummarizeThreeOfFive(t *testing.T) {
	questions := fiveQuestions([]int{0, 2, 0, 2, 0})
	results := answerAll(t, questions, 0)

	summary, err := quiz.Summarize(questions, results)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Score != 3 || summary.Mistakes != 2 || summary.Percentage != 60 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Tier != quiz.TierGood {
		t.Fatalf("expected good tier, got %q", summary.Tier)
	}

	var withRightAnswer int
	for i, item := range summary.Review {
		if item.Selected != questions[i].Options[0] {
			t.Fatalf("review %d shows %q as the choice", i, item.Selected)
		}
		if item.Correct {
			if item.CorrectAnswer != "" {
				t.Fatalf("review %d: correct answers must not show the right one", i)
			}
			continue
		}
		withRightAnswer++
		if item.CorrectAnswer != questions[i].Options[2] {
			t.Fatalf("review %d: expected right one %q, got %q", i, questions[i].Options[2], item.CorrectAnswer)
		}
	}
	if withRightAnswer != 2 {
		t.Fatalf("expected 2 entries with the right one shown, got %d", withRightAnswer)
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	questions := fiveQuestions([]int{1, 1, 3, 0, 2})
	results := answerAll(t, questions, 1)

	first, err := quiz.Summarize(questions, results)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	second, err := quiz.Summarize(questions, results)
	if err != nil {
		t.Fatalf("summarize again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical summaries, got %+v and %+v", first, second)
	}
}

func TestSummarizeMatchesByIndexNotOrder(t *testing.T) {
	questions := fiveQuestions([]int{0, 1, 2, 3, 0})
	results := answerAll(t, questions, 0)
	results[0], results[4] = results[4], results[0]

	summary, err := quiz.Summarize(questions, results)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Review[0].QuestionID != "q1" || !summary.Review[0].Correct {
		t.Fatalf("expected q1 correct in first review slot, got %+v", summary.Review[0])
	}
}

func TestSummarizePerfectAndGreat(t *testing.T) {
	questions := fiveQuestions([]int{0, 0, 0, 0, 0})
	summary, err := quiz.Summarize(questions, answerAll(t, questions, 0))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Tier != quiz.TierPerfect || summary.Percentage != 100 {
		t.Fatalf("expected perfect, got %+v", summary)
	}

	questions = fiveQuestions([]int{0, 0, 0, 0, 1})
	summary, err = quiz.Summarize(questions, answerAll(t, questions, 0))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Tier != quiz.TierGreat || summary.Percentage != 80 {
		t.Fatalf("expected great at 80%%, got %+v", summary)
	}
}

func TestSummarizeMissingResultFails(t *testing.T) {
	questions := fiveQuestions([]int{0, 0, 0, 0, 0})
	results := answerAll(t, questions, 0)[:4]
	if _, err := quiz.Summarize(questions, results); !errors.Is(err, domain.ErrResultMissing) {
		t.Fatalf("expected ErrResultMissing, got %v", err)
	}
}

func TestSummarizeRejectsMalformedResultLists(t *testing.T) {
	questions := fiveQuestions([]int{0, 0, 0, 0, 0})[:2]
	cases := []struct {
		name    string
		results []domain.QuizResult
	}{
		{"duplicate and unknown index", []domain.QuizResult{
			{QuestionIndex: 0, SelectedOptionIndex: 0, IsCorrect: true},
			{QuestionIndex: 0, SelectedOptionIndex: 0, IsCorrect: true},
			{QuestionIndex: 1, SelectedOptionIndex: 0, IsCorrect: true},
			{QuestionIndex: 7, SelectedOptionIndex: 0, IsCorrect: true},
		}},
		{"duplicate replaces a question", []domain.QuizResult{
			{QuestionIndex: 0, SelectedOptionIndex: 0, IsCorrect: true},
			{QuestionIndex: 0, SelectedOptionIndex: 1, IsCorrect: false},
		}},
		{"index out of range", []domain.QuizResult{
			{QuestionIndex: 0, SelectedOptionIndex: 0, IsCorrect: true},
			{QuestionIndex: 2, SelectedOptionIndex: 0, IsCorrect: true},
		}},
		{"negative index", []domain.QuizResult{
			{QuestionIndex: -1, SelectedOptionIndex: 0, IsCorrect: true},
			{QuestionIndex: 1, SelectedOptionIndex: 0, IsCorrect: true},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary, err := quiz.Summarize(questions, tc.results)
			if !errors.Is(err, domain.ErrResultMissing) {
				t.Fatalf("expected ErrResultMissing, got %v (summary %+v)", err, summary)
			}
		})
	}
}

func fiveQuestions(correct []int) []domain.Question {
	questions := make([]domain.Question, len(correct))
	for i, c := range correct {
		questions[i] = domain.Question{
			ID:                 "q" + string(rune('1'+i)),
			Question:           "Question " + string(rune('1'+i)),
			Options:            []string{"first", "second", "third", "fourth"},
			CorrectAnswerIndex: c,
		}
	}
	return questions
}

func answerAll(t *testing.T, questions []domain.Question, pick int) []domain.QuizResult {
	t.Helper()
	engine, err := quiz.NewEngine(questions)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	for range questions {
		if err := engine.SelectOption(pick); err != nil {
			t.Fatalf("select: %v", err)
		}
		if _, err := engine.ConfirmAndAdvance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	return engine.Results()
}
