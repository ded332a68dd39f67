package questionset

import (
	"fmt"
	"strings"

	"topic-quiz-service/internal/domain"
)

// Validate checks a question set against the provider contract.
// A count of zero or less only requires a non-empty set.
func Validate(questions []domain.Question, count int) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidQuestionSet, domain.ErrNoQuestions)
	}
	if count > 0 && len(questions) != count {
		return fmt.Errorf("%w: expected %d questions, got %d", domain.ErrInvalidQuestionSet, count, len(questions))
	}

	ids := make(map[string]struct{}, len(questions))
	for i, q := range questions {
		if strings.TrimSpace(q.ID) == "" {
			return invalid(i, "id is empty")
		}
		if _, dup := ids[q.ID]; dup {
			return invalid(i, fmt.Sprintf("duplicate id %q", q.ID))
		}
		ids[q.ID] = struct{}{}

		if strings.TrimSpace(q.Question) == "" {
			return invalid(i, "question text is empty")
		}
		if len(q.Options) != domain.OptionCount {
			return invalid(i, fmt.Sprintf("expected %d options, got %d", domain.OptionCount, len(q.Options)))
		}
		seen := make(map[string]struct{}, len(q.Options))
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return invalid(i, fmt.Sprintf("option %d is empty", j))
			}
			if _, dup := seen[opt]; dup {
				return invalid(i, fmt.Sprintf("option %d repeats %q", j, opt))
			}
			seen[opt] = struct{}{}
		}
		if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
			return invalid(i, fmt.Sprintf("correct answer index %d is out of range", q.CorrectAnswerIndex))
		}
	}
	return nil
}

func invalid(i int, reason string) error {
	return fmt.Errorf("%w: question %d: %s", domain.ErrInvalidQuestionSet, i, reason)
}
