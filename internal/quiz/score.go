package quiz

import (
	"fmt"

	"topic-quiz-service/internal/domain"
)

// Tier is a qualitative feedback bucket derived from the score percentage.
type Tier string

const (
	TierPerfect       Tier = "perfect"
	TierGreat         Tier = "great"
	TierGood          Tier = "good"
	TierNeedsPractice Tier = "needs practice"
)

// ReviewItem is the per-question breakdown shown on the results screen.
type ReviewItem struct {
	QuestionIndex int    `json:"questionIndex"`
	QuestionID    string `json:"questionId"`
	Question      string `json:"question"`
	SelectedIndex int    `json:"selectedIndex"`
	Selected      string `json:"selected"`
	Correct       bool   `json:"correct"`
	// CorrectAnswer is only set when the selection was wrong.
	CorrectAnswer string `json:"correctAnswer,omitempty"`
}

// Summary is the score of a finished attempt.
type Summary struct {
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Mistakes   int          `json:"mistakes"`
	Percentage float64      `json:"percentage"`
	Tier       Tier         `json:"tier"`
	Review     []ReviewItem `json:"review"`
}

// TierFor maps an unrounded percentage to its feedback tier. Thresholds are inclusive.
func TierFor(percentage float64) Tier {
	switch {
	case percentage == 100:
		return TierPerfect
	case percentage >= 80:
		return TierGreat
	case percentage >= 60:
		return TierGood
	default:
		return TierNeedsPractice
	}
}

// Summarize scores results against the question set they were produced for.
// Results are matched by question index. Each question needs exactly one result.
func Summarize(questions []domain.Question, results []domain.QuizResult) (Summary, error) {
	if len(questions) == 0 {
		return Summary{}, domain.ErrNoQuestions
	}

	if len(results) != len(questions) {
		return Summary{}, fmt.Errorf("%w: %d results for %d questions", domain.ErrResultMissing, len(results), len(questions))
	}
	byIndex := make(map[int]domain.QuizResult, len(results))
	for _, r := range results {
		if r.QuestionIndex < 0 || r.QuestionIndex >= len(questions) {
			return Summary{}, fmt.Errorf("%w: result for unknown question %d", domain.ErrResultMissing, r.QuestionIndex)
		}
		if _, dup := byIndex[r.QuestionIndex]; dup {
			return Summary{}, fmt.Errorf("%w: duplicate result for question %d", domain.ErrResultMissing, r.QuestionIndex)
		}
		byIndex[r.QuestionIndex] = r
	}

	score := 0
	review := make([]ReviewItem, 0, len(questions))
	for i, q := range questions {
		r, ok := byIndex[i]
		if !ok {
			return Summary{}, fmt.Errorf("%w: question %d", domain.ErrResultMissing, i)
		}
		if r.IsCorrect {
			score++
		}
		if r.SelectedOptionIndex < 0 || r.SelectedOptionIndex >= len(q.Options) {
			return Summary{}, fmt.Errorf("%w: question %d has selection %d", domain.ErrResultMissing, i, r.SelectedOptionIndex)
		}
		item := ReviewItem{
			QuestionIndex: i,
			QuestionID:    q.ID,
			Question:      q.Question,
			SelectedIndex: r.SelectedOptionIndex,
			Selected:      q.Options[r.SelectedOptionIndex],
			Correct:       r.IsCorrect,
		}
		if !r.IsCorrect {
			item.CorrectAnswer = q.Options[q.CorrectAnswerIndex]
		}
		review = append(review, item)
	}

	percentage := 100 * float64(score) / float64(len(questions))
	return Summary{
		Score:      score,
		Total:      len(questions),
		Mistakes:   len(questions) - score,
		Percentage: percentage,
		Tier:       TierFor(percentage),
		Review:     review,
	}, nil
}
