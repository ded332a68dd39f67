package domain

import (
	"fmt"
	"strings"
)

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// DefaultQuestionCount is how many questions a generated set holds unless configured otherwise.
const DefaultQuestionCount = 5

// Question models an MCQ question with exactly one correct option, referenced by index.
type Question struct {
	ID                 string   `json:"id"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
}

// QuizResult is the outcome for one question, positional within the originating question set.
type QuizResult struct {
	QuestionIndex       int  `json:"questionIndex"`
	SelectedOptionIndex int  `json:"selectedOptionIndex"`
	IsCorrect           bool `json:"isCorrect"`
}

// Screen identifies which view of the application is active.
type Screen int

const (
	ScreenHome Screen = iota
	ScreenLoading
	ScreenQuiz
	ScreenResults
)

func (s Screen) String() string {
	switch s {
	case ScreenHome:
		return "home"
	case ScreenLoading:
		return "loading"
	case ScreenQuiz:
		return "quiz"
	case ScreenResults:
		return "results"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// MarshalText lets screens travel as their string form in JSON payloads.
func (s Screen) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// NormalizeTopic folds a topic into the key used for caching and archiving.
func NormalizeTopic(topic string) string {
	return strings.ToLower(strings.Join(strings.Fields(topic), " "))
}
