package app

import (
	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/quiz"
)

// Snapshot is an immutable view of a controller, enough to render any screen.
type Snapshot struct {
	SessionID string        `json:"sessionId"`
	Version   uint64        `json:"version"`
	Screen    domain.Screen `json:"screen"`
	Error     string        `json:"error,omitempty"`
	Topic     string        `json:"topic,omitempty"`
	Quiz      *QuizState    `json:"quiz,omitempty"`
	Results   *quiz.Summary `json:"results,omitempty"`
}

// QuizState describes the question being answered. It never carries the correct index.
type QuizState struct {
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	// Selected is the tentative choice, nil when nothing is selected.
	Selected *int    `json:"selected,omitempty"`
	Progress float64 `json:"progress"`
	IsLast   bool    `json:"isLast"`
}

func quizState(engine *quiz.Engine) *QuizState {
	q := engine.Current()
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	state := &QuizState{
		Index:    engine.Index(),
		Total:    engine.Total(),
		Question: q.Question,
		Options:  options,
		Progress: engine.Progress(),
		IsLast:   engine.IsLast(),
	}
	if sel, ok := engine.Selection(); ok {
		state.Selected = &sel
	}
	return state
}
