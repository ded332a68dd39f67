package questionset

import (
	"bytes"
	"encoding/json"
	"fmt"

	"topic-quiz-service/internal/domain"
)

// wireQuestion uses pointers so that absent fields are distinguishable from zero values.
type wireQuestion struct {
	ID                 *string   `json:"id"`
	Question           *string   `json:"question"`
	Options            *[]string `json:"options"`
	CorrectAnswerIndex *int      `json:"correctAnswerIndex"`
}

type wireEnvelope struct {
	Questions *[]wireQuestion `json:"questions"`
}

// Decode parses a provider response into a validated question set.
// The root may be the question array itself or an object carrying it under "questions".
// Any deviation yields an error wrapping domain.ErrInvalidQuestionSet and no questions.
func Decode(raw []byte, count int) ([]domain.Question, error) {
	body := stripFence(bytes.TrimSpace(raw))
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty response", domain.ErrInvalidQuestionSet)
	}

	var items []wireQuestion
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuestionSet, err)
		}
	case '{':
		var env wireEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuestionSet, err)
		}
		if env.Questions == nil {
			return nil, fmt.Errorf("%w: missing field questions", domain.ErrInvalidQuestionSet)
		}
		items = *env.Questions
	default:
		return nil, fmt.Errorf("%w: response is not JSON", domain.ErrInvalidQuestionSet)
	}

	questions := make([]domain.Question, 0, len(items))
	for i, item := range items {
		q, err := item.toDomain(i)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := Validate(questions, count); err != nil {
		return nil, err
	}
	return questions, nil
}

func (w wireQuestion) toDomain(i int) (domain.Question, error) {
	switch {
	case w.ID == nil:
		return domain.Question{}, missing("id", i)
	case w.Question == nil:
		return domain.Question{}, missing("question", i)
	case w.Options == nil:
		return domain.Question{}, missing("options", i)
	case w.CorrectAnswerIndex == nil:
		return domain.Question{}, missing("correctAnswerIndex", i)
	}
	options := make([]string, len(*w.Options))
	copy(options, *w.Options)
	return domain.Question{
		ID:                 *w.ID,
		Question:           *w.Question,
		Options:            options,
		CorrectAnswerIndex: *w.CorrectAnswerIndex,
	}, nil
}

func missing(field string, i int) error {
	return fmt.Errorf("%w: missing field %s of question %d", domain.ErrInvalidQuestionSet, field, i)
}

// stripFence removes a surrounding markdown code fence some models add despite JSON mode.
func stripFence(body []byte) []byte {
	if !bytes.HasPrefix(body, []byte("```")) {
		return body
	}
	body = bytes.TrimPrefix(body, []byte("```"))
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return nil
	}
	body = bytes.TrimSuffix(bytes.TrimSpace(body), []byte("```"))
	return bytes.TrimSpace(body)
}
