// Package questionset owns the contract with question providers: the generation
// prompt, the response schema, and the fail-closed decoding of what comes back.
package questionset

import (
	"fmt"

	"topic-quiz-service/internal/domain"
)

// SchemaName identifies the response schema for providers that require one.
const SchemaName = "quiz_questions"

// Prompt builds the generation instruction for a topic.
func Prompt(topic string, count int) string {
	if count <= 0 {
		count = domain.DefaultQuestionCount
	}
	return fmt.Sprintf(
		"Generate %d challenging multiple-choice questions about %s. Ensure each question has exactly %d options and one correct answer. Make the difficulty level moderate to advanced.",
		count, topic, domain.OptionCount,
	)
}

// ItemSchema describes a single question as JSON schema.
func ItemSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":       map[string]any{"type": "string"},
			"question": map[string]any{"type": "string"},
			"options": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"correctAnswerIndex": map[string]any{"type": "integer"},
		},
		"required":             []string{"id", "question", "options", "correctAnswerIndex"},
		"additionalProperties": false,
	}
}

// ObjectSchema wraps the question list in an object root, as strict json_schema modes require.
func ObjectSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": ItemSchema(),
			},
		},
		"required":             []string{"questions"},
		"additionalProperties": false,
	}
}
