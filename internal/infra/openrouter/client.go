// Package openrouter generates question sets through an OpenAI-compatible chat completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/questionset"
)

// DefaultBaseURL is the default OpenRouter API base URL.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const maxErrorBody = 4 << 10

// HTTPDoer abstracts HTTP clients used by the provider.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements app.QuestionSource over chat/completions with a strict JSON schema.
type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	Count   int
	HTTP    HTTPDoer
}

func NewClient(model, apiKey, baseURL string, count int, client HTTPDoer) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if count <= 0 {
		count = domain.DefaultQuestionCount
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Count:   count,
		HTTP:    client,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// FetchQuestions sends one completion request for topic and decodes the reply.
func (c *Client) FetchQuestions(ctx context.Context, topic string) ([]domain.Question, error) {
	body := chatRequest{
		Model: c.Model,
		Messages: []message{
			{Role: "system", Content: "You write quiz questions and answer only with JSON matching the schema."},
			{Role: "user", Content: questionset.Prompt(topic, c.Count)},
		},
		ResponseFormat: responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchema{
				Name:   questionset.SchemaName,
				Strict: true,
				Schema: questionset.ObjectSchema(),
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("openrouter error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode openrouter response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("openrouter error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("openrouter returned no choices")
	}
	choice := out.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("openrouter refused: %s", choice.Message.Refusal)
	}
	if choice.FinishReason == "length" {
		return nil, fmt.Errorf("openrouter response truncated")
	}
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return nil, fmt.Errorf("openrouter returned empty content")
	}
	return questionset.Decode([]byte(text), c.Count)
}
