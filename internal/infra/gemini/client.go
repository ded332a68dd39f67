// Package gemini generates question sets with the Gemini generateContent REST API.
package gemini

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

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-3-flash-preview"

	maxErrorBody = 4 << 10
)

// HTTPDoer abstracts the HTTP client so tests can point at httptest servers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a QuestionSource backed by a single generateContent call per fetch.
type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	Count   int
	HTTP    HTTPDoer
}

func NewClient(apiKey, model, baseURL string, count int, client HTTPDoer) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
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

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// FetchQuestions asks the model for a question set about topic. It never retries.
func (c *Client) FetchQuestions(ctx context.Context, topic string) ([]domain.Question, error) {
	body := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: questionset.Prompt(topic, c.Count)}},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema(),
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("gemini error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	text, err := out.text()
	if err != nil {
		return nil, err
	}
	return questionset.Decode([]byte(text), c.Count)
}

func (r generateResponse) text() (string, error) {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked prompt: %s", r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	cand := r.Candidates[0]
	switch cand.FinishReason {
	case "", "STOP":
	default:
		return "", fmt.Errorf("gemini finished with %s", cand.FinishReason)
	}
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}

// responseSchema is the question array schema in Gemini's upper-case type names.
func responseSchema() map[string]any {
	return map[string]any{
		"type": "ARRAY",
		"items": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"id":       map[string]any{"type": "STRING"},
				"question": map[string]any{"type": "STRING"},
				"options": map[string]any{
					"type":  "ARRAY",
					"items": map[string]any{"type": "STRING"},
				},
				"correctAnswerIndex": map[string]any{"type": "INTEGER"},
			},
			"required": []string{"id", "question", "options", "correctAnswerIndex"},
		},
	}
}
