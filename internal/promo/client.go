// Package promo classifies recent posts as paid promotions. A language
// model does the primary judgment; a deterministic mention heuristic
// overrides it so an explicit @brand tag always counts as a promo.
package promo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"influencer-stats/internal/observability"
)

// ErrNoCredential is returned when classification is requested without an
// API key configured.
var ErrNoCredential = errors.New("no classifier credential configured")

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"

	systemPrompt = "You detect paid brand promotions in social media captions. " +
		"For each caption decide whether it advertises a product or service in " +
		"exchange for compensation. Sponsored tags, discount codes, affiliate " +
		"links and explicit partnership language count; organic mentions do not. " +
		"Respond with a JSON array of objects {\"i\", \"is_promo\", \"brand\", " +
		"\"category\", \"confidence\"} covering every input index."
)

// CaptionItem is one caption handed to the classifier, keyed by its index
// in the submitted window.
type CaptionItem struct {
	Index   int    `json:"i"`
	Caption string `json:"caption"`
}

// RawJudgment is one classifier verdict before override merging.
type RawJudgment struct {
	Index      int     `json:"i"`
	IsPromo    bool    `json:"is_promo"`
	Brand      string  `json:"brand"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Classifier produces raw judgments for a batch of captions.
type Classifier interface {
	Classify(ctx context.Context, items []CaptionItem) ([]RawJudgment, error)
}

// OpenAIClient calls the chat completions API with a JSON response format.
type OpenAIClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// OpenAIOption customizes an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithModel overrides the completion model.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) { c.model = model }
}

// WithBaseURL overrides the API base URL, for proxies and tests.
func WithBaseURL(baseURL string) OpenAIOption {
	return func(c *OpenAIClient) { c.baseURL = baseURL }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *OpenAIClient) { c.httpClient = hc }
}

// NewOpenAIClient creates a classifier client. An empty apiKey is allowed
// at construction; Classify fails with ErrNoCredential.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:     apiKey,
		model:      defaultModel,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify submits the captions and parses the model's reply. Transport
// and HTTP failures are errors; an unparseable reply is not, it just
// yields zero judgments so the override pass still runs.
func (c *OpenAIClient) Classify(ctx context.Context, items []CaptionItem) ([]RawJudgment, error) {
	if c.apiKey == "" {
		return nil, ErrNoCredential
	}
	if len(items) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal captions: %w", err)
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(payload)},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordClassifierCall("transport_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecordClassifierCall("read_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("read classifier response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.RecordClassifierCall("http_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("classifier HTTP %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		observability.RecordClassifierCall("bad_envelope", time.Since(start).Seconds())
		return nil, fmt.Errorf("decode classifier envelope: %w", err)
	}
	if len(parsed.Choices) == 0 {
		observability.RecordClassifierCall("empty", time.Since(start).Seconds())
		return nil, nil
	}

	observability.RecordClassifierCall("ok", time.Since(start).Seconds())
	return ParseJudgments(parsed.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
