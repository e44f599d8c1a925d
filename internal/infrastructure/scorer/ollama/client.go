package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mvcarvalho/docsentinel/internal/infrastructure/resilience"
)

// Client talks to a local Ollama instance. The scorer asks the model to rate
// how likely a document's text is to come from a tampered or fabricated
// document; the rating feeds the content half of the final score.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type ClientOption func(*Client)

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func WithResilienceExecutor(executor *resilience.Executor) ClientOption {
	return func(c *Client) {
		c.executor = executor
	}
}

func New(baseURL, model string, options ...ClientOption) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// Scorer rates document text on a 0-100 tampering-likelihood scale.
type Scorer struct {
	client   *Client
	maxChars int
}

func NewScorer(client *Client, maxChars int) *Scorer {
	if maxChars <= 0 {
		maxChars = 4000
	}
	return &Scorer{client: client, maxChars: maxChars}
}

func (s *Scorer) ScoreContent(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	respText, err := s.client.generateJSON(ctx, buildScoringPrompt(text, s.maxChars))
	if err != nil {
		return 0, err
	}

	var result struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &result); err != nil {
		return 0, fmt.Errorf("parse scoring json: %w", err)
	}

	if result.Score < 0 {
		return 0, nil
	}
	if result.Score > 100 {
		return 100, nil
	}
	return result.Score, nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, "generate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.generate", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("ollama generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
