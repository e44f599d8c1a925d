package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScoreContentTruncatesAndParses(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		capturedPrompt, _ = payload["prompt"].(string)
		_, _ = w.Write([]byte(`{"response":"{\"score\": 72, \"reason\": \"inconsistent totals\"}"}`))
	}))
	defer server.Close()

	scorer := NewScorer(New(server.URL, "llama3"), 50)
	score, err := scorer.ScoreContent(context.Background(), strings.Repeat("invoice line ", 100))
	if err != nil {
		t.Fatalf("ScoreContent() error = %v", err)
	}
	if score != 72 {
		t.Fatalf("expected score 72, got %.0f", score)
	}
	if !strings.Contains(capturedPrompt, "invoice line") {
		t.Fatalf("prompt should carry the document text: %s", capturedPrompt)
	}
	if strings.Count(capturedPrompt, "invoice line") > 4 {
		t.Fatalf("document text must be truncated to maxChars, got prompt %d bytes", len(capturedPrompt))
	}
}

func TestScoreContentClampsModelOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"{\"score\": 400}"}`))
	}))
	defer server.Close()

	scorer := NewScorer(New(server.URL, "llama3"), 4000)
	score, err := scorer.ScoreContent(context.Background(), "some text")
	if err != nil {
		t.Fatalf("ScoreContent() error = %v", err)
	}
	if score != 100 {
		t.Fatalf("expected clamp to 100, got %.0f", score)
	}
}

func TestScoreContentEmptyTextSkipsModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("model must not be called for empty text")
	}))
	defer server.Close()

	scorer := NewScorer(New(server.URL, "llama3"), 4000)
	score, err := scorer.ScoreContent(context.Background(), "   \n ")
	if err != nil {
		t.Fatalf("ScoreContent() error = %v", err)
	}
	if score != 0 {
		t.Fatalf("expected zero score, got %.0f", score)
	}
}

func TestScoreContentIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	scorer := NewScorer(New(server.URL, "llama3"), 4000)
	_, err := scorer.ScoreContent(context.Background(), "some text")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
