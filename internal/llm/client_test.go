package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/policylens/policylens/internal/ratelimit"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	var got chatRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "hello"}},
			},
			"usage": map[string]int{"total_tokens": 42},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", nil, nil, 5*time.Second)
	resp, err := c.Complete(context.Background(), Request{
		Prompt:      "analyze this",
		System:      "you are an analyst",
		Model:       "gpt-4o",
		Temperature: 0.2,
		MaxTokens:   100,
		JSON:        true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if resp.Content != "hello" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("tokens = %d", resp.TokensUsed)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if got.Model != "gpt-4o" || got.Temperature != 0.2 || got.MaxTokens != 100 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if !strings.Contains(got.Messages[1].Content, "valid JSON format only") {
		t.Errorf("JSON directive missing from prompt: %q", got.Messages[1].Content)
	}
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "k", nil, nil, 5*time.Second)
	_, err := c.Complete(context.Background(), Request{Prompt: "x", Model: "m"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "k", nil, nil, 5*time.Second)
	if _, err := c.Complete(context.Background(), Request{Prompt: "x", Model: "m"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestCompleteInBandError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"type": "invalid_request", "message": "bad model"}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "k", nil, nil, 5*time.Second)
	_, err := c.Complete(context.Background(), Request{Prompt: "x", Model: "m"})
	if err == nil || !strings.Contains(err.Error(), "bad model") {
		t.Fatalf("error = %v", err)
	}
}

func TestCompleteRecordsLatency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer server.Close()

	stats := NewStats(time.Hour)
	c := NewClient(server.URL, "k", nil, stats, 5*time.Second)
	if _, err := c.Complete(context.Background(), Request{Prompt: "x", Model: "m"}); err != nil {
		t.Fatal(err)
	}

	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Errorf("stats count = %d, want 1", snap.Count)
	}
}

func TestCompleteHonorsCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer server.Close()

	gate := ratelimit.NewGate(1, time.Minute)
	c := NewClient(server.URL, "k", gate, nil, 5*time.Second)

	// Exhaust the window, then the second call must give up on cancel
	// instead of waiting out the minute.
	if _, err := c.Complete(context.Background(), Request{Prompt: "x", Model: "m"}); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, Request{Prompt: "y", Model: "m"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}
