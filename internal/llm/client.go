// Package llm is the client for the external OpenAI-compatible
// text-generation service. Every call passes through the shared rate gate
// before reaching the network.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/policylens/policylens/internal/ratelimit"
)

// Request describes one generation call.
type Request struct {
	Prompt      string
	System      string
	Model       string
	Temperature float64
	MaxTokens   int
	// JSON asks the model for a bare JSON body. The service is not
	// contractually guaranteed to comply; decoding stays defensive.
	JSON bool
}

// Response is the raw outcome of one generation call.
type Response struct {
	Content    string
	TokensUsed int
	Latency    time.Duration
}

// Completer is the call surface the analyzer depends on.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm api status %d: %s", e.StatusCode, truncate(e.Body, 200))
}

// Client talks to a chat-completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	gate       *ratelimit.Gate
	stats      *Stats
	httpClient *http.Client
}

var _ Completer = (*Client)(nil)

func NewClient(baseURL, apiKey string, gate *ratelimit.Gate, stats *Stats, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		gate:    gate,
		stats:   stats,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Stats exposes the client's call accounting.
func (c *Client) Stats() *Stats {
	return c.stats
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete issues one chat call. It suspends on the gate when the rate
// budget is exhausted; this is the only blocking point besides the network
// round-trip itself.
func (c *Client) Complete(ctx context.Context, req Request) (Response, error) {
	if c.gate != nil {
		if err := c.gate.Acquire(ctx); err != nil {
			return Response{}, fmt.Errorf("rate gate: %w", err)
		}
	}

	prompt := req.Prompt
	if req.JSON {
		prompt += "\n\nIMPORTANT: You must respond with valid JSON format only. No additional text or explanation."
	}
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("llm api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	latency := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		return Response{}, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return Response{}, fmt.Errorf("llm error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return Response{}, fmt.Errorf("empty response from llm")
	}

	if c.stats != nil {
		c.stats.RecordLatency(latency.Milliseconds())
	}

	return Response{
		Content:    apiResp.Choices[0].Message.Content,
		TokensUsed: apiResp.Usage.TotalTokens,
		Latency:    latency,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
