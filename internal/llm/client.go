// Package llm is a minimal client for OpenAI-compatible chat completion APIs.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"langbridge/backend/internal/config"
	"net/http"
	"strings"
	"time"
)

// ErrEmptyCompletion is returned when the API answers without a usable choice.
var ErrEmptyCompletion = errors.New("llm: completion has no choices")

// Message is one chat message in the request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a chat completion request.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int     `json:"index"`
		Message Message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// APIError is a non-2xx answer from the upstream API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm: upstream returned status %d: %s", e.StatusCode, e.Message)
}

// Completion is the first choice of a chat completion.
type Completion struct {
	Content string
	Model   string
}

// Client talks to {BaseURL}/chat/completions.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client. A zero timeout falls back to config.DefaultLLMTimeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = config.DefaultLLMBaseURL
	}
	if timeout <= 0 {
		timeout = config.DefaultLLMTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Complete sends req and returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (Completion, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Completion{}, fmt.Errorf("llm: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("llm: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Completion{}, fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Completion{}, fmt.Errorf("llm: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Completion{}, &APIError{StatusCode: resp.StatusCode, Message: upstreamMessage(data, resp.Status)}
	}

	var decoded completionResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return Completion{}, fmt.Errorf("llm: decoding response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return Completion{}, ErrEmptyCompletion
	}

	model := decoded.Model
	if model == "" {
		model = req.Model
	}
	return Completion{Content: strings.TrimSpace(decoded.Choices[0].Message.Content), Model: model}, nil
}

func upstreamMessage(data []byte, status string) string {
	var e errorResponse
	if err := json.Unmarshal(data, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		if len(text) > 200 {
			text = text[:200]
		}
		return text
	}
	return status
}
