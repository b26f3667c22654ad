package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"langbridge/backend/internal/llm"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete_Success(t *testing.T) {
	var got llm.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","model":"gpt-test","choices":[{"index":0,"message":{"role":"assistant","content":"  translated  "}}]}`))
	}))
	defer srv.Close()

	client := llm.NewClient(srv.URL+"/v1/", "secret", time.Second)
	out, err := client.Complete(context.Background(), llm.Request{
		Model:       "gpt-test",
		Temperature: 0.3,
		Messages: []llm.Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hi"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "translated", out.Content)
	assert.Equal(t, "gpt-test", out.Model)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestComplete_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	_, err := llm.NewClient(srv.URL, "", time.Second).Complete(context.Background(), llm.Request{Model: "m"})

	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "rate limited", apiErr.Message)
}

func TestComplete_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "no key, no header")
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := llm.NewClient(srv.URL, "", time.Second).Complete(context.Background(), llm.Request{Model: "m"})

	var apiErr *llm.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"c1","choices":[]}`))
	}))
	defer srv.Close()

	_, err := llm.NewClient(srv.URL, "k", time.Second).Complete(context.Background(), llm.Request{Model: "m"})
	assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
}

func TestComplete_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Draining the body lets the server notice the client hanging up.
		io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := llm.NewClient(srv.URL, "k", 5*time.Second).Complete(ctx, llm.Request{Model: "m"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
