package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM answers prompts through a function and records every prompt it saw.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.reply(prompt)
}

func (f *fakeLLM) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func staticLLM(answer string) *fakeLLM {
	return &fakeLLM{reply: func(string) (string, error) { return answer, nil }}
}

func TestAIServiceComplete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hello there"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	svc := NewAIService(AIOptions{
		APIKey:      "test-key",
		BaseURL:     srv.URL + "/",
		Model:       "gemma2-9b-it",
		Temperature: 0.1,
		MaxTokens:   3000,
	})

	out, err := svc.Complete(context.Background(), "say hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
	assert.Equal(t, "gemma2-9b-it", got.Model)
	assert.Equal(t, 3000, got.MaxTokens)
	assert.InDelta(t, 0.1, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "say hi", got.Messages[0].Content)
}

func TestAIServiceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()

	svc := NewAIService(AIOptions{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	_, err := svc.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestAIServiceDisabled(t *testing.T) {
	svc := NewAIService(AIOptions{Model: "m"})
	_, err := svc.Complete(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrAIUnavailable))
}

func TestWithSamplingKeepsOriginal(t *testing.T) {
	base := NewAIService(AIOptions{APIKey: "k", Model: "m", Temperature: 0.1, MaxTokens: 3000})
	tutor := base.WithSampling(0.5, 0)

	assert.InDelta(t, 0.1, base.temperature, 0.0001)
	assert.Equal(t, 3000, base.maxTokens)
	assert.InDelta(t, 0.5, tutor.temperature, 0.0001)
	assert.Zero(t, tutor.maxTokens)
	assert.Same(t, base.client, tutor.client)
}
