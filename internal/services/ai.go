package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Completer turns a single prompt into model text. Every component that
// talks to the LLM receives one explicitly.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AIOptions configures the OpenAI-compatible chat endpoint.
type AIOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// AIService calls an OpenAI-compatible chat completion API (Groq by default).
type AIService struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

func NewAIService(opts AIOptions) *AIService {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	svc := &AIService{
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		timeout:     opts.Timeout,
	}
	if opts.APIKey == "" {
		return svc
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	svc.client = openai.NewClientWithConfig(cfg)
	return svc
}

// WithSampling returns a copy sharing the client but using other sampling
// settings. A zero maxTokens leaves the limit to the provider.
func (s *AIService) WithSampling(temperature float32, maxTokens int) *AIService {
	clone := *s
	clone.temperature = temperature
	clone.maxTokens = maxTokens
	return &clone
}

func (s *AIService) disabled() bool {
	return s.client == nil || s.model == ""
}

func (s *AIService) Complete(ctx context.Context, prompt string) (string, error) {
	if s.disabled() {
		return "", ErrAIUnavailable
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("request chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// fillTemplate substitutes the {text} placeholder of a prompt template.
func fillTemplate(template, text string) string {
	return strings.ReplaceAll(template, "{text}", text)
}
