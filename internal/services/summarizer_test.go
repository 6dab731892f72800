package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPrompts = PromptSet{Map: "MAP:{text}", Combine: "REDUCE:{text}"}

func TestSummarizeKeepsChunkOrder(t *testing.T) {
	llm := &fakeLLM{reply: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "REDUCE:") {
			return "  final summary\n", nil
		}
		chunk := strings.TrimPrefix(prompt, "MAP:")
		// later chunks finish first
		if chunk == "c0" {
			time.Sleep(30 * time.Millisecond)
		}
		return "sum-" + chunk, nil
	}}

	s := NewSummarizer(llm, testPrompts, SummarizerConfig{Workers: 4}, nil)
	out, err := s.Summarize(context.Background(), []string{"c0", "c1", "c2", "c3"})
	require.NoError(t, err)
	assert.Equal(t, "final summary", out)

	calls := llm.calls()
	require.Len(t, calls, 5)
	assert.Equal(t, "REDUCE:sum-c0\n\nsum-c1\n\nsum-c2\n\nsum-c3", calls[4])
}

func TestSummarizeSequentialWorker(t *testing.T) {
	llm := &fakeLLM{reply: func(prompt string) (string, error) { return "x", nil }}
	s := NewSummarizer(llm, testPrompts, SummarizerConfig{Workers: 1}, nil)

	_, err := s.Summarize(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"MAP:a", "MAP:b", "MAP:c", "REDUCE:x\n\nx\n\nx"}, llm.calls())
}

func TestSummarizeMapFailureAborts(t *testing.T) {
	boom := errors.New("upstream down")
	llm := &fakeLLM{reply: func(prompt string) (string, error) {
		if prompt == "MAP:bad" {
			return "", boom
		}
		return "ok", nil
	}}
	s := NewSummarizer(llm, testPrompts, SummarizerConfig{Workers: 1}, nil)

	out, err := s.Summarize(context.Background(), []string{"good", "bad", "never"})
	require.Error(t, err)
	assert.Empty(t, out)

	var sumErr *SummarizationError
	require.True(t, errors.As(err, &sumErr))
	assert.Equal(t, StageMap, sumErr.Stage)
	assert.Equal(t, 1, sumErr.Chunk)
	assert.ErrorIs(t, err, boom)
	for _, p := range llm.calls() {
		assert.False(t, strings.HasPrefix(p, "REDUCE:"), "reduce must not run after a map failure")
	}
}

func TestSummarizeReduceFailure(t *testing.T) {
	llm := &fakeLLM{reply: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "REDUCE:") {
			return "", fmt.Errorf("rate limited")
		}
		return "ok", nil
	}}
	s := NewSummarizer(llm, testPrompts, SummarizerConfig{Workers: 2}, nil)

	_, err := s.Summarize(context.Background(), []string{"a"})
	var sumErr *SummarizationError
	require.True(t, errors.As(err, &sumErr))
	assert.Equal(t, StageReduce, sumErr.Stage)
	assert.Equal(t, "combine summaries: rate limited", err.Error())
}

func TestSummarizeNoChunks(t *testing.T) {
	s := NewSummarizer(staticLLM("x"), testPrompts, SummarizerConfig{}, nil)
	_, err := s.Summarize(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNothingToSummarize)
}

func TestSummarizeReportsProgress(t *testing.T) {
	s := NewSummarizer(staticLLM("x"), testPrompts, SummarizerConfig{Workers: 3}, nil)

	var steps []string
	var lastMap int
	_, err := s.SummarizeWithProgress(context.Background(), []string{"a", "b", "c"}, func(step, _ string, current, total int) {
		steps = append(steps, step)
		if step == StageMap {
			lastMap = current
			assert.Equal(t, 3, total)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 3, lastMap)
	assert.Equal(t, []string{StageMap, StageMap, StageMap, StageReduce, StageReduce}, steps)
}

func TestPromptTemplatesCarryPlaceholder(t *testing.T) {
	for name, set := range map[string]PromptSet{"video": VideoPrompts, "document": DocumentPrompts} {
		assert.Contains(t, set.Map, "{text}", name)
		assert.Contains(t, set.Combine, "{text}", name)
	}
}
