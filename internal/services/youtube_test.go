package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-ai/pkg/transcript"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/aBcD_-12345", "aBcD_-12345"},
		{"https://m.youtube.com/shorts/aBcD_-12345?feature=share", "aBcD_-12345"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractVideoIDRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"not a url",
		"https://vimeo.com/123456",
		"https://www.youtube.com/watch?v=",
		"https://www.youtube.com/channel/UC123",
	} {
		_, err := ExtractVideoID(raw)
		assert.ErrorIs(t, err, ErrInvalidInput, raw)
	}
}

type stubTranscripts struct {
	tr  *transcript.Transcript
	err error
	ids []string
}

func (s *stubTranscripts) Fetch(_ context.Context, videoID string) (*transcript.Transcript, error) {
	s.ids = append(s.ids, videoID)
	return s.tr, s.err
}

func TestVideoSummarizer(t *testing.T) {
	entries := make([]transcript.Entry, 0, 3000)
	for i := 0; i < 3000; i++ {
		entries = append(entries, transcript.Entry{Text: "lorem ipsum"})
	}
	stub := &stubTranscripts{tr: &transcript.Transcript{Language: "en", Source: "youtube", Entries: entries}}
	llm := &fakeLLM{reply: func(prompt string) (string, error) {
		if strings.Contains(prompt, "DETAILED SUMMARY:") {
			return "Main Topic: lorem", nil
		}
		return "points", nil
	}}

	v := NewVideoSummarizer(stub, NewSummarizer(llm, VideoPrompts, SummarizerConfig{Workers: 2}, nil), nil)
	got, err := v.Summarize(context.Background(), "https://youtu.be/abc123XYZ")
	require.NoError(t, err)

	assert.Equal(t, []string{"abc123XYZ"}, stub.ids)
	assert.Equal(t, "Main Topic: lorem", got.Summary)
	// 3000 entries of 11 runes joined by spaces is 35999 runes
	assert.Equal(t, 4, got.Chunks)
	assert.Len(t, llm.calls(), got.Chunks+1)
}

func TestVideoSummarizerErrors(t *testing.T) {
	llm := staticLLM("unused")

	t.Run("bad url never fetches", func(t *testing.T) {
		stub := &stubTranscripts{}
		v := NewVideoSummarizer(stub, NewSummarizer(llm, VideoPrompts, SummarizerConfig{}, nil), nil)
		_, err := v.Summarize(context.Background(), "https://example.com/video")
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, stub.ids)
	})

	t.Run("retrieval failure surfaces", func(t *testing.T) {
		stub := &stubTranscripts{err: &transcript.RetrievalError{VideoID: "abc", Err: transcript.ErrNoTranscript}}
		v := NewVideoSummarizer(stub, NewSummarizer(llm, VideoPrompts, SummarizerConfig{}, nil), nil)
		_, err := v.Summarize(context.Background(), "https://youtu.be/abc")

		var retrievalErr *transcript.RetrievalError
		require.True(t, errors.As(err, &retrievalErr))
		assert.NotErrorIs(t, err, ErrInvalidInput)
	})
}
