package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-ai/pkg/transcript"
	"tutor-ai/pkg/websearch"
)

type stubProvider struct {
	name    string
	items   []websearch.SearchItem
	err     error
	queries []string
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Search(ctx context.Context, query string) (*websearch.SearchResult, error) {
	return p.SearchWithOptions(ctx, query, nil)
}

func (p *stubProvider) SearchWithOptions(_ context.Context, query string, _ *websearch.SearchOptions) (*websearch.SearchResult, error) {
	p.queries = append(p.queries, query)
	if p.err != nil {
		return nil, p.err
	}
	return &websearch.SearchResult{
		Source:    p.name,
		Query:     query,
		Results:   p.items,
		Total:     len(p.items),
		Timestamp: time.Now().Unix(),
	}, nil
}

func TestParseSource(t *testing.T) {
	for _, name := range []string{"youtube", "YouTube", " arxiv ", "DuckDuckGo", "WIKIPEDIA", "tavily"} {
		_, err := ParseSource(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseSource("foo")
	require.ErrorIs(t, err, ErrUnknownSource)
	assert.EqualError(t, err, "Unknown source 'foo'")
}

func TestSearchDispatch(t *testing.T) {
	wiki := &stubProvider{name: "Wikipedia", items: []websearch.SearchItem{{Title: "Alan Turing", Snippet: "English mathematician."}}}
	arxiv := &stubProvider{name: "arXiv", items: []websearch.SearchItem{{Title: "Attention Is All You Need", PublishedDate: "2017-06-12"}}}
	tavily := &stubProvider{name: "Tavily", items: []websearch.SearchItem{{Title: "A", URL: "https://a.example", Snippet: "alpha"}}}
	llm := staticLLM("  researched answer \n")

	svc := NewSearchService(llm, nil, map[Source]websearch.WebSearchService{
		SourceWikipedia: wiki,
		SourceArxiv:     arxiv,
		SourceTavily:    tavily,
	}, nil)
	ctx := context.Background()

	got, err := svc.Search(ctx, "Wikipedia", "Alan Turing")
	require.NoError(t, err)
	assert.Equal(t, "researched answer", got)
	prompt := llm.calls()[0]
	assert.Contains(t, prompt, "Page: Alan Turing\nSummary: English mathematician.")
	assert.True(t, strings.HasSuffix(prompt, "Alan Turing"+explainSuffix))

	_, err = svc.Search(ctx, "arxiv", "transformers")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(llm.calls()[1], "transformers"+papersSuffix))

	got, err = svc.Search(ctx, "tavily", "quantum")
	require.NoError(t, err)
	assert.Equal(t, "Title: A\nURL: https://a.example\nContent: alpha\n", got)
	assert.Len(t, llm.calls(), 2, "tavily answers without a completion")
}

func TestSearchErrors(t *testing.T) {
	failing := &stubProvider{name: "DuckDuckGo", err: &websearch.SearchError{Code: "http_503", Message: "Service temporarily unavailable"}}
	llm := staticLLM("unused")
	svc := NewSearchService(llm, nil, map[Source]websearch.WebSearchService{SourceDuckDuckGo: failing}, nil)
	ctx := context.Background()

	_, err := svc.Search(ctx, "bing", "anything")
	assert.ErrorIs(t, err, ErrUnknownSource)

	_, err = svc.Search(ctx, "duckduckgo", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, failing.queries)

	_, err = svc.Search(ctx, "duckduckgo", "golang")
	var searchErr *websearch.SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.Equal(t, "http_503", searchErr.Code)

	_, err = svc.Search(ctx, "wikipedia", "golang")
	assert.Error(t, err)
	assert.Empty(t, llm.calls())
}

func TestSearchYouTube(t *testing.T) {
	stub := &stubTranscripts{tr: &transcript.Transcript{Entries: []transcript.Entry{{Text: "short talk"}}}}
	llm := &fakeLLM{reply: func(prompt string) (string, error) {
		if strings.Contains(prompt, "DETAILED SUMMARY:") {
			return "video summary", nil
		}
		return "part", nil
	}}
	video := NewVideoSummarizer(stub, NewSummarizer(llm, VideoPrompts, SummarizerConfig{}, nil), nil)
	svc := NewSearchService(llm, video, nil, nil)

	got, err := svc.Search(context.Background(), "youtube", "https://www.youtube.com/watch?v=abcdefghijk")
	require.NoError(t, err)
	assert.Equal(t, "video summary", got)
	assert.Equal(t, []string{"abcdefghijk"}, stub.ids)

	_, err = svc.Search(context.Background(), "youtube", "https://example.com")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
