package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tutor-ai/internal/logger"
	"tutor-ai/pkg/websearch"
)

type Source string

const (
	SourceYouTube    Source = "youtube"
	SourceDuckDuckGo Source = "duckduckgo"
	SourceWikipedia  Source = "wikipedia"
	SourceArxiv      Source = "arxiv"
	SourceTavily     Source = "tavily"
)

// Sources lists every accepted search source.
var Sources = []Source{SourceYouTube, SourceDuckDuckGo, SourceWikipedia, SourceArxiv, SourceTavily}

var ErrUnknownSource = errors.New("unknown source")

type UnknownSourceError struct {
	Source string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("Unknown source '%s'", e.Source)
}

func (e *UnknownSourceError) Is(target error) bool {
	return target == ErrUnknownSource
}

// ParseSource matches name case-insensitively against Sources.
func ParseSource(name string) (Source, error) {
	want := Source(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range Sources {
		if s == want {
			return s, nil
		}
	}
	return "", &UnknownSourceError{Source: name}
}

const (
	explainSuffix = "\n\nPlease provide a thorough explanation amounting to roughly 1000 words."
	papersSuffix  = "\n\nPlease provide 5 latest papers and 5 top cited papers."
)

// researchPrompt wraps the raw tool output of a provider into a single
// completion request.
func researchPrompt(source Source, query, findings string) string {
	suffix := explainSuffix
	if source == SourceArxiv {
		suffix = papersSuffix
	}
	return fmt.Sprintf(`Answer the question below using the %s results provided. Prefer facts from the results and cite page titles or paper titles where you use them.

Results:
%s

Question: %s%s`, source, findings, query, suffix)
}

// SearchService routes a query to one knowledge source.
type SearchService struct {
	llm       Completer
	video     *VideoSummarizer
	providers map[Source]websearch.WebSearchService
	log       *logger.Logger
}

func NewSearchService(llm Completer, video *VideoSummarizer, providers map[Source]websearch.WebSearchService, log *logger.Logger) *SearchService {
	if log == nil {
		log = logger.Nop()
	}
	return &SearchService{llm: llm, video: video, providers: providers, log: log}
}

// Search returns plain text or markdown for query. For youtube the query is
// a video URL and the answer is its summary. Tavily results are returned as
// formatted; the other providers feed one research completion.
func (s *SearchService) Search(ctx context.Context, sourceName, query string) (string, error) {
	source, err := ParseSource(sourceName)
	if err != nil {
		return "", err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", invalidInput("missing required field(s): query")
	}

	if source == SourceYouTube {
		if s.video == nil {
			return "", fmt.Errorf("youtube source is not configured")
		}
		summary, err := s.video.Summarize(ctx, query)
		if err != nil {
			return "", err
		}
		return summary.Summary, nil
	}

	provider, ok := s.providers[source]
	if !ok {
		return "", fmt.Errorf("%s source is not configured", source)
	}

	s.log.Info("searching", "source", source, "provider", provider.Name(), "query", query)
	res, err := provider.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%s search: %w", provider.Name(), err)
	}
	findings := websearch.Format(res)
	if source == SourceTavily {
		return findings, nil
	}

	answer, err := s.llm.Complete(ctx, researchPrompt(source, query, findings))
	if err != nil {
		return "", fmt.Errorf("%s research: %w", source, err)
	}
	return strings.TrimSpace(answer), nil
}
