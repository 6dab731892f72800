package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"tutor-ai/internal/logger"
)

// ProgressCallback is called while a long running job advances.
type ProgressCallback func(step, message string, current, total int)

// PromptSet holds the map and combine templates of a map-reduce run. Both
// templates receive their input through the {text} placeholder.
type PromptSet struct {
	Map     string
	Combine string
}

var VideoPrompts = PromptSet{
	Map: `Summarize the following part of a YouTube video transcript:
"{text}"

KEY POINTS AND TAKEAWAYS:
`,
	Combine: `Create a detailed summary of the YouTube video based on these transcript summaries:
"{text}"

Please structure the summary as follows:
1. Main Topic/Theme
2. Key Points
3. Important Details
4. Conclusions/Takeaways

DETAILED SUMMARY:
`,
}

var DocumentPrompts = PromptSet{
	Map: `You are summarizing a part of a document:

{text}

Provide a concise 2-3 sentence summary:
`,
	Combine: `You have these summaries of each section:
{text}

Combine them into one coherent, well-structured final summary (10-12 paragraphs):
`,
}

type SummarizerConfig struct {
	// Workers bounds concurrent map requests. 1 runs the map phase sequentially.
	Workers int
	// RateLimitRPM caps LLM requests per minute across the map phase. 0 disables it.
	RateLimitRPM int
}

// Summarizer runs map-reduce summarization over ordered chunks.
type Summarizer struct {
	llm     Completer
	prompts PromptSet
	workers int
	limiter *rate.Limiter
	log     *logger.Logger
}

func NewSummarizer(llm Completer, prompts PromptSet, cfg SummarizerConfig, log *logger.Logger) *Summarizer {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Summarizer{llm: llm, prompts: prompts, workers: cfg.Workers, log: log}
	if cfg.RateLimitRPM > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RateLimitRPM)/60.0), 1)
	}
	return s
}

func (s *Summarizer) Summarize(ctx context.Context, chunks []string) (string, error) {
	return s.SummarizeWithProgress(ctx, chunks, nil)
}

// SummarizeWithProgress summarizes every chunk, then combines the partial
// summaries in chunk order. The first failure cancels outstanding map
// requests and no partial result is returned.
func (s *Summarizer) SummarizeWithProgress(ctx context.Context, chunks []string, progress ProgressCallback) (string, error) {
	if len(chunks) == 0 {
		return "", ErrNothingToSummarize
	}

	partials := make([]string, len(chunks))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			if s.limiter != nil {
				if err := s.limiter.Wait(gctx); err != nil {
					return &SummarizationError{Stage: StageMap, Chunk: i, Err: err}
				}
			}
			out, err := s.llm.Complete(gctx, fillTemplate(s.prompts.Map, chunk))
			if err != nil {
				return &SummarizationError{Stage: StageMap, Chunk: i, Err: err}
			}
			partials[i] = strings.TrimSpace(out)

			mu.Lock()
			done++
			if progress != nil {
				progress(StageMap, fmt.Sprintf("Summarized chunk %d of %d", i+1, len(chunks)), done, len(chunks))
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Warn("map phase aborted", "chunks", len(chunks), "error", err)
		return "", err
	}

	if progress != nil {
		progress(StageReduce, "Combining partial summaries", 0, 1)
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", &SummarizationError{Stage: StageReduce, Err: err}
		}
	}
	out, err := s.llm.Complete(ctx, fillTemplate(s.prompts.Combine, strings.Join(partials, "\n\n")))
	if err != nil {
		return "", &SummarizationError{Stage: StageReduce, Err: err}
	}
	if progress != nil {
		progress(StageReduce, "Summary ready", 1, 1)
	}

	s.log.Debug("summarized", "chunks", len(chunks), "workers", s.workers)
	return strings.TrimSpace(out), nil
}
