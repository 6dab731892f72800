package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"tutor-ai/internal/logger"
	"tutor-ai/pkg/transcript"
)

// videoIDPatterns are tried in order: watch, short, embed and shorts URLs.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?(?:[^#\s]*&)?v=([^&?/#\s]+)`),
	regexp.MustCompile(`youtu\.be/([^&?/#\s]+)`),
	regexp.MustCompile(`youtube\.com/embed/([^&?/#\s]+)`),
	regexp.MustCompile(`youtube\.com/shorts/([^&?/#\s]+)`),
}

// ExtractVideoID returns the video id of a YouTube URL.
func ExtractVideoID(rawURL string) (string, error) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil && m[1] != "" {
			return m[1], nil
		}
	}
	return "", invalidInput("Invalid YouTube URL")
}

// TranscriptFetcher is satisfied by *transcript.Fetcher.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (*transcript.Transcript, error)
}

type VideoSummary struct {
	VideoID   string `json:"video_id"`
	Summary   string `json:"summary"`
	Language  string `json:"language"`
	Generated bool   `json:"generated"`
	Source    string `json:"source"`
	Chunks    int    `json:"chunks"`
}

// VideoSummarizer turns a YouTube URL into a structured summary.
type VideoSummarizer struct {
	transcripts TranscriptFetcher
	splitter    *Splitter
	summarizer  *Summarizer
	log         *logger.Logger
}

func NewVideoSummarizer(transcripts TranscriptFetcher, summarizer *Summarizer, log *logger.Logger) *VideoSummarizer {
	if log == nil {
		log = logger.Nop()
	}
	return &VideoSummarizer{
		transcripts: transcripts,
		splitter:    MustSplitter(VideoChunkSize, VideoChunkOverlap),
		summarizer:  summarizer,
		log:         log,
	}
}

func (v *VideoSummarizer) Summarize(ctx context.Context, rawURL string) (*VideoSummary, error) {
	return v.SummarizeWithProgress(ctx, rawURL, nil)
}

func (v *VideoSummarizer) SummarizeWithProgress(ctx context.Context, rawURL string, progress ProgressCallback) (*VideoSummary, error) {
	videoID, err := ExtractVideoID(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}

	if progress != nil {
		progress("transcript", "Fetching transcript", 0, 1)
	}
	tr, err := v.transcripts.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}

	chunks := v.splitter.Split(tr.Text())
	if len(chunks) == 0 {
		return nil, fmt.Errorf("transcript for video %s is empty: %w", videoID, transcript.ErrNoTranscript)
	}
	v.log.Info("summarizing video", "video_id", videoID, "language", tr.Language, "source", tr.Source, "chunks", len(chunks))

	summary, err := v.summarizer.SummarizeWithProgress(ctx, chunks, progress)
	if err != nil {
		return nil, err
	}

	return &VideoSummary{
		VideoID:   videoID,
		Summary:   summary,
		Language:  tr.Language,
		Generated: tr.Generated,
		Source:    tr.Source,
		Chunks:    len(chunks),
	}, nil
}
