// Package transcript retrieves YouTube video transcripts from an ordered list
// of hosts, retrying rate limited hosts with a linear backoff.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRateLimited signals the host asked us to slow down. The fetcher waits and retries.
	ErrRateLimited = errors.New("rate limited")
	// ErrNoTranscript signals the host has no transcript for the video. The fetcher moves on.
	ErrNoTranscript = errors.New("no transcript available")
)

// Entry is one timed caption line.
type Entry struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

type Transcript struct {
	VideoID   string  `json:"video_id"`
	Language  string  `json:"language"`
	Generated bool    `json:"generated"`
	Source    string  `json:"source"`
	Entries   []Entry `json:"entries"`
}

// Text joins the caption lines with single spaces.
func (t *Transcript) Text() string {
	parts := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		if s := strings.TrimSpace(e.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Host is one place a transcript can be downloaded from.
type Host interface {
	Name() string
	Fetch(ctx context.Context, videoID string, langs []string) (*Transcript, error)
}

// RetrievalError is returned once every host has been exhausted.
type RetrievalError struct {
	VideoID string
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("could not retrieve transcript for video %s: %v", e.VideoID, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Track describes one caption track offered by a host.
type Track struct {
	LanguageCode string
	Name         string
	Generated    bool
	URL          string
}

// pickTrack prefers a manual track in a preferred language, then a
// generated one, then anything English, then whatever comes first.
func pickTrack(tracks []Track, langs []string) (Track, bool) {
	if len(tracks) == 0 {
		return Track{}, false
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang && !t.Generated {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return tracks[0], true
}
