package transcript

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedHost replays a fixed sequence of results, one per call.
type scriptedHost struct {
	name    string
	results []error
	calls   int
}

func (h *scriptedHost) Name() string { return h.name }

func (h *scriptedHost) Fetch(_ context.Context, videoID string, _ []string) (*Transcript, error) {
	i := h.calls
	h.calls++
	if i < len(h.results) && h.results[i] != nil {
		return nil, h.results[i]
	}
	return &Transcript{VideoID: videoID, Source: h.name, Entries: []Entry{{Text: "hello"}, {Text: "world"}}}, nil
}

func recordSleeps(waits *[]time.Duration) Option {
	return WithSleep(func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	})
}

func TestFetchRetriesRateLimitedHost(t *testing.T) {
	a := &scriptedHost{name: "a", results: []error{ErrRateLimited, ErrRateLimited, nil}}
	b := &scriptedHost{name: "b"}
	var waits []time.Duration

	f := NewFetcher([]Host{a, b}, recordSleeps(&waits))
	tr, err := f.Fetch(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, "a", tr.Source)
	assert.Equal(t, "hello world", tr.Text())
	assert.Equal(t, 3, a.calls)
	assert.Equal(t, 0, b.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, waits)
}

func TestFetchSkipsHostWithoutTranscript(t *testing.T) {
	a := &scriptedHost{name: "a", results: []error{ErrNoTranscript}}
	b := &scriptedHost{name: "b"}
	var waits []time.Duration

	f := NewFetcher([]Host{a, b}, recordSleeps(&waits))
	tr, err := f.Fetch(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, "b", tr.Source)
	assert.Equal(t, 1, a.calls)
	assert.Empty(t, waits)
}

func TestFetchAllHostsExhausted(t *testing.T) {
	a := &scriptedHost{name: "a", results: []error{ErrRateLimited, ErrRateLimited, ErrRateLimited}}
	b := &scriptedHost{name: "b", results: []error{ErrNoTranscript}}
	var waits []time.Duration

	f := NewFetcher([]Host{a, b}, recordSleeps(&waits))
	_, err := f.Fetch(context.Background(), "abc123")

	var retrievalErr *RetrievalError
	require.True(t, errors.As(err, &retrievalErr))
	assert.Equal(t, "abc123", retrievalErr.VideoID)
	assert.Contains(t, err.Error(), "abc123")
	assert.ErrorIs(t, err, ErrNoTranscript)
	assert.Equal(t, 3, a.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, waits)
}

func TestFetchStopsWhenContextCancelled(t *testing.T) {
	a := &scriptedHost{name: "a", results: []error{ErrRateLimited, ErrRateLimited, ErrRateLimited}}
	b := &scriptedHost{name: "b"}
	ctx, cancel := context.WithCancel(context.Background())

	f := NewFetcher([]Host{a, b}, WithSleep(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))
	_, err := f.Fetch(ctx, "abc123")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls)
}

func TestFetchWithoutHosts(t *testing.T) {
	_, err := NewFetcher(nil).Fetch(context.Background(), "abc123")
	var retrievalErr *RetrievalError
	assert.True(t, errors.As(err, &retrievalErr))
}

func TestPickTrack(t *testing.T) {
	manualDE := Track{LanguageCode: "de", Name: "German"}
	asrEN := Track{LanguageCode: "en", Generated: true}
	manualEN := Track{LanguageCode: "en"}
	enGB := Track{LanguageCode: "en-GB"}

	tests := []struct {
		name   string
		tracks []Track
		langs  []string
		want   Track
	}{
		{"manual beats generated", []Track{asrEN, manualEN}, []string{"en"}, manualEN},
		{"generated in preferred language", []Track{manualDE, asrEN}, []string{"en"}, asrEN},
		{"english variant", []Track{manualDE, enGB}, []string{"fr"}, enGB},
		{"first available", []Track{manualDE}, []string{"en"}, manualDE},
		{"language order wins", []Track{manualEN, manualDE}, []string{"de", "en"}, manualDE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickTrack(tt.tracks, tt.langs)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := pickTrack(nil, []string{"en"})
	assert.False(t, ok)
}
