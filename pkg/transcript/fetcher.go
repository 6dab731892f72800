package transcript

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const defaultAttempts = 3

// Fetcher walks its hosts in order until one returns a transcript.
type Fetcher struct {
	hosts    []Host
	langs    []string
	attempts int
	sleep    func(ctx context.Context, d time.Duration) error
	log      *zap.Logger
}

type Option func(*Fetcher)

func WithLanguages(langs ...string) Option {
	return func(f *Fetcher) {
		if len(langs) > 0 {
			f.langs = langs
		}
	}
}

func WithAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.attempts = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(f *Fetcher) {
		if log != nil {
			f.log = log
		}
	}
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

func NewFetcher(hosts []Host, opts ...Option) *Fetcher {
	f := &Fetcher{
		hosts:    hosts,
		langs:    []string{"en"},
		attempts: defaultAttempts,
		sleep:    sleepContext,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch tries each host up to the attempt limit. A rate limited or failing
// host is retried after 2*attempt seconds; a host without a transcript is
// skipped at once.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	lastErr := errors.New("no transcript hosts configured")

	for _, host := range f.hosts {
		log := f.log.With(zap.String("host", host.Name()), zap.String("video_id", videoID))
		for attempt := 1; attempt <= f.attempts; attempt++ {
			tr, err := host.Fetch(ctx, videoID, f.langs)
			if err == nil {
				log.Debug("transcript fetched", zap.Int("attempt", attempt), zap.Int("entries", len(tr.Entries)))
				return tr, nil
			}
			if ctx.Err() != nil {
				return nil, &RetrievalError{VideoID: videoID, Err: ctx.Err()}
			}

			lastErr = fmt.Errorf("%s: %w", host.Name(), err)
			if errors.Is(err, ErrNoTranscript) {
				log.Info("host has no transcript, trying next host")
				break
			}
			if attempt == f.attempts {
				log.Warn("host exhausted", zap.Int("attempts", attempt), zap.Error(err))
				break
			}

			wait := time.Duration(2*attempt) * time.Second
			log.Warn("transcript attempt failed, backing off",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Bool("rate_limited", errors.Is(err, ErrRateLimited)),
				zap.Error(err))
			if err := f.sleep(ctx, wait); err != nil {
				return nil, &RetrievalError{VideoID: videoID, Err: err}
			}
		}
	}

	return nil, &RetrievalError{VideoID: videoID, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
