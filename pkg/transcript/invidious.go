package transcript

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// InvidiousHost downloads captions from an Invidious mirror's public API.
type InvidiousHost struct {
	BaseURL string
	Client  *http.Client
}

func NewInvidiousHost(baseURL string, client *http.Client) *InvidiousHost {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &InvidiousHost{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

func (h *InvidiousHost) Name() string {
	if u, err := url.Parse(h.BaseURL); err == nil && u.Host != "" {
		return "invidious:" + u.Host
	}
	return "invidious"
}

type invidiousCaptions struct {
	Captions []struct {
		Label        string `json:"label"`
		LanguageCode string `json:"languageCode"`
		URL          string `json:"url"`
	} `json:"captions"`
}

func (h *InvidiousHost) Fetch(ctx context.Context, videoID string, langs []string) (*Transcript, error) {
	body, err := h.get(ctx, h.BaseURL+"/api/v1/captions/"+url.PathEscape(videoID))
	if err != nil {
		return nil, fmt.Errorf("caption list: %w", err)
	}

	var list invidiousCaptions
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode caption list: %w", err)
	}
	tracks := make([]Track, 0, len(list.Captions))
	for _, c := range list.Captions {
		tracks = append(tracks, Track{
			LanguageCode: c.LanguageCode,
			Name:         c.Label,
			Generated:    strings.Contains(strings.ToLower(c.Label), "auto-generated"),
			URL:          c.URL,
		})
	}
	track, ok := pickTrack(tracks, langs)
	if !ok {
		return nil, ErrNoTranscript
	}

	trackURL := track.URL
	if strings.HasPrefix(trackURL, "/") {
		trackURL = h.BaseURL + trackURL
	}
	vtt, err := h.get(ctx, trackURL)
	if err != nil {
		return nil, fmt.Errorf("caption track: %w", err)
	}
	entries := parseWebVTT(string(vtt))
	if len(entries) == 0 {
		return nil, fmt.Errorf("empty %s track: %w", track.LanguageCode, ErrNoTranscript)
	}

	return &Transcript{
		VideoID:   videoID,
		Language:  track.LanguageCode,
		Generated: track.Generated,
		Source:    h.Name(),
		Entries:   entries,
	}, nil
}

func (h *InvidiousHost) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxCaptionBytes))
}

var (
	vttTimingRE = regexp.MustCompile(`^(\S+)\s+-->\s+(\S+)`)
	vttTagRE    = regexp.MustCompile(`<[^>]+>`)
)

// parseWebVTT reads cue timings and text, dropping markup tags.
func parseWebVTT(doc string) []Entry {
	var (
		entries []Entry
		current *Entry
		lines   []string
	)
	flush := func() {
		if current != nil {
			if text := strings.TrimSpace(strings.Join(lines, " ")); text != "" {
				current.Text = text
				entries = append(entries, *current)
			}
		}
		current = nil
		lines = nil
	}

	sc := bufio.NewScanner(strings.NewReader(doc))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			flush()
			continue
		}
		if m := vttTimingRE.FindStringSubmatch(line); m != nil {
			flush()
			start, end := vttSeconds(m[1]), vttSeconds(m[2])
			current = &Entry{Start: start, Duration: end - start}
			continue
		}
		if current != nil {
			lines = append(lines, strings.TrimSpace(vttTagRE.ReplaceAllString(line, "")))
		}
	}
	flush()
	return entries
}

// vttSeconds parses hh:mm:ss.mmm or mm:ss.mmm.
func vttSeconds(ts string) float64 {
	parts := strings.Split(ts, ":")
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0
		}
		total = total*60 + v
	}
	return total
}
