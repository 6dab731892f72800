package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultYouTubeURL = "https://www.youtube.com"
	browserUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxPageBytes      = 4 << 20
	maxCaptionBytes   = 2 << 20
)

var playerResponseMarker = []byte("ytInitialPlayerResponse = ")

// YouTubeHost reads caption tracks from the public watch page and downloads
// the chosen track as timedtext XML.
type YouTubeHost struct {
	BaseURL string
	Client  *http.Client
}

func NewYouTubeHost(client *http.Client) *YouTubeHost {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &YouTubeHost{BaseURL: defaultYouTubeURL, Client: client}
}

func (h *YouTubeHost) Name() string { return "youtube" }

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Renderer struct {
			CaptionTracks []struct {
				BaseURL      string `json:"baseUrl"`
				LanguageCode string `json:"languageCode"`
				Kind         string `json:"kind"`
				Name         struct {
					SimpleText string `json:"simpleText"`
				} `json:"name"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type timedText struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

func (h *YouTubeHost) Fetch(ctx context.Context, videoID string, langs []string) (*Transcript, error) {
	page, err := h.get(ctx, strings.TrimRight(h.BaseURL, "/")+"/watch?v="+url.QueryEscape(videoID), maxPageBytes)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	if bytes.Contains(page, []byte(`class="g-recaptcha"`)) {
		return nil, fmt.Errorf("watch page captcha: %w", ErrRateLimited)
	}

	player, err := parsePlayerResponse(page)
	if err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(player.Captions.Renderer.CaptionTracks))
	for _, ct := range player.Captions.Renderer.CaptionTracks {
		tracks = append(tracks, Track{
			LanguageCode: ct.LanguageCode,
			Name:         ct.Name.SimpleText,
			Generated:    ct.Kind == "asr",
			URL:          strings.Replace(ct.BaseURL, "&fmt=srv3", "", 1),
		})
	}
	track, ok := pickTrack(tracks, langs)
	if !ok {
		if s := player.PlayabilityStatus; s.Status != "" && s.Status != "OK" {
			return nil, fmt.Errorf("video %s is %s (%s): %w", videoID, strings.ToLower(s.Status), s.Reason, ErrNoTranscript)
		}
		return nil, ErrNoTranscript
	}

	body, err := h.get(ctx, track.URL, maxCaptionBytes)
	if err != nil {
		return nil, fmt.Errorf("timedtext: %w", err)
	}
	entries, err := parseTimedText(body)
	if err != nil {
		return nil, err
	}
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

func (h *YouTubeHost) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.AddCookie(&http.Cookie{Name: "CONSENT", Value: "YES+1"})

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// parsePlayerResponse decodes the player JSON embedded in the watch page.
func parsePlayerResponse(page []byte) (*playerResponse, error) {
	idx := bytes.Index(page, playerResponseMarker)
	if idx < 0 {
		return nil, fmt.Errorf("player response not found in watch page")
	}
	var player playerResponse
	dec := json.NewDecoder(bytes.NewReader(page[idx+len(playerResponseMarker):]))
	if err := dec.Decode(&player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	return &player, nil
}

func parseTimedText(body []byte) ([]Entry, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}
	entries := make([]Entry, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(line.Start, 64)
		dur, _ := strconv.ParseFloat(line.Dur, 64)
		entries = append(entries, Entry{Start: start, Duration: dur, Text: text})
	}
	return entries, nil
}

// statusError maps HTTP statuses onto the fetcher's retry signals.
func statusError(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusTooManyRequests, code == http.StatusServiceUnavailable:
		return fmt.Errorf("status %d: %w", code, ErrRateLimited)
	case code == http.StatusNotFound:
		return fmt.Errorf("status %d: %w", code, ErrNoTranscript)
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
