package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	userAgent       = "Mozilla/5.0 (compatible; TutorAI/1.0; +https://github.com)"
	maxResponseSize = 4 << 20
)

// client carries what every provider shares: config with defaults applied
// and an HTTP client.
type client struct {
	config *Config
	http   *http.Client
}

func newClient(config Config) client {
	if config.Timeout == 0 {
		config.Timeout = 30
	}
	if config.DefaultOptions == nil {
		config.DefaultOptions = &SearchOptions{
			NumResults: 10,
			Language:   "en",
			Region:     "wt-wt",
			Depth:      "basic",
		}
	}
	return client{
		config: &config,
		http: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}
}

// mergeOptions merges user options with defaults
func (c *client) mergeOptions(userOptions *SearchOptions) *SearchOptions {
	if userOptions == nil {
		userOptions = &SearchOptions{}
	}

	merged := *c.config.DefaultOptions

	if userOptions.NumResults > 0 {
		merged.NumResults = userOptions.NumResults
	}
	if userOptions.Language != "" {
		merged.Language = userOptions.Language
	}
	if userOptions.Region != "" {
		merged.Region = userOptions.Region
	}
	if userOptions.Depth != "" {
		merged.Depth = userOptions.Depth
	}
	if merged.NumResults <= 0 {
		merged.NumResults = 10
	}

	return &merged
}

// do executes the request and returns the body of a 200 response.
func (c *client) do(req *http.Request) ([]byte, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &SearchError{
			Code:    "network_error",
			Message: "Network request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &SearchError{
			Code:    "response_read_failed",
			Message: "Failed to read response body",
			Details: err.Error(),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, handleHTTPError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, requestError(err)
	}
	return c.do(req)
}

func requestError(err error) *SearchError {
	return &SearchError{
		Code:    "request_creation_failed",
		Message: "Failed to create HTTP request",
		Details: err.Error(),
	}
}

func parseError(what string, err error) *SearchError {
	return &SearchError{
		Code:    "response_parse_failed",
		Message: "Failed to parse " + what,
		Details: err.Error(),
	}
}

// handleHTTPError converts HTTP errors to SearchError
func handleHTTPError(statusCode int, body []byte) *SearchError {
	var errorResponse struct {
		Error  json.RawMessage `json:"error"`
		Detail struct {
			Error string `json:"error"`
		} `json:"detail"`
	}

	if err := json.Unmarshal(body, &errorResponse); err == nil {
		if msg := providerMessage(errorResponse.Error); msg != "" {
			return &SearchError{Code: fmt.Sprintf("http_%d", statusCode), Message: msg, Status: statusCode}
		}
		if errorResponse.Detail.Error != "" {
			return &SearchError{Code: fmt.Sprintf("http_%d", statusCode), Message: errorResponse.Detail.Error, Status: statusCode}
		}
	}

	// Fallback to generic error
	message := "HTTP request failed"
	switch statusCode {
	case 400:
		message = "Bad request - invalid parameters"
	case 401:
		message = "Unauthorized - invalid API key"
	case 403:
		message = "Forbidden - insufficient permissions"
	case 404:
		message = "Not found"
	case 429:
		message = "Rate limit exceeded"
	case 500:
		message = "Internal server error"
	case 502:
		message = "Bad gateway"
	case 503:
		message = "Service unavailable"
	}

	details := strings.TrimSpace(string(body))
	if len(details) > 512 {
		details = details[:512]
	}
	return &SearchError{
		Code:    fmt.Sprintf("http_%d", statusCode),
		Message: message,
		Details: details,
		Status:  statusCode,
	}
}

// providerMessage accepts both {"error":"msg"} and {"error":{"message":"msg"}}.
func providerMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Info    string `json:"info"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Info
	}
	return ""
}

func finish(source, query string, items []SearchItem, started time.Time) *SearchResult {
	if items == nil {
		items = []SearchItem{}
	}
	return &SearchResult{
		Source:    source,
		Query:     query,
		Results:   items,
		Total:     len(items),
		Duration:  time.Since(started).Round(time.Millisecond).String(),
		Timestamp: time.Now().Unix(),
	}
}
