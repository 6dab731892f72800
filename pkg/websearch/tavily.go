package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const (
	defaultTavilyURL = "https://api.tavily.com/search"
	tavilyMaxResults = 20
)

type tavily struct {
	client
}

// NewTavily calls the Tavily search API. A missing key fails at search time.
func NewTavily(config Config) WebSearchService {
	if config.TavilyURL == "" {
		config.TavilyURL = defaultTavilyURL
	}
	return &tavily{client: newClient(config)}
}

func (t *tavily) Name() string { return "Tavily" }

type tavilyRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

func (t *tavily) Search(ctx context.Context, query string) (*SearchResult, error) {
	return t.SearchWithOptions(ctx, query, nil)
}

func (t *tavily) SearchWithOptions(ctx context.Context, query string, options *SearchOptions) (*SearchResult, error) {
	if t.config.TavilyKey == "" {
		return nil, &SearchError{
			Code:    "missing_api_key",
			Message: "Tavily API key is required",
		}
	}

	started := time.Now()
	opts := t.mergeOptions(options)
	if opts.NumResults > tavilyMaxResults {
		opts.NumResults = tavilyMaxResults
	}

	reqBody, err := json.Marshal(tavilyRequest{Query: query, MaxResults: opts.NumResults, SearchDepth: opts.Depth})
	if err != nil {
		return nil, &SearchError{
			Code:    "marshal_error",
			Message: "Failed to marshal search request",
			Details: err.Error(),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.TavilyURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, requestError(err)
	}
	req.Header.Set("Authorization", "Bearer "+t.config.TavilyKey)
	req.Header.Set("Content-Type", "application/json")

	body, err := t.do(req)
	if err != nil {
		return nil, err
	}

	var resp tavilyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, parseError("Tavily response", err)
	}

	items := make([]SearchItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		items = append(items, SearchItem{
			Title:         r.Title,
			URL:           r.URL,
			Snippet:       r.Content,
			PublishedDate: r.PublishedDate,
		})
	}
	return finish(t.Name(), query, items, started), nil
}
