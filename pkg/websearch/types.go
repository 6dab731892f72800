package websearch

import "context"

// WebSearchService defines the interface every search provider implements
type WebSearchService interface {
	// Name is the human readable provider name used in prompts and logs
	Name() string

	// Search performs a search with the default options
	Search(ctx context.Context, query string) (*SearchResult, error)

	// SearchWithOptions performs a search with additional options
	SearchWithOptions(ctx context.Context, query string, options *SearchOptions) (*SearchResult, error)
}

// SearchResult represents the response from a search operation
type SearchResult struct {
	Source    string       `json:"source"`
	Query     string       `json:"query"`
	Results   []SearchItem `json:"results"`
	Total     int          `json:"total,omitempty"`
	Duration  string       `json:"duration,omitempty"`
	Timestamp int64        `json:"timestamp,omitempty"`
}

// SearchItem represents a single search result item
type SearchItem struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Snippet       string   `json:"snippet"`
	SiteName      string   `json:"site_name,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Authors       []string `json:"authors,omitempty"`
}

// SearchOptions provides additional configuration for search operations
type SearchOptions struct {
	// Number of results to return (default: 10)
	NumResults int `json:"num_results,omitempty"`

	// Language filter (e.g., "en", "de"); selects the Wikipedia edition
	Language string `json:"language,omitempty"`

	// Region filter in DuckDuckGo form (e.g., "us-en", "wt-wt")
	Region string `json:"region,omitempty"`

	// Search depth for Tavily ("basic", "advanced")
	Depth string `json:"depth,omitempty"`
}

// Config holds configuration shared by the search providers
type Config struct {
	// Tavily API key; the other providers are keyless
	TavilyKey string

	// Endpoint overrides, mostly for tests
	DuckDuckGoURL string
	WikipediaURL  string
	ArxivURL      string
	TavilyURL     string

	// Default search options
	DefaultOptions *SearchOptions

	// HTTP client timeout in seconds (default: 30)
	Timeout int
}

// SearchError represents an error that occurred during search
type SearchError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"status,omitempty"`
}

func (e *SearchError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
