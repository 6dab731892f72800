package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Wikipedia results are limited the way the summaries are presented to the model.
const (
	wikipediaTopK     = 3
	wikipediaMaxChars = 4000
)

type wikipedia struct {
	client
}

// NewWikipedia searches Wikipedia and returns page summaries as markdown.
// WikipediaURL defaults to the edition matching the language option.
func NewWikipedia(config Config) WebSearchService {
	return &wikipedia{client: newClient(config)}
}

func (w *wikipedia) Name() string { return "Wikipedia" }

func (w *wikipedia) Search(ctx context.Context, query string) (*SearchResult, error) {
	return w.SearchWithOptions(ctx, query, nil)
}

func (w *wikipedia) SearchWithOptions(ctx context.Context, query string, options *SearchOptions) (*SearchResult, error) {
	started := time.Now()
	opts := w.mergeOptions(options)
	base := w.baseURL(opts.Language)

	limit := opts.NumResults
	if limit > wikipediaTopK {
		limit = wikipediaTopK
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", fmt.Sprint(limit))
	params.Set("format", "json")
	body, err := w.get(ctx, base+"/w/api.php?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var search struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, parseError("Wikipedia search response", err)
	}

	items := make([]SearchItem, 0, len(search.Query.Search))
	for _, hit := range search.Query.Search {
		item, err := w.summary(ctx, base, hit.Title)
		if err != nil {
			var searchErr *SearchError
			if errors.As(err, &searchErr) && searchErr.Status == 404 {
				continue
			}
			return nil, err
		}
		items = append(items, item)
	}
	return finish(w.Name(), query, items, started), nil
}

func (w *wikipedia) baseURL(language string) string {
	if w.config.WikipediaURL != "" {
		return strings.TrimRight(w.config.WikipediaURL, "/")
	}
	if language == "" {
		language = "en"
	}
	return "https://" + language + ".wikipedia.org"
}

func (w *wikipedia) summary(ctx context.Context, base, title string) (SearchItem, error) {
	slug := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	body, err := w.get(ctx, base+"/api/rest_v1/page/summary/"+slug)
	if err != nil {
		return SearchItem{}, err
	}

	var page struct {
		Title       string `json:"title"`
		Extract     string `json:"extract"`
		ExtractHTML string `json:"extract_html"`
		Description string `json:"description"`
		ContentURLs struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return SearchItem{}, parseError("Wikipedia page summary", err)
	}

	snippet := page.Extract
	if page.ExtractHTML != "" {
		if md, err := htmltomarkdown.ConvertString(page.ExtractHTML); err == nil && strings.TrimSpace(md) != "" {
			snippet = md
		}
	}
	if page.Title == "" {
		page.Title = title
	}
	return SearchItem{
		Title:    page.Title,
		URL:      page.ContentURLs.Desktop.Page,
		Snippet:  strings.TrimSpace(snippet),
		SiteName: page.Description,
	}, nil
}
