package websearch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const defaultArxivURL = "https://export.arxiv.org/api/query"

type arxiv struct {
	client
}

// NewArxiv queries the arXiv Atom export API.
func NewArxiv(config Config) WebSearchService {
	if config.ArxivURL == "" {
		config.ArxivURL = defaultArxivURL
	}
	return &arxiv{client: newClient(config)}
}

func (a *arxiv) Name() string { return "arXiv" }

type arxivFeed struct {
	Entries []struct {
		ID        string `xml:"id"`
		Title     string `xml:"title"`
		Summary   string `xml:"summary"`
		Published string `xml:"published"`
		Authors   []struct {
			Name string `xml:"name"`
		} `xml:"author"`
	} `xml:"entry"`
}

func (a *arxiv) Search(ctx context.Context, query string) (*SearchResult, error) {
	return a.SearchWithOptions(ctx, query, nil)
}

func (a *arxiv) SearchWithOptions(ctx context.Context, query string, options *SearchOptions) (*SearchResult, error) {
	started := time.Now()
	opts := a.mergeOptions(options)

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprint(opts.NumResults))
	body, err := a.get(ctx, a.config.ArxivURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, parseError("arXiv feed", err)
	}

	items := make([]SearchItem, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		authors := make([]string, 0, len(e.Authors))
		for _, au := range e.Authors {
			authors = append(authors, strings.TrimSpace(au.Name))
		}
		published := strings.TrimSpace(e.Published)
		if len(published) >= 10 {
			published = published[:10]
		}
		items = append(items, SearchItem{
			Title:         collapseSpace(e.Title),
			URL:           strings.TrimSpace(e.ID),
			Snippet:       collapseSpace(e.Summary),
			PublishedDate: published,
			Authors:       authors,
		})
	}
	return finish(a.Name(), query, items, started), nil
}

// collapseSpace folds the hard line wraps arXiv puts in titles and abstracts.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
