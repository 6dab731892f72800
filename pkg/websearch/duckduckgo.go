package websearch

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

type duckDuckGo struct {
	client
}

// NewDuckDuckGo searches the DuckDuckGo HTML endpoint. No key is needed.
func NewDuckDuckGo(config Config) WebSearchService {
	if config.DuckDuckGoURL == "" {
		config.DuckDuckGoURL = defaultDuckDuckGoURL
	}
	return &duckDuckGo{client: newClient(config)}
}

func (d *duckDuckGo) Name() string { return "DuckDuckGo" }

func (d *duckDuckGo) Search(ctx context.Context, query string) (*SearchResult, error) {
	return d.SearchWithOptions(ctx, query, nil)
}

func (d *duckDuckGo) SearchWithOptions(ctx context.Context, query string, options *SearchOptions) (*SearchResult, error) {
	started := time.Now()
	opts := d.mergeOptions(options)

	form := url.Values{}
	form.Set("q", query)
	form.Set("kl", opts.Region)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.DuckDuckGoURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, requestError(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://html.duckduckgo.com/")

	body, err := d.do(req)
	if err != nil {
		return nil, err
	}

	items, err := parseDuckDuckGoHTML(body, opts.NumResults)
	if err != nil {
		return nil, err
	}
	return finish(d.Name(), query, items, started), nil
}

// parseDuckDuckGoHTML extracts results from the HTML lite page.
func parseDuckDuckGoHTML(data []byte, limit int) ([]SearchItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, parseError("DuckDuckGo HTML", err)
	}

	var items []SearchItem
	doc.Find(".result, .web-result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a, .result__title a").First()
		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if !ok || title == "" {
			return true
		}
		href = unwrapDuckDuckGoURL(href)
		if href == "" {
			return true
		}

		items = append(items, SearchItem{
			Title:    title,
			URL:      href,
			Snippet:  strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			SiteName: strings.TrimSpace(s.Find(".result__url").First().Text()),
		})
		return len(items) < limit
	})
	return items, nil
}

// unwrapDuckDuckGoURL extracts the target of //duckduckgo.com/l/?uddg=... redirects.
func unwrapDuckDuckGoURL(href string) string {
	if strings.Contains(href, "duckduckgo.com/l/") || strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if target := u.Query().Get("uddg"); target != "" {
				return target
			}
		}
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return ""
}
