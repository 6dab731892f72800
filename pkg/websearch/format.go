package websearch

import (
	"fmt"
	"strings"
)

// Format renders a result as plain text in the layout of its source, ready
// to be handed to a language model or shown to a user.
func Format(r *SearchResult) string {
	if r == nil || len(r.Results) == 0 {
		name := "Search"
		if r != nil && r.Source != "" {
			name = r.Source
		}
		return fmt.Sprintf("No good %s Result was found", name)
	}

	switch r.Source {
	case "Wikipedia":
		return formatWikipedia(r.Results)
	case "arXiv":
		return formatArxiv(r.Results)
	case "Tavily":
		return formatTavily(r.Results)
	default:
		return formatSnippets(r.Results)
	}
}

func formatSnippets(items []SearchItem) string {
	blocks := make([]string, 0, len(items))
	for _, it := range items {
		blocks = append(blocks, fmt.Sprintf("%s\n%s\n%s", it.Title, it.URL, it.Snippet))
	}
	return strings.Join(blocks, "\n\n")
}

func formatWikipedia(items []SearchItem) string {
	blocks := make([]string, 0, len(items))
	for _, it := range items {
		blocks = append(blocks, fmt.Sprintf("Page: %s\nSummary: %s", it.Title, it.Snippet))
	}
	out := strings.Join(blocks, "\n\n")
	if r := []rune(out); len(r) > wikipediaMaxChars {
		out = string(r[:wikipediaMaxChars])
	}
	return out
}

func formatArxiv(items []SearchItem) string {
	blocks := make([]string, 0, len(items))
	for _, it := range items {
		blocks = append(blocks, fmt.Sprintf("Published: %s\nTitle: %s\nAuthors: %s\nURL: %s\nSummary: %s",
			it.PublishedDate, it.Title, strings.Join(it.Authors, ", "), it.URL, it.Snippet))
	}
	return strings.Join(blocks, "\n\n")
}

func formatTavily(items []SearchItem) string {
	blocks := make([]string, 0, len(items))
	for _, it := range items {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nURL: %s\nContent: %s\n", it.Title, it.URL, it.Snippet))
	}
	return strings.Join(blocks, "\n")
}
