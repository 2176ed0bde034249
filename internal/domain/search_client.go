package domain

import "context"

// WebResult is one hit returned by a web search provider. Providers fill
// whichever fields they have; some only return a single raw text blob.
type WebResult struct {
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	// Raw holds provider output that was not split into fields, e.g.
	// "snippet: ..., title: ..., link: ..." records concatenated together.
	Raw string `json:"raw,omitempty"`
}

// WebSearcher runs a free-text web search.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]WebResult, error)
}
