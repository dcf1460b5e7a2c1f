package search

import "context"

// Result is a single ranked evidence snippet.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Response holds the results for one query.
type Response struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

// Provider is the evidence provider contract. Implementations must never
// error for "no results" — an empty Response is the answer in that case;
// errors are reserved for transport failure.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int, deep bool) (*Response, error)
}
