// Package search wraps the web-search collaborators (Tavily, Brave) behind
// one interface and formats their results into LLM prompt context.
package search

import (
	"context"
	"time"
)

// Client defines the interface for external search APIs.
type Client interface {
	// Search performs a web search and returns results.
	Search(ctx context.Context, query string, opts Options) (*Response, error)
}

// Options configures search behavior.
type Options struct {
	MaxResults int    // Maximum number of results to return
	Freshness  string // Recency filter: "pw" (past week), "pm" (past month); provider-specific
}

// Response contains search results from an external API.
type Response struct {
	Answer    string // Provider-synthesized answer, if any
	Results   []Result
	Query     string
	Timestamp time.Time
}

// Result represents a single search result.
type Result struct {
	Title       string     // Page title
	URL         string     // Page URL
	Snippet     string     // Content snippet/description
	PublishedAt *time.Time // Publication date (if available)
	Score       float64    // Relevance score (if available)
}
