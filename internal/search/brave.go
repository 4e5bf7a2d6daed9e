package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBraveBaseURL is the Brave web search endpoint
	DefaultBraveBaseURL = "https://api.search.brave.com/res/v1/web/search"
	// DefaultBraveTimeout is the default HTTP timeout for Brave requests
	DefaultBraveTimeout = 15 * time.Second
)

// freshKeywords trigger a past-month recency filter when present in a query.
var freshKeywords = []string{
	"latest", "recent", "new", "upcoming", "released", "this year", "this month",
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june", "july", "august",
	"september", "october", "november", "december",
}

// BraveClient implements Client for the Brave Search API.
type BraveClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewBraveClient creates a new Brave search client.
func NewBraveClient(apiKey string) *BraveClient {
	return NewBraveClientWithConfig(apiKey, DefaultBraveBaseURL, DefaultBraveTimeout)
}

// NewBraveClientWithConfig creates a Brave client with a custom endpoint and timeout.
func NewBraveClientWithConfig(apiKey string, baseURL string, timeout time.Duration) *BraveClient {
	return &BraveClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// Search implements Client for Brave.
func (c *BraveClient) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	if opts.MaxResults == 0 {
		opts.MaxResults = 10
	}
	if opts.MaxResults > 20 {
		opts.MaxResults = 20
	}

	freshness := opts.Freshness
	if freshness == "" {
		freshness = c.detectFreshness(query)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(opts.MaxResults))
	if freshness != "" {
		params.Set("freshness", freshness)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Accept-Encoding is left to the transport: setting it by hand would
	// disable Go's transparent gzip decompression and hand raw gzip bytes
	// to the JSON decoder.
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var braveResp braveResponse
	if err := json.Unmarshal(body, &braveResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	items := braveResp.Web.Results
	if len(items) > opts.MaxResults {
		items = items[:opts.MaxResults]
	}

	results := make([]Result, len(items))
	for i, r := range items {
		results[i] = Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		}
	}

	return &Response{
		Results:   results,
		Query:     query,
		Timestamp: time.Now(),
	}, nil
}

// detectFreshness maps recency cues in the query to Brave freshness codes:
// a current/previous year mention narrows to the past week, month names and
// recency keywords to the past month.
func (c *BraveClient) detectFreshness(query string) string {
	lower := strings.ToLower(query)
	currentYear := c.now().Year()

	if strings.Contains(query, strconv.Itoa(currentYear)) || strings.Contains(query, strconv.Itoa(currentYear-1)) {
		return "pw"
	}
	for _, month := range monthNames {
		if strings.Contains(lower, month) {
			return "pm"
		}
	}
	for _, kw := range freshKeywords {
		if strings.Contains(lower, kw) {
			return "pm"
		}
	}
	return ""
}

type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age"`
}
