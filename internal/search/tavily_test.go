package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTavilySearch(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer": "synthesized",
			"results": []map[string]any{
				{
					"title":          "Result A",
					"url":            "https://a.example",
					"content":        "snippet a",
					"score":          0.9,
					"published_date": "2025-05-01T00:00:00Z",
				},
			},
		})
	}))
	defer server.Close()

	client := NewTavilyClientWithConfig("secret", server.URL, 5*time.Second)
	resp, err := client.Search(context.Background(), "test query", Options{MaxResults: 3})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if captured["api_key"] != "secret" {
		t.Error("api key must travel in the request body")
	}
	if captured["max_results"] != float64(3) {
		t.Errorf("max_results wrong: %v", captured["max_results"])
	}
	if captured["include_answer"] != true {
		t.Error("include_answer should be requested")
	}

	if resp.Answer != "synthesized" {
		t.Errorf("answer wrong: %q", resp.Answer)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	r := resp.Results[0]
	if r.Title != "Result A" || r.Snippet != "snippet a" || r.Score != 0.9 {
		t.Errorf("result mapping wrong: %+v", r)
	}
	if r.PublishedAt == nil || r.PublishedAt.Month() != time.May {
		t.Errorf("published date not parsed: %v", r.PublishedAt)
	}
}

func TestTavilySearch_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewTavilyClientWithConfig("wrong", server.URL, 5*time.Second)
	if _, err := client.Search(context.Background(), "q", Options{}); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestTavilySearch_ResultCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["max_results"] != float64(20) {
			t.Errorf("max_results should cap at 20, got %v", body["max_results"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer server.Close()

	client := NewTavilyClientWithConfig("k", server.URL, 5*time.Second)
	if _, err := client.Search(context.Background(), "q", Options{MaxResults: 50}); err != nil {
		t.Fatalf("search: %v", err)
	}
}
