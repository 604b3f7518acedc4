package newsapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchNews_BuildsQueryAndParses(t *testing.T) {
	fixedNow := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	var capturedQuery, capturedFrom, capturedSize string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/everything" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		capturedQuery = r.URL.Query().Get("q")
		capturedFrom = r.URL.Query().Get("from")
		capturedSize = r.URL.Query().Get("pageSize")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"status": "ok",
			"articles": [
				{
					"title": "Nvidia beats earnings expectations",
					"url": "https://example.com/nvda-earnings",
					"source": {"name": "Example Wire"},
					"description": "Record datacenter revenue.",
					"publishedAt": "2026-08-27T21:30:00Z"
				},
				{"title": "", "url": "https://example.com/blank"}
			]
		}`)
	}))
	defer srv.Close()

	client := NewClient("news-key", WithBaseURL(srv.URL), WithClock(func() time.Time { return fixedNow }))
	items, err := client.FetchNews(context.Background(), "NVDA", "NVIDIA Corporation")
	if err != nil {
		t.Fatalf("FetchNews failed: %v", err)
	}

	if capturedQuery != `"NVIDIA Corporation" OR NVDA` {
		t.Errorf("unexpected query %q", capturedQuery)
	}
	if capturedFrom != "2026-08-26" {
		t.Errorf("expected from 2026-08-26, got %s", capturedFrom)
	}
	if capturedSize != "5" {
		t.Errorf("expected pageSize 5, got %s", capturedSize)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item (blank title dropped), got %d", len(items))
	}
	item := items[0]
	if item.Symbol != "NVDA" {
		t.Errorf("expected symbol NVDA, got %s", item.Symbol)
	}
	if item.Headline != "Nvidia beats earnings expectations" {
		t.Errorf("unexpected headline %q", item.Headline)
	}
	if item.Source != "Example Wire" {
		t.Errorf("expected source Example Wire, got %s", item.Source)
	}
	if item.Summary != "Record datacenter revenue." {
		t.Errorf("unexpected summary %q", item.Summary)
	}
	if got := item.Date.Format(time.RFC3339); got != "2026-08-27T21:30:00Z" {
		t.Errorf("unexpected date %s", got)
	}
}

func TestFetchNews_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": "error", "message": "apiKeyInvalid"}`)
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	if _, err := client.FetchNews(context.Background(), "NVDA", "NVIDIA Corporation"); err == nil {
		t.Fatal("expected error on status=error body, got nil")
	}
}

func TestFetchNews_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("news-key", WithBaseURL(srv.URL))
	if _, err := client.FetchNews(context.Background(), "NVDA", "NVIDIA Corporation"); err == nil {
		t.Fatal("expected error on 429, got nil")
	}
}
