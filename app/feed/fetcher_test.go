package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>@alice / Twitter</title>
    <link>https://nitter.net/alice</link>
    <item>
      <title>Newest post</title>
      <link>https://nitter.net/alice/status/3</link>
      <guid>https://nitter.net/alice/status/3</guid>
      <description>&lt;p&gt;Newest post&lt;/p&gt;</description>
    </item>
    <item>
      <title>RT @bob: reshared</title>
      <link>https://nitter.net/alice/status/2</link>
      <guid>https://nitter.net/alice/status/2</guid>
      <description>&lt;p&gt;RT @bob: reshared&lt;/p&gt;</description>
    </item>
    <item>
      <title>Older post</title>
      <link>https://nitter.net/alice/status/1</link>
      <guid>https://nitter.net/alice/status/1</guid>
      <description>&lt;p&gt;Older post&lt;/p&gt;</description>
    </item>
  </channel>
</rss>`

func newTestFetcher(serverURL string) *Fetcher {
	return NewFetcher(http.DefaultClient, NewEntryParser(),
		serverURL+"/%s/rss", "test-agent", 5*time.Second)
}

func TestFetcher_Run(t *testing.T) {
	var gotPath, gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUserAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, testFeed)
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	items, err := fetcher.Run(context.Background(), "alice", FetchPolicy{Limit: 10})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if gotPath != "/alice/rss" {
		t.Errorf("Expected path '/alice/rss', got %q", gotPath)
	}
	if gotUserAgent != "test-agent" {
		t.Errorf("Expected custom user agent, got %q", gotUserAgent)
	}

	// The repost is excluded; feed order is preserved for the rest.
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].MainText != "Newest post" {
		t.Errorf("Expected newest item first, got %q", items[0].MainText)
	}
	if items[1].MainText != "Older post" {
		t.Errorf("Expected older item second, got %q", items[1].MainText)
	}
	if items[0].ID != "https://nitter.net/alice/status/3" {
		t.Errorf("Unexpected item id: %q", items[0].ID)
	}
	if items[0].Account != "alice" {
		t.Errorf("Expected account 'alice', got %q", items[0].Account)
	}
}

func TestFetcher_LimitStopsScan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testFeed)
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	items, err := fetcher.Run(context.Background(), "alice", FetchPolicy{Limit: 1})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].MainText != "Newest post" {
		t.Errorf("Expected the first accepted item, got %q", items[0].MainText)
	}
}

func TestFetcher_IncludeReposts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testFeed)
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	items, err := fetcher.Run(context.Background(), "alice", FetchPolicy{Limit: 10, IncludeReposts: true})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items with reposts included, got %d", len(items))
	}
	if !items[1].IsRepost {
		t.Error("Expected second item to be flagged as repost")
	}
}

func TestFetcher_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	items, err := fetcher.Run(context.Background(), "alice", FetchPolicy{Limit: 10})

	if err == nil {
		t.Fatal("Expected error on non-2xx response")
	}
	if len(items) != 0 {
		t.Errorf("Expected no items on failure, got %d", len(items))
	}
}

func TestFetcher_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	fetcher := newTestFetcher(server.URL)
	_, err := fetcher.Run(context.Background(), "alice", FetchPolicy{Limit: 10})

	if err == nil {
		t.Fatal("Expected error on connection failure")
	}
}

func TestFetcher_MalformedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	_, err := fetcher.Run(context.Background(), "alice", FetchPolicy{Limit: 10})

	if err == nil {
		t.Fatal("Expected error on malformed feed document")
	}
}
