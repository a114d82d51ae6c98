package feed

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Fetcher retrieves one account's syndication feed over HTTP and
// normalizes its entries.
type Fetcher struct {
	httpClient   *http.Client
	parser       *EntryParser
	gofeedParser *gofeed.Parser
	urlTemplate  string
	userAgent    string
	timeout      time.Duration
}

func NewFetcher(httpClient *http.Client, parser *EntryParser, urlTemplate, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient:   httpClient,
		parser:       parser,
		gofeedParser: gofeed.NewParser(),
		urlTemplate:  urlTemplate,
		userAgent:    userAgent,
		timeout:      timeout,
	}
}

// Run fetches up to policy.Limit normalized items for the account, in feed
// document order (most recent first). A transport or feed parse failure
// yields no items and an error the caller is expected to absorb.
func (f *Fetcher) Run(ctx context.Context, account string, policy FetchPolicy) ([]Item, error) {
	url := fmt.Sprintf(f.urlTemplate, account)

	data, err := f.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed for @%s: %w", account, err)
	}

	parsed, err := f.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed for @%s: %w", account, err)
	}

	slog.Debug("Feed fetched", "account", account, "entries", len(parsed.Items))

	items := make([]Item, 0, policy.Limit)
	for _, entry := range parsed.Items {
		raw := RawEntry{
			ID:      entry.GUID,
			Title:   entry.Title,
			Link:    entry.Link,
			Summary: cmp.Or(entry.Description, entry.Content),
		}

		item, dropReason := f.parser.Run(account, raw, !policy.IncludeReposts)
		if item == nil {
			slog.Debug("Entry dropped", "account", account, "reason", dropReason, "title", raw.Title)
			continue
		}

		items = append(items, *item)
		if len(items) >= policy.Limit {
			break
		}
	}

	return items, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
