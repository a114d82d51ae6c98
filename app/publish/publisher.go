package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/skycomb/skycomb/app/feed"
)

// Image is one downloaded media payload ready for upload.
type Image struct {
	Data []byte
	Alt  string
}

// PostClient is the destination platform's publish capability.
type PostClient interface {
	PostText(ctx context.Context, text string) error
	PostImages(ctx context.Context, text string, images []Image) error
}

// Publisher publishes one formatted item, downloading its media first.
// Individual media failures degrade to fewer (or zero) images, never to a
// failed item.
type Publisher struct {
	client     PostClient
	httpClient *http.Client
	userAgent  string
	maxImages  int
	timeout    time.Duration
}

func NewPublisher(client PostClient, httpClient *http.Client, userAgent string, maxImages int, timeout time.Duration) *Publisher {
	return &Publisher{
		client:     client,
		httpClient: httpClient,
		userAgent:  userAgent,
		maxImages:  maxImages,
		timeout:    timeout,
	}
}

func (p *Publisher) Run(ctx context.Context, item feed.Item, text string) error {
	if len(item.MediaURLs) == 0 {
		return p.client.PostText(ctx, text)
	}

	urls := item.MediaURLs
	if len(urls) > p.maxImages {
		urls = urls[:p.maxImages]
	}

	images := make([]Image, 0, len(urls))
	for _, url := range urls {
		data, err := p.download(ctx, url)
		if err != nil {
			slog.Warn("Failed to download media, skipping image",
				"account", item.Account, "item", item.ID, "url", url, "error", err)
			continue
		}

		images = append(images, Image{
			Data: data,
			Alt:  fmt.Sprintf("Image from post by @%s", item.Account),
		})
	}

	if len(images) == 0 {
		slog.Warn("No media downloaded, publishing text-only",
			"account", item.Account, "item", item.ID)
		return p.client.PostText(ctx, text)
	}

	return p.client.PostImages(ctx, text, images)
}

func (p *Publisher) download(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
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
