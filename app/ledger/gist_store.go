package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultGistAPIBase = "https://api.github.com"

	// gistStateFilename is the named file inside the gist holding the
	// ledger JSON. Kept from earlier deployments.
	gistStateFilename = "posted_tweets.json"
)

// GistStore keeps the ledger in a named file inside a GitHub gist, so
// stateless scheduled runs on throwaway machines share dedup state.
//
// Structural anomalies in the stored document (missing file, bad JSON)
// load as an empty set; only transport failures are reported as errors.
type GistStore struct {
	httpClient *http.Client
	baseURL    string
	gistID     string
	token      string
	timeout    time.Duration
}

func NewGistStore(httpClient *http.Client, baseURL, gistID, token string, timeout time.Duration) *GistStore {
	return &GistStore{
		httpClient: httpClient,
		baseURL:    baseURL,
		gistID:     gistID,
		token:      token,
		timeout:    timeout,
	}
}

type gistFile struct {
	Content string `json:"content"`
}

type gistDocument struct {
	Files map[string]gistFile `json:"files"`
}

func (s *GistStore) Load(ctx context.Context) (map[string]struct{}, error) {
	if s.gistID == "" || s.token == "" {
		slog.Warn("Gist credentials not set, using empty in-memory ledger")
		return map[string]struct{}{}, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", s.gistURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var gist gistDocument
	if err := json.NewDecoder(resp.Body).Decode(&gist); err != nil {
		return nil, fmt.Errorf("failed to decode gist response: %w", err)
	}

	file, ok := gist.Files[gistStateFilename]
	if !ok {
		slog.Warn("Ledger file not found in gist, starting fresh", "file", gistStateFilename)
		return map[string]struct{}{}, nil
	}

	var doc ledgerDocument
	if err := json.Unmarshal([]byte(file.Content), &doc); err != nil {
		slog.Warn("Failed to parse ledger content, starting fresh", "error", err)
		return map[string]struct{}{}, nil
	}

	return idSet(doc.TweetIDs), nil
}

func (s *GistStore) Save(ctx context.Context, ids []string) error {
	if s.gistID == "" || s.token == "" {
		slog.Warn("Gist credentials not set, ledger will not be persisted")
		return nil
	}

	content, err := json.MarshalIndent(ledgerDocument{TweetIDs: ids}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize ledger: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"files": map[string]any{
			gistStateFilename: map[string]string{"content": string(content)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to serialize gist payload: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "PATCH", s.gistURL(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update gist: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return nil
}

func (s *GistStore) gistURL() string {
	return fmt.Sprintf("%s/gists/%s", s.baseURL, s.gistID)
}

func (s *GistStore) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "token "+s.token)
	req.Header.Set("Accept", "application/vnd.github+json")
}
