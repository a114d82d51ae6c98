package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ledgerDocument is the persisted JSON shape, shared by the file and gist
// backends. The key name predates this implementation and is kept so
// existing ledgers stay readable.
type ledgerDocument struct {
	TweetIDs []string `json:"tweet_ids"`
}

// FileStore keeps the ledger in a local JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the ledger file. A missing file is a fresh start, not an
// error; a corrupt one is surfaced to the caller.
func (s *FileStore) Load(ctx context.Context) (map[string]struct{}, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}

	var doc ledgerDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse ledger file: %w", err)
	}

	return idSet(doc.TweetIDs), nil
}

func (s *FileStore) Save(ctx context.Context, ids []string) error {
	data, err := json.MarshalIndent(ledgerDocument{TweetIDs: ids}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize ledger: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}

	return nil
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
