package accounts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Account is one tracked source account.
type Account struct {
	Handle         string `yaml:"handle"`
	Limit          int    `yaml:"limit"`           // 0 means the configured default
	IncludeReposts bool   `yaml:"include_reposts"` // reposts are excluded unless set
}

type accountsFile struct {
	Accounts []Account `yaml:"accounts"`
}

// Load reads the account list, validates it, and applies defaults. Order
// is preserved; accounts are processed in configuration order.
func Load(path string, defaultLimit int) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var file accountsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}

	if len(file.Accounts) == 0 {
		return nil, fmt.Errorf("no accounts configured in %s", path)
	}

	for i := range file.Accounts {
		acc := &file.Accounts[i]
		if acc.Handle == "" {
			return nil, fmt.Errorf("account at index %d: handle is required", i)
		}
		if acc.Limit < 0 {
			return nil, fmt.Errorf("account %s: limit must be non-negative", acc.Handle)
		}
		if acc.Limit == 0 {
			acc.Limit = defaultLimit
		}
	}

	return file.Accounts, nil
}
