package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Destination credentials
	Handle      string `long:"handle" env:"BSKY_HANDLE" description:"Bluesky handle to publish as (required)" required:"true"`
	AppPassword string `long:"app-password" env:"BSKY_APP_PASSWORD" description:"Bluesky app password (required)" required:"true"`
	PDSHost     string `long:"pds-host" env:"PDS_HOST" default:"https://bsky.social" description:"PDS host to authenticate against"`

	// Source configuration
	AccountsFile    string `long:"accounts-file" env:"ACCOUNTS_FILE" default:"./accounts.yml" description:"YAML file listing source accounts"`
	FeedURLTemplate string `long:"feed-url-template" env:"FEED_URL_TEMPLATE" default:"https://nitter.net/%s/rss" description:"Per-account feed URL template"`
	PerAccountLimit int    `long:"per-account-limit" env:"PER_ACCOUNT_LIMIT" default:"10" description:"Recent items considered per account each run"`
	CharBudget      int    `long:"char-budget" env:"CHAR_BUDGET" default:"300" description:"Maximum characters per published post"`

	// Ledger configuration
	LedgerBackend string `long:"ledger-backend" env:"LEDGER_BACKEND" default:"file" choice:"file" choice:"gist" choice:"sqlite" description:"Ledger persistence backend"`
	LedgerPath    string `long:"ledger-path" env:"LEDGER_PATH" default:"./published_items.json" description:"Ledger location for the file and sqlite backends"`
	GistID        string `long:"gist-id" env:"GIST_ID" description:"Gist id for the gist ledger backend"`
	GistToken     string `long:"gist-token" env:"GIST_TOKEN" description:"Gist access token for the gist ledger backend"`

	// Network behavior
	FetchTimeout  int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Feed fetch timeout in seconds"`
	MediaTimeout  int `long:"media-timeout" env:"MEDIA_TIMEOUT" default:"15" description:"Per-image download timeout in seconds"`
	LedgerTimeout int `long:"ledger-timeout" env:"LEDGER_TIMEOUT" default:"10" description:"Remote ledger load/save timeout in seconds"`
	MaxImages     int `long:"max-images" env:"MAX_IMAGES" default:"4" description:"Maximum images attached per post"`
	MaxJitter     int `long:"max-jitter" env:"MAX_JITTER" default:"1800" description:"Upper bound in seconds for the random pre-run delay (0 disables)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0 Safari/537.36" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses configuration from environment variables and command-line
// flags. It returns (nil, nil) when help was requested.
func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Handle:          raw.Handle,
		AppPassword:     raw.AppPassword,
		PDSHost:         raw.PDSHost,
		AccountsFile:    raw.AccountsFile,
		FeedURLTemplate: raw.FeedURLTemplate,
		PerAccountLimit: raw.PerAccountLimit,
		CharBudget:      raw.CharBudget,
		LedgerBackend:   raw.LedgerBackend,
		LedgerPath:      raw.LedgerPath,
		GistID:          raw.GistID,
		GistToken:       raw.GistToken,
		FetchTimeout:    raw.FetchTimeout,
		MediaTimeout:    raw.MediaTimeout,
		LedgerTimeout:   raw.LedgerTimeout,
		MaxImages:       raw.MaxImages,
		MaxJitter:       raw.MaxJitter,
		UserAgent:       raw.UserAgent,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	return cfg, nil
}
