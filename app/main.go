package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/skycomb/skycomb/app/accounts"
	"github.com/skycomb/skycomb/app/bluesky"
	"github.com/skycomb/skycomb/app/cfg"
	"github.com/skycomb/skycomb/app/feed"
	"github.com/skycomb/skycomb/app/ledger"
	"github.com/skycomb/skycomb/app/mirror"
	"github.com/skycomb/skycomb/app/publish"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg.Debug)
	slog.Info("Starting skycomb", "version", appCfg.Version)

	accs, err := accounts.Load(appCfg.AccountsFile, appCfg.PerAccountLimit)
	if err != nil {
		slog.Error("Failed to load accounts", "error", err)
		os.Exit(1)
	}
	slog.Info("Accounts loaded", "count", len(accs), "file", appCfg.AccountsFile)

	store, closeStore, err := buildStore(appCfg)
	if err != nil {
		slog.Error("Failed to initialize ledger store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	ctx := context.Background()

	mirror.Jitter(ctx, appCfg.MaxJitter)

	client, err := bluesky.ClientFromCredentials(ctx, appCfg.PDSHost, &bluesky.Credentials{
		Identifier: appCfg.Handle,
		Password:   appCfg.AppPassword,
	})
	if err != nil {
		slog.Error("Failed to authenticate with destination", "handle", appCfg.Handle, "error", err)
		os.Exit(1)
	}
	slog.Info("Authenticated", "handle", appCfg.Handle)

	httpClient := &http.Client{}

	fetcher := feed.NewFetcher(httpClient, feed.NewEntryParser(),
		appCfg.FeedURLTemplate, appCfg.UserAgent,
		time.Duration(appCfg.FetchTimeout)*time.Second)
	formatter := publish.NewFormatter(appCfg.CharBudget)
	publisher := publish.NewPublisher(client, httpClient, appCfg.UserAgent,
		appCfg.MaxImages, time.Duration(appCfg.MediaTimeout)*time.Second)

	runner := mirror.NewRunner(accs, fetcher, formatter, publisher, store)

	published, err := runner.Run(ctx)
	if err != nil {
		slog.Error("Run aborted", "error", err)
		os.Exit(1)
	}

	slog.Info("Run complete", "published", published)
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func buildStore(appCfg *cfg.Cfg) (ledger.Store, func(), error) {
	switch appCfg.LedgerBackend {
	case "gist":
		store := ledger.NewGistStore(http.DefaultClient, ledger.DefaultGistAPIBase,
			appCfg.GistID, appCfg.GistToken,
			time.Duration(appCfg.LedgerTimeout)*time.Second)
		return store, func() {}, nil
	case "sqlite":
		store, err := ledger.NewSQLiteStore(appCfg.LedgerPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return ledger.NewFileStore(appCfg.LedgerPath), func() {}, nil
	}
}
