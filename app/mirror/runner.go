package mirror

import (
	"context"
	"log/slog"
	"math/rand"
	"slices"
	"time"

	"github.com/skycomb/skycomb/app/accounts"
	"github.com/skycomb/skycomb/app/feed"
	"github.com/skycomb/skycomb/app/ledger"
)

// Fetcher yields normalized items for one account, most recent first.
type Fetcher interface {
	Run(ctx context.Context, account string, policy feed.FetchPolicy) ([]feed.Item, error)
}

// Formatter renders one item into the destination text payload.
type Formatter interface {
	Run(item feed.Item) string
}

// Publisher publishes one formatted item.
type Publisher interface {
	Run(ctx context.Context, item feed.Item, text string) error
}

// Runner drives one mirror run: load the ledger, fetch each account,
// dedup, format, publish, and persist the ledger once at the end.
// Accounts and items are processed strictly in order.
type Runner struct {
	accounts  []accounts.Account
	fetcher   Fetcher
	formatter Formatter
	publisher Publisher
	store     ledger.Store
}

func NewRunner(accs []accounts.Account, fetcher Fetcher, formatter Formatter, publisher Publisher, store ledger.Store) *Runner {
	return &Runner{
		accounts:  accs,
		fetcher:   fetcher,
		formatter: formatter,
		publisher: publisher,
		store:     store,
	}
}

// Run executes one mirror pass and returns the number of items published.
// Per-item and per-account failures are logged and absorbed; the only
// error returned is context cancellation.
func (r *Runner) Run(ctx context.Context) (int, error) {
	ids, err := r.store.Load(ctx)
	if err != nil {
		slog.Warn("Failed to load ledger, starting with empty dedup state", "error", err)
		ids = nil
	}
	led := ledger.NewLedger(ids)
	slog.Info("Ledger loaded", "known_items", led.Len())

	published := 0
	for _, acc := range r.accounts {
		select {
		case <-ctx.Done():
			return published, ctx.Err()
		default:
		}

		items, err := r.fetcher.Run(ctx, acc.Handle, feed.FetchPolicy{
			Limit:          acc.Limit,
			IncludeReposts: acc.IncludeReposts,
		})
		if err != nil {
			slog.Error("Feed fetch failed, skipping account", "account", acc.Handle, "error", err)
			continue
		}

		// Oldest unseen item of the batch posts first.
		slices.Reverse(items)

		for _, item := range items {
			if led.Contains(item.ID) {
				slog.Debug("Item already published, skipping", "account", acc.Handle, "item", item.ID)
				continue
			}

			text := r.formatter.Run(item)
			if err := r.publisher.Run(ctx, item, text); err != nil {
				slog.Error("Publish failed", "account", acc.Handle, "item", item.ID, "error", err)
				continue
			}

			led.Record(item.ID)
			published++
			slog.Info("Published item", "account", acc.Handle, "item", item.ID)
		}
	}

	if err := r.store.Save(ctx, led.Snapshot()); err != nil {
		slog.Error("Failed to save ledger", "error", err)
	}

	return published, nil
}

// Jitter sleeps for a random duration up to maxSeconds before a run
// starts. Cancellation cuts the delay short.
func Jitter(ctx context.Context, maxSeconds int) {
	if maxSeconds <= 0 {
		return
	}

	delay := time.Duration(rand.Intn(maxSeconds+1)) * time.Second
	slog.Info("Delaying run start", "delay", delay.String())

	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}
