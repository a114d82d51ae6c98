package ledger

import (
	"context"
	"slices"
)

// Store persists the set of already-published item ids between runs.
// Whether a load or save failure is fatal is the caller's policy, not part
// of the store contract.
type Store interface {
	Load(ctx context.Context) (map[string]struct{}, error)
	Save(ctx context.Context, ids []string) error
}

// Ledger is the in-memory set of published item ids for one run. It only
// grows; there is no removal path.
type Ledger struct {
	ids map[string]struct{}
}

func NewLedger(ids map[string]struct{}) *Ledger {
	if ids == nil {
		ids = make(map[string]struct{})
	}
	return &Ledger{ids: ids}
}

func (l *Ledger) Contains(id string) bool {
	_, ok := l.ids[id]
	return ok
}

func (l *Ledger) Record(id string) {
	l.ids[id] = struct{}{}
}

func (l *Ledger) Len() int {
	return len(l.ids)
}

// Snapshot returns the recorded ids sorted and deduplicated, ready for
// persistence.
func (l *Ledger) Snapshot() []string {
	ids := make([]string, 0, len(l.ids))
	for id := range l.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
