package publish

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/skycomb/skycomb/app/feed"
)

const ellipsis = "…"

// Formatter renders a normalized item into the destination text payload,
// enforcing the per-post character budget.
type Formatter struct {
	charBudget int
}

func NewFormatter(charBudget int) *Formatter {
	return &Formatter{charBudget: charBudget}
}

// Run composes the post text. Output is deterministic for identical input
// and never exceeds the budget, counted in runes over NFC-normalized text.
func (f *Formatter) Run(item feed.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s:\n\n%s", item.Account, item.MainText)
	if item.HasQuote() {
		fmt.Fprintf(&b, "\n\n——\nQuoted @%s:\n%s", item.QuotedAuthor, item.QuotedText)
	}

	text := norm.NFC.String(b.String())
	runes := []rune(text)
	if len(runes) <= f.charBudget {
		return text
	}

	truncated := strings.TrimRight(string(runes[:f.charBudget-1]), " \n")
	return truncated + ellipsis
}
