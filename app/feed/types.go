package feed

// RawEntry is one syndication feed entry before normalization.
type RawEntry struct {
	ID      string
	Title   string
	Link    string
	Summary string // body HTML fragment, may be empty
}

// FetchPolicy controls how many items a fetch keeps and whether reposts
// survive parsing.
type FetchPolicy struct {
	Limit          int
	IncludeReposts bool
}

// Item represents a normalized post originating from a tracked account.
// Immutable once constructed; ID is the dedup key.
type Item struct {
	ID        string
	Account   string
	MainText  string
	Permalink string
	IsRepost  bool

	// QuotedAuthor and QuotedText describe an embedded item from another
	// account. They are only meaningful as a pair.
	QuotedAuthor string
	QuotedText   string

	MediaURLs []string
}

// HasQuote reports whether the item carries an embedded quote pair.
func (i Item) HasQuote() bool {
	return i.QuotedAuthor != "" && i.QuotedText != ""
}
