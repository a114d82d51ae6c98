package cfg

type Cfg struct {
	// Destination credentials
	Handle      string
	AppPassword string
	PDSHost     string

	// Source configuration
	AccountsFile    string
	FeedURLTemplate string
	PerAccountLimit int
	CharBudget      int

	// Ledger configuration
	LedgerBackend string
	LedgerPath    string
	GistID        string
	GistToken     string

	// Network behavior, timeouts in seconds
	FetchTimeout  int
	MediaTimeout  int
	LedgerTimeout int
	MaxImages     int
	MaxJitter     int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
