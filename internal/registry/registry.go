// Package registry holds the static mapping from ticker symbols to their
// matching vocabulary and display metadata. Entries are immutable after load.
package registry

import (
	"sort"
	"strings"
)

// Entry describes one tracked symbol: the vocabulary the extractor matches
// against and the metadata the display layer consumes.
type Entry struct {
	Ticker    string   `json:"ticker"`
	Name      string   `json:"name"`
	Sector    string   `json:"sector"`
	Logo      string   `json:"logo,omitempty"`
	Primary   []string `json:"primary"`   // company-name keywords, checked with financial context
	Secondary []string `json:"secondary"` // product keywords, require 2+ distinct hits
	Exact     []string `json:"exact"`     // literal tokens incl. $-prefixed forms
}

// Registry is a read-only symbol table with an exact-alias index.
type Registry struct {
	entries map[string]Entry
	tickers []string          // stable iteration order
	aliases map[string]string // upper-cased exact alias → canonical ticker
}

// New builds a registry from the given entries. Exact aliases are indexed
// case-insensitively; aliases shared between entries (e.g. GOOG/GOOGL style
// listings) resolve to the entry that declares them.
func New(entries []Entry) *Registry {
	r := &Registry{
		entries: make(map[string]Entry, len(entries)),
		aliases: make(map[string]string),
	}
	for _, e := range entries {
		r.entries[e.Ticker] = e
		r.tickers = append(r.tickers, e.Ticker)
		for _, alias := range e.Exact {
			r.aliases[strings.ToUpper(alias)] = e.Ticker
		}
	}
	sort.Strings(r.tickers)
	return r
}

// Default returns the registry of tracked symbols.
func Default() *Registry {
	return New(defaultEntries)
}

// Has reports whether ticker is a tracked symbol.
func (r *Registry) Has(ticker string) bool {
	_, ok := r.entries[strings.ToUpper(ticker)]
	return ok
}

// Lookup returns the entry for a ticker.
func (r *Registry) Lookup(ticker string) (Entry, bool) {
	e, ok := r.entries[strings.ToUpper(ticker)]
	return e, ok
}

// Resolve maps an exact-alias token (any case) to its canonical ticker.
func (r *Registry) Resolve(alias string) (string, bool) {
	t, ok := r.aliases[strings.ToUpper(alias)]
	return t, ok
}

// Tickers returns all tracked tickers in sorted order.
func (r *Registry) Tickers() []string {
	out := make([]string, len(r.tickers))
	copy(out, r.tickers)
	return out
}

// Entries returns all entries in ticker order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.tickers))
	for _, t := range r.tickers {
		out = append(out, r.entries[t])
	}
	return out
}

var defaultEntries = []Entry{
	{
		Ticker:    "AAPL",
		Name:      "Apple Inc.",
		Sector:    "Technology",
		Logo:      "https://logo.clearbit.com/apple.com",
		Primary:   []string{"apple", "iphone"},
		Secondary: []string{"mac", "macbook", "ios", "app store"},
		Exact:     []string{"AAPL", "$AAPL"},
	},
	{
		Ticker:    "GOOGL",
		Name:      "Alphabet Inc.",
		Sector:    "Technology",
		Logo:      "https://logo.clearbit.com/google.com",
		Primary:   []string{"google", "alphabet inc", "alphabet"},
		Secondary: []string{"android", "chrome", "pixel"},
		Exact:     []string{"GOOGL", "$GOOGL", "GOOG", "$GOOG"},
	},
	{
		Ticker:    "MSFT",
		Name:      "Microsoft Corporation",
		Sector:    "Technology",
		Logo:      "https://logo.clearbit.com/microsoft.com",
		Primary:   []string{"microsoft"},
		Secondary: []string{"windows", "azure", "xbox"},
		Exact:     []string{"MSFT", "$MSFT"},
	},
	{
		Ticker:    "AMZN",
		Name:      "Amazon.com, Inc.",
		Sector:    "Consumer Discretionary",
		Logo:      "https://logo.clearbit.com/amazon.com",
		Primary:   []string{"amazon"},
		Secondary: []string{"aws", "prime", "kindle"},
		Exact:     []string{"AMZN", "$AMZN"},
	},
	{
		Ticker:    "META",
		Name:      "Meta Platforms, Inc.",
		Sector:    "Technology",
		Logo:      "https://logo.clearbit.com/meta.com",
		Primary:   []string{"meta", "facebook"},
		Secondary: []string{"instagram", "whatsapp", "oculus"},
		Exact:     []string{"META", "$META", "FB", "$FB"},
	},
	{
		Ticker:    "NVDA",
		Name:      "NVIDIA Corporation",
		Sector:    "Technology",
		Logo:      "https://logo.clearbit.com/nvidia.com",
		Primary:   []string{"nvidia", "nvda"},
		Secondary: []string{"geforce", "gpu"},
		Exact:     []string{"NVDA", "$NVDA"},
	},
	{
		Ticker:    "TSLA",
		Name:      "Tesla, Inc.",
		Sector:    "Consumer Discretionary",
		Logo:      "https://logo.clearbit.com/tesla.com",
		Primary:   []string{"tesla", "elon musk"},
		Secondary: []string{"model 3", "model y", "cybertruck"},
		Exact:     []string{"TSLA", "$TSLA"},
	},
	{
		Ticker:    "BRK-B",
		Name:      "Berkshire Hathaway Inc.",
		Sector:    "Financials",
		Logo:      "https://logo.clearbit.com/berkshirehathaway.com",
		Primary:   []string{"berkshire", "berkshire hathaway", "buffett"},
		Secondary: []string{"warren buffett", "charlie munger"},
		Exact:     []string{"BRK.B", "BRK-B", "$BRK.B", "$BRK-B"},
	},
	{
		Ticker:    "VLVLY",
		Name:      "Volvo Group",
		Sector:    "Industrials",
		Logo:      "https://logo.clearbit.com/volvo.com",
		Primary:   []string{"volvo", "volvo group"},
		Secondary: []string{"volvo cars", "volvo trucks"},
		Exact:     []string{"VLVLY", "$VLVLY"},
	},
}
