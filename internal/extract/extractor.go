// Package extract implements symbol extraction from free text. Extraction is
// a pure function of the input text and the symbol registry: three stages in
// strict precedence order, where a symbol confirmed by an earlier stage is
// never re-evaluated by a later one.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pulseworks/marketpulse/internal/registry"
)

// tickerPatterns catch high-confidence ticker mentions. Each pattern captures
// a candidate token that is then checked against the exact-alias index.
var tickerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$([A-Z]{1,5}(?:\.[A-Z])?)\b`),                                     // $AAPL, $BRK.A
	regexp.MustCompile(`(?i)\b([A-Z]{1,5}(?:\.[A-Z])?)\s+(?:stock|shares|inc\.?|corp\.?|group)\b`), // AAPL stock
	regexp.MustCompile(`(?i)(?:shares of|stock in)\s+([A-Z]{1,5}(?:\.[A-Z])?)\b`),              // shares of AAPL
	regexp.MustCompile(`(?i)\b([A-Z]{1,5}(?:\.[A-Z])?)\s+(?:rose|fell|jumped|plunged|gained|lost)\b`), // AAPL rose
	regexp.MustCompile(`(?i)\b([A-Z]{1,5}(?:\.[A-Z])?)\s+[+\-]?[0-9]+(?:\.[0-9]+)?%`),          // AAPL +1.5%
	regexp.MustCompile(`(?i)\b(?:buy|sell)\s+([A-Z]{1,5}(?:\.[A-Z])?)\b`),                      // buy AAPL
	regexp.MustCompile(`(?i)ticker[:\s]+([A-Z]{1,5}(?:\.[A-Z])?)\b`),                           // ticker: AAPL
}

// financialTerms is the context vocabulary required around a primary keyword
// before a company-name mention counts as a stock mention.
var financialTerms = []string{
	"stock", "share", "market", "price", "investor", "trading",
	"earnings", "revenue", "profit", "dividend", "nasdaq", "nyse",
	"up", "down", "rise", "fall", "gain", "loss", "jump", "plunge",
}

// contextWindow is the number of characters inspected on either side of a
// primary keyword occurrence.
const contextWindow = 100

// secondaryThreshold is the number of distinct secondary keywords required
// to confirm a symbol without primary or exact evidence.
const secondaryThreshold = 2

// Extractor resolves ticker symbols mentioned in free text.
type Extractor struct {
	reg *registry.Registry
}

// New creates an extractor over the given registry.
func New(reg *registry.Registry) *Extractor {
	return &Extractor{reg: reg}
}

// Extract returns the set of tracked tickers the text plausibly refers to,
// sorted lexicographically. Malformed or empty input yields an empty result;
// Extract never fails.
func (e *Extractor) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	confirmed := make(map[string]bool)

	// Stage 1: exact-match patterns. A match confirms a symbol only when the
	// captured token is one of that symbol's exact aliases.
	for _, pat := range tickerPatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			if ticker, ok := e.reg.Resolve(strings.ToUpper(m[1])); ok {
				confirmed[ticker] = true
			}
		}
	}

	lower := strings.ToLower(text)
	for _, entry := range e.reg.Entries() {
		if confirmed[entry.Ticker] {
			continue
		}
		if primaryWithContext(lower, entry.Primary) {
			confirmed[entry.Ticker] = true
			continue
		}
		if countSecondary(lower, entry.Secondary) >= secondaryThreshold {
			confirmed[entry.Ticker] = true
		}
	}

	if len(confirmed) == 0 {
		return nil
	}
	out := make([]string, 0, len(confirmed))
	for t := range confirmed {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// primaryWithContext reports whether any primary keyword occurs with a
// financial term inside the surrounding context window. Checking stops at
// the first confirming keyword.
func primaryWithContext(lower string, primary []string) bool {
	for _, kw := range primary {
		kw = strings.ToLower(kw)
		idx := strings.Index(lower, kw)
		if idx < 0 {
			continue
		}
		start := idx - contextWindow
		if start < 0 {
			start = 0
		}
		end := idx + len(kw) + contextWindow
		if end > len(lower) {
			end = len(lower)
		}
		window := lower[start:end]
		for _, term := range financialTerms {
			if strings.Contains(window, term) {
				return true
			}
		}
	}
	return false
}

// countSecondary counts how many distinct secondary keywords occur anywhere
// in the text.
func countSecondary(lower string, secondary []string) int {
	n := 0
	for _, kw := range secondary {
		if strings.Contains(lower, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}
