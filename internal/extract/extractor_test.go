package extract

import (
	"strings"
	"testing"

	"github.com/pulseworks/marketpulse/internal/registry"
)

func newExtractor() *Extractor {
	return New(registry.Default())
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func TestExactMatchPrecedence(t *testing.T) {
	e := newExtractor()
	// None of AAPL's primary or secondary keywords appear; the $-prefixed
	// token alone must confirm the symbol.
	got := e.Extract("$AAPL surges in early session")
	if !contains(got, "AAPL") {
		t.Errorf("expected AAPL from $-token, got %v", got)
	}
}

func TestExactMatchVariants(t *testing.T) {
	e := newExtractor()
	cases := []struct {
		text string
		want string
	}{
		{"AAPL stock hit a new record", "AAPL"},
		{"shares of MSFT changed hands rapidly", "MSFT"},
		{"TSLA fell sharply at the open", "TSLA"},
		{"NVDA +4.2% after hours", "NVDA"},
		{"analysts say buy AMZN before earnings", "AMZN"},
		{"ticker: VLVLY on watchlists", "VLVLY"},
	}
	for _, c := range cases {
		got := e.Extract(c.text)
		if !contains(got, c.want) {
			t.Errorf("Extract(%q) = %v, want %s", c.text, got, c.want)
		}
	}
}

func TestAliasResolvesToCanonicalSymbol(t *testing.T) {
	e := newExtractor()
	// Secondary listings and legacy tickers resolve to the canonical symbol.
	got := e.Extract("$GOOG climbed while $FB slipped")
	if !contains(got, "GOOGL") {
		t.Errorf("expected GOOG to resolve to GOOGL, got %v", got)
	}
	if !contains(got, "META") {
		t.Errorf("expected FB to resolve to META, got %v", got)
	}
	if contains(got, "GOOG") || contains(got, "FB") {
		t.Errorf("non-canonical ticker leaked into result: %v", got)
	}
}

func TestPrimaryKeywordRequiresFinancialContext(t *testing.T) {
	e := newExtractor()

	if got := e.Extract("Baking with fresh fruit: an apple pie for the holidays"); contains(got, "AAPL") {
		t.Errorf("company name without financial context must not confirm, got %v", got)
	}

	got := e.Extract("Apple shares climbed as investors cheered the latest earnings report")
	if !contains(got, "AAPL") {
		t.Errorf("primary keyword with financial context should confirm, got %v", got)
	}
}

func TestContextWindowClampsToShortText(t *testing.T) {
	e := newExtractor()
	// Text far shorter than the window; bounds must clamp, not panic.
	if got := e.Extract("apple up"); !contains(got, "AAPL") {
		t.Errorf("short text with context term should confirm, got %v", got)
	}
}

func TestSecondaryKeywordThreshold(t *testing.T) {
	e := newExtractor()

	// One secondary keyword is not sufficient.
	if got := e.Extract("New ios update announced today"); contains(got, "AAPL") {
		t.Errorf("single secondary hit must not confirm, got %v", got)
	}

	// Two distinct secondary keywords confirm.
	got := e.Extract("New ios release rolling out in the app store this week")
	if !contains(got, "AAPL") {
		t.Errorf("two secondary hits should confirm, got %v", got)
	}
}

func TestResultIsSubsetOfRegistry(t *testing.T) {
	e := newExtractor()
	reg := registry.Default()
	inputs := []string{
		"",
		"   ",
		"XYZZY PLUGH nothing relevant here",
		"$ZZZZ rose 10% but nobody tracks it",
		"\x00\xff garbled \x01 bytes",
		strings.Repeat("word ", 500),
		"Microsoft and Google earnings lift the whole market; Tesla stock slides",
	}
	for _, in := range inputs {
		for _, sym := range e.Extract(in) {
			if !reg.Has(sym) {
				t.Errorf("Extract(%q) returned untracked symbol %s", in, sym)
			}
		}
	}
}

func TestDeterministicSortedOutput(t *testing.T) {
	e := newExtractor()
	text := "Tesla stock and Microsoft stock both moved; $AAPL rose 2%"
	first := e.Extract(text)
	for i := 0; i < 5; i++ {
		got := e.Extract(text)
		if strings.Join(got, ",") != strings.Join(first, ",") {
			t.Fatalf("non-deterministic output: %v vs %v", got, first)
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1] >= first[i] {
			t.Fatalf("output not sorted: %v", first)
		}
	}
}
