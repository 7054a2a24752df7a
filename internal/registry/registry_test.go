package registry

import "testing"

func TestDefaultHasTrackedSymbols(t *testing.T) {
	r := Default()
	for _, tick := range []string{"AAPL", "GOOGL", "MSFT", "TSLA", "BRK-B"} {
		if !r.Has(tick) {
			t.Errorf("expected %s to be tracked", tick)
		}
	}
	if r.Has("ZZZZ") {
		t.Error("ZZZZ should not be tracked")
	}
}

func TestResolveAliases(t *testing.T) {
	r := Default()
	cases := []struct {
		alias string
		want  string
	}{
		{"$AAPL", "AAPL"},
		{"aapl", "AAPL"},
		{"GOOG", "GOOGL"},  // secondary listing resolves to canonical symbol
		{"$GOOG", "GOOGL"},
		{"FB", "META"},     // legacy ticker
		{"BRK.B", "BRK-B"},
	}
	for _, c := range cases {
		got, ok := r.Resolve(c.alias)
		if !ok || got != c.want {
			t.Errorf("Resolve(%q) = %q ok=%v, want %q", c.alias, got, ok, c.want)
		}
	}
	if _, ok := r.Resolve("XYZ"); ok {
		t.Error("unknown alias should not resolve")
	}
}

func TestTickersSortedAndCopied(t *testing.T) {
	r := Default()
	ts := r.Tickers()
	for i := 1; i < len(ts); i++ {
		if ts[i-1] >= ts[i] {
			t.Fatalf("tickers not sorted: %v", ts)
		}
	}
	ts[0] = "MUTATED"
	if r.Tickers()[0] == "MUTATED" {
		t.Error("Tickers must return a copy")
	}
}

func TestLookupMetadata(t *testing.T) {
	r := Default()
	e, ok := r.Lookup("aapl")
	if !ok {
		t.Fatal("expected AAPL entry")
	}
	if e.Name == "" || e.Sector == "" {
		t.Errorf("entry missing metadata: %+v", e)
	}
	if len(e.Primary) == 0 || len(e.Secondary) == 0 || len(e.Exact) == 0 {
		t.Errorf("entry missing vocabulary: %+v", e)
	}
}
