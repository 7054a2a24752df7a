package stockdata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pulseworks/marketpulse/internal/infra"
	"github.com/pulseworks/marketpulse/pkg/logger"
	"github.com/pulseworks/marketpulse/pkg/models"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int32
	fail    bool
	candles []models.OHLCV
}

func (f *fakeProvider) History(_ context.Context, symbol string, _ int) ([]models.OHLCV, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("upstream down")
	}
	return f.candles, nil
}

func (f *fakeProvider) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func sampleSeries() []models.OHLCV {
	base := time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC)
	return []models.OHLCV{
		bar(base, 101, 98, 100, 1000),
		bar(base.AddDate(0, 0, 1), 106, 102, 105, 1200),
	}
}

func newTestStore(t *testing.T, p Provider, clock *fakeClock) *Store {
	t.Helper()
	return NewStore(p, infra.NewRateLimiter(1000, time.Second), Options{
		DataDir: t.TempDir(),
		Clock:   clock.Now,
	}, logger.Nop())
}

func TestStoreCachesWithinTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 11, 21, 0, 0, 0, time.UTC)}
	p := &fakeProvider{candles: sampleSeries()}
	s := newTestStore(t, p, clock)

	for i := 0; i < 3; i++ {
		if _, err := s.History(context.Background(), "AAPL", 30); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&p.calls); got != 1 {
		t.Errorf("expected a single upstream fetch within the TTL, got %d", got)
	}
}

func TestStoreServesFromDiskAfterMemoryExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 11, 21, 0, 0, 0, time.UTC)}
	p := &fakeProvider{candles: sampleSeries()}
	s := newTestStore(t, p, clock)

	if _, err := s.History(context.Background(), "AAPL", 30); err != nil {
		t.Fatal(err)
	}

	// Past the memory TTL but inside the disk TTL: the disk copy answers
	// and no second fetch happens.
	clock.Advance(10 * time.Minute)
	if _, err := s.History(context.Background(), "AAPL", 30); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&p.calls); got != 1 {
		t.Errorf("disk cache should have answered, got %d fetches", got)
	}

	// Past the disk TTL too: now a refetch is required.
	clock.Advance(2 * time.Hour)
	if _, err := s.History(context.Background(), "AAPL", 30); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&p.calls); got != 2 {
		t.Errorf("expected refetch after disk expiry, got %d fetches", got)
	}
}

func TestStoreCoalescesConcurrentFetches(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 11, 21, 0, 0, 0, time.UTC)}
	p := &fakeProvider{candles: sampleSeries()}
	s := newTestStore(t, p, clock)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.History(context.Background(), "NVDA", 30)
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&p.calls); got != 1 {
		t.Errorf("cold-key stampede should collapse to one fetch, got %d", got)
	}
}

func TestStoreFailureDoesNotEvict(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 11, 21, 0, 0, 0, time.UTC)}
	p := &fakeProvider{candles: sampleSeries()}
	s := newTestStore(t, p, clock)

	if _, err := s.History(context.Background(), "TSLA", 30); err != nil {
		t.Fatal(err)
	}

	p.setFail(true)
	// Still within the memory TTL: cache answers, no error surfaces.
	if _, err := s.History(context.Background(), "TSLA", 30); err != nil {
		t.Fatalf("cached entry should survive upstream failure: %v", err)
	}

	// Everything expired and upstream down: failure is reported.
	clock.Advance(3 * time.Hour)
	if _, err := s.History(context.Background(), "TSLA", 30); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestStoreMetrics(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 11, 21, 0, 0, 0, time.UTC)}
	p := &fakeProvider{candles: sampleSeries()}
	s := newTestStore(t, p, clock)

	m, err := s.Metrics(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Symbol != "AAPL" || m.CurrentPrice != 105 || m.PrevClose != 100 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestStoreCompare(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 11, 21, 0, 0, 0, time.UTC)}
	p := &fakeProvider{candles: sampleSeries()}
	s := newTestStore(t, p, clock)

	cmps, err := s.Compare(context.Background(), []string{"AAPL", "MSFT"}, "1M")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmps) != 2 {
		t.Fatalf("expected 2 comparisons, got %d", len(cmps))
	}
	c := cmps[0]
	if c.Symbol != "AAPL" {
		t.Errorf("input order must be preserved, got %s first", c.Symbol)
	}
	if c.InitialPrice != 100 || c.CurrentPrice != 105 {
		t.Errorf("prices = %v -> %v", c.InitialPrice, c.CurrentPrice)
	}
	if c.ChangePct != 5 {
		t.Errorf("change pct = %v, want 5", c.ChangePct)
	}
	if c.High != 106 || c.Low != 98 {
		t.Errorf("range = [%v, %v], want [98, 106]", c.Low, c.High)
	}
	if c.AvgVolume != 1100 {
		t.Errorf("avg volume = %v, want 1100", c.AvgVolume)
	}
}

func TestStoreCompareAllFailed(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 11, 21, 0, 0, 0, time.UTC)}
	p := &fakeProvider{fail: true}
	s := newTestStore(t, p, clock)

	if _, err := s.Compare(context.Background(), []string{"AAPL"}, "1W"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable when every symbol fails, got %v", err)
	}
}

func TestSortComparisons(t *testing.T) {
	cmps := []models.Comparison{
		{Symbol: "B", ChangePct: 1},
		{Symbol: "C", ChangePct: 8},
		{Symbol: "A", ChangePct: 1},
	}
	SortComparisons(cmps)
	want := []string{"C", "A", "B"}
	for i, w := range want {
		if cmps[i].Symbol != w {
			t.Errorf("position %d: got %s, want %s", i, cmps[i].Symbol, w)
		}
	}
}
