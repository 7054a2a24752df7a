package stockdata

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/pulseworks/marketpulse/pkg/models"
)

func bar(ts time.Time, high, low, close float64, vol int64) models.OHLCV {
	return models.OHLCV{Timestamp: ts, Open: close, High: high, Low: low, Close: close, Volume: vol}
}

func TestComputeMetrics(t *testing.T) {
	day := func(d, hour int) time.Time {
		return time.Date(2025, 6, d, hour, 0, 0, 0, time.UTC)
	}
	candles := []models.OHLCV{
		bar(day(9, 20), 100, 96, 98, 1000),  // two days back
		bar(day(10, 20), 103, 99, 102, 1200), // yesterday
		bar(day(11, 14), 106, 101, 104, 400), // today, first bar
		bar(day(11, 18), 107, 103, 105, 500), // today, last bar
	}

	m, err := ComputeMetrics("AAPL", candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.CurrentPrice != 105 {
		t.Errorf("current = %v, want last close 105", m.CurrentPrice)
	}
	if m.PrevClose != 102 {
		t.Errorf("prev close = %v, want yesterday's last close 102", m.PrevClose)
	}
	if m.DailyChange != 3 {
		t.Errorf("daily change = %v, want 3", m.DailyChange)
	}
	wantPct := 3.0 / 102 * 100
	if math.Abs(m.DailyChangePct-wantPct) > 1e-9 {
		t.Errorf("daily change pct = %v, want %v", m.DailyChangePct, wantPct)
	}
	if m.IntradayHigh != 107 || m.IntradayLow != 101 {
		t.Errorf("intraday range = [%v, %v], want [101, 107]", m.IntradayLow, m.IntradayHigh)
	}
	// Both intraday percentages use yesterday's close as the base.
	wantHighPct := (107.0 - 102) / 102 * 100
	if math.Abs(m.IntradayHighChangePct-wantHighPct) > 1e-9 {
		t.Errorf("intraday high pct = %v, want %v", m.IntradayHighChangePct, wantHighPct)
	}
	wantLowPct := (101.0 - 102) / 102 * 100
	if math.Abs(m.IntradayLowChangePct-wantLowPct) > 1e-9 {
		t.Errorf("intraday low pct = %v, want %v", m.IntradayLowChangePct, wantLowPct)
	}
	if m.Volume != 900 {
		t.Errorf("today volume = %v, want summed 900", m.Volume)
	}
	if m.AvgVolume != 1100 {
		t.Errorf("avg volume = %v, want mean of prior days 1100", m.AvgVolume)
	}
	wantVolPct := (900.0 - 1100) / 1100 * 100
	if math.Abs(m.VolumeChangePct-wantVolPct) > 1e-9 {
		t.Errorf("volume change pct = %v, want %v", m.VolumeChangePct, wantVolPct)
	}
}

func TestComputeMetricsWeekendFallback(t *testing.T) {
	// Monday series with the prior trading day on Friday: no record exists
	// for Sunday, so the first record's close is used instead.
	candles := []models.OHLCV{
		bar(time.Date(2025, 6, 6, 20, 0, 0, 0, time.UTC), 52, 49, 50, 800), // Friday
		bar(time.Date(2025, 6, 9, 20, 0, 0, 0, time.UTC), 56, 53, 55, 900), // Monday
	}
	m, err := ComputeMetrics("MSFT", candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.PrevClose != 50 {
		t.Errorf("prev close = %v, want first-record fallback 50", m.PrevClose)
	}
	if m.DailyChange != 5 {
		t.Errorf("daily change = %v, want 5", m.DailyChange)
	}
}

func TestComputeMetricsZeroGuards(t *testing.T) {
	candles := []models.OHLCV{
		bar(time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC), 0, 0, 0, 0),
		bar(time.Date(2025, 6, 11, 20, 0, 0, 0, time.UTC), 0, 0, 0, 0),
	}
	m, err := ComputeMetrics("ZERO", candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for name, v := range map[string]float64{
		"daily":  m.DailyChangePct,
		"high":   m.IntradayHighChangePct,
		"low":    m.IntradayLowChangePct,
		"volume": m.VolumeChangePct,
	} {
		if v != 0 {
			t.Errorf("%s pct should be 0 with zero denominator, got %v", name, v)
		}
	}
}

func TestComputeMetricsSingleDay(t *testing.T) {
	candles := []models.OHLCV{
		bar(time.Date(2025, 6, 11, 20, 0, 0, 0, time.UTC), 12, 9, 10, 500),
	}
	m, err := ComputeMetrics("NEW", candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.PrevClose != 10 {
		t.Errorf("prev close = %v, want first-record fallback 10", m.PrevClose)
	}
	if m.DailyChange != 0 || m.DailyChangePct != 0 {
		t.Errorf("single-day change should be zero, got %v (%v%%)", m.DailyChange, m.DailyChangePct)
	}
	if m.AvgVolume != 500 || m.VolumeChangePct != 0 {
		t.Errorf("avg volume = %v, pct = %v", m.AvgVolume, m.VolumeChangePct)
	}
}

func TestComputeMetricsEmpty(t *testing.T) {
	if _, err := ComputeMetrics("X", nil); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}
