// Package stockdata fetches and caches historical price data and derives
// point-in-time metrics from it.
package stockdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pulseworks/marketpulse/pkg/models"
)

// ErrNoData is returned when the upstream has no records for a symbol.
var ErrNoData = errors.New("no price data")

// Provider supplies OHLCV history for a symbol over a lookback window.
type Provider interface {
	History(ctx context.Context, symbol string, days int) ([]models.OHLCV, error)
}

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider implements Provider using the Yahoo Finance v8 chart API.
type YahooProvider struct {
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// NewYahooProvider creates a provider with the given HTTP client.
func NewYahooProvider(client *http.Client) *YahooProvider {
	return &YahooProvider{client: client, baseURL: yahooBaseURL, now: time.Now}
}

// NewYahooProviderForTest creates a provider pointed at a test server.
func NewYahooProviderForTest(client *http.Client, baseURL string, now func() time.Time) *YahooProvider {
	return &YahooProvider{client: client, baseURL: baseURL, now: now}
}

// --- Yahoo Finance v8 chart API envelope ---

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64         `json:"timestamp"`
	Indicators chartIndicators `json:"indicators"`
}

type chartIndicators struct {
	Quote []chartQuote `json:"quote"`
}

type chartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// History returns daily candles covering the last `days` calendar days.
// Short windows use hourly bars so same-day highs and lows are visible.
func (y *YahooProvider) History(ctx context.Context, symbol string, days int) ([]models.OHLCV, error) {
	to := y.now()
	from := to.AddDate(0, 0, -days)

	url := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=%s",
		y.baseURL, symbol, from.Unix(), to.Unix(), chartInterval(days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("chart %s: HTTP %d", symbol, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var envelope chartResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse chart %s: %w", symbol, err)
	}
	if envelope.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s", symbol, envelope.Chart.Error.Description)
	}
	if len(envelope.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	candles := parseCandles(envelope.Chart.Result[0])
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return candles, nil
}

func parseCandles(result chartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	q := result.Indicators.Quote[0]

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := models.OHLCV{Timestamp: time.Unix(ts, 0).UTC()}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Close) && q.Close[i] != nil {
			c.Close = *q.Close[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles
}

func chartInterval(days int) string {
	if days <= 7 {
		return "1h"
	}
	return "1d"
}
