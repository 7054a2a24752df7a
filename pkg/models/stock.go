package models

import "time"

// OHLCV represents a single candlestick bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// StockMetrics is a point-in-time snapshot for one symbol, derived from a
// fetched time series. Recomputed whenever the series cache is refreshed.
type StockMetrics struct {
	Symbol                string  `json:"symbol"`
	CurrentPrice          float64 `json:"current_price"`
	PrevClose             float64 `json:"yesterday_close"`
	DailyChange           float64 `json:"daily_change"`
	DailyChangePct        float64 `json:"daily_change_pct"`
	IntradayHigh          float64 `json:"intraday_high"`
	IntradayLow           float64 `json:"intraday_low"`
	IntradayHighChangePct float64 `json:"intraday_high_change_pct"`
	IntradayLowChangePct  float64 `json:"intraday_low_change_pct"`
	Volume                int64   `json:"volume"`
	AvgVolume             float64 `json:"avg_volume"`
	VolumeChangePct       float64 `json:"volume_change_pct"`
}

// Comparison holds per-symbol figures for a multi-symbol period comparison.
type Comparison struct {
	Symbol       string  `json:"symbol"`
	InitialPrice float64 `json:"initial_price"`
	CurrentPrice float64 `json:"current_price"`
	ChangePct    float64 `json:"change_pct"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	AvgVolume    float64 `json:"avg_volume"`
}

// MACDData contains MACD indicator values.
type MACDData struct {
	MACDLine   float64 `json:"macd_line"`
	SignalLine float64 `json:"signal_line"`
	Histogram  float64 `json:"histogram"`
}

// BollingerData contains Bollinger Band values.
type BollingerData struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// TechnicalIndicators holds computed indicator values for a symbol.
type TechnicalIndicators struct {
	Symbol    string          `json:"symbol"`
	RSI       float64         `json:"rsi"`
	SMA       map[int]float64 `json:"sma"` // period → value
	EMA       map[int]float64 `json:"ema"`
	MACD      MACDData        `json:"macd"`
	Bollinger BollingerData   `json:"bollinger"`
	ADX       float64         `json:"adx"`
	OBV       int64           `json:"obv"`
	Timestamp time.Time       `json:"timestamp"`
}

// SignalType classifies a composed technical signal.
type SignalType string

const (
	SignalBuy     SignalType = "buy"
	SignalSell    SignalType = "sell"
	SignalNeutral SignalType = "neutral"
)

// Signal is one indicator's contribution to the composed assessment.
type Signal struct {
	Source     string     `json:"source"` // "RSI", "MACD", ...
	Type       SignalType `json:"type"`
	Confidence float64    `json:"confidence"` // 0..1
	Reason     string     `json:"reason"`
	Price      float64    `json:"price"`
}

// Period names a lookback window for comparisons and indicator queries.
type Period string

// PeriodDays maps a named period to its length in calendar days.
var PeriodDays = map[Period]int{
	"1W": 7,
	"1M": 30,
	"3M": 90,
	"6M": 180,
	"1Y": 365,
}

// Days returns the period length in days, defaulting to one month for
// unknown period names.
func (p Period) Days() int {
	if d, ok := PeriodDays[p]; ok {
		return d
	}
	return PeriodDays["1M"]
}
