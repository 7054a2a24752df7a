// Package technical implements technical analysis indicators and signal
// generation. All functions operate on chronological []models.OHLCV slices.
package technical

import (
	"math"
	"time"

	"github.com/pulseworks/marketpulse/pkg/models"
)

// RSI calculates the Relative Strength Index for the given period.
// Default period is 14. Returns values 0–100.
func RSI(candles []models.OHLCV, period int) []float64 {
	if period <= 0 {
		period = 14
	}
	n := len(candles)
	if n < period+1 {
		return nil
	}

	rsi := make([]float64, n)
	// Calculate initial gains and losses.
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		rsi[period] = 100
	} else {
		rs := avgGain / avgLoss
		rsi[period] = 100 - (100 / (1 + rs))
	}

	// Wilder's smoothing for subsequent values.
	for i := period + 1; i < n; i++ {
		change := candles[i].Close - candles[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)

		if avgLoss == 0 {
			rsi[i] = 100
		} else {
			rs := avgGain / avgLoss
			rsi[i] = 100 - (100 / (1 + rs))
		}
	}

	return rsi
}

// RSILatest returns only the most recent RSI value.
func RSILatest(candles []models.OHLCV, period int) float64 {
	vals := RSI(candles, period)
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

// MACDResult holds a single MACD computation point.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD calculates the Moving Average Convergence Divergence.
// Default parameters: fast=12, slow=26, signal=9.
func MACD(candles []models.OHLCV, fast, slow, signal int) []MACDResult {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signal <= 0 {
		signal = 9
	}

	closes := extractCloses(candles)
	if len(closes) < slow {
		return nil
	}

	fastEMA := emaCalc(closes, fast)
	slowEMA := emaCalc(closes, slow)

	n := len(closes)
	macdLine := make([]float64, n)
	for i := 0; i < n; i++ {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine := emaCalc(macdLine, signal)

	results := make([]MACDResult, n)
	for i := 0; i < n; i++ {
		results[i] = MACDResult{
			MACD:      macdLine[i],
			Signal:    signalLine[i],
			Histogram: macdLine[i] - signalLine[i],
		}
	}

	return results
}

// MACDLatest returns the most recent MACD values.
func MACDLatest(candles []models.OHLCV, fast, slow, signal int) models.MACDData {
	results := MACD(candles, fast, slow, signal)
	if len(results) == 0 {
		return models.MACDData{}
	}
	r := results[len(results)-1]
	return models.MACDData{
		MACDLine:   r.MACD,
		SignalLine: r.Signal,
		Histogram:  r.Histogram,
	}
}

// BollingerBands calculates Bollinger Bands (upper, middle, lower).
// Default: period=20, stddev multiplier=2.
func BollingerBands(candles []models.OHLCV, period int, mult float64) []models.BollingerData {
	if period <= 0 {
		period = 20
	}
	if mult <= 0 {
		mult = 2.0
	}

	closes := extractCloses(candles)
	n := len(closes)
	if n < period {
		return nil
	}

	result := make([]models.BollingerData, n)
	for i := period - 1; i < n; i++ {
		window := closes[i-period+1 : i+1]
		mean := avg(window)
		sd := stddev(window, mean)
		result[i] = models.BollingerData{
			Upper:  mean + mult*sd,
			Middle: mean,
			Lower:  mean - mult*sd,
		}
	}

	return result
}

// BollingerLatest returns the most recent Bollinger Bands values.
func BollingerLatest(candles []models.OHLCV, period int, mult float64) models.BollingerData {
	vals := BollingerBands(candles, period, mult)
	if len(vals) == 0 {
		return models.BollingerData{}
	}
	return vals[len(vals)-1]
}

// ADX calculates the Average Directional Index for the given period using
// Wilder's smoothing. Values above 25 indicate a trending market.
func ADX(candles []models.OHLCV, period int) []float64 {
	if period <= 0 {
		period = 14
	}
	n := len(candles)
	if n < 2*period+1 {
		return nil
	}

	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		hl := candles[i].High - candles[i].Low
		hc := math.Abs(candles[i].High - candles[i-1].Close)
		lc := math.Abs(candles[i].Low - candles[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))

		up := candles[i].High - candles[i-1].High
		down := candles[i-1].Low - candles[i].Low
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	// Seed the smoothed sums with the first `period` values.
	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := make([]float64, n)
	dx[period] = dxValue(smPlus, smMinus, smTR)
	for i := period + 1; i < n; i++ {
		smTR = smTR - smTR/float64(period) + tr[i]
		smPlus = smPlus - smPlus/float64(period) + plusDM[i]
		smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		dx[i] = dxValue(smPlus, smMinus, smTR)
	}

	// ADX is a Wilder-smoothed average of DX.
	adx := make([]float64, n)
	var sum float64
	for i := period; i < 2*period; i++ {
		sum += dx[i]
	}
	adx[2*period-1] = sum / float64(period)
	for i := 2 * period; i < n; i++ {
		adx[i] = (adx[i-1]*float64(period-1) + dx[i]) / float64(period)
	}

	return adx
}

func dxValue(plus, minus, tr float64) float64 {
	if tr == 0 {
		return 0
	}
	pdi := plus / tr * 100
	mdi := minus / tr * 100
	if pdi+mdi == 0 {
		return 0
	}
	return math.Abs(pdi-mdi) / (pdi + mdi) * 100
}

// ADXLatest returns the most recent ADX value.
func ADXLatest(candles []models.OHLCV, period int) float64 {
	vals := ADX(candles, period)
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

// OBV calculates On-Balance Volume: a running volume total that adds on up
// days and subtracts on down days.
func OBV(candles []models.OHLCV) []int64 {
	n := len(candles)
	if n == 0 {
		return nil
	}

	obv := make([]int64, n)
	for i := 1; i < n; i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			obv[i] = obv[i-1] + candles[i].Volume
		case candles[i].Close < candles[i-1].Close:
			obv[i] = obv[i-1] - candles[i].Volume
		default:
			obv[i] = obv[i-1]
		}
	}
	return obv
}

// OBVLatest returns the most recent OBV value.
func OBVLatest(candles []models.OHLCV) int64 {
	vals := OBV(candles)
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

// ComputeAll calculates all major indicators for a symbol.
func ComputeAll(symbol string, candles []models.OHLCV) *models.TechnicalIndicators {
	if len(candles) == 0 {
		return nil
	}

	ti := &models.TechnicalIndicators{
		Symbol:    symbol,
		RSI:       RSILatest(candles, 14),
		MACD:      MACDLatest(candles, 12, 26, 9),
		SMA:       make(map[int]float64),
		EMA:       make(map[int]float64),
		Bollinger: BollingerLatest(candles, 20, 2),
		ADX:       ADXLatest(candles, 14),
		OBV:       OBVLatest(candles),
		Timestamp: time.Now(),
	}

	closes := extractCloses(candles)
	for _, p := range StandardPeriods {
		if sma := SMALatest(closes, p); sma > 0 {
			ti.SMA[p] = sma
		}
		if ema := EMALatest(closes, p); ema > 0 {
			ti.EMA[p] = ema
		}
	}

	return ti
}

// --- helper functions ---

func extractCloses(candles []models.OHLCV) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

func avg(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func stddev(data []float64, mean float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)))
}

func emaCalc(data []float64, period int) []float64 {
	n := len(data)
	if n == 0 || period <= 0 {
		return make([]float64, n)
	}

	ema := make([]float64, n)
	k := 2.0 / float64(period+1)

	// Seed with SMA of first `period` values.
	if n < period {
		return ema
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	ema[period-1] = sum / float64(period)

	for i := period; i < n; i++ {
		ema[i] = data[i]*k + ema[i-1]*(1-k)
	}

	return ema
}
