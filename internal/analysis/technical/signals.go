package technical

import (
	"fmt"

	"github.com/pulseworks/marketpulse/pkg/models"
	"github.com/pulseworks/marketpulse/pkg/utils"
)

// GenerateSignals produces trading signals from technical analysis on the
// given candles. Fewer than 30 candles is not enough history to say anything.
func GenerateSignals(candles []models.OHLCV) []models.Signal {
	if len(candles) < 30 {
		return nil
	}

	var signals []models.Signal
	last := candles[len(candles)-1]

	rsi := RSILatest(candles, 14)
	macd := MACDLatest(candles, 12, 26, 9)
	bb := BollingerLatest(candles, 20, 2)
	adx := ADXLatest(candles, 14)

	closes := extractCloses(candles)
	smaVals := MultiSMA(closes, StandardPeriods)
	emaVals := MultiEMA(closes, StandardPeriods)

	// --- RSI signals ---
	if rsi > 0 {
		if rsi < 30 {
			signals = append(signals, models.Signal{
				Source:     "RSI",
				Type:       models.SignalBuy,
				Confidence: 0.5 + (30-rsi)/100,
				Reason:     fmt.Sprintf("RSI oversold at %.1f", rsi),
				Price:      last.Close,
			})
		} else if rsi > 70 {
			signals = append(signals, models.Signal{
				Source:     "RSI",
				Type:       models.SignalSell,
				Confidence: 0.5 + (rsi-70)/100,
				Reason:     fmt.Sprintf("RSI overbought at %.1f", rsi),
				Price:      last.Close,
			})
		}
	}

	// --- MACD signals ---
	if macd.MACDLine != 0 && macd.SignalLine != 0 {
		if macd.Histogram > 0 && macd.MACDLine > macd.SignalLine {
			signals = append(signals, models.Signal{
				Source:     "MACD",
				Type:       models.SignalBuy,
				Confidence: utils.Clampf(0.5+macd.Histogram/last.Close*100, 0, 1),
				Reason:     fmt.Sprintf("MACD bullish crossover (histogram: %.2f)", macd.Histogram),
				Price:      last.Close,
			})
		} else if macd.Histogram < 0 && macd.MACDLine < macd.SignalLine {
			signals = append(signals, models.Signal{
				Source:     "MACD",
				Type:       models.SignalSell,
				Confidence: utils.Clampf(0.5-macd.Histogram/last.Close*100, 0, 1),
				Reason:     fmt.Sprintf("MACD bearish crossover (histogram: %.2f)", macd.Histogram),
				Price:      last.Close,
			})
		}
	}

	// --- Bollinger Band signals ---
	if bb.Upper > 0 && bb.Lower > 0 {
		if last.Close < bb.Lower {
			signals = append(signals, models.Signal{
				Source:     "Bollinger",
				Type:       models.SignalBuy,
				Confidence: 0.6,
				Reason:     fmt.Sprintf("Price (%.2f) below lower Bollinger Band (%.2f)", last.Close, bb.Lower),
				Price:      last.Close,
			})
		} else if last.Close > bb.Upper {
			signals = append(signals, models.Signal{
				Source:     "Bollinger",
				Type:       models.SignalSell,
				Confidence: 0.6,
				Reason:     fmt.Sprintf("Price (%.2f) above upper Bollinger Band (%.2f)", last.Close, bb.Upper),
				Price:      last.Close,
			})
		}
	}

	// --- ADX trend strength ---
	// ADX is directionless; it only confirms whichever way price is moving.
	if adx > 25 {
		dir := models.SignalBuy
		if macd.Histogram < 0 {
			dir = models.SignalSell
		}
		signals = append(signals, models.Signal{
			Source:     "ADX",
			Type:       dir,
			Confidence: utils.Clampf(0.4+(adx-25)/100, 0, 0.8),
			Reason:     fmt.Sprintf("Strong trend, ADX at %.1f", adx),
			Price:      last.Close,
		})
	}

	// --- Moving Average crossover signals ---
	if sma50, ok := smaVals[50]; ok {
		if sma200, ok2 := smaVals[200]; ok2 {
			if sma50 > sma200 && last.Close > sma50 {
				signals = append(signals, models.Signal{
					Source:     "MA_Golden_Cross",
					Type:       models.SignalBuy,
					Confidence: 0.7,
					Reason:     fmt.Sprintf("SMA50 (%.2f) above SMA200 (%.2f), golden cross", sma50, sma200),
					Price:      last.Close,
				})
			} else if sma50 < sma200 && last.Close < sma50 {
				signals = append(signals, models.Signal{
					Source:     "MA_Death_Cross",
					Type:       models.SignalSell,
					Confidence: 0.7,
					Reason:     fmt.Sprintf("SMA50 (%.2f) below SMA200 (%.2f), death cross", sma50, sma200),
					Price:      last.Close,
				})
			}
		}
	}

	// --- Price vs EMA20 signals ---
	if ema20, ok := emaVals[20]; ok {
		pctDiff := (last.Close - ema20) / ema20 * 100
		if pctDiff < -3 {
			signals = append(signals, models.Signal{
				Source:     "EMA20",
				Type:       models.SignalBuy,
				Confidence: utils.Clampf(0.4+(-pctDiff)/20, 0, 0.9),
				Reason:     fmt.Sprintf("Price %.1f%% below EMA20 (%.2f)", pctDiff, ema20),
				Price:      last.Close,
			})
		} else if pctDiff > 5 {
			signals = append(signals, models.Signal{
				Source:     "EMA20",
				Type:       models.SignalSell,
				Confidence: utils.Clampf(0.4+pctDiff/20, 0, 0.9),
				Reason:     fmt.Sprintf("Price %.1f%% above EMA20 (%.2f)", pctDiff, ema20),
				Price:      last.Close,
			})
		}
	}

	return signals
}

// AggregateSignal computes a weighted aggregate from multiple signals.
func AggregateSignal(signals []models.Signal) (models.SignalType, float64) {
	if len(signals) == 0 {
		return models.SignalNeutral, 0
	}

	// Source weights for aggregation.
	weights := map[string]float64{
		"RSI":             1.0,
		"MACD":            1.2,
		"Bollinger":       0.8,
		"ADX":             0.9,
		"MA_Golden_Cross": 1.3,
		"MA_Death_Cross":  1.3,
		"EMA20":           0.7,
	}

	var buyScore, sellScore, totalWeight float64

	for _, sig := range signals {
		w := weights[sig.Source]
		if w == 0 {
			w = 1.0
		}

		switch sig.Type {
		case models.SignalBuy:
			buyScore += w * sig.Confidence
		case models.SignalSell:
			sellScore += w * sig.Confidence
		}
		totalWeight += w
	}

	if totalWeight == 0 {
		return models.SignalNeutral, 0
	}

	netScore := (buyScore - sellScore) / totalWeight

	switch {
	case netScore > 0.1:
		return models.SignalBuy, utils.Clampf(0.5+netScore*0.5, 0, 1)
	case netScore < -0.1:
		return models.SignalSell, utils.Clampf(0.5+(-netScore)*0.5, 0, 1)
	default:
		return models.SignalNeutral, 0.4
	}
}
