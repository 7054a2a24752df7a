package stockdata

import (
	"fmt"
	"time"

	"github.com/pulseworks/marketpulse/pkg/models"
)

type dayBucket struct {
	date    time.Time
	high    float64
	low     float64
	close   float64
	volume  int64
	hasData bool
}

// ComputeMetrics derives a metrics snapshot from a price series. The series
// must be in chronological order; the last record defines "today".
//
// Yesterday's close is the last close recorded on the calendar day before
// today. When the series has no records for that day (weekend, holiday) the
// first record's close stands in. All percentage fields guard their
// denominator and report 0 instead of dividing by zero.
func ComputeMetrics(symbol string, candles []models.OHLCV) (*models.StockMetrics, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	buckets := bucketByDay(candles)
	today := buckets[len(buckets)-1]
	yesterday := today.date.AddDate(0, 0, -1)

	prevClose := candles[0].Close
	for _, b := range buckets {
		if b.date.Equal(yesterday) {
			prevClose = b.close
			break
		}
	}

	m := &models.StockMetrics{
		Symbol:       symbol,
		CurrentPrice: today.close,
		PrevClose:    prevClose,
		IntradayHigh: today.high,
		IntradayLow:  today.low,
		Volume:       today.volume,
	}
	m.DailyChange = m.CurrentPrice - m.PrevClose
	m.DailyChangePct = pctOf(m.DailyChange, m.PrevClose)
	// Intraday extremes are measured against the prior close, like the
	// daily change, so all three percentages share one base.
	m.IntradayHighChangePct = pctOf(m.IntradayHigh-m.PrevClose, m.PrevClose)
	m.IntradayLowChangePct = pctOf(m.IntradayLow-m.PrevClose, m.PrevClose)

	m.AvgVolume = avgDailyVolume(buckets)
	m.VolumeChangePct = pctOf(float64(m.Volume)-m.AvgVolume, m.AvgVolume)

	return m, nil
}

// bucketByDay groups a series into per-calendar-day aggregates, preserving
// chronological order. Daily series yield one record per bucket; intraday
// series collapse into day highs, lows, last close and total volume.
func bucketByDay(candles []models.OHLCV) []dayBucket {
	var buckets []dayBucket
	for _, c := range candles {
		date := c.Timestamp.UTC().Truncate(24 * time.Hour)
		if n := len(buckets); n == 0 || !buckets[n-1].date.Equal(date) {
			buckets = append(buckets, dayBucket{date: date, high: c.High, low: c.Low})
		}
		b := &buckets[len(buckets)-1]
		if !b.hasData || c.High > b.high {
			b.high = c.High
		}
		if !b.hasData || c.Low < b.low {
			b.low = c.Low
		}
		b.close = c.Close
		b.volume += c.Volume
		b.hasData = true
	}
	return buckets
}

// avgDailyVolume averages daily volume over the days before today, falling
// back to today's volume for a single-day series.
func avgDailyVolume(buckets []dayBucket) float64 {
	if len(buckets) < 2 {
		return float64(buckets[len(buckets)-1].volume)
	}
	var total int64
	for _, b := range buckets[:len(buckets)-1] {
		total += b.volume
	}
	return float64(total) / float64(len(buckets)-1)
}

func pctOf(delta, base float64) float64 {
	if base == 0 {
		return 0
	}
	return delta / base * 100
}
