package technical

// SMA calculates Simple Moving Average for the given period.
func SMA(data []float64, period int) []float64 {
	n := len(data)
	if n < period || period <= 0 {
		return nil
	}

	result := make([]float64, n)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	result[period-1] = sum / float64(period)

	for i := period; i < n; i++ {
		sum += data[i] - data[i-period]
		result[i] = sum / float64(period)
	}

	return result
}

// SMALatest returns the most recent SMA value.
func SMALatest(data []float64, period int) float64 {
	vals := SMA(data, period)
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

// EMA calculates Exponential Moving Average for the given period.
func EMA(data []float64, period int) []float64 {
	return emaCalc(data, period)
}

// EMALatest returns the most recent EMA value.
func EMALatest(data []float64, period int) float64 {
	vals := EMA(data, period)
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

// MultiSMA computes SMA for multiple periods at once.
func MultiSMA(data []float64, periods []int) map[int]float64 {
	result := make(map[int]float64, len(periods))
	for _, p := range periods {
		if v := SMALatest(data, p); v > 0 {
			result[p] = v
		}
	}
	return result
}

// MultiEMA computes EMA for multiple periods at once.
func MultiEMA(data []float64, periods []int) map[int]float64 {
	result := make(map[int]float64, len(periods))
	for _, p := range periods {
		if v := EMALatest(data, p); v > 0 {
			result[p] = v
		}
	}
	return result
}

// StandardPeriods are the commonly used moving average periods.
var StandardPeriods = []int{5, 10, 20, 50, 100, 200}
