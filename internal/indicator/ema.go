package indicator

// EMA computes the exponential moving average of values with the given
// span, using the recursive form ema[i] = v*k + ema[i-1]*(1-k) with
// k = 2/(span+1). The seed is the FIRST value (the pandas ewm adjust=false
// convention the upstream data was historically analyzed with), not the
// simple mean of the first span values.
func EMA(values []float64, span int) []float64 {
	if len(values) == 0 || span <= 0 {
		return nil
	}
	k := 2.0 / float64(span+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// SMA returns the simple moving average of the LAST window values.
func SMA(values []float64, window int) float64 {
	n := len(values)
	sum := 0.0
	for _, v := range values[n-window:] {
		sum += v
	}
	return sum / float64(window)
}
