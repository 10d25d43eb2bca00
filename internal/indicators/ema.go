package indicators

// EMA computes the exponential moving average of values with the given
// period. The first output is seeded with values[0] and every element is
// value*k + previous*(1-k) with k = 2/(period+1).
//
// Unlike ALMA there is no warm-up gap: the output has the same length as
// the input. That asymmetry is intentional and callers rely on it.
func EMA(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}
