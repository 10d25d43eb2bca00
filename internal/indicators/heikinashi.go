package indicators

import "almabot/internal/domain"

// HACandle is a synthetic smoothed open/close pair derived from raw bars.
type HACandle struct {
	Open  float64
	Close float64
}

// HeikinAshi applies the synthetic-candle transform over the full history,
// strictly left to right. The first synthetic candle derives from the first
// raw bar alone; every later open is the midpoint of the previous synthetic
// open/close while close is always the 4-value average of the current raw
// bar. Each output depends on the previous output, so the transform must
// never be computed from a partial window: a prefix of the result always
// equals a from-scratch recomputation over that prefix.
func HeikinAshi(candles []domain.Candle) []HACandle {
	if len(candles) == 0 {
		return nil
	}
	out := make([]HACandle, len(candles))
	first := candles[0]
	out[0] = HACandle{
		Open:  (first.Open + first.Close) / 2,
		Close: (first.Open + first.High + first.Low + first.Close) / 4,
	}
	for i := 1; i < len(candles); i++ {
		c := candles[i]
		out[i] = HACandle{
			Open:  (out[i-1].Open + out[i-1].Close) / 2,
			Close: (c.Open + c.High + c.Low + c.Close) / 4,
		}
	}
	return out
}

// HACloses extracts the synthetic close series.
func HACloses(ha []HACandle) []float64 {
	out := make([]float64, len(ha))
	for i, c := range ha {
		out[i] = c.Close
	}
	return out
}

// HAOpens extracts the synthetic open series.
func HAOpens(ha []HACandle) []float64 {
	out := make([]float64, len(ha))
	for i, c := range ha {
		out[i] = c.Open
	}
	return out
}
