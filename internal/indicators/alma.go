package indicators

import (
	"fmt"
	"math"

	"almabot/internal/ports"
)

// ALMA is a Gaussian-weighted moving average (Arnaud Legoux style).
// The weight peak sits at floor(offset*(length-1)) inside the window and
// the curve width is length/sharpness, so recent samples dominate more
// smoothly than in a plain average.
type ALMA struct {
	length  int
	weights []float64
	norm    float64
}

// NewALMA validates the filter parameters and precomputes the window
// weights. Length and sharpness problems are configuration errors and
// fail here, never at evaluation time.
func NewALMA(length int, offset, sharpness float64) (*ALMA, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: ALMA length must be positive, got %d", ports.ErrConfigurationError, length)
	}
	if sharpness == 0 {
		return nil, fmt.Errorf("%w: ALMA sharpness must be non-zero", ports.ErrConfigurationError)
	}

	m := math.Floor(offset * float64(length-1))
	s := float64(length) / sharpness

	weights := make([]float64, length)
	norm := 0.0
	for i := 0; i < length; i++ {
		w := math.Exp(-((float64(i) - m) * (float64(i) - m)) / (2 * s * s))
		weights[i] = w
		norm += w
	}

	return &ALMA{length: length, weights: weights, norm: norm}, nil
}

// Length returns the window length, which is also the warm-up requirement.
func (a *ALMA) Length() int { return a.length }

// Value computes the weighted average over the trailing window of series.
// ok is false while the series is shorter than the window; that is an
// insufficient-data state, not an error. Only the last Length elements
// contribute, so the result is invariant to anything before the window.
func (a *ALMA) Value(series []float64) (value float64, ok bool) {
	if len(series) < a.length {
		return 0, false
	}
	sum := 0.0
	base := len(series) - a.length
	for i, w := range a.weights {
		sum += series[base+i] * w
	}
	return sum / a.norm, true
}

// Series computes the smoothed sequence aligned to the tail of the source:
// output[i] corresponds to source index i+Length-1 and the result is
// shorter than the source by Length-1. Nil until the source reaches the
// window length.
func (a *ALMA) Series(series []float64) []float64 {
	if len(series) < a.length {
		return nil
	}
	out := make([]float64, 0, len(series)-a.length+1)
	for end := a.length; end <= len(series); end++ {
		v, _ := a.Value(series[:end])
		out = append(out, v)
	}
	return out
}
