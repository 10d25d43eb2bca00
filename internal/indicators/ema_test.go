package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		period int
		want   []float64
	}{
		{
			name:   "empty input",
			values: nil,
			period: 3,
			want:   nil,
		},
		{
			name:   "single value seeds itself",
			values: []float64{42},
			period: 5,
			want:   []float64{42},
		},
		{
			name:   "period 3 recursion",
			values: []float64{10, 11, 12, 13},
			period: 3, // k = 0.5
			want:   []float64{10, 10.5, 11.25, 12.125},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EMA(tt.values, tt.period)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12, "index %d", i)
			}
		})
	}
}

func TestEMA_NoWarmupGap(t *testing.T) {
	values := []float64{5, 7, 6, 8, 9, 4, 3}
	out := EMA(values, 20)

	// Same length as the input even when the period exceeds it, and the
	// first element is exactly the first input.
	assert.Len(t, out, len(values))
	assert.Equal(t, values[0], out[0])
}
