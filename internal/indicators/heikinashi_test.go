package indicators

import (
	"testing"

	"almabot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func haFixture() []domain.Candle {
	return []domain.Candle{
		{Open: 100, High: 110, Low: 95, Close: 105},
		{Open: 105, High: 112, Low: 101, Close: 108},
		{Open: 108, High: 109, Low: 99, Close: 101},
		{Open: 101, High: 104, Low: 97, Close: 103},
		{Open: 103, High: 115, Low: 102, Close: 114},
	}
}

func TestHeikinAshi_FirstCandle(t *testing.T) {
	candles := haFixture()
	ha := HeikinAshi(candles[:1])
	require.Len(t, ha, 1)

	assert.Equal(t, (100.0+105.0)/2, ha[0].Open)
	assert.Equal(t, (100.0+110.0+95.0+105.0)/4, ha[0].Close)
}

func TestHeikinAshi_Recursion(t *testing.T) {
	candles := haFixture()
	ha := HeikinAshi(candles)
	require.Len(t, ha, len(candles))

	for i := 1; i < len(ha); i++ {
		c := candles[i]
		assert.Equal(t, (ha[i-1].Open+ha[i-1].Close)/2, ha[i].Open, "open at %d depends on previous synthetic candle", i)
		assert.Equal(t, (c.Open+c.High+c.Low+c.Close)/4, ha[i].Close, "close at %d depends on current raw candle", i)
	}
}

func TestHeikinAshi_PrefixConsistency(t *testing.T) {
	candles := haFixture()
	full := HeikinAshi(candles)

	// No future leakage: the transform over any prefix equals the first
	// k elements of the transform over the longer history.
	for k := 1; k <= len(candles); k++ {
		prefix := HeikinAshi(candles[:k])
		require.Len(t, prefix, k)
		for i := 0; i < k; i++ {
			assert.Equal(t, full[i], prefix[i], "prefix %d index %d", k, i)
		}
	}
}

func TestHeikinAshi_Empty(t *testing.T) {
	assert.Nil(t, HeikinAshi(nil))
}

func TestHACloseOpenExtraction(t *testing.T) {
	ha := HeikinAshi(haFixture())
	closes := HACloses(ha)
	opens := HAOpens(ha)
	require.Len(t, closes, len(ha))
	require.Len(t, opens, len(ha))
	for i := range ha {
		assert.Equal(t, ha[i].Close, closes[i])
		assert.Equal(t, ha[i].Open, opens[i])
	}
}
