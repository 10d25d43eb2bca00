package market

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"almabot/internal/domain"
	"almabot/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candleAt(i int) domain.Candle {
	base := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	return domain.Candle{
		OpenTime: base.Add(time.Duration(i) * 15 * time.Minute),
		Open:     100 + float64(i),
		High:     101 + float64(i),
		Low:      99 + float64(i),
		Close:    100.5 + float64(i),
	}
}

func TestNewCandleBuffer_Validation(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		t.Run(fmt.Sprintf("capacity %d", capacity), func(t *testing.T) {
			b, err := NewCandleBuffer(capacity)
			assert.ErrorIs(t, err, ports.ErrConfigurationError)
			assert.Nil(t, b)
		})
	}
}

func TestCandleBuffer_AppendEvictsOldest(t *testing.T) {
	b, err := NewCandleBuffer(3)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		b.Append(candleAt(i))
		assert.LessOrEqual(t, b.Len(), 3, "buffer must never exceed capacity")
	}

	snap := b.Snapshot()
	require.Len(t, snap, 3)
	// After capacity+1 appends the buffer holds exactly the most recent
	// candles in original relative order.
	for i, c := range snap {
		assert.Equal(t, candleAt(i+1).OpenTime, c.OpenTime)
	}
}

func TestCandleBuffer_UpdateLastClose(t *testing.T) {
	b, err := NewCandleBuffer(3)
	require.NoError(t, err)

	// Ticks before any candle exists are rejected, not fatal.
	assert.ErrorIs(t, b.UpdateLastClose(101.5), ports.ErrEmptyBuffer)

	b.Append(candleAt(0))
	b.Append(candleAt(1))
	require.NoError(t, b.UpdateLastClose(250))

	snap := b.Snapshot()
	assert.Equal(t, 250.0, snap[1].Close, "only the most recent close mutates")
	assert.Equal(t, candleAt(0).Close, snap[0].Close, "interior candles untouched")
}

func TestCandleBuffer_SnapshotIsCopy(t *testing.T) {
	b, err := NewCandleBuffer(2)
	require.NoError(t, err)
	b.Append(candleAt(0))

	snap := b.Snapshot()
	snap[0].Close = -1

	assert.NotEqual(t, -1.0, b.Snapshot()[0].Close)
}

func TestCandleBuffer_ConcurrentTicks(t *testing.T) {
	b, err := NewCandleBuffer(10)
	require.NoError(t, err)
	b.Append(candleAt(0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = b.UpdateLastClose(float64(100 + i))
				_ = b.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, b.Len())
}
