package market

import (
	"fmt"
	"sync"

	"almabot/internal/domain"
	"almabot/internal/ports"
)

// CandleBuffer is a bounded sliding window of candles. Appending beyond
// capacity evicts the oldest candle; interior elements are never reordered
// or removed. The live tick feed may update the most recent close at any
// time between evaluation cycles, so every operation is serialized behind
// one lock and Snapshot hands out a copy.
type CandleBuffer struct {
	mu       sync.Mutex
	capacity int
	candles  []domain.Candle
}

// NewCandleBuffer creates a buffer holding at most capacity candles.
func NewCandleBuffer(capacity int) (*CandleBuffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: buffer capacity must be positive, got %d", ports.ErrConfigurationError, capacity)
	}
	return &CandleBuffer{
		capacity: capacity,
		candles:  make([]domain.Candle, 0, capacity),
	}, nil
}

// Append adds a candle at the tail, evicting the oldest when full.
func (b *CandleBuffer) Append(candle domain.Candle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.candles) == b.capacity {
		copy(b.candles, b.candles[1:])
		b.candles[len(b.candles)-1] = candle
		return
	}
	b.candles = append(b.candles, candle)
}

// UpdateLastClose mutates only the most recent candle's close price,
// mapping a live tick onto the open bar. Returns ErrEmptyBuffer when no
// candle exists yet; callers should drop the tick.
func (b *CandleBuffer) UpdateLastClose(price float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.candles) == 0 {
		return ports.ErrEmptyBuffer
	}
	b.candles[len(b.candles)-1].Close = price
	return nil
}

// Snapshot returns a copy of the buffered candles in insertion order,
// safe to read while the feed keeps mutating the buffer.
func (b *CandleBuffer) Snapshot() []domain.Candle {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Candle, len(b.candles))
	copy(out, b.candles)
	return out
}

// Len returns the current number of buffered candles.
func (b *CandleBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.candles)
}

// Capacity returns the configured maximum length.
func (b *CandleBuffer) Capacity() int { return b.capacity }
