package ports

import (
	"context"
	"time"

	"almabot/internal/domain"
)

// OrderResponse represents the essential details returned after placing an order.
type OrderResponse struct {
	OrderID   int64   // Exchange's order ID
	Symbol    string  // Symbol for the order
	AvgPrice  float64 // Average filled price
	Quantity  float64 // Quantity filled
	Status    string  // Order status (e.g., NEW, FILLED)
	Side      string  // Order side (BUY, SELL)
	Timestamp time.Time
}

// MarketDataClient delivers historical candles and live market data.
// The core consumes it during bootstrap and per live event; it never
// blocks inside an evaluation cycle.
type MarketDataClient interface {
	// GetCandles retrieves the most recent historical candles.
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error)

	// GetCandlesRange retrieves historical candles between start and end.
	GetCandlesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.Candle, error)

	// StreamCandles starts a websocket stream of candle updates.
	// Returns channels to control the stream (doneCh, stopCh) or an error.
	StreamCandles(ctx context.Context, symbol, interval string, handler func(candle domain.Candle), errHandler func(err error)) (doneCh chan struct{}, stopCh chan struct{}, err error)

	// StreamTicks starts a stream of last-trade prices. Each price maps to
	// an update of the most recent candle's close.
	StreamTicks(ctx context.Context, symbol string, handler func(price float64), errHandler func(err error)) (doneCh chan struct{}, stopCh chan struct{}, err error)

	// Ping checks connectivity to the venue.
	Ping(ctx context.Context) error
}

// OrderExecutor places the orders implied by position events. A dry-run
// implementation records the event without touching a venue.
type OrderExecutor interface {
	// Execute acts on a position change emitted by the engine.
	Execute(ctx context.Context, event domain.PositionEvent) error
}
