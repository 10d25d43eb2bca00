package execution

import (
	"context"
	"fmt"
	"strconv"

	"almabot/internal/domain"
	"almabot/internal/ports"
)

// marketOrderPlacer is the slice of the exchange client the live executor needs.
type marketOrderPlacer interface {
	PlaceMarketOrder(ctx context.Context, symbol string, side domain.Side, quantity string) (*ports.OrderResponse, error)
}

// LiveExecutor translates position events into market orders. A reversal
// becomes a single order for closing lots plus opening lots, which flips
// the net futures position in one round trip.
type LiveExecutor struct {
	client  marketOrderPlacer
	logger  ports.Logger
	lotSize float64 // contract quantity per lot

	// lots and side currently held, tracked to size closes and reversals
	openedLots int
	openedSide domain.Side
}

// LiveConfig configures the live executor.
type LiveConfig struct {
	Client  marketOrderPlacer
	Logger  ports.Logger
	LotSize float64
}

// NewLive creates a live executor.
func NewLive(cfg LiveConfig) (*LiveExecutor, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("exchange client is required for live executor")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for live executor")
	}
	if cfg.LotSize <= 0 {
		return nil, fmt.Errorf("%w: lot size must be positive, got %v", ports.ErrConfigurationError, cfg.LotSize)
	}
	return &LiveExecutor{client: cfg.Client, logger: cfg.Logger, lotSize: cfg.LotSize}, nil
}

// Execute places the market order implied by the event.
func (e *LiveExecutor) Execute(ctx context.Context, event domain.PositionEvent) error {
	var side domain.Side
	var lots int

	switch event.Kind {
	case domain.EventOpen:
		side = event.Side
		lots = event.Lots
	case domain.EventReverse:
		// One order covers the old exposure and establishes the new side.
		side = event.Side
		lots = e.openedLots + event.Lots
	case domain.EventClose:
		if e.openedLots == 0 {
			e.logger.Warn(ctx, "Close event with no tracked position, skipping order", map[string]interface{}{"eventID": event.ID.String()})
			return nil
		}
		// A close event carries no side; flatten whatever we hold.
		side = e.openedSide.Opposite()
		lots = e.openedLots
	default:
		return fmt.Errorf("unknown position event kind %q", event.Kind)
	}

	quantity := strconv.FormatFloat(float64(lots)*e.lotSize, 'f', -1, 64)
	resp, err := e.client.PlaceMarketOrder(ctx, event.Symbol, side, quantity)
	if err != nil {
		return fmt.Errorf("executing %s event %s: %w", event.Kind, event.ID, err)
	}

	e.openedLots = event.Lots
	e.openedSide = event.Side
	if event.Kind == domain.EventClose {
		e.openedLots = 0
		e.openedSide = domain.SideNone
	}

	e.logger.Info(ctx, "Order placed for position event", map[string]interface{}{
		"eventID": event.ID.String(),
		"kind":    event.Kind,
		"orderID": resp.OrderID,
		"status":  resp.Status,
	})
	return nil
}
