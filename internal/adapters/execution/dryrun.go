package execution

import (
	"context"
	"fmt"
	"sync"

	"almabot/internal/domain"
	"almabot/internal/ports"
)

// DryRunExecutor implements ports.OrderExecutor without touching a venue.
// Every event is logged and retained so a session can be inspected after
// the fact.
type DryRunExecutor struct {
	logger ports.Logger

	mu     sync.Mutex
	events []domain.PositionEvent
}

// NewDryRun creates a dry-run executor.
func NewDryRun(logger ports.Logger) (*DryRunExecutor, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for dry-run executor")
	}
	return &DryRunExecutor{logger: logger}, nil
}

// Execute records the event instead of placing an order.
func (e *DryRunExecutor) Execute(ctx context.Context, event domain.PositionEvent) error {
	e.mu.Lock()
	e.events = append(e.events, event)
	e.mu.Unlock()

	e.logger.Info(ctx, "[DRY RUN] Position event", map[string]interface{}{
		"eventID":    event.ID.String(),
		"kind":       event.Kind,
		"symbol":     event.Symbol,
		"side":       event.Side,
		"price":      event.Price,
		"lots":       event.Lots,
		"realizedPL": event.RealizedPL,
	})
	return nil
}

// Events returns a copy of all events executed so far.
func (e *DryRunExecutor) Events() []domain.PositionEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.PositionEvent, len(e.events))
	copy(out, e.events)
	return out
}
