package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind distinguishes the position changes the engine can emit.
type EventKind string

const (
	EventOpen    EventKind = "OPEN"
	EventReverse EventKind = "REVERSE"
	EventClose   EventKind = "CLOSE"
)

// PositionEvent is emitted whenever the engine opens, reverses, or closes
// a position. It is the unit handed to the execution collaborator; in
// dry-run mode it is merely recorded.
type PositionEvent struct {
	ID         uuid.UUID // unique event identity
	Kind       EventKind
	Symbol     string
	Side       Side    // side of the resulting position (SideNone on CLOSE)
	Price      float64 // price the change happened at
	Lots       int
	RealizedPL float64 // profit of the leg closed by this event, 0 on OPEN
	Time       time.Time
}

// NewPositionEvent stamps a position change with identity and time.
func NewPositionEvent(kind EventKind, symbol string, side Side, price float64, lots int, realized float64, at time.Time) PositionEvent {
	return PositionEvent{
		ID:         uuid.New(),
		Kind:       kind,
		Symbol:     symbol,
		Side:       side,
		Price:      price,
		Lots:       lots,
		RealizedPL: realized,
		Time:       at,
	}
}
