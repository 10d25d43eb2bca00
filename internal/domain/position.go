package domain

// Side represents the direction of the live position.
type Side string

const (
	SideNone  Side = "NONE"
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Opposite returns the reversed side. SideNone has no opposite.
func (s Side) Opposite() Side {
	switch s {
	case SideLong:
		return SideShort
	case SideShort:
		return SideLong
	}
	return SideNone
}

// Position is the single authoritative trading state for a symbol.
// Exactly one live Position exists per traded symbol; it is mutated only
// by the engine.
type Position struct {
	Side       Side
	EntryPrice float64
	Lots       int // non-negative, capped by configuration
}

// IsOpen reports whether a position is currently held.
func (p Position) IsOpen() bool {
	return p.Side != SideNone
}
