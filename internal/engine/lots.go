package engine

import "almabot/internal/domain"

// LotPolicy maps a market state to a lot count. It is advisory and
// orthogonal to the entry/reversal mechanics, so it can be swapped
// without touching the state machine.
type LotPolicy func(state domain.MarketState) int

// StateLots is the default policy for the trend-breakout variant:
// full size in a confirmed trend, single lot on a bare breakout,
// nothing sideways.
func StateLots(state domain.MarketState) int {
	switch state {
	case domain.StateTrend:
		return 2
	case domain.StateBreakout:
		return 1
	}
	return 0
}
