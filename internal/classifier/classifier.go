package classifier

import (
	"fmt"

	"almabot/internal/domain"
)

// Result is the outcome of one classification. State is only meaningful
// for the trend-breakout variant, where it drives lot sizing.
type Result struct {
	Signal domain.Signal
	State  domain.MarketState
}

// Classify maps the latest price against the band values to a discrete
// signal. It is a pure mapping: no position, stats, or cooldown state is
// consulted, which keeps each variant independently testable.
//
// trend/hasTrend carry the optional EMA filter value; only the
// trend-breakout variant reads it.
func Classify(variant domain.Variant, price, upper, lower, trend float64, hasTrend bool) Result {
	switch variant {
	case domain.VariantSimple:
		return Result{Signal: simple(price, upper, lower)}
	case domain.VariantDual:
		return Result{Signal: dual(price, upper, lower)}
	case domain.VariantTrendBreakout:
		if !hasTrend {
			panic("classifier: trend-breakout variant requires a trend filter value")
		}
		return trendBreakout(price, upper, lower, trend)
	default:
		panic(fmt.Sprintf("classifier: unknown variant %q", variant))
	}
}

// simple compares the price against one band at a time.
func simple(price, upper, lower float64) domain.Signal {
	switch {
	case price > upper:
		return domain.SignalBuy
	case price < lower:
		return domain.SignalSell
	}
	return domain.SignalHold
}

// dual requires the price to clear both bands. Crossed bands
// (upper < lower) would make both predicates satisfiable at once, so that
// shape is resolved to HOLD instead.
func dual(price, upper, lower float64) domain.Signal {
	if upper < lower {
		return domain.SignalHold
	}
	switch {
	case price > upper && price > lower:
		return domain.SignalBuy
	case price < upper && price < lower:
		return domain.SignalSell
	}
	return domain.SignalHold
}

// trendBreakout grades the move: TREND when the price clears a band and
// the trend filter on the same side, BREAKOUT when it clears only a band,
// SIDEWAYS otherwise.
func trendBreakout(price, upper, lower, trend float64) Result {
	switch {
	case price > upper && price > trend:
		return Result{Signal: domain.SignalBuy, State: domain.StateTrend}
	case price < lower && price < trend:
		return Result{Signal: domain.SignalSell, State: domain.StateTrend}
	case price > upper:
		return Result{Signal: domain.SignalBuy, State: domain.StateBreakout}
	case price < lower:
		return Result{Signal: domain.SignalSell, State: domain.StateBreakout}
	}
	return Result{Signal: domain.SignalHold, State: domain.StateSideways}
}
