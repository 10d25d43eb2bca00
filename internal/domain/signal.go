package domain

// Signal is the discrete trading decision produced by the classifier.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// MarketState is the extended classification used by the trend/breakout
// variant to drive lot sizing.
type MarketState string

const (
	StateTrend    MarketState = "TREND"
	StateBreakout MarketState = "BREAKOUT"
	StateSideways MarketState = "SIDEWAYS"
)

// Variant selects the classification rule.
type Variant string

const (
	VariantSimple        Variant = "simple"         // price vs one band
	VariantDual          Variant = "dual"           // price vs both bands
	VariantTrendBreakout Variant = "trend-breakout" // bands plus EMA trend filter
)

// ParseVariant maps a configuration string to a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch Variant(s) {
	case VariantSimple, VariantDual, VariantTrendBreakout:
		return Variant(s), true
	}
	return "", false
}
