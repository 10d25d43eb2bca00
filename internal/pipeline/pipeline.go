package pipeline

import (
	"fmt"

	"almabot/internal/domain"
	"almabot/internal/indicators"
	"almabot/internal/ports"
)

// warmupGuard delays readiness a few cycles past the bare mathematical
// minimum so the first signals do not come off a just-barely-warm filter.
const warmupGuard = 5

// Config holds the filter parameters for band computation.
type Config struct {
	WindowLength        int     // ALMA window, e.g. 20
	Offset              float64 // ALMA peak offset, e.g. 0.85
	Sharpness           float64 // ALMA sigma divisor, e.g. 6
	TrendPeriod         int     // EMA period for the trend filter; 0 disables it
	UseSyntheticCandles bool    // evaluate price on the Heikin-Ashi close
}

// BandSnapshot carries the latest computed band values for one cycle.
// It is recomputed fresh every evaluation and has no persisted identity.
type BandSnapshot struct {
	UpperBand  float64
	LowerBand  float64
	TrendValue float64
	HasTrend   bool
	Price      float64 // evaluation price matching the configured candle mode
	Ready      bool    // false while below the warm-up threshold
}

// Pipeline turns a candle history into a BandSnapshot: ALMA over the
// high series for the upper band, ALMA over the low series for the lower
// band, optional EMA over synthetic closes as a trend filter.
type Pipeline struct {
	cfg  Config
	alma *indicators.ALMA
}

// New validates the configuration and builds the pipeline. All parameter
// problems surface here, never during a cycle.
func New(cfg Config) (*Pipeline, error) {
	alma, err := indicators.NewALMA(cfg.WindowLength, cfg.Offset, cfg.Sharpness)
	if err != nil {
		return nil, err
	}
	if cfg.TrendPeriod < 0 {
		return nil, fmt.Errorf("%w: trend period cannot be negative, got %d", ports.ErrConfigurationError, cfg.TrendPeriod)
	}
	return &Pipeline{cfg: cfg, alma: alma}, nil
}

// RequiredDataPoints returns the number of candles needed before the
// pipeline reports Ready.
func (p *Pipeline) RequiredDataPoints() int {
	return p.cfg.WindowLength + warmupGuard
}

// Compute derives the band snapshot from a buffer snapshot. A not-ready
// result is an explicit warm-up state, distinct from any computed signal.
func (p *Pipeline) Compute(candles []domain.Candle) BandSnapshot {
	if len(candles) < p.RequiredDataPoints() {
		return BandSnapshot{}
	}

	upper, okU := p.alma.Value(domain.Highs(candles))
	lower, okL := p.alma.Value(domain.Lows(candles))
	if !okU || !okL {
		// Guarded by RequiredDataPoints; reaching here means the guard
		// no longer covers the window length.
		panic(fmt.Sprintf("pipeline: ALMA undefined with %d candles, window %d", len(candles), p.cfg.WindowLength))
	}

	snap := BandSnapshot{
		UpperBand: upper,
		LowerBand: lower,
		Price:     candles[len(candles)-1].Close,
		Ready:     true,
	}

	if p.cfg.UseSyntheticCandles || p.cfg.TrendPeriod > 0 {
		ha := indicators.HeikinAshi(candles)
		haCloses := indicators.HACloses(ha)
		if p.cfg.UseSyntheticCandles {
			snap.Price = haCloses[len(haCloses)-1]
		}
		if p.cfg.TrendPeriod > 0 {
			trend := indicators.EMA(haCloses, p.cfg.TrendPeriod)
			snap.TrendValue = trend[len(trend)-1]
			snap.HasTrend = true
		}
	}

	return snap
}
