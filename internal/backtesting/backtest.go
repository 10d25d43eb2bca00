package backtesting

import (
	"context"
	"fmt"

	"almabot/internal/classifier"
	"almabot/internal/domain"
	"almabot/internal/engine"
	"almabot/internal/pipeline"
	"almabot/internal/ports"
)

// Config describes one backtest run: the same pipeline, classifier, and
// engine parameters the live bot would use.
type Config struct {
	Pipeline   pipeline.Config
	Variant    domain.Variant
	Engine     engine.Config
	CloseAtEnd bool // realize the final open leg at the last close
}

// Result holds the outcome of a backtest.
type Result struct {
	Trades        []*domain.Trade
	Events        []domain.PositionEvent
	Stats         domain.SessionStats
	Cycles        int // evaluation cycles executed past warm-up
	Suppressed    int // cycles throttled by the cooldown
	FinalPosition domain.Position
}

// Run replays a candle history through the full core, one evaluation cycle
// per candle. The replay is deterministic: identical candles and identical
// configuration reproduce identical trades and statistics.
func Run(ctx context.Context, logger ports.Logger, candles []domain.Candle, cfg Config) (*Result, error) {
	pipe, err := pipeline.New(cfg.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("backtest pipeline: %w", err)
	}
	if _, ok := domain.ParseVariant(string(cfg.Variant)); !ok {
		return nil, fmt.Errorf("%w: unknown strategy variant %q", ports.ErrConfigurationError, cfg.Variant)
	}
	eng, err := engine.New(cfg.Engine, logger)
	if err != nil {
		return nil, fmt.Errorf("backtest engine: %w", err)
	}
	if len(candles) < pipe.RequiredDataPoints() {
		return nil, fmt.Errorf("not enough candles (%d) for warm-up (%d)", len(candles), pipe.RequiredDataPoints())
	}

	result := &Result{}
	for i := pipe.RequiredDataPoints() - 1; i < len(candles); i++ {
		history := candles[:i+1]
		snap := pipe.Compute(history)
		if !snap.Ready {
			continue
		}
		result.Cycles++

		cls := classifier.Classify(cfg.Variant, snap.Price, snap.UpperBand, snap.LowerBand, snap.TrendValue, snap.HasTrend)
		cycle := eng.Apply(ctx, cls.Signal, cls.State, snap.Price, candles[i].CloseTime)
		if cycle.Suppressed {
			result.Suppressed++
		}
		result.Trades = append(result.Trades, cycle.Trades...)
		result.Events = append(result.Events, cycle.Events...)
	}

	if cfg.CloseAtEnd {
		last := candles[len(candles)-1]
		snap := pipe.Compute(candles)
		cycle := eng.CloseAll(ctx, snap.Price, last.CloseTime)
		result.Trades = append(result.Trades, cycle.Trades...)
		result.Events = append(result.Events, cycle.Events...)
	}

	result.Stats = eng.Stats()
	result.FinalPosition = eng.Position()
	return result, nil
}
