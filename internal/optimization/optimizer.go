package optimization

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"almabot/internal/analytics"
	"almabot/internal/backtesting"
	"almabot/internal/domain"
	"almabot/internal/engine"
	"almabot/internal/pipeline"
	"almabot/internal/ports"
)

// ParamSet is one candidate filter configuration.
type ParamSet struct {
	WindowLength int
	Offset       float64
	Sharpness    float64
	Variant      domain.Variant
}

// Result pairs a candidate with its backtest outcome and score.
type Result struct {
	Params  ParamSet
	Metrics *analytics.PerformanceMetrics
	Stats   domain.SessionStats
	Score   float64
}

// Config holds the search grid and the fixed parts of each backtest.
type Config struct {
	WindowLengths []int
	Offsets       []float64
	Sharpnesses   []float64
	Variants      []domain.Variant
	TrendPeriod   int // used by trend-breakout candidates
	UseSynthetic  bool
	Engine        engine.Config
	ScoreFunction func(*analytics.PerformanceMetrics) float64
}

// Optimizer grid-searches filter parameters by replaying the same candle
// history through a backtest per candidate.
type Optimizer struct {
	cfg    Config
	logger ports.Logger
}

// NewOptimizer validates the grid and creates an optimizer.
func NewOptimizer(cfg Config, logger ports.Logger) (*Optimizer, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for optimizer")
	}
	if len(cfg.WindowLengths) == 0 || len(cfg.Offsets) == 0 || len(cfg.Sharpnesses) == 0 || len(cfg.Variants) == 0 {
		return nil, fmt.Errorf("%w: optimizer grid must cover every dimension", ports.ErrConfigurationError)
	}
	if cfg.ScoreFunction == nil {
		cfg.ScoreFunction = DefaultScoreFunction
	}
	return &Optimizer{cfg: cfg, logger: logger}, nil
}

// Optimize backtests every grid combination concurrently and returns the
// results sorted by descending score. Candidates whose backtest fails
// (e.g. not enough history for the window) are logged and skipped.
func (o *Optimizer) Optimize(ctx context.Context, candles []domain.Candle) ([]Result, error) {
	candidates := o.combinations()
	resultCh := make(chan Result, len(candidates))

	var wg sync.WaitGroup
	for _, params := range candidates {
		wg.Add(1)
		go func(params ParamSet) {
			defer wg.Done()

			cfg := backtesting.Config{
				Pipeline: pipeline.Config{
					WindowLength:        params.WindowLength,
					Offset:              params.Offset,
					Sharpness:           params.Sharpness,
					UseSyntheticCandles: o.cfg.UseSynthetic,
				},
				Variant:    params.Variant,
				Engine:     o.cfg.Engine,
				CloseAtEnd: true,
			}
			if params.Variant == domain.VariantTrendBreakout {
				cfg.Pipeline.TrendPeriod = o.cfg.TrendPeriod
				cfg.Engine.LotPolicy = engine.StateLots
			}

			run, err := backtesting.Run(ctx, o.logger, candles, cfg)
			if err != nil {
				o.logger.Warn(ctx, "Skipping candidate", map[string]interface{}{
					"window": params.WindowLength, "offset": params.Offset,
					"sharpness": params.Sharpness, "variant": params.Variant, "reason": err.Error(),
				})
				return
			}

			metrics := analytics.AnalyzeTrades(run.Trades)
			resultCh <- Result{
				Params:  params,
				Metrics: metrics,
				Stats:   run.Stats,
				Score:   o.cfg.ScoreFunction(metrics),
			}
		}(params)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]Result, 0, len(candidates))
	for r := range resultCh {
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// combinations expands the grid into candidate parameter sets.
func (o *Optimizer) combinations() []ParamSet {
	out := make([]ParamSet, 0, len(o.cfg.WindowLengths)*len(o.cfg.Offsets)*len(o.cfg.Sharpnesses)*len(o.cfg.Variants))
	for _, w := range o.cfg.WindowLengths {
		for _, off := range o.cfg.Offsets {
			for _, s := range o.cfg.Sharpnesses {
				for _, v := range o.cfg.Variants {
					out = append(out, ParamSet{WindowLength: w, Offset: off, Sharpness: s, Variant: v})
				}
			}
		}
	}
	return out
}

// DefaultScoreFunction weighs profit against drawdown and hit rate.
func DefaultScoreFunction(m *analytics.PerformanceMetrics) float64 {
	score := m.TotalProfit
	score -= m.MaxDrawdown * 0.5
	score += m.WinRate * 10
	return score
}
