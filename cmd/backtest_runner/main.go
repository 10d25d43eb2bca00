package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"almabot/config"
	"almabot/internal/adapters/logger"
	"almabot/internal/analytics"
	"almabot/internal/backtesting"
	"almabot/internal/domain"
	"almabot/internal/engine"
	"almabot/internal/optimization"
	"almabot/internal/pipeline"
	"almabot/internal/utils"
)

func main() {
	csvPath := flag.String("csv", "", "CSV file of historical candles (from fetch_klines)")
	optimize := flag.Bool("optimize", false, "grid-search filter parameters instead of a single run")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("FATAL: -csv is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	candles, err := utils.ReadCandlesFromCSV(*csvPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to read candles: %v", err)
	}
	appLogger.Info(ctx, "Loaded candles", map[string]interface{}{"count": len(candles), "file": *csvPath})

	engCfg := engine.Config{
		Symbol:         cfg.Symbol,
		CooldownCycles: cfg.CooldownCycles,
		MaxLots:        cfg.MaxLots,
		DefaultLots:    cfg.DefaultLots,
	}

	if *optimize {
		runOptimization(ctx, appLogger, candles, cfg, engCfg)
		return
	}

	if cfg.StrategyVariant == domain.VariantTrendBreakout {
		engCfg.LotPolicy = engine.StateLots
	}
	result, err := backtesting.Run(ctx, appLogger, candles, backtesting.Config{
		Pipeline: pipeline.Config{
			WindowLength:        cfg.WindowLength,
			Offset:              cfg.Offset,
			Sharpness:           cfg.Sharpness,
			TrendPeriod:         cfg.TrendPeriod,
			UseSyntheticCandles: cfg.UseSyntheticCandles,
		},
		Variant:    cfg.StrategyVariant,
		Engine:     engCfg,
		CloseAtEnd: true,
	})
	if err != nil {
		log.Fatalf("FATAL: Backtest failed: %v", err)
	}

	metrics := analytics.AnalyzeTrades(result.Trades)
	fmt.Printf("Backtest: %s %s variant=%s window=%d\n", cfg.Symbol, cfg.Interval, cfg.StrategyVariant, cfg.WindowLength)
	fmt.Printf("  cycles=%d suppressed=%d trades=%d\n", result.Cycles, result.Suppressed, metrics.TotalTrades)
	fmt.Printf("  total P&L:     %.4f\n", metrics.TotalProfit)
	fmt.Printf("  win rate:      %.2f%% (%d/%d)\n", metrics.WinRate*100, metrics.WinningTrades, metrics.TotalTrades)
	fmt.Printf("  profit factor: %.3f\n", metrics.ProfitFactor)
	fmt.Printf("  expectancy:    %.4f\n", metrics.Expectancy)
	fmt.Printf("  peak P&L:      %.4f\n", result.Stats.PeakPL)
	fmt.Printf("  max drawdown:  %.4f\n", result.Stats.MaxDrawdown)
}

func runOptimization(ctx context.Context, appLogger *logger.StdLogger, candles []domain.Candle, cfg *config.Config, engCfg engine.Config) {
	opt, err := optimization.NewOptimizer(optimization.Config{
		WindowLengths: []int{10, 20, 30, 50},
		Offsets:       []float64{0.75, 0.85, 0.95},
		Sharpnesses:   []float64{4, 6, 8},
		Variants:      []domain.Variant{domain.VariantSimple, domain.VariantDual},
		TrendPeriod:   cfg.TrendPeriod,
		UseSynthetic:  cfg.UseSyntheticCandles,
		Engine:        engCfg,
	}, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to build optimizer: %v", err)
	}

	results, err := opt.Optimize(ctx, candles)
	if err != nil {
		log.Fatalf("FATAL: Optimization failed: %v", err)
	}

	top := results
	if len(top) > 10 {
		top = top[:10]
	}
	fmt.Printf("Top %d parameter sets for %s:\n", len(top), cfg.Symbol)
	for i, r := range top {
		fmt.Printf("%2d. window=%-3d offset=%.2f sharpness=%.1f variant=%-14s score=%.4f profit=%.4f dd=%.4f trades=%d\n",
			i+1, r.Params.WindowLength, r.Params.Offset, r.Params.Sharpness, r.Params.Variant,
			r.Score, r.Metrics.TotalProfit, r.Metrics.MaxDrawdown, r.Metrics.TotalTrades)
	}
}
