package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"almabot/config"
	"almabot/internal/classifier"
	"almabot/internal/domain"
	"almabot/internal/engine"
	"almabot/internal/market"
	"almabot/internal/pipeline"
	"almabot/internal/ports"
)

// TradingService orchestrates the live signal loop: candle and tick streams
// feed the buffer, a ticker drives evaluation cycles, and engine decisions
// flow to the executor and the repositories.
type TradingService struct {
	cfg       *config.Config
	logger    ports.Logger
	market    ports.MarketDataClient
	executor  ports.OrderExecutor
	tradeRepo ports.TradeRepository
	statsRepo ports.StatsRepository

	buffer   *market.CandleBuffer
	pipeline *pipeline.Pipeline
	engine   *engine.Engine
}

// NewTradingService wires the collaborators and builds the processing core.
func NewTradingService(
	cfg *config.Config,
	logger ports.Logger,
	marketData ports.MarketDataClient,
	executor ports.OrderExecutor,
	tradeRepo ports.TradeRepository,
	statsRepo ports.StatsRepository,
) (*TradingService, error) {
	if cfg == nil || logger == nil || marketData == nil || executor == nil || tradeRepo == nil || statsRepo == nil {
		return nil, fmt.Errorf("missing required dependencies for TradingService")
	}

	buffer, err := market.NewCandleBuffer(cfg.BufferCapacity)
	if err != nil {
		return nil, fmt.Errorf("building candle buffer: %w", err)
	}

	pipe, err := pipeline.New(pipeline.Config{
		WindowLength:        cfg.WindowLength,
		Offset:              cfg.Offset,
		Sharpness:           cfg.Sharpness,
		TrendPeriod:         cfg.TrendPeriod,
		UseSyntheticCandles: cfg.UseSyntheticCandles,
	})
	if err != nil {
		return nil, fmt.Errorf("building indicator pipeline: %w", err)
	}
	if cfg.BufferCapacity < pipe.RequiredDataPoints() {
		return nil, fmt.Errorf("%w: buffer capacity %d is below the %d candles the pipeline needs",
			ports.ErrConfigurationError, cfg.BufferCapacity, pipe.RequiredDataPoints())
	}

	engCfg := engine.Config{
		Symbol:         cfg.Symbol,
		CooldownCycles: cfg.CooldownCycles,
		MaxLots:        cfg.MaxLots,
		DefaultLots:    cfg.DefaultLots,
	}
	if cfg.StrategyVariant == domain.VariantTrendBreakout {
		engCfg.LotPolicy = engine.StateLots
	}
	eng, err := engine.New(engCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}

	return &TradingService{
		cfg:       cfg,
		logger:    logger,
		market:    marketData,
		executor:  executor,
		tradeRepo: tradeRepo,
		statsRepo: statsRepo,
		buffer:    buffer,
		pipeline:  pipe,
		engine:    eng,
	}, nil
}

// Start bootstraps history, attaches the live streams, and runs evaluation
// cycles until the context is cancelled. On shutdown the open position is
// closed flat and the final stats snapshot is persisted.
func (s *TradingService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting Trading Service...", map[string]interface{}{
		"symbol": s.cfg.Symbol, "interval": s.cfg.Interval, "variant": s.cfg.StrategyVariant, "dryRun": s.cfg.DryRun,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.market.Ping(ctx); err != nil {
		return fmt.Errorf("exchange unreachable: %w", err)
	}

	// --- Bootstrap historical candles ---
	required := s.pipeline.RequiredDataPoints()
	initial, err := s.market.GetCandles(ctx, s.cfg.Symbol, s.cfg.Interval, s.cfg.BufferCapacity)
	if err != nil {
		return fmt.Errorf("failed to load initial candles: %w", err)
	}
	if len(initial) < required {
		return fmt.Errorf("not enough initial candles loaded (%d) to meet warm-up requirement (%d)", len(initial), required)
	}
	for _, c := range initial {
		s.buffer.Append(c)
	}
	s.logger.Info(ctx, "Loaded initial candles", map[string]interface{}{"count": s.buffer.Len(), "required": required})

	// --- Live streams ---
	candleDoneCh, candleStopCh, err := s.market.StreamCandles(ctx, s.cfg.Symbol, s.cfg.Interval, s.handleCandle, s.handleStreamError)
	if err != nil {
		return fmt.Errorf("failed to start candle stream: %w", err)
	}
	tickDoneCh, tickStopCh, err := s.market.StreamTicks(ctx, s.cfg.Symbol, s.handleTick, s.handleStreamError)
	if err != nil {
		stopStream(candleStopCh)
		return fmt.Errorf("failed to start tick stream: %w", err)
	}
	s.logger.Info(ctx, "Market data streams started", map[string]interface{}{"symbol": s.cfg.Symbol})

	// --- Evaluation loop ---
	// Cycles are ticker-driven rather than polled per tick so the cooldown
	// counter advances at a predictable cadence.
	ticker := time.NewTicker(s.cfg.EvaluationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runCycle(ctx)
		case <-candleDoneCh:
			stopStream(tickStopCh)
			s.shutdown(context.Background())
			return fmt.Errorf("candle stream stopped unexpectedly")
		case <-tickDoneCh:
			stopStream(candleStopCh)
			s.shutdown(context.Background())
			return fmt.Errorf("tick stream stopped unexpectedly")
		case <-ctx.Done():
			s.logger.Info(ctx, "Context cancelled, initiating shutdown...")
			stopStream(candleStopCh)
			stopStream(tickStopCh)
			// Detached context: the parent is already cancelled but the
			// closing leg still has to be persisted.
			s.shutdown(context.Background())
			s.logger.Info(ctx, "Trading Service stopped.")
			return nil
		}
	}
}

// runCycle performs one evaluation: snapshot, indicators, classification,
// and the engine transition. Below warm-up the cycle is skipped.
func (s *TradingService) runCycle(ctx context.Context) {
	candles := s.buffer.Snapshot()
	if len(candles) < s.pipeline.RequiredDataPoints() {
		s.logger.Debug(ctx, "Skipping cycle below warm-up threshold", map[string]interface{}{
			"candles": len(candles), "required": s.pipeline.RequiredDataPoints(),
		})
		return
	}

	bands := s.pipeline.Compute(candles)
	if !bands.Ready {
		return
	}

	res := classifier.Classify(s.cfg.StrategyVariant, bands.Price, bands.UpperBand, bands.LowerBand, bands.TrendValue, bands.HasTrend)
	cycle := s.engine.Apply(ctx, res.Signal, res.State, bands.Price, time.Now().UTC())

	s.logger.Debug(ctx, "Evaluation cycle complete", map[string]interface{}{
		"signal": cycle.Signal, "state": res.State, "price": bands.Price,
		"upper": bands.UpperBand, "lower": bands.LowerBand, "suppressed": cycle.Suppressed,
	})

	s.dispatch(ctx, cycle)
}

// dispatch hands the cycle outcome to the executor and the repositories.
// Persistence failures are logged, not fatal: the in-memory state machine
// remains the source of truth for the session.
func (s *TradingService) dispatch(ctx context.Context, cycle engine.CycleResult) {
	for _, event := range cycle.Events {
		if err := s.executor.Execute(ctx, event); err != nil {
			s.logger.Error(ctx, err, "Failed to execute position event", map[string]interface{}{"eventID": event.ID.String(), "kind": event.Kind})
		}
	}
	for _, trade := range cycle.Trades {
		if _, err := s.tradeRepo.CreateTrade(ctx, trade); err != nil {
			s.logger.Error(ctx, err, "Failed to persist trade", map[string]interface{}{"symbol": trade.Symbol, "pnl": trade.PNL})
		}
	}
	if len(cycle.Trades) > 0 {
		if err := s.statsRepo.SaveStats(ctx, s.cfg.Symbol, cycle.Stats); err != nil {
			s.logger.Error(ctx, err, "Failed to persist session stats", map[string]interface{}{"symbol": s.cfg.Symbol})
		}
	}
}

// shutdown closes any open position at the last known price and stores the
// final statistics.
func (s *TradingService) shutdown(ctx context.Context) {
	if !s.engine.Position().IsOpen() {
		s.persistFinalStats(ctx)
		return
	}

	candles := s.buffer.Snapshot()
	if len(candles) == 0 {
		s.logger.Warn(ctx, "Open position but empty buffer on shutdown, cannot close flat")
		return
	}
	lastPrice := candles[len(candles)-1].Close

	cycle := s.engine.CloseAll(ctx, lastPrice, time.Now().UTC())
	s.dispatch(ctx, cycle)
	s.persistFinalStats(ctx)
}

func (s *TradingService) persistFinalStats(ctx context.Context) {
	stats := s.engine.Stats()
	if err := s.statsRepo.SaveStats(ctx, s.cfg.Symbol, stats); err != nil {
		s.logger.Error(ctx, err, "Failed to persist final session stats", map[string]interface{}{"symbol": s.cfg.Symbol})
		return
	}
	s.logger.Info(ctx, "Session stats persisted", map[string]interface{}{
		"realizedPL": stats.RealizedPL, "peakPL": stats.PeakPL, "maxDrawdown": stats.MaxDrawdown,
	})
}

// handleCandle appends final candles to the buffer. In-progress updates are
// ignored here; the tick stream keeps the last close fresh between closes.
func (s *TradingService) handleCandle(candle domain.Candle) {
	if !candle.IsFinal {
		return
	}
	s.buffer.Append(candle)
	s.logger.Debug(context.Background(), "Final candle appended", map[string]interface{}{
		"closeTime": candle.CloseTime, "close": candle.Close,
	})
}

// handleTick folds a live trade price into the most recent candle's close.
// A tick before any candle exists is dropped.
func (s *TradingService) handleTick(price float64) {
	if err := s.buffer.UpdateLastClose(price); err != nil {
		if errors.Is(err, ports.ErrEmptyBuffer) {
			return
		}
		s.logger.Error(context.Background(), err, "Failed to fold tick into buffer")
	}
}

func (s *TradingService) handleStreamError(err error) {
	s.logger.Error(context.Background(), err, "Market data stream error reported")
}

// Engine exposes the state machine for inspection (status endpoints, tests).
func (s *TradingService) Engine() *engine.Engine {
	return s.engine
}

func stopStream(stopCh chan struct{}) {
	select {
	case stopCh <- struct{}{}:
	default:
	}
}
