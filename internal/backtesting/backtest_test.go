package backtesting

import (
	"context"
	"math"
	"testing"
	"time"

	"almabot/internal/domain"
	"almabot/internal/engine"
	"almabot/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// zigzagCandles builds a price path that trends up, collapses, and
// recovers, which forces entries and reversals out of the band logic.
func zigzagCandles(n int) []domain.Candle {
	base := time.Date(2026, 2, 3, 9, 15, 0, 0, time.UTC)
	out := make([]domain.Candle, n)
	price := 100.0
	for i := range out {
		phase := i / 20
		if phase%2 == 0 {
			price += 2
		} else {
			price -= 2.5
		}
		wiggle := math.Sin(float64(i)) * 0.4
		out[i] = domain.Candle{
			OpenTime:  base.Add(time.Duration(i) * 15 * time.Minute),
			CloseTime: base.Add(time.Duration(i+1) * 15 * time.Minute),
			Open:      price - 0.5,
			High:      price + 1 + wiggle,
			Low:       price - 1 - wiggle,
			Close:     price + wiggle,
		}
	}
	return out
}

func testConfig() Config {
	return Config{
		Pipeline: pipeline.Config{WindowLength: 10, Offset: 0.85, Sharpness: 6},
		Variant:  domain.VariantSimple,
		Engine: engine.Config{
			Symbol:         "ZINCFUT",
			CooldownCycles: 2,
			MaxLots:        2,
			DefaultLots:    1,
		},
		CloseAtEnd: true,
	}
}

func TestRun_NotEnoughData(t *testing.T) {
	cfg := testConfig()
	_, err := Run(context.Background(), &mockLogger{}, zigzagCandles(10), cfg)
	assert.Error(t, err)
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.WindowLength = 0
	_, err := Run(context.Background(), &mockLogger{}, zigzagCandles(80), cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Variant = domain.Variant("bogus")
	_, err = Run(context.Background(), &mockLogger{}, zigzagCandles(80), cfg)
	assert.Error(t, err)
}

func TestRun_ProducesTrades(t *testing.T) {
	candles := zigzagCandles(120)
	res, err := Run(context.Background(), &mockLogger{}, candles, testConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, res.Trades, "the zigzag path must realize at least one leg")
	assert.NotEmpty(t, res.Events)
	assert.Greater(t, res.Cycles, 0)
	assert.False(t, res.FinalPosition.IsOpen(), "CloseAtEnd leaves the book flat")

	// Realized P&L ties out against the individual legs.
	var sum float64
	for _, trade := range res.Trades {
		sum += trade.PNL
	}
	assert.InDelta(t, res.Stats.RealizedPL, sum, 1e-9)
	assert.GreaterOrEqual(t, res.Stats.PeakPL, 0.0)
	assert.GreaterOrEqual(t, res.Stats.MaxDrawdown, 0.0)
}

func TestRun_Deterministic(t *testing.T) {
	candles := zigzagCandles(120)
	first, err := Run(context.Background(), &mockLogger{}, candles, testConfig())
	require.NoError(t, err)
	second, err := Run(context.Background(), &mockLogger{}, candles, testConfig())
	require.NoError(t, err)

	assert.Equal(t, first.Stats, second.Stats)
	require.Len(t, second.Trades, len(first.Trades))
	for i := range first.Trades {
		assert.Equal(t, first.Trades[i].PNL, second.Trades[i].PNL, "trade %d", i)
		assert.Equal(t, first.Trades[i].Side, second.Trades[i].Side, "trade %d", i)
	}
}

func TestRun_TrendBreakoutVariant(t *testing.T) {
	cfg := testConfig()
	cfg.Variant = domain.VariantTrendBreakout
	cfg.Pipeline.TrendPeriod = 8
	cfg.Pipeline.UseSyntheticCandles = true
	cfg.Engine.LotPolicy = engine.StateLots

	res, err := Run(context.Background(), &mockLogger{}, zigzagCandles(120), cfg)
	require.NoError(t, err)

	for _, ev := range res.Events {
		assert.LessOrEqual(t, ev.Lots, cfg.Engine.MaxLots, "lot policy output stays capped")
	}
}
