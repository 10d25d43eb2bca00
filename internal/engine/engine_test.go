package engine

import (
	"context"
	"testing"
	"time"

	"almabot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.Symbol == "" {
		cfg.Symbol = "ZINCFUT"
	}
	if cfg.MaxLots == 0 {
		cfg.MaxLots = 2
	}
	if cfg.DefaultLots == 0 {
		cfg.DefaultLots = 1
	}
	e, err := New(cfg, &mockLogger{})
	require.NoError(t, err)
	return e
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing symbol", cfg: Config{CooldownCycles: 2, MaxLots: 2, DefaultLots: 1}},
		{name: "negative cooldown", cfg: Config{Symbol: "X", CooldownCycles: -1, MaxLots: 2, DefaultLots: 1}},
		{name: "zero max lots", cfg: Config{Symbol: "X", MaxLots: 0, DefaultLots: 1}},
		{name: "default above max", cfg: Config{Symbol: "X", MaxLots: 2, DefaultLots: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.cfg, &mockLogger{})
			assert.Error(t, err)
			assert.Nil(t, e)
		})
	}

	_, err := New(Config{Symbol: "X", MaxLots: 2, DefaultLots: 1}, nil)
	assert.Error(t, err, "logger is required")
}

func at(cycle int) time.Time {
	return time.Date(2026, 2, 3, 9, 15, 0, 0, time.UTC).Add(time.Duration(cycle) * 15 * time.Minute)
}

func TestApply_EntryFromFlat(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{CooldownCycles: 2})

	res := e.Apply(ctx, domain.SignalBuy, "", 100, at(0))

	require.Len(t, res.Events, 1)
	assert.Equal(t, domain.EventOpen, res.Events[0].Kind)
	assert.Equal(t, domain.SideLong, res.Events[0].Side)
	assert.Equal(t, 100.0, res.Events[0].Price)
	assert.NotEqual(t, res.Events[0].ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Empty(t, res.Trades)

	pos := e.Position()
	assert.Equal(t, domain.SideLong, pos.Side)
	assert.Equal(t, 100.0, pos.EntryPrice)
	assert.Equal(t, 1, pos.Lots)
}

func TestApply_HoldKeepsState(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{CooldownCycles: 2})

	e.Apply(ctx, domain.SignalBuy, "", 100, at(0))
	res := e.Apply(ctx, domain.SignalHold, "", 101, at(1))
	assert.Empty(t, res.Events)
	assert.Empty(t, res.Trades)

	// Signal matching the current side is also a no-op.
	res = e.Apply(ctx, domain.SignalBuy, "", 102, at(2))
	assert.Empty(t, res.Events)
	assert.Equal(t, 100.0, e.Position().EntryPrice)
}

func TestApply_LosingReversalArmsCooldown(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{CooldownCycles: 2})

	e.Apply(ctx, domain.SignalBuy, "", 100, at(0))
	res := e.Apply(ctx, domain.SignalSell, "", 95, at(1))

	require.Len(t, res.Trades, 1)
	trade := res.Trades[0]
	assert.Equal(t, domain.SideLong, trade.Side)
	assert.Equal(t, -5.0, trade.PNL)
	assert.Equal(t, domain.CloseReasonReversal, trade.CloseReason)

	// Reversal re-opens the opposite side at the same price, no flat interval.
	pos := e.Position()
	assert.Equal(t, domain.SideShort, pos.Side)
	assert.Equal(t, 95.0, pos.EntryPrice)

	require.Len(t, res.Events, 1)
	assert.Equal(t, domain.EventReverse, res.Events[0].Kind)
	assert.Equal(t, -5.0, res.Events[0].RealizedPL)

	cd := e.Cooldown()
	assert.True(t, cd.Active)
	assert.Equal(t, 2, cd.Remaining)

	stats := res.Stats
	assert.Equal(t, -5.0, stats.RealizedPL)
	assert.Equal(t, 0.0, stats.PeakPL)
	assert.Equal(t, 5.0, stats.MaxDrawdown)
}

func TestApply_WinningReversalNoCooldown(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{CooldownCycles: 2})

	e.Apply(ctx, domain.SignalSell, "", 100, at(0))
	res := e.Apply(ctx, domain.SignalBuy, "", 90, at(1))

	require.Len(t, res.Trades, 1)
	assert.Equal(t, 10.0, res.Trades[0].PNL, "short profits when price falls")
	assert.False(t, e.Cooldown().Active)
	assert.Equal(t, domain.SideLong, e.Position().Side)
	assert.Equal(t, 10.0, res.Stats.PeakPL)
}

func TestApply_CooldownSuppressesThenReleases(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{CooldownCycles: 2})

	e.Apply(ctx, domain.SignalBuy, "", 100, at(0))
	e.Apply(ctx, domain.SignalSell, "", 95, at(1)) // loss, cooldown=2

	// First throttled cycle: a BUY would reverse the short, but cooldown
	// overrides it to HOLD.
	res := e.Apply(ctx, domain.SignalBuy, "", 97, at(2))
	assert.True(t, res.Suppressed)
	assert.Equal(t, domain.SignalHold, res.Signal)
	assert.Empty(t, res.Events)
	assert.Equal(t, domain.SideShort, e.Position().Side)

	// Counter reaches zero: cooldown clears and the signal acts on this
	// same cycle. The short entered at 95 exits at 90 for a profit, so
	// the cooldown is not re-armed.
	res = e.Apply(ctx, domain.SignalBuy, "", 90, at(3))
	assert.False(t, res.Suppressed)
	require.Len(t, res.Trades, 1)
	assert.False(t, e.Cooldown().Active)
	assert.Equal(t, domain.SideLong, e.Position().Side)
}

func TestApply_DrawdownMonotone(t *testing.T) {
	ctx := context.Background()
	// Cooldown disabled so every cycle can trade.
	e := newTestEngine(t, Config{CooldownCycles: 0})

	prices := []struct {
		signal domain.Signal
		price  float64
	}{
		{domain.SignalBuy, 100},
		{domain.SignalSell, 110}, // +10
		{domain.SignalBuy, 115},  // -5
		{domain.SignalSell, 112}, // -3
		{domain.SignalBuy, 105},  // +7
		{domain.SignalSell, 104}, // -1
	}

	var prevPeak, prevDD float64
	for i, step := range prices {
		res := e.Apply(ctx, step.signal, "", step.price, at(i))
		assert.GreaterOrEqual(t, res.Stats.PeakPL, prevPeak, "peak must never decrease")
		assert.GreaterOrEqual(t, res.Stats.MaxDrawdown, prevDD, "max drawdown must never decrease")
		prevPeak = res.Stats.PeakPL
		prevDD = res.Stats.MaxDrawdown
	}

	stats := e.Stats()
	assert.Equal(t, 8.0, stats.RealizedPL)
	assert.Equal(t, 10.0, stats.PeakPL)
	assert.Equal(t, 8.0, stats.MaxDrawdown) // peak 10 down to 2
}

func TestApply_LotPolicy(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{CooldownCycles: 2, MaxLots: 2, DefaultLots: 1, LotPolicy: StateLots})

	// Sideways sizing vetoes the entry outright.
	res := e.Apply(ctx, domain.SignalBuy, domain.StateSideways, 100, at(0))
	assert.Empty(t, res.Events)
	assert.False(t, e.Position().IsOpen())

	// Trend state sizes at two lots.
	res = e.Apply(ctx, domain.SignalBuy, domain.StateTrend, 100, at(1))
	require.Len(t, res.Events, 1)
	assert.Equal(t, 2, res.Events[0].Lots)

	// Reversal in breakout state downsizes to one lot; the closed leg was
	// sized at two so the loss is doubled.
	res = e.Apply(ctx, domain.SignalSell, domain.StateBreakout, 95, at(2))
	require.Len(t, res.Trades, 1)
	assert.Equal(t, -10.0, res.Trades[0].PNL)
	assert.Equal(t, 1, e.Position().Lots)
}

func TestApply_LotPolicyCappedAtMax(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{
		MaxLots:     1,
		DefaultLots: 1,
		LotPolicy:   StateLots, // would ask for 2 in a trend
	})

	res := e.Apply(ctx, domain.SignalBuy, domain.StateTrend, 100, at(0))
	require.Len(t, res.Events, 1)
	assert.Equal(t, 1, res.Events[0].Lots)
}

func TestApply_ConservativeSizingAfterLoss(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{CooldownCycles: 1, MaxLots: 4, DefaultLots: 3})

	e.Apply(ctx, domain.SignalBuy, "", 100, at(0))
	assert.Equal(t, 3, e.Position().Lots)

	// Losing reversal resets sizing to one lot for subsequent entries.
	res := e.Apply(ctx, domain.SignalSell, "", 90, at(1))
	require.Len(t, res.Trades, 1)
	assert.Equal(t, -30.0, res.Trades[0].PNL)
	assert.Equal(t, 1, e.Position().Lots)
}

func TestCloseAll(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{CooldownCycles: 2})

	// Flat close on an empty book is a no-op.
	res := e.CloseAll(ctx, 100, at(0))
	assert.Empty(t, res.Events)
	assert.Empty(t, res.Trades)

	e.Apply(ctx, domain.SignalBuy, "", 100, at(1))
	res = e.CloseAll(ctx, 108, at(2))

	require.Len(t, res.Trades, 1)
	assert.Equal(t, 8.0, res.Trades[0].PNL)
	assert.Equal(t, domain.CloseReasonSessionEnd, res.Trades[0].CloseReason)
	require.Len(t, res.Events, 1)
	assert.Equal(t, domain.EventClose, res.Events[0].Kind)
	assert.False(t, e.Position().IsOpen())
}

func TestLegProfit_FlatPanics(t *testing.T) {
	assert.Panics(t, func() {
		legProfit(domain.Position{Side: domain.SideNone}, 100)
	})
}
