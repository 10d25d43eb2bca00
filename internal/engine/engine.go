package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"almabot/internal/domain"
	"almabot/internal/ports"
)

// Config holds the risk parameters of the state machine.
type Config struct {
	Symbol         string
	CooldownCycles int       // cycles suppressed after a losing leg, e.g. 2
	MaxLots        int       // hard cap on position size
	DefaultLots    int       // sizing when no lot policy applies, e.g. 1
	LotPolicy      LotPolicy // optional, for the trend-breakout variant
}

// CycleResult reports everything one evaluation cycle produced.
type CycleResult struct {
	Signal     domain.Signal          // effective signal after any cooldown override
	Suppressed bool                   // true when the cooldown forced HOLD
	Events     []domain.PositionEvent // position changes to hand to the executor
	Trades     []*domain.Trade        // realized legs to persist
	Stats      domain.SessionStats    // snapshot after this cycle
}

// Engine is the position and risk state machine. It owns the single
// authoritative Position, SessionStats, and CooldownState for its symbol
// and mutates them as one atomic unit per cycle behind its lock.
type Engine struct {
	cfg    Config
	logger ports.Logger

	mu        sync.Mutex
	position  domain.Position
	stats     domain.SessionStats
	cooldown  domain.CooldownState
	sizing    int // lots for the next entry when no policy applies
	entryTime time.Time
}

// New validates the risk configuration and returns a flat engine.
func New(cfg Config, logger ports.Logger) (*Engine, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for engine")
	}
	if cfg.Symbol == "" {
		return nil, fmt.Errorf("%w: engine symbol must be set", ports.ErrConfigurationError)
	}
	if cfg.CooldownCycles < 0 {
		return nil, fmt.Errorf("%w: cooldown cycles cannot be negative, got %d", ports.ErrConfigurationError, cfg.CooldownCycles)
	}
	if cfg.MaxLots <= 0 {
		return nil, fmt.Errorf("%w: max lots must be positive, got %d", ports.ErrConfigurationError, cfg.MaxLots)
	}
	if cfg.DefaultLots <= 0 || cfg.DefaultLots > cfg.MaxLots {
		return nil, fmt.Errorf("%w: default lots must be in 1..%d, got %d", ports.ErrConfigurationError, cfg.MaxLots, cfg.DefaultLots)
	}
	return &Engine{
		cfg:      cfg,
		logger:   logger,
		position: domain.Position{Side: domain.SideNone},
		sizing:   cfg.DefaultLots,
	}, nil
}

// Apply runs one evaluation cycle: cooldown throttling first, then entry
// or reversal, then the cooldown trigger against any just-closed leg.
func (e *Engine) Apply(ctx context.Context, signal domain.Signal, state domain.MarketState, price float64, at time.Time) CycleResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := CycleResult{Signal: signal}

	// 1. Cooldown throttle. Decrement first; when the counter clears the
	// signal passes through on this same cycle, otherwise it is forced
	// to HOLD (no entry, no reversal).
	if e.cooldown.Active {
		e.cooldown.Remaining--
		if e.cooldown.Remaining <= 0 {
			e.cooldown = domain.CooldownState{}
			e.logger.Info(ctx, "Cooldown ended, re-entry allowed", map[string]interface{}{"symbol": e.cfg.Symbol})
		} else {
			res.Signal = domain.SignalHold
			res.Suppressed = true
		}
	}

	lots := e.lotsFor(state)

	switch {
	// 2. Entry from flat.
	case e.position.Side == domain.SideNone && res.Signal != domain.SignalHold:
		if lots == 0 {
			break // sizing policy vetoed the entry
		}
		side := sideFor(res.Signal)
		e.position = domain.Position{Side: side, EntryPrice: price, Lots: lots}
		e.entryTime = at
		res.Events = append(res.Events, domain.NewPositionEvent(domain.EventOpen, e.cfg.Symbol, side, price, lots, 0, at))
		e.logger.Info(ctx, "Position opened", map[string]interface{}{
			"symbol": e.cfg.Symbol, "side": side, "price": price, "lots": lots,
		})

	// 3. Reversal: realize the leg and immediately re-open the opposite
	// side at the same price, no flat interval.
	case e.position.Side == domain.SideLong && res.Signal == domain.SignalSell,
		e.position.Side == domain.SideShort && res.Signal == domain.SignalBuy:
		trade := e.realizeLeg(ctx, price, at, domain.CloseReasonReversal)
		res.Trades = append(res.Trades, trade)

		newLots := e.lotsFor(state) // sizing may have been reset by the loss
		newSide := trade.Side.Opposite()
		e.position = domain.Position{Side: newSide, EntryPrice: price, Lots: newLots}
		e.entryTime = at
		res.Events = append(res.Events, domain.NewPositionEvent(domain.EventReverse, e.cfg.Symbol, newSide, price, newLots, trade.PNL, at))
		e.logger.Info(ctx, "Position reversed", map[string]interface{}{
			"symbol": e.cfg.Symbol, "side": newSide, "price": price, "lots": newLots, "pnl": trade.PNL,
		})

	// 5. HOLD or signal matching the current side: no state change.
	default:
	}

	res.Stats = e.stats
	return res
}

// CloseAll realizes the open leg flat, e.g. at session end. It is a no-op
// when no position is held.
func (e *Engine) CloseAll(ctx context.Context, price float64, at time.Time) CycleResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := CycleResult{Signal: domain.SignalHold}
	if e.position.Side == domain.SideNone {
		res.Stats = e.stats
		return res
	}

	trade := e.realizeLeg(ctx, price, at, domain.CloseReasonSessionEnd)
	res.Trades = append(res.Trades, trade)
	e.position = domain.Position{Side: domain.SideNone}
	res.Events = append(res.Events, domain.NewPositionEvent(domain.EventClose, e.cfg.Symbol, domain.SideNone, price, 0, trade.PNL, at))
	e.logger.Info(ctx, "Position closed flat", map[string]interface{}{
		"symbol": e.cfg.Symbol, "price": price, "pnl": trade.PNL,
	})
	res.Stats = e.stats
	return res
}

// realizeLeg computes the profit of the current leg, folds it into the
// session stats atomically with the peak/drawdown update, and arms the
// cooldown on a loss. Caller holds the lock and guarantees an open leg.
func (e *Engine) realizeLeg(ctx context.Context, exitPrice float64, at time.Time, reason domain.CloseReason) *domain.Trade {
	profit := legProfit(e.position, exitPrice)
	e.stats.Apply(profit)

	// 4. Cooldown trigger against the just-closed leg: throttle upcoming
	// cycles and fall back to conservative sizing.
	if profit < 0 && e.cfg.CooldownCycles > 0 {
		e.cooldown = domain.CooldownState{Active: true, Remaining: e.cfg.CooldownCycles}
		e.sizing = 1
		e.logger.Info(ctx, "Loss realized, cooldown armed", map[string]interface{}{
			"symbol": e.cfg.Symbol, "pnl": profit, "cycles": e.cfg.CooldownCycles,
		})
	}

	return &domain.Trade{
		Symbol:      e.cfg.Symbol,
		Side:        e.position.Side,
		EntryPrice:  e.position.EntryPrice,
		ExitPrice:   exitPrice,
		Lots:        e.position.Lots,
		PNL:         profit,
		EntryTime:   e.entryTime,
		ExitTime:    at,
		CloseReason: reason,
	}
}

// lotsFor resolves position sizing for this cycle, capped at MaxLots.
func (e *Engine) lotsFor(state domain.MarketState) int {
	lots := e.sizing
	if e.cfg.LotPolicy != nil && state != "" {
		lots = e.cfg.LotPolicy(state)
	}
	if lots > e.cfg.MaxLots {
		lots = e.cfg.MaxLots
	}
	if lots < 0 {
		lots = 0
	}
	return lots
}

// Position returns the current position.
func (e *Engine) Position() domain.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Stats returns a snapshot of the session statistics.
func (e *Engine) Stats() domain.SessionStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Cooldown returns the current throttle state.
func (e *Engine) Cooldown() domain.CooldownState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cooldown
}

// legProfit values a closed leg. A flat side here means the driver broke
// the documented transition order, which is a programmer error.
func legProfit(pos domain.Position, exitPrice float64) float64 {
	switch pos.Side {
	case domain.SideLong:
		return (exitPrice - pos.EntryPrice) * float64(pos.Lots)
	case domain.SideShort:
		return (pos.EntryPrice - exitPrice) * float64(pos.Lots)
	}
	panic(fmt.Sprintf("engine: realizing a leg with side %s", pos.Side))
}

// sideFor maps an entry signal to a position side.
func sideFor(signal domain.Signal) domain.Side {
	switch signal {
	case domain.SignalBuy:
		return domain.SideLong
	case domain.SignalSell:
		return domain.SideShort
	}
	panic(fmt.Sprintf("engine: no side for signal %s", signal))
}
