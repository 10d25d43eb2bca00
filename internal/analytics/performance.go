package analytics

import (
	"sort"
	"time"

	"almabot/internal/domain"
)

// PerformanceMetrics summarizes a sequence of realized legs.
type PerformanceMetrics struct {
	TotalTrades          int
	WinningTrades        int
	LosingTrades         int
	WinRate              float64
	TotalProfit          float64
	AverageWin           float64
	AverageLoss          float64
	ProfitFactor         float64
	Expectancy           float64
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	AverageTradeDuration time.Duration
	PeakPL               float64
	MaxDrawdown          float64
}

// AnalyzeTrades computes performance metrics from realized legs. Trades
// are evaluated in entry-time order; the peak/drawdown here is the same
// fold the engine applies live, so a backtest report matches the session
// stats it came from.
func AnalyzeTrades(trades []*domain.Trade) *PerformanceMetrics {
	metrics := &PerformanceMetrics{}
	if len(trades) == 0 {
		return metrics
	}

	ordered := make([]*domain.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EntryTime.Before(ordered[j].EntryTime)
	})

	var running domain.SessionStats
	var consecutiveWins, consecutiveLosses int
	var totalDuration time.Duration

	for _, trade := range ordered {
		metrics.TotalTrades++
		metrics.TotalProfit += trade.PNL
		totalDuration += trade.ExitTime.Sub(trade.EntryTime)

		if trade.PNL > 0 {
			metrics.WinningTrades++
			consecutiveWins++
			consecutiveLosses = 0
			metrics.AverageWin += (trade.PNL - metrics.AverageWin) / float64(metrics.WinningTrades)
		} else {
			metrics.LosingTrades++
			consecutiveLosses++
			consecutiveWins = 0
			metrics.AverageLoss += (trade.PNL - metrics.AverageLoss) / float64(metrics.LosingTrades)
		}
		if consecutiveWins > metrics.MaxConsecutiveWins {
			metrics.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > metrics.MaxConsecutiveLosses {
			metrics.MaxConsecutiveLosses = consecutiveLosses
		}

		running.Apply(trade.PNL)
	}

	metrics.PeakPL = running.PeakPL
	metrics.MaxDrawdown = running.MaxDrawdown
	metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades)
	metrics.AverageTradeDuration = totalDuration / time.Duration(metrics.TotalTrades)
	if metrics.AverageLoss != 0 {
		metrics.ProfitFactor = metrics.AverageWin / -metrics.AverageLoss
	}
	metrics.Expectancy = metrics.WinRate*metrics.AverageWin + (1-metrics.WinRate)*metrics.AverageLoss

	return metrics
}
