package ports

import (
	"context"

	"almabot/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving realized legs.
type TradeRepository interface {
	// CreateTrade saves a new trade record and returns its assigned ID.
	CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error)
	// FindBySymbol retrieves the most recent trades for a given symbol, up to a limit.
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error)
	// TotalPNLBySymbol sums the realized profit for a symbol.
	TotalPNLBySymbol(ctx context.Context, symbol string) (float64, error)
}

// StatsRepository persists session statistics snapshots after every
// realized leg, for the observability collaborator.
type StatsRepository interface {
	// SaveStats appends a snapshot of the session statistics.
	SaveStats(ctx context.Context, symbol string, stats domain.SessionStats) error
	// LatestStats returns the most recent snapshot for a symbol.
	// Returns nil, nil when no snapshot exists.
	LatestStats(ctx context.Context, symbol string) (*domain.SessionStats, error)
}
