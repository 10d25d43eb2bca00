package sqlite

import (
	"context"
	"path/filepath"
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

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(Config{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTrade(symbol string, pnl float64, entry time.Time) *domain.Trade {
	return &domain.Trade{
		Symbol:      symbol,
		Side:        domain.SideLong,
		EntryPrice:  100,
		ExitPrice:   100 + pnl,
		Lots:        1,
		PNL:         pnl,
		EntryTime:   entry,
		ExitTime:    entry.Add(15 * time.Minute),
		CloseReason: domain.CloseReasonReversal,
	}
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}

func TestCreateAndFindTrades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 3, 9, 15, 0, 0, time.UTC)

	first := sampleTrade("ETHUSDT", 5, base)
	id, err := repo.CreateTrade(ctx, first)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, first.ID, "assigned ID written back onto the trade")

	_, err = repo.CreateTrade(ctx, sampleTrade("ETHUSDT", -3, base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repo.CreateTrade(ctx, sampleTrade("BTCUSDT", 10, base))
	require.NoError(t, err)

	trades, err := repo.FindBySymbol(ctx, "ETHUSDT", 10)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, -3.0, trades[0].PNL, "most recent entry first")
	assert.Equal(t, domain.SideLong, trades[0].Side)
	assert.Equal(t, domain.CloseReasonReversal, trades[0].CloseReason)
	assert.True(t, trades[1].EntryTime.Equal(base))
}

func TestTotalPNLBySymbol(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 3, 9, 15, 0, 0, time.UTC)

	total, err := repo.TotalPNLBySymbol(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 0.0, total, "no trades yet")

	_, err = repo.CreateTrade(ctx, sampleTrade("ETHUSDT", 5, base))
	require.NoError(t, err)
	_, err = repo.CreateTrade(ctx, sampleTrade("ETHUSDT", -2, base.Add(time.Hour)))
	require.NoError(t, err)

	total, err = repo.TotalPNLBySymbol(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, total, 1e-9)
}

func TestStatsSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	latest, err := repo.LatestStats(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.Nil(t, latest, "no snapshot yet")

	require.NoError(t, repo.SaveStats(ctx, "ETHUSDT", domain.SessionStats{RealizedPL: 5, PeakPL: 5, MaxDrawdown: 0}))
	require.NoError(t, repo.SaveStats(ctx, "ETHUSDT", domain.SessionStats{RealizedPL: 2, PeakPL: 5, MaxDrawdown: 3}))

	latest, err = repo.LatestStats(ctx, "ETHUSDT")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2.0, latest.RealizedPL)
	assert.Equal(t, 5.0, latest.PeakPL)
	assert.Equal(t, 3.0, latest.MaxDrawdown)
}
