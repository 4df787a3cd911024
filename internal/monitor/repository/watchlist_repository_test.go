package repository

import (
	"os"
	"path/filepath"
	"testing"

	"stock-monitor-bot/internal/entity"

	"github.com/stretchr/testify/require"
)

const sampleWatchlist = `watchlist:
  - ticker: riot
    name: Riot Platforms
    thesis: Bitcoin mining play
    entry_rules:
      breakout_above: 12.50
      min_daily_change_pct: 3.0
      min_volume: 1000000
    exit_rules:
      stop_loss_pct: 15
      target_pct: 30
      max_hold_days: 30
    alerts:
      daily_change_above: 7
      daily_change_below: -7
`

func TestWatchlistRepository_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleWatchlist), 0o644))

	repo, err := NewWatchlistRepository(path)
	require.NoError(t, err)

	entries := repo.GetAll()
	require.Len(t, entries, 1)
	require.Equal(t, "RIOT", entries[0].Ticker)
	require.Equal(t, 12.50, entries[0].EntryRules.BreakoutAbove)
	require.Equal(t, 30, entries[0].ExitRules.MaxHoldDays)
}

func TestWatchlistRepository_MissingFileYieldsEmptyWatchlist(t *testing.T) {
	repo, err := NewWatchlistRepository(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Empty(t, repo.GetAll())
	require.Empty(t, repo.GetTickers())
}

func TestParseWatchlistYAML_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "watchlist: ["},
		{"missing ticker", "watchlist:\n  - name: No Ticker\n"},
		{"negative stop loss", "watchlist:\n  - ticker: RIOT\n    exit_rules:\n      stop_loss_pct: -5\n"},
		{"duplicate ticker", "watchlist:\n  - ticker: RIOT\n  - ticker: riot\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWatchlistYAML([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestWatchlistRepository_ReplacePersistsAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	repo, err := NewWatchlistRepository(path)
	require.NoError(t, err)

	err = repo.Replace([]entity.WatchlistEntry{{Ticker: " mara "}})
	require.NoError(t, err)

	entry, ok := repo.Get("mara")
	require.True(t, ok)
	require.Equal(t, "MARA", entry.Ticker)

	// A fresh repository sees the persisted state.
	reloaded, err := NewWatchlistRepository(path)
	require.NoError(t, err)
	require.Equal(t, []string{"MARA"}, reloaded.GetTickers())
}

func TestWatchlistRepository_ReplaceIsAtomicOnValidationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	repo, err := NewWatchlistRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Replace([]entity.WatchlistEntry{{Ticker: "RIOT"}}))

	err = repo.Replace([]entity.WatchlistEntry{{Ticker: "MARA"}, {Ticker: ""}})
	require.Error(t, err)

	// The previous snapshot is untouched.
	require.Equal(t, []string{"RIOT"}, repo.GetTickers())
}

func TestWatchlistRepository_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	repo, err := NewWatchlistRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Replace([]entity.WatchlistEntry{{Ticker: "RIOT"}}))

	require.NoError(t, repo.Clear())
	require.Empty(t, repo.GetAll())
}

func TestWatchlistRepository_ToYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	repo, err := NewWatchlistRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Replace([]entity.WatchlistEntry{{
		Ticker:     "RIOT",
		EntryRules: entity.EntryRules{BreakoutAbove: 12.5},
	}}))

	rendered, err := repo.ToYAML()
	require.NoError(t, err)

	entries, err := ParseWatchlistYAML([]byte(rendered))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "RIOT", entries[0].Ticker)
	require.Equal(t, 12.5, entries[0].EntryRules.BreakoutAbove)
}
