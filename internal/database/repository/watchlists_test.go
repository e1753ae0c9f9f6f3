package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/watchdeck/internal/database"
	"github.com/jask/watchdeck/internal/database/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedWatchlist(t *testing.T, ctx context.Context, repo *repository.WatchlistRepo, id string, symbols ...string) {
	t.Helper()
	require.NoError(t, repo.Upsert(ctx, repository.Watchlist{ID: id, Name: "List " + id}))
	for _, sym := range symbols {
		require.NoError(t, repo.InsertEntry(ctx, repository.Entry{
			Token:       "tok-" + sym,
			WatchlistID: id,
			Symbol:      sym,
		}))
	}
}

func entryTokens(t *testing.T, ctx context.Context, repo *repository.WatchlistRepo, id string) []string {
	t.Helper()
	entries, err := repo.Entries(ctx, id)
	require.NoError(t, err)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Token
	}
	return out
}

func TestWatchlistRoundTrip(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	repo := repository.NewWatchlistRepo(db)

	seedWatchlist(t, ctx, repo, "wl-1", "AAPL", "MSFT", "NVDA")
	t.Log("watchlist seeded")

	got, err := repo.Get(ctx, "wl-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "List wl-1", got.Name)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	lists, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)

	entries, err := repo.Entries(ctx, "wl-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		require.Equal(t, i, e.Position)
	}
	require.Equal(t, []string{"tok-AAPL", "tok-MSFT", "tok-NVDA"}, entryTokens(t, ctx, repo, "wl-1"))

	// re-inserting an existing token keeps its position
	name := "Apple Inc."
	require.NoError(t, repo.InsertEntry(ctx, repository.Entry{
		Token:       "tok-AAPL",
		WatchlistID: "wl-1",
		Symbol:      "AAPL",
		Name:        &name,
	}))
	entries, err = repo.Entries(ctx, "wl-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, 0, entries[0].Position)
	require.NotNil(t, entries[0].Name)
	require.Equal(t, "Apple Inc.", *entries[0].Name)
}

func TestRearrange(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	repo := repository.NewWatchlistRepo(db)

	seedWatchlist(t, ctx, repo, "wl-1", "AAPL", "MSFT", "NVDA")

	require.NoError(t, repo.Rearrange(ctx, "wl-1", []string{"tok-NVDA", "tok-AAPL", "tok-MSFT"}))
	require.Equal(t, []string{"tok-NVDA", "tok-AAPL", "tok-MSFT"}, entryTokens(t, ctx, repo, "wl-1"))
	t.Log("rearrange applied")

	err := repo.Rearrange(ctx, "wl-1", []string{"tok-NVDA", "tok-AAPL"})
	require.Error(t, err)

	err = repo.Rearrange(ctx, "wl-1", []string{"tok-NVDA", "tok-AAPL", "tok-GHOST"})
	require.Error(t, err)

	// failed rearranges roll back, the order is untouched
	require.Equal(t, []string{"tok-NVDA", "tok-AAPL", "tok-MSFT"}, entryTokens(t, ctx, repo, "wl-1"))
}

func TestRemoveEntriesCompactsPositions(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	repo := repository.NewWatchlistRepo(db)

	seedWatchlist(t, ctx, repo, "wl-1", "AAPL", "MSFT", "NVDA", "TSLA")

	require.NoError(t, repo.RemoveEntries(ctx, "wl-1", []string{"tok-MSFT", "tok-TSLA"}))
	entries, err := repo.Entries(ctx, "wl-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "tok-AAPL", entries[0].Token)
	require.Equal(t, 0, entries[0].Position)
	require.Equal(t, "tok-NVDA", entries[1].Token)
	require.Equal(t, 1, entries[1].Position)

	require.NoError(t, repo.RemoveEntries(ctx, "wl-1", nil))
}

func TestSymbolCatalog(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	repo := repository.NewSymbolRepo(db)

	require.NoError(t, repo.Upsert(ctx, repository.Symbol{Symbol: "MSFT", Name: "Microsoft"}))
	require.NoError(t, repo.Upsert(ctx, repository.Symbol{Symbol: "AAPL", Name: "Apple"}))
	require.NoError(t, repo.Upsert(ctx, repository.Symbol{Symbol: "AAPL", Name: "Apple Inc."}))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "AAPL", got[0].Symbol)
	require.Equal(t, "Apple Inc.", got[0].Name)
	require.Equal(t, "MSFT", got[1].Symbol)
}
