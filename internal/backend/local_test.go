package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/watchdeck/internal/database"
	"github.com/jask/watchdeck/internal/watchlist"
)

func newLocalService(t *testing.T, ctx context.Context) *LocalService {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrationsWithDB(db, migrations))
	require.NoError(t, database.SeedDefaults(ctx, db))
	t.Log("local database ready")

	return NewLocalService(db)
}

func TestLocalServiceSeededCatalog(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	svc := newLocalService(t, ctx)

	lists, err := svc.Watchlists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	require.Equal(t, "My Watchlist", lists[0].Name)
	require.Len(t, lists[0].Items, 5)
	require.Equal(t, "AAPL", lists[0].Items[0].Symbol)
	require.Equal(t, "Apple Inc.", lists[0].Items[0].Name)

	syms, err := svc.Symbols(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, syms)
}

func TestLocalServiceRearrangeAndDelete(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	svc := newLocalService(t, ctx)

	lists, err := svc.Watchlists(ctx)
	require.NoError(t, err)
	id := lists[0].ID
	tokens := watchlist.Tokens(lists[0].Items)

	reversed := make([]string, len(tokens))
	for i, tok := range tokens {
		reversed[len(tokens)-1-i] = tok
	}
	require.NoError(t, svc.Rearrange(ctx, id, reversed, "jask"))

	lists, err = svc.Watchlists(ctx)
	require.NoError(t, err)
	require.Equal(t, reversed, watchlist.Tokens(lists[0].Items))
	t.Log("rearrange persisted")

	require.NoError(t, svc.BulkDelete(ctx, id, reversed[:2], "jask"))
	lists, err = svc.Watchlists(ctx)
	require.NoError(t, err)
	require.Equal(t, reversed[2:], watchlist.Tokens(lists[0].Items))

	err = svc.Rearrange(ctx, id, tokens, "jask")
	require.Error(t, err) // stale token set after the delete
}

func TestLocalServiceAddEntry(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	svc := newLocalService(t, ctx)

	lists, err := svc.Watchlists(ctx)
	require.NoError(t, err)
	id := lists[0].ID

	require.NoError(t, svc.AddEntry(ctx, id, watchlist.Item{Symbol: "KO", Name: "Coca-Cola Company"}, "jask"))

	lists, err = svc.Watchlists(ctx)
	require.NoError(t, err)
	items := lists[0].Items
	last := items[len(items)-1]
	require.Equal(t, "KO", last.Symbol)
	require.Equal(t, "Coca-Cola Company", last.Name)
	require.NotEmpty(t, last.Token)

	err = svc.AddEntry(ctx, "nope", watchlist.Item{Symbol: "KO"}, "jask")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}
