package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/watchdeck/internal/watchlist"
)

func TestSetCatalogPopulatesRows(t *testing.T) {
	s := New()
	s.SetCatalog([]watchlist.List{
		{ID: "wl-1", Name: "Tech", Items: []watchlist.Item{{Token: "t1", Symbol: "AAPL"}}},
		{ID: "wl-2", Name: "Energy"},
	})

	cat := s.Catalog()
	require.Len(t, cat, 2)
	require.Equal(t, "Tech", cat[0].Name)
	require.Len(t, cat[0].Items, 1)
	require.Empty(t, cat[1].Items)

	require.Equal(t, "AAPL", s.Peek("wl-1")[0].Symbol)
	require.Empty(t, s.Peek("missing"))
}

func TestPeekReturnsCopy(t *testing.T) {
	s := New()
	s.SetData("wl-1", []watchlist.Item{{Token: "t1", Symbol: "AAPL"}})

	got := s.Peek("wl-1")
	got[0].Symbol = "mutated"
	require.Equal(t, "AAPL", s.Peek("wl-1")[0].Symbol)
}

func TestSetDataReplacesWholeValue(t *testing.T) {
	s := New()
	s.SetData("wl-1", []watchlist.Item{{Token: "t1"}, {Token: "t2"}})
	s.SetData("wl-1", []watchlist.Item{{Token: "t3"}})

	require.Equal(t, []string{"t3"}, watchlist.Tokens(s.Peek("wl-1")))
}

func TestEventsEmitted(t *testing.T) {
	s := New()

	s.SetData("wl-1", nil)
	require.Equal(t, ChangeMsg{WatchlistID: "wl-1"}, <-s.Events())

	s.SetCatalog(nil)
	require.Equal(t, CatalogMsg{}, <-s.Events())
}

func TestEventsDroppedWhenFull(t *testing.T) {
	s := New()
	// no reader: writers must never block
	for i := 0; i < 100; i++ {
		s.SetData("wl-1", nil)
	}
	require.Empty(t, s.Peek("wl-1"))
}
