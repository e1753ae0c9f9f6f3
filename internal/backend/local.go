package backend

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/watchdeck/internal/database/repository"
	"github.com/jask/watchdeck/internal/watchlist"
)

// LocalService implements Service against the embedded sqlite database, so
// the app works fully offline. The caller identity is accepted for
// interface parity but nothing local attributes writes.
type LocalService struct {
	lists   *repository.WatchlistRepo
	symbols *repository.SymbolRepo
}

func NewLocalService(db *sql.DB) *LocalService {
	return &LocalService{
		lists:   repository.NewWatchlistRepo(db),
		symbols: repository.NewSymbolRepo(db),
	}
}

func (s *LocalService) Watchlists(ctx context.Context) ([]watchlist.List, error) {
	lists, err := s.lists.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]watchlist.List, 0, len(lists))
	for _, l := range lists {
		entries, err := s.lists.Entries(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		items := make([]watchlist.Item, 0, len(entries))
		for _, e := range entries {
			item := watchlist.Item{Token: e.Token, Symbol: e.Symbol}
			if e.Name != nil {
				item.Name = *e.Name
			}
			items = append(items, item)
		}
		out = append(out, watchlist.List{ID: l.ID, Name: l.Name, Items: items})
	}
	return out, nil
}

func (s *LocalService) Rearrange(ctx context.Context, watchlistID string, tokens []string, caller string) error {
	return s.lists.Rearrange(ctx, watchlistID, tokens)
}

func (s *LocalService) BulkDelete(ctx context.Context, watchlistID string, tokens []string, caller string) error {
	return s.lists.RemoveEntries(ctx, watchlistID, tokens)
}

func (s *LocalService) AddEntry(ctx context.Context, watchlistID string, item watchlist.Item, caller string) error {
	wl, err := s.lists.Get(ctx, watchlistID)
	if err != nil {
		return err
	}
	if wl == nil {
		return fmt.Errorf("watchlist %s not found", watchlistID)
	}
	entry := repository.Entry{
		Token:       item.Token,
		WatchlistID: watchlistID,
		Symbol:      item.Symbol,
	}
	if entry.Token == "" {
		entry.Token = uuid.NewString()
	}
	if item.Name != "" {
		entry.Name = &item.Name
	}
	return s.lists.InsertEntry(ctx, entry)
}

func (s *LocalService) Symbols(ctx context.Context) ([]SymbolInfo, error) {
	symbols, err := s.symbols.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SymbolInfo, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, SymbolInfo{Symbol: sym.Symbol, Name: sym.Name})
	}
	return out, nil
}
