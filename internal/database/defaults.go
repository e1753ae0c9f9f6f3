package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/watchdeck/internal/database/repository"
)

var defaultSymbols = []repository.Symbol{
	{Symbol: "AAPL", Name: "Apple Inc."},
	{Symbol: "AMZN", Name: "Amazon.com Inc."},
	{Symbol: "AVGO", Name: "Broadcom Inc."},
	{Symbol: "BRK.B", Name: "Berkshire Hathaway Inc."},
	{Symbol: "CVX", Name: "Chevron Corporation"},
	{Symbol: "GOOG", Name: "Alphabet Inc."},
	{Symbol: "HD", Name: "Home Depot Inc."},
	{Symbol: "JNJ", Name: "Johnson & Johnson"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co."},
	{Symbol: "KO", Name: "Coca-Cola Company"},
	{Symbol: "MA", Name: "Mastercard Incorporated"},
	{Symbol: "META", Name: "Meta Platforms Inc."},
	{Symbol: "MSFT", Name: "Microsoft Corporation"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation"},
	{Symbol: "PG", Name: "Procter & Gamble Company"},
	{Symbol: "TSLA", Name: "Tesla Inc."},
	{Symbol: "UNH", Name: "UnitedHealth Group Inc."},
	{Symbol: "V", Name: "Visa Inc."},
	{Symbol: "WMT", Name: "Walmart Inc."},
	{Symbol: "XOM", Name: "Exxon Mobil Corporation"},
}

// SeedDefaults ensures a starter watchlist and the symbol catalog exist for
// new databases. It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	symRepo := repository.NewSymbolRepo(db)
	symbols, err := symRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		for _, s := range defaultSymbols {
			if err := symRepo.Upsert(ctx, s); err != nil {
				return err
			}
		}
	}

	wlRepo := repository.NewWatchlistRepo(db)
	existing, err := wlRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	wlID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("watchlist:My Watchlist")).String()
	if err := wlRepo.Upsert(ctx, repository.Watchlist{ID: wlID, Name: "My Watchlist"}); err != nil {
		return err
	}
	starters := []string{"AAPL", "MSFT", "NVDA", "AMZN", "GOOG"}
	for _, sym := range starters {
		name := symbolName(sym)
		if err := wlRepo.InsertEntry(ctx, repository.Entry{
			Token:       uuid.NewSHA1(uuid.NameSpaceOID, []byte("entry:"+wlID+":"+sym)).String(),
			WatchlistID: wlID,
			Symbol:      sym,
			Name:        &name,
		}); err != nil {
			return err
		}
	}
	return nil
}

func symbolName(symbol string) string {
	for _, s := range defaultSymbols {
		if s.Symbol == symbol {
			return s.Name
		}
	}
	return symbol
}
