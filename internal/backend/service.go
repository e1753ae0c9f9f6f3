package backend

import (
	"context"
	"errors"

	"github.com/jask/watchdeck/internal/watchlist"
)

// Service is the persistence backend for watchlists. Every write carries
// the acting username so the backend can attribute it.
type Service interface {
	Watchlists(ctx context.Context) ([]watchlist.List, error)
	Rearrange(ctx context.Context, watchlistID string, tokens []string, caller string) error
	BulkDelete(ctx context.Context, watchlistID string, tokens []string, caller string) error
	AddEntry(ctx context.Context, watchlistID string, item watchlist.Item, caller string) error
	Symbols(ctx context.Context) ([]SymbolInfo, error)
}

// SymbolInfo is one instrument from the symbol catalog.
type SymbolInfo struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// ErrNoBaseURL is returned when remote mode is selected without a base URL.
var ErrNoBaseURL = errors.New("backend: base_url not configured")
