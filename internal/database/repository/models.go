package repository

import "time"

// Watchlist represents a watchlist row.
type Watchlist struct {
	ID        string
	Name      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entry represents a watchlist entry row.
type Entry struct {
	Token       string
	WatchlistID string
	Symbol      string
	Name        *string
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Symbol represents an instrument available to the add picker.
type Symbol struct {
	Symbol string
	Name   string
}
