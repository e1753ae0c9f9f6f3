package watchlist

import "github.com/google/uuid"

// Item is a single watchlist row. Token is the only identity used for
// ordering, selection, and persistence.
type Item struct {
	Token  string
	Symbol string
	Name   string
}

// List is a watchlist as served by a backend: catalog metadata plus rows.
type List struct {
	ID    string
	Name  string
	Items []Item
}

// Normalize returns a copy of items where every row carries a unique token.
// Rows arriving without one get a synthetic token; rows repeating an
// already-seen token are dropped, first occurrence wins.
func Normalize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.Token == "" {
			it.Token = uuid.NewString()
		}
		if seen[it.Token] {
			continue
		}
		seen[it.Token] = true
		out = append(out, it)
	}
	return out
}

// Tokens returns the token sequence of items in order.
func Tokens(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Token
	}
	return out
}
