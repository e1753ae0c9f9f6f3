package store

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/watchdeck/internal/watchlist"
)

// ChangeMsg is emitted when one watchlist's rows are replaced.
type ChangeMsg struct {
	WatchlistID string
}

// CatalogMsg is emitted when the whole catalog is replaced.
type CatalogMsg struct{}

type catalogEntry struct {
	id   string
	name string
}

// Store is the process-wide mirror of backend state. Screens read
// point-in-time copies and replace whole values; nothing ever hands out a
// live reference. Changes are published on a Bubble Tea event channel so
// screens that are not the writer can refresh.
type Store struct {
	mu      sync.RWMutex
	catalog []catalogEntry
	items   map[string][]watchlist.Item

	eventCh chan tea.Msg
}

func New() *Store {
	return &Store{
		items:   make(map[string][]watchlist.Item),
		eventCh: make(chan tea.Msg, 16),
	}
}

// Events exposes the change feed for Bubble Tea subscriptions. Events are
// dropped rather than blocking a writer when nobody is draining.
func (s *Store) Events() <-chan tea.Msg {
	return s.eventCh
}

// SetCatalog replaces every known watchlist and its rows.
func (s *Store) SetCatalog(lists []watchlist.List) {
	s.mu.Lock()
	s.catalog = make([]catalogEntry, 0, len(lists))
	s.items = make(map[string][]watchlist.Item, len(lists))
	for _, l := range lists {
		s.catalog = append(s.catalog, catalogEntry{id: l.ID, name: l.Name})
		s.items[l.ID] = append([]watchlist.Item(nil), l.Items...)
	}
	s.mu.Unlock()
	s.emit(CatalogMsg{})
}

// Catalog returns the known watchlists in backend order, each with a copy
// of its current rows.
func (s *Store) Catalog() []watchlist.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]watchlist.List, 0, len(s.catalog))
	for _, e := range s.catalog {
		out = append(out, watchlist.List{
			ID:    e.id,
			Name:  e.name,
			Items: append([]watchlist.Item(nil), s.items[e.id]...),
		})
	}
	return out
}

// Peek returns a point-in-time copy of one watchlist's rows.
func (s *Store) Peek(watchlistID string) []watchlist.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]watchlist.Item(nil), s.items[watchlistID]...)
}

// SetData replaces one watchlist's rows wholesale.
func (s *Store) SetData(watchlistID string, items []watchlist.Item) {
	s.mu.Lock()
	s.items[watchlistID] = append([]watchlist.Item(nil), items...)
	s.mu.Unlock()
	s.emit(ChangeMsg{WatchlistID: watchlistID})
}

func (s *Store) emit(msg tea.Msg) {
	select {
	case s.eventCh <- msg:
	default:
	}
}
