package watchlist

import "sort"

// SelectionSet tracks which tokens are marked for a bulk action. A token
// with no entry is unmarked. The set belongs to the TUI update loop and is
// not safe for concurrent use.
type SelectionSet struct {
	marked   map[string]bool
	count    int
	watchers map[string]map[int]func(bool)
	nextID   int
}

func NewSelectionSet() *SelectionSet {
	return &SelectionSet{
		marked:   make(map[string]bool),
		watchers: make(map[string]map[int]func(bool)),
	}
}

// Toggle flips the mark for token and returns the new state.
func (s *SelectionSet) Toggle(token string) bool {
	v := !s.marked[token]
	s.set(token, v)
	return v
}

// Set forces the mark for token to v.
func (s *SelectionSet) Set(token string, v bool) { s.set(token, v) }

func (s *SelectionSet) set(token string, v bool) {
	if s.marked[token] == v {
		return
	}
	if v {
		s.marked[token] = true
		s.count++
	} else {
		delete(s.marked, token)
		s.count--
	}
	for _, fn := range s.watchers[token] {
		fn(v)
	}
}

// Marked reports whether token is currently marked.
func (s *SelectionSet) Marked(token string) bool { return s.marked[token] }

// Count returns the number of marked tokens. It is maintained on every
// change, never recomputed, so it is cheap to read per frame.
func (s *SelectionSet) Count() int { return s.count }

// Snapshot returns the marked tokens sorted lexically. The slice is a
// point-in-time copy; later toggles do not affect it.
func (s *SelectionSet) Snapshot() []string {
	out := make([]string, 0, s.count)
	for token := range s.marked {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// Clear unmarks everything, notifying watchers of tokens that were set.
func (s *SelectionSet) Clear() {
	for token := range s.marked {
		delete(s.marked, token)
		for _, fn := range s.watchers[token] {
			fn(false)
		}
	}
	s.count = 0
}

// Watch registers fn to run whenever the mark for token changes. The
// returned cancel removes the registration.
func (s *SelectionSet) Watch(token string, fn func(bool)) (cancel func()) {
	m := s.watchers[token]
	if m == nil {
		m = make(map[int]func(bool))
		s.watchers[token] = m
	}
	id := s.nextID
	s.nextID++
	m[id] = fn
	return func() {
		if _, ok := m[id]; !ok {
			return
		}
		delete(m, id)
		if len(m) == 0 {
			delete(s.watchers, token)
		}
	}
}
