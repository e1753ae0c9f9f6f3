package watchlist

import "log"

// SharedStore is the slice of the process-wide store a session needs:
// point-in-time reads and whole-value replacement of one watchlist's rows.
type SharedStore interface {
	Peek(watchlistID string) []Item
	SetData(watchlistID string, items []Item)
}

// ReorderOp is one persist attempt produced by ApplyReorder. Tokens is the
// candidate order to hand to the backend; the rest is bookkeeping for
// CompleteReorder.
type ReorderOp struct {
	Seq    uint64
	Tokens []string

	items []Item
	prev  []Item
	gen   int
}

// DeleteOp is one bulk-delete attempt produced by BeginDelete.
type DeleteOp struct {
	Tokens []string

	gen int
}

// Session drives the edit lifecycle of a single watchlist: deferred
// population from the shared store, optimistic reorders, and a serialized
// bulk delete. All methods must be called from the update loop; the async
// half of each operation is the caller's remote call, whose result
// re-enters through CompleteReorder or CompleteDelete.
type Session struct {
	id     string
	store  SharedStore
	logger *log.Logger

	col Collection
	sel *SelectionSet

	ready  bool
	saving bool
	gen    int

	seq     uint64
	applied uint64
}

func NewSession(id string, store SharedStore, logger *log.Logger) *Session {
	return &Session{
		id:     id,
		store:  store,
		logger: logger,
		sel:    NewSelectionSet(),
	}
}

func (s *Session) ID() string { return s.id }

// Ready reports whether the collection has been populated since the last
// entry.
func (s *Session) Ready() bool { return s.ready }

// Saving reports whether a bulk delete is in flight.
func (s *Session) Saving() bool { return s.saving }

// Generation identifies the current entry/exit cycle. A deferred load
// scheduled before Teardown carries a stale generation and is discarded.
func (s *Session) Generation() int { return s.gen }

// Items returns a copy of the current rows.
func (s *Session) Items() []Item { return s.col.Items() }

func (s *Session) Len() int { return s.col.Len() }

// Selection exposes the mark set for rendering and per-row watches.
func (s *Session) Selection() *SelectionSet { return s.sel }

// Load populates the collection from the shared store. The read is a
// point-in-time copy; later store changes do not flow in. On a re-load,
// marks whose tokens left the membership are dropped so the selection
// never outgrows the rows.
func (s *Session) Load() {
	s.col.Load(Normalize(s.store.Peek(s.id)))
	for _, tok := range s.sel.Snapshot() {
		if !s.col.Contains(tok) {
			s.sel.Set(tok, false)
		}
	}
	s.ready = true
}

// Teardown leaves the edit lifecycle: it bumps the generation so pending
// deferred loads and in-flight completions are discarded, and clears every
// piece of per-entry state.
func (s *Session) Teardown() {
	s.gen++
	s.col.Clear()
	s.sel.Clear()
	s.ready = false
	s.saving = false
}

// ToggleMark flips the bulk-delete mark for token. Tokens not present in
// the collection are ignored so the selection never outgrows the rows.
func (s *Session) ToggleMark(token string) bool {
	if !s.ready || !s.col.Contains(token) {
		return false
	}
	return s.sel.Toggle(token)
}

// ApplyReorder takes a full candidate order (the drop half of a lift/drop
// move) and applies it optimistically. It returns ok=false when there is
// nothing to persist: the session is not ready, the candidate is not a
// permutation of the current rows, or the order matches what the backend
// already has. Otherwise the caller must issue the remote rearrange for
// op.Tokens and feed the result to CompleteReorder.
func (s *Session) ApplyReorder(candidate []Item) (ReorderOp, bool) {
	if !s.ready {
		return ReorderOp{}, false
	}
	tokens := Tokens(candidate)
	if !s.col.SameMembers(tokens) {
		return ReorderOp{}, false
	}
	if s.col.SameOrder(tokens) {
		return ReorderOp{}, false
	}
	s.seq++
	op := ReorderOp{
		Seq:    s.seq,
		Tokens: tokens,
		items:  append([]Item(nil), candidate...),
		prev:   s.col.Items(),
		gen:    s.gen,
	}
	s.col.Reorder(candidate)
	return op, true
}

// CompleteReorder resolves a rearrange attempt. Success propagates the
// op's rows to the shared store unless a later attempt already landed.
// Failure logs the condition and rolls the collection back to the
// pre-reorder snapshot, unless a newer reorder has been issued since, in
// which case that attempt owns the state.
func (s *Session) CompleteReorder(op ReorderOp, err error) {
	if op.gen != s.gen {
		return
	}
	if err != nil {
		s.logf("watchlist %s: rearrange attempt %d failed, restoring previous order: %v", s.id, op.Seq, err)
		if op.Seq == s.seq {
			s.col.Reorder(op.prev)
		}
		return
	}
	if op.Seq <= s.applied {
		return
	}
	s.applied = op.Seq
	s.store.SetData(s.id, op.items)
}

// BeginDelete snapshots the current selection and raises the saving flag.
// It returns ok=false when nothing is marked or a delete is already in
// flight. The caller must issue the remote bulk delete for op.Tokens and
// feed the result to CompleteDelete.
func (s *Session) BeginDelete() (DeleteOp, bool) {
	if !s.ready || s.saving {
		return DeleteOp{}, false
	}
	tokens := s.sel.Snapshot()
	if len(tokens) == 0 {
		return DeleteOp{}, false
	}
	s.saving = true
	return DeleteOp{Tokens: tokens, gen: s.gen}, true
}

// CompleteDelete resolves a bulk-delete attempt. On success the snapshot
// rows leave the collection and the shared store, the selection is
// cleared, and done=true tells the caller to leave the edit screen. On
// failure nothing local changes and the error comes back for display. The
// saving flag drops on both paths.
func (s *Session) CompleteDelete(op DeleteOp, err error) (done bool, _ error) {
	if op.gen != s.gen {
		return false, nil
	}
	s.saving = false
	if err != nil {
		return false, err
	}
	s.col.RemoveByTokens(op.Tokens)
	s.store.SetData(s.id, s.col.Items())
	s.sel.Clear()
	return true, nil
}

func (s *Session) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
