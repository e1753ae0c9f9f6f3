package watchlist

// Collection holds the ordered rows of one watchlist plus the last order
// handed to the backend. Only the owning Session mutates it.
type Collection struct {
	items         []Item
	lastConfirmed []string
}

// Load replaces the rows wholesale and resets lastConfirmed to the
// incoming order.
func (c *Collection) Load(items []Item) {
	c.items = append([]Item(nil), items...)
	c.lastConfirmed = Tokens(items)
}

// Items returns a copy of the current rows.
func (c *Collection) Items() []Item {
	return append([]Item(nil), c.items...)
}

func (c *Collection) Len() int { return len(c.items) }

// Contains reports whether a row with token is present.
func (c *Collection) Contains(token string) bool {
	for _, it := range c.items {
		if it.Token == token {
			return true
		}
	}
	return false
}

// Reorder installs a new arrangement of the rows and records it as the
// order the backend was given.
func (c *Collection) Reorder(items []Item) {
	c.items = append([]Item(nil), items...)
	c.lastConfirmed = Tokens(items)
}

// LastConfirmed returns a copy of the most recent order handed to the
// backend.
func (c *Collection) LastConfirmed() []string {
	return append([]string(nil), c.lastConfirmed...)
}

// SameOrder reports whether tokens matches lastConfirmed position by
// position. Any difference, including length, counts as a new order.
func (c *Collection) SameOrder(tokens []string) bool {
	if len(tokens) != len(c.lastConfirmed) {
		return false
	}
	for i, t := range tokens {
		if c.lastConfirmed[i] != t {
			return false
		}
	}
	return true
}

// SameMembers reports whether tokens is a permutation of the current rows.
func (c *Collection) SameMembers(tokens []string) bool {
	if len(tokens) != len(c.items) {
		return false
	}
	have := make(map[string]int, len(c.items))
	for _, it := range c.items {
		have[it.Token]++
	}
	for _, t := range tokens {
		if have[t] == 0 {
			return false
		}
		have[t]--
	}
	return true
}

// RemoveByTokens drops the rows whose tokens appear in the list, keeping
// the relative order of the remainder. lastConfirmed is filtered the same
// way so both stay aligned.
func (c *Collection) RemoveByTokens(tokens []string) {
	drop := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		drop[t] = true
	}
	kept := c.items[:0]
	for _, it := range c.items {
		if !drop[it.Token] {
			kept = append(kept, it)
		}
	}
	c.items = kept
	confirmed := c.lastConfirmed[:0]
	for _, t := range c.lastConfirmed {
		if !drop[t] {
			confirmed = append(confirmed, t)
		}
	}
	c.lastConfirmed = confirmed
}

// Clear empties the rows and the confirmed order.
func (c *Collection) Clear() {
	c.items = nil
	c.lastConfirmed = nil
}
