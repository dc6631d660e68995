package symtrack

// historyEntry pairs one interpolated sample with its hard decision.
type historyEntry struct {
	x complex128 // interpolated sample
	d complex128 // hard decision for x
}

// symbolHistory is a fixed-capacity ring of the most recent (sample,
// decision) pairs, indexed by lag behind the current output tick. The
// timing loop owns it exclusively: exactly one push per tick, reads only
// between pushes. Capacity never grows, so memory per tick is O(1).
type symbolHistory struct {
	entries []historyEntry
	next    int // ring position the next push overwrites
	filled  int // valid entries, grows until it reaches len(entries)
}

func newSymbolHistory(depth int) *symbolHistory {
	return &symbolHistory{entries: make([]historyEntry, depth)}
}

// push records the pair for the current tick, evicting the oldest entry
// once the ring is full.
func (h *symbolHistory) push(x, d complex128) {
	h.entries[h.next] = historyEntry{x: x, d: d}
	h.next++
	if h.next == len(h.entries) {
		h.next = 0
	}
	if h.filled < len(h.entries) {
		h.filled++
	}
}

// at returns the entry from lag ticks back; lag 0 is the most recent push.
// Callers must check warm() first: entries older than the fill level are
// unspecified.
func (h *symbolHistory) at(lag int) historyEntry {
	n := len(h.entries)
	idx := h.next - 1 - lag
	idx = ((idx % n) + n) % n
	return h.entries[idx]
}

// warm reports whether at least n entries have been pushed.
func (h *symbolHistory) warm(n int) bool {
	return h.filled >= n
}
