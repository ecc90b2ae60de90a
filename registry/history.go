package registry

import (
	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// HistoryLog keeps the per-product audit trail: a bounded, append-only
// sequence of change entries. The log rejects appends past the cap instead of
// evicting — retention is a correctness requirement, not a cache policy.
type HistoryLog struct {
	entries map[interfaces.ProductID][]interfaces.HistoryEntry
}

// NewHistoryLog creates an empty log.
func NewHistoryLog() *HistoryLog {
	return &HistoryLog{entries: make(map[interfaces.ProductID][]interfaces.HistoryEntry)}
}

// Init creates an empty trail for a freshly registered product.
func (h *HistoryLog) Init(id interfaces.ProductID) {
	if _, ok := h.entries[id]; !ok {
		h.entries[id] = []interfaces.HistoryEntry{}
	}
}

// Len returns the number of entries recorded for the product.
func (h *HistoryLog) Len(id interfaces.ProductID) int {
	return len(h.entries[id])
}

// CanAppend reports whether n more entries fit under the cap. The
// orchestrator checks this before committing any mutation of an update.
func (h *HistoryLog) CanAppend(id interfaces.ProductID, n int) bool {
	return len(h.entries[id])+n <= interfaces.MaxHistoryEntries
}

// Append adds entries to the product's trail. It guards the cap again even
// though callers pre-check with CanAppend.
func (h *HistoryLog) Append(id interfaces.ProductID, entries ...interfaces.HistoryEntry) error {
	if !h.CanAppend(id, len(entries)) {
		return interfaces.ErrHistoryFull
	}
	h.entries[id] = append(h.entries[id], entries...)
	return nil
}

// Entries returns a copy of the product's trail in append order.
func (h *HistoryLog) Entries(id interfaces.ProductID) []interfaces.HistoryEntry {
	return append([]interfaces.HistoryEntry(nil), h.entries[id]...)
}

// export copies the full history table for a snapshot.
func (h *HistoryLog) export() map[interfaces.ProductID][]interfaces.HistoryEntry {
	out := make(map[interfaces.ProductID][]interfaces.HistoryEntry, len(h.entries))
	for id, entries := range h.entries {
		out[id] = append([]interfaces.HistoryEntry(nil), entries...)
	}
	return out
}

// restore replaces the log contents from a snapshot.
func (h *HistoryLog) restore(entries map[interfaces.ProductID][]interfaces.HistoryEntry) {
	h.entries = make(map[interfaces.ProductID][]interfaces.HistoryEntry, len(entries))
	for id, list := range entries {
		h.entries[id] = append([]interfaces.HistoryEntry(nil), list...)
	}
}
