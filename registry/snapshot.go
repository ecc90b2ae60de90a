package registry

import (
	"log/slog"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// Snapshot captures a complete image of the registry's five logical tables
// under the read lock, plus the current sequence value.
func (r *Registry) Snapshot() *interfaces.RegistrySnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &interfaces.RegistrySnapshot{
		Admin:      r.access.Admin(),
		Paused:     r.access.Paused(),
		NextID:     r.records.NextID(),
		Sequence:   r.seq.Current(),
		Registrars: r.access.Registrars(),
		Products:   r.records.export(),
		Owners:     r.owners.export(),
		History:    r.history.export(),
	}
}

// Restore builds a registry from a snapshot. The snapshot is validated first;
// a snapshot that violates the registry invariants is rejected rather than
// loaded partially.
func Restore(snap *interfaces.RegistrySnapshot, seq interfaces.SequenceSource, sink interfaces.EventSink, log *slog.Logger) (*Registry, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	r, err := New(snap.Admin, seq, sink, log)
	if err != nil {
		return nil, err
	}
	r.access.restore(snap.Admin, snap.Paused, snap.Registrars)
	r.records.restore(snap.NextID, snap.Products)
	r.owners.restore(snap.Owners)
	r.history.restore(snap.History)
	return r, nil
}
