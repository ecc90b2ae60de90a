package registry

import (
	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// OwnershipLedger maps product ids to their current owner. It is independent
// of the record store so an ownership transfer never touches product fields.
// An owner entry exists iff the record exists, and is never the zero address.
type OwnershipLedger struct {
	owners map[interfaces.ProductID]interfaces.Identity
}

// NewOwnershipLedger creates an empty ledger.
func NewOwnershipLedger() *OwnershipLedger {
	return &OwnershipLedger{owners: make(map[interfaces.ProductID]interfaces.Identity)}
}

// Owner returns the current owner of the product, and whether one is recorded.
func (l *OwnershipLedger) Owner(id interfaces.ProductID) (interfaces.Identity, bool) {
	owner, ok := l.owners[id]
	return owner, ok
}

// SetOwner records owner as the current owner of the product.
func (l *OwnershipLedger) SetOwner(id interfaces.ProductID, owner interfaces.Identity) {
	l.owners[id] = owner
}

// export copies the owner table for a snapshot.
func (l *OwnershipLedger) export() map[interfaces.ProductID]interfaces.Identity {
	out := make(map[interfaces.ProductID]interfaces.Identity, len(l.owners))
	for id, owner := range l.owners {
		out[id] = owner
	}
	return out
}

// restore replaces the ledger contents from a snapshot.
func (l *OwnershipLedger) restore(owners map[interfaces.ProductID]interfaces.Identity) {
	l.owners = make(map[interfaces.ProductID]interfaces.Identity, len(owners))
	for id, owner := range owners {
		l.owners[id] = owner
	}
}
