package interfaces

import "context"

// ProductRegistry is the full public operation surface of the registry
// engine. Mutating operations identify the caller explicitly; queries are
// unauthenticated. Each call is atomic: it either fully commits or returns
// one of the typed errors with no state change.
type ProductRegistry interface {
	// TransferAdmin replaces the registry admin. Admin only.
	TransferAdmin(caller, newAdmin Identity) error

	// SetPaused flips the pause switch. Admin only, and never itself
	// blocked by the switch.
	SetPaused(caller Identity, paused bool) error

	// AddRegistrar grants registration rights to an identity. Admin only.
	AddRegistrar(caller, registrar Identity) error

	// RemoveRegistrar revokes registration rights. Admin only; removing a
	// non-member succeeds silently.
	RemoveRegistrar(caller, registrar Identity) error

	// Register creates a new product record owned by the caller and
	// returns its id. Caller must be the admin or an authorized registrar.
	Register(caller Identity, batchID, origin string, quality int, certifications []string) (ProductID, error)

	// Update applies the present fields of the patch to a product as one
	// atomic unit, appending one history entry per changed field.
	// Caller must be the product owner or the admin.
	Update(caller Identity, id ProductID, patch UpdatePatch) error

	// TransferOwnership reassigns a product to a new owner. Only the
	// current owner may transfer; the admin holds no special right here.
	TransferOwnership(caller Identity, id ProductID, newOwner Identity) error

	// Product returns a copy of the product record.
	Product(id ProductID) (Product, error)

	// ProductOwner returns the current owner of the product.
	ProductOwner(id ProductID) (Identity, error)

	// UpdateHistory returns the product's audit trail in append order.
	UpdateHistory(id ProductID) ([]HistoryEntry, error)

	// NextID returns the id the next registration will receive.
	NextID() ProductID

	// Admin returns the current admin identity.
	Admin() Identity

	// IsPaused reports the pause switch.
	IsPaused() bool

	// IsRegistrar reports whether the identity may register products.
	// The admin is always a registrar.
	IsRegistrar(id Identity) bool
}

// SequenceSource supplies the monotonically non-decreasing sequence counter
// the registry uses to timestamp creations and updates. The counter is an
// environment input; the registry never derives it.
type SequenceSource interface {
	Current() uint64
}

// SnapshotID identifies a stored registry snapshot within a backend. For
// hash-addressed backends it is the hex digest of the encoded snapshot; for
// IPFS it is the CID returned by the node.
type SnapshotID string

// SnapshotStore persists and retrieves registry snapshots. Implementations
// live below the logical store and carry no registry semantics.
type SnapshotStore interface {
	// Save persists a snapshot and returns its id.
	Save(ctx context.Context, snap *RegistrySnapshot) (SnapshotID, error)

	// Load retrieves a snapshot by id. Returns ErrSnapshotNotFound if the
	// id has no stored data.
	Load(ctx context.Context, id SnapshotID) (*RegistrySnapshot, error)

	// Latest returns the id of the most recently saved snapshot. Backends
	// without a mutable pointer return ErrLatestUnsupported.
	Latest(ctx context.Context) (SnapshotID, error)

	// Name returns a short identifier for this backend instance.
	Name() string

	// LocationURI returns the URI this backend was created from.
	LocationURI() string

	// Available reports whether the backend is currently reachable.
	Available(ctx context.Context) bool
}
