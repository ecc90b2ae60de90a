package interfaces

// Event names emitted by the registry.
const (
	EventProductRegistered    = "product-registered"
	EventProductUpdated       = "product-updated"
	EventOwnershipTransferred = "ownership-transferred"
	EventRegistrarAdded       = "registrar-added"
	EventRegistrarRemoved     = "registrar-removed"
	EventAdminTransferred     = "admin-transferred"
	EventRegistryPaused       = "registry-paused"
	EventRegistryUnpaused     = "registry-unpaused"
)

// Event is a fire-and-forget notification describing one committed mutation.
// Events are consumed by external indexers and are never read back by the
// registry itself.
type Event struct {
	// ID is a unique identifier for this event instance.
	ID string `json:"id"`

	// Name is one of the Event* constants.
	Name string `json:"name"`

	// Sequence is the sequence counter value at commit time.
	Sequence uint64 `json:"sequence"`

	// Caller is the identity that performed the operation.
	Caller Identity `json:"caller"`

	// ProductID is set for product-scoped events, zero otherwise.
	ProductID ProductID `json:"product_id,omitempty"`

	// Fields lists the changed fields for product-updated events.
	Fields []FieldName `json:"fields,omitempty"`

	// Attributes carries additional operation-specific values, such as the
	// new owner of an ownership transfer.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// EventSink receives events emitted by the registry. Publish must not block:
// a sink that cannot keep up drops events rather than stalling the caller.
type EventSink interface {
	Publish(Event)
}
