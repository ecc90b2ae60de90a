package interfaces

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Field limits enforced by the validation engine.
const (
	// MaxBatchIDLen is the maximum length of a product batch identifier.
	MaxBatchIDLen = 50

	// MaxOriginLen is the maximum length of a product origin description.
	MaxOriginLen = 100

	// MaxQuality is the upper bound of the inclusive [0, MaxQuality] quality range.
	MaxQuality = 100

	// MaxCertifications is the maximum number of certifications per product.
	MaxCertifications = 10

	// MaxCertificationLen is the maximum length of a single certification name.
	MaxCertificationLen = 50

	// MaxHistoryEntries caps the per-product audit trail. The history log
	// rejects appends beyond the cap instead of evicting old entries.
	MaxHistoryEntries = 50
)

// Identity is a 20-byte account identity. The all-zero value is the reserved
// sentinel and is never a valid admin, registrar, or owner.
type Identity [20]byte

// NewIdentityFromHex parses a hex-encoded identity, with or without the 0x prefix.
func NewIdentityFromHex(s string) (Identity, error) {
	if !common.IsHexAddress(s) {
		return Identity{}, fmt.Errorf("invalid identity %q: must be a 20-byte hex address", s)
	}
	return Identity(common.HexToAddress(s)), nil
}

// String returns the checksummed hex representation of the identity.
func (id Identity) String() string {
	return common.Address(id).Hex()
}

// Bytes returns the raw 20-byte identity.
func (id Identity) Bytes() []byte {
	return id[:]
}

// IsZero reports whether the identity is the reserved zero-address sentinel.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// MarshalText implements encoding.TextMarshaler so identities serialize as hex
// strings in JSON documents and snapshot files.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(common.Address(id).Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := NewIdentityFromHex(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ProductID identifies a registered product. IDs are allocated densely
// starting at 1 and are never reused.
type ProductID uint64

// FieldName names one of the four mutable product fields as recorded in the
// audit history.
type FieldName string

// History field names.
const (
	FieldBatchID        FieldName = "batch-id"
	FieldOrigin         FieldName = "origin"
	FieldQuality        FieldName = "quality"
	FieldCertifications FieldName = "certifications"
)

// Product is a registered product record. RegisteredAt never changes after
// creation; LastUpdatedAt tracks the sequence value of the latest mutation.
type Product struct {
	BatchID        string    `json:"batch_id"`
	Origin         string    `json:"origin"`
	Quality        int       `json:"quality"`
	Certifications []string  `json:"certifications"`
	RegisteredAt   uint64    `json:"registered_at"`
	LastUpdatedAt  uint64    `json:"last_updated_at"`
}

// Clone returns a deep copy of the product. Certifications are copied so a
// caller can never alias the registry's internal state.
func (p Product) Clone() Product {
	cp := p
	if p.Certifications != nil {
		cp.Certifications = append([]string(nil), p.Certifications...)
	}
	return cp
}

// HistoryEntry records one change to a single product field. Old and new
// values are stringified regardless of the field's native type.
type HistoryEntry struct {
	Timestamp uint64    `json:"timestamp"`
	Updater   Identity  `json:"updater"`
	Field     FieldName `json:"field"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
}

// UpdatePatch carries the four independently optional fields of an update
// call. A nil pointer means the field is absent from the call.
type UpdatePatch struct {
	BatchID        *string   `json:"batch_id,omitempty"`
	Origin         *string   `json:"origin,omitempty"`
	Quality        *int      `json:"quality,omitempty"`
	Certifications *[]string `json:"certifications,omitempty"`
}

// Empty reports whether no field is present in the patch.
func (p UpdatePatch) Empty() bool {
	return p.BatchID == nil && p.Origin == nil && p.Quality == nil && p.Certifications == nil
}

// RegistrySnapshot is a complete serializable image of the registry's five
// logical tables plus the sequence value at capture time.
type RegistrySnapshot struct {
	Admin      Identity                     `json:"admin"`
	Paused     bool                         `json:"paused"`
	NextID     ProductID                    `json:"next_id"`
	Sequence   uint64                       `json:"sequence"`
	Registrars []Identity                   `json:"registrars"`
	Products   map[ProductID]Product        `json:"products"`
	Owners     map[ProductID]Identity       `json:"owners"`
	History    map[ProductID][]HistoryEntry `json:"history"`
}

// Validate performs structural checks on a decoded snapshot before it is
// restored into a live registry.
func (s *RegistrySnapshot) Validate() error {
	if s.Admin.IsZero() {
		return errors.New("snapshot has zero-address admin")
	}
	if s.NextID == 0 {
		return errors.New("snapshot next_id must be at least 1")
	}
	for id := range s.Products {
		if id == 0 || id >= s.NextID {
			return fmt.Errorf("snapshot product id %d outside allocated range", id)
		}
		owner, ok := s.Owners[id]
		if !ok || owner.IsZero() {
			return fmt.Errorf("snapshot product %d has no valid owner", id)
		}
	}
	for id := range s.Owners {
		if _, ok := s.Products[id]; !ok {
			return fmt.Errorf("snapshot owner entry %d has no product", id)
		}
	}
	for id, entries := range s.History {
		if _, ok := s.Products[id]; !ok {
			return fmt.Errorf("snapshot history entry %d has no product", id)
		}
		if len(entries) > MaxHistoryEntries {
			return fmt.Errorf("snapshot history for product %d exceeds %d entries", id, MaxHistoryEntries)
		}
	}
	return nil
}
