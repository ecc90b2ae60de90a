package interfaces

import "errors"

// Typed failures surfaced by registry operations. Every public operation
// either fully commits or fails with exactly one of these; there is no
// partially applied state.
var (
	// ErrNotAuthorized is returned when the caller lacks the role an
	// operation requires (admin, registrar, or record owner).
	ErrNotAuthorized = errors.New("caller is not authorized")

	// ErrPaused is returned by mutating operations while the registry
	// pause switch is set.
	ErrPaused = errors.New("registry is paused")

	// ErrInvalidID is returned for lookups and mutations of ids that have
	// no registered product.
	ErrInvalidID = errors.New("no product with that id")

	// ErrInvalidStringLength is returned when a string field exceeds its
	// maximum length.
	ErrInvalidStringLength = errors.New("string field exceeds maximum length")

	// ErrInvalidQuality is returned when a quality score falls outside
	// the inclusive [0, 100] range.
	ErrInvalidQuality = errors.New("quality score out of range")

	// ErrMaxCertsExceeded is returned when a certification list holds more
	// than MaxCertifications entries.
	ErrMaxCertsExceeded = errors.New("too many certifications")

	// ErrZeroAddress is returned when the zero-address sentinel is supplied
	// where a valid identity is required.
	ErrZeroAddress = errors.New("zero address is not a valid identity")

	// ErrNoChanges is returned by update calls that carry none of the four
	// optional fields.
	ErrNoChanges = errors.New("update contains no changes")

	// ErrHistoryFull is returned when an update would push a product's
	// audit history past MaxHistoryEntries. Nothing is committed.
	ErrHistoryFull = errors.New("product history is full")

	// ErrInvalidOptional is returned when an optional update field is
	// present but malformed.
	ErrInvalidOptional = errors.New("malformed optional field")
)

// Snapshot storage failures.
var (
	// ErrSnapshotNotFound is returned when a snapshot id has no stored data.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrLatestUnsupported is returned by backends that cannot track a
	// latest-snapshot pointer, such as content-addressed stores.
	ErrLatestUnsupported = errors.New("backend does not track a latest snapshot")
)
