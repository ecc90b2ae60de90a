package api

import (
	"errors"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// Header constants used in HTTP requests.
const (
	// CallerHeader carries the hex-encoded identity of the caller. The
	// serving environment authenticates it; in signed mode it must match
	// the address recovered from SignatureHeader.
	CallerHeader = "X-Registry-Caller"

	// SignatureHeader carries a hex-encoded 65-byte secp256k1 signature
	// over the keccak-256 digest of the request body.
	SignatureHeader = "X-Registry-Signature"

	// SequenceHeader optionally carries an externally supplied sequence
	// height. Accepted only when the server runs with external sequencing;
	// stale values never move the counter backwards.
	SequenceHeader = "X-Registry-Sequence"
)

// RegisterRequest is the body of POST /api/registry/products.
type RegisterRequest struct {
	BatchID        string   `json:"batch_id"`
	Origin         string   `json:"origin"`
	Quality        int      `json:"quality"`
	Certifications []string `json:"certifications"`
}

// RegisterResponse returns the id allocated to the new product.
type RegisterResponse struct {
	ID interfaces.ProductID `json:"id"`
}

// UpdateRequest is the body of PATCH /api/registry/products/{id}. Absent
// fields are left untouched; at least one must be present.
type UpdateRequest struct {
	BatchID        *string   `json:"batch_id,omitempty"`
	Origin         *string   `json:"origin,omitempty"`
	Quality        *int      `json:"quality,omitempty"`
	Certifications *[]string `json:"certifications,omitempty"`
}

// Patch converts the request into the registry's patch type.
func (r UpdateRequest) Patch() interfaces.UpdatePatch {
	return interfaces.UpdatePatch{
		BatchID:        r.BatchID,
		Origin:         r.Origin,
		Quality:        r.Quality,
		Certifications: r.Certifications,
	}
}

// TransferOwnershipRequest is the body of POST /api/registry/products/{id}/owner.
type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

// TransferAdminRequest is the body of POST /api/admin/transfer.
type TransferAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

// SetPausedRequest is the body of POST /api/admin/pause.
type SetPausedRequest struct {
	Paused bool `json:"paused"`
}

// AddRegistrarRequest is the body of POST /api/admin/registrars.
type AddRegistrarRequest struct {
	Registrar string `json:"registrar"`
}

// ProductResponse is the body of GET /api/registry/products/{id}.
type ProductResponse struct {
	ID interfaces.ProductID `json:"id"`
	interfaces.Product
}

// OwnerResponse is the body of GET /api/registry/products/{id}/owner.
type OwnerResponse struct {
	ID    interfaces.ProductID `json:"id"`
	Owner interfaces.Identity  `json:"owner"`
}

// HistoryResponse is the body of GET /api/registry/products/{id}/history.
type HistoryResponse struct {
	ID      interfaces.ProductID       `json:"id"`
	Entries []interfaces.HistoryEntry  `json:"entries"`
}

// StatusResponse reports the registry's scalar state.
type StatusResponse struct {
	Admin  interfaces.Identity  `json:"admin"`
	Paused bool                 `json:"paused"`
	NextID interfaces.ProductID `json:"next_id"`
}

// RegistrarResponse reports one registrar-membership query.
type RegistrarResponse struct {
	Identity  interfaces.Identity `json:"identity"`
	Registrar bool                `json:"registrar"`
}

// SnapshotResponse reports the id of a saved snapshot.
type SnapshotResponse struct {
	SnapshotID interfaces.SnapshotID `json:"snapshot_id"`
	Backend    string                `json:"backend"`
}

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Error codes used on the wire, mapped 1:1 to the registry's typed errors.
const (
	CodeNotAuthorized       = "not_authorized"
	CodePaused              = "paused"
	CodeInvalidID           = "invalid_id"
	CodeInvalidStringLength = "invalid_string_length"
	CodeInvalidQuality      = "invalid_quality"
	CodeMaxCertsExceeded    = "max_certs_exceeded"
	CodeZeroAddress         = "zero_address"
	CodeNoChanges           = "no_changes"
	CodeHistoryFull         = "history_full"
	CodeInvalidOptional     = "invalid_optional"
	CodeBadRequest          = "bad_request"
	CodeInternal            = "internal"
)

// ErrorCode classifies a registry error into its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, interfaces.ErrNotAuthorized):
		return CodeNotAuthorized
	case errors.Is(err, interfaces.ErrPaused):
		return CodePaused
	case errors.Is(err, interfaces.ErrInvalidID):
		return CodeInvalidID
	case errors.Is(err, interfaces.ErrInvalidStringLength):
		return CodeInvalidStringLength
	case errors.Is(err, interfaces.ErrInvalidQuality):
		return CodeInvalidQuality
	case errors.Is(err, interfaces.ErrMaxCertsExceeded):
		return CodeMaxCertsExceeded
	case errors.Is(err, interfaces.ErrZeroAddress):
		return CodeZeroAddress
	case errors.Is(err, interfaces.ErrNoChanges):
		return CodeNoChanges
	case errors.Is(err, interfaces.ErrHistoryFull):
		return CodeHistoryFull
	case errors.Is(err, interfaces.ErrInvalidOptional):
		return CodeInvalidOptional
	default:
		return CodeInternal
	}
}

// ErrorFromCode maps a wire code back to the registry's typed error, so
// clients can use errors.Is the same way in-process callers do.
func ErrorFromCode(code string) error {
	switch code {
	case CodeNotAuthorized:
		return interfaces.ErrNotAuthorized
	case CodePaused:
		return interfaces.ErrPaused
	case CodeInvalidID:
		return interfaces.ErrInvalidID
	case CodeInvalidStringLength:
		return interfaces.ErrInvalidStringLength
	case CodeInvalidQuality:
		return interfaces.ErrInvalidQuality
	case CodeMaxCertsExceeded:
		return interfaces.ErrMaxCertsExceeded
	case CodeZeroAddress:
		return interfaces.ErrZeroAddress
	case CodeNoChanges:
		return interfaces.ErrNoChanges
	case CodeHistoryFull:
		return interfaces.ErrHistoryFull
	case CodeInvalidOptional:
		return interfaces.ErrInvalidOptional
	default:
		return nil
	}
}
