package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/markeluno8-dev/AuthentiEats/api"
	"github.com/markeluno8-dev/AuthentiEats/interfaces"
	"github.com/markeluno8-dev/AuthentiEats/metrics"
	"github.com/markeluno8-dev/AuthentiEats/registry"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// Snapshotter captures a full registry snapshot for persistence.
type Snapshotter interface {
	Snapshot() *interfaces.RegistrySnapshot
}

// HandlerConfig wires the handler's collaborators.
type HandlerConfig struct {
	// Registry is the engine serving every operation.
	Registry interfaces.ProductRegistry

	// Sequencer is the sequence counter advanced once per mutating call.
	Sequencer *registry.Sequencer

	// Snapshotter captures snapshots for the admin snapshot endpoint.
	// Usually the concrete registry behind Registry.
	Snapshotter Snapshotter

	// Snapshots is the optional store snapshots are saved to.
	Snapshots interfaces.SnapshotStore

	// RequireSignatures demands a body signature matching the caller header.
	RequireSignatures bool

	// ExternalSequence accepts sequence heights from the sequence header.
	ExternalSequence bool

	Log *slog.Logger
}

// Handler processes HTTP requests for the product registry service.
type Handler struct {
	registry          interfaces.ProductRegistry
	sequencer         *registry.Sequencer
	snapshotter       Snapshotter
	snapshots         interfaces.SnapshotStore
	requireSignatures bool
	externalSequence  bool
	log               *slog.Logger
}

// NewHandler creates a handler from its configuration.
func NewHandler(cfg *HandlerConfig) *Handler {
	return &Handler{
		registry:          cfg.Registry,
		sequencer:         cfg.Sequencer,
		snapshotter:       cfg.Snapshotter,
		snapshots:         cfg.Snapshots,
		requireSignatures: cfg.RequireSignatures,
		externalSequence:  cfg.ExternalSequence,
		log:               cfg.Log,
	}
}

// HandleRegister processes POST /api/registry/products.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	body, caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req api.RegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	h.advanceSequence(r)
	id, err := h.registry.Register(caller, req.BatchID, req.Origin, req.Quality, req.Certifications)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, api.RegisterResponse{ID: id})
}

// HandleUpdate processes PATCH /api/registry/products/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	body, caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req api.UpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		// A present-but-malformed optional field is a typed failure,
		// distinct from generic bad requests.
		h.writeError(w, fmt.Errorf("%w: %v", interfaces.ErrInvalidOptional, err))
		return
	}

	h.advanceSequence(r)
	if err := h.registry.Update(caller, id, req.Patch()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// HandleTransferOwnership processes POST /api/registry/products/{id}/owner.
func (h *Handler) HandleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	body, caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req api.TransferOwnershipRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	newOwner, err := interfaces.NewIdentityFromHex(req.NewOwner)
	if err != nil {
		// The zero-value sentinel parses fine but is rejected by the
		// registry; anything unparsable is rejected here.
		h.badRequest(w, err.Error())
		return
	}

	h.advanceSequence(r)
	if err := h.registry.TransferOwnership(caller, id, newOwner); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

// HandleGetProduct processes GET /api/registry/products/{id}.
func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	product, err := h.registry.Product(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.ProductResponse{ID: id, Product: product})
}

// HandleGetOwner processes GET /api/registry/products/{id}/owner.
func (h *Handler) HandleGetOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	owner, err := h.registry.ProductOwner(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.OwnerResponse{ID: id, Owner: owner})
}

// HandleGetHistory processes GET /api/registry/products/{id}/history.
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	entries, err := h.registry.UpdateHistory(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.HistoryResponse{ID: id, Entries: entries})
}

// HandleStatus processes GET /api/registry/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, api.StatusResponse{
		Admin:  h.registry.Admin(),
		Paused: h.registry.IsPaused(),
		NextID: h.registry.NextID(),
	})
}

// HandleNextID processes GET /api/registry/next-id.
func (h *Handler) HandleNextID(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interfaces.ProductID{"next_id": h.registry.NextID()})
}

// HandleAdmin processes GET /api/registry/admin.
func (h *Handler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interfaces.Identity{"admin": h.registry.Admin()})
}

// HandlePausedQuery processes GET /api/registry/paused.
func (h *Handler) HandlePausedQuery(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]bool{"paused": h.registry.IsPaused()})
}

// HandleIsRegistrar processes GET /api/registry/registrars/{address}.
func (h *Handler) HandleIsRegistrar(w http.ResponseWriter, r *http.Request) {
	id, err := interfaces.NewIdentityFromHex(chi.URLParam(r, "address"))
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, api.RegistrarResponse{
		Identity:  id,
		Registrar: h.registry.IsRegistrar(id),
	})
}

// HandleTransferAdmin processes POST /api/admin/transfer.
func (h *Handler) HandleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	body, caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req api.TransferAdminRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	newAdmin, err := interfaces.NewIdentityFromHex(req.NewAdmin)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	h.advanceSequence(r)
	if err := h.registry.TransferAdmin(caller, newAdmin); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

// HandleSetPaused processes POST /api/admin/pause.
func (h *Handler) HandleSetPaused(w http.ResponseWriter, r *http.Request) {
	body, caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req api.SetPausedRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	h.advanceSequence(r)
	if err := h.registry.SetPaused(caller, req.Paused); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"paused": req.Paused})
}

// HandleAddRegistrar processes POST /api/admin/registrars.
func (h *Handler) HandleAddRegistrar(w http.ResponseWriter, r *http.Request) {
	body, caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req api.AddRegistrarRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	registrar, err := interfaces.NewIdentityFromHex(req.Registrar)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	h.advanceSequence(r)
	if err := h.registry.AddRegistrar(caller, registrar); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

// HandleRemoveRegistrar processes DELETE /api/admin/registrars/{address}.
func (h *Handler) HandleRemoveRegistrar(w http.ResponseWriter, r *http.Request) {
	body, caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	_ = body
	registrar, err := interfaces.NewIdentityFromHex(chi.URLParam(r, "address"))
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	h.advanceSequence(r)
	if err := h.registry.RemoveRegistrar(caller, registrar); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// HandleSnapshot processes POST /api/admin/snapshot: it persists a snapshot
// to the configured store. Admin only.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	body, caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	_ = body
	if caller != h.registry.Admin() {
		h.writeError(w, interfaces.ErrNotAuthorized)
		return
	}
	if h.snapshots == nil || h.snapshotter == nil {
		h.badRequest(w, "no snapshot store configured")
		return
	}

	id, err := h.snapshots.Save(r.Context(), h.snapshotter.Snapshot())
	if err != nil {
		h.log.Error("failed to save snapshot", "err", err)
		h.writeJSON(w, http.StatusBadGateway, api.ErrorResponse{
			Code:  api.CodeInternal,
			Error: "snapshot save failed",
		})
		return
	}
	metrics.SnapshotsSaved.Inc()
	h.writeJSON(w, http.StatusOK, api.SnapshotResponse{
		SnapshotID: id,
		Backend:    h.snapshots.Name(),
	})
}

// authenticate reads the request body and resolves the caller identity,
// writing the error response itself on failure.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) ([]byte, interfaces.Identity, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.badRequest(w, "failed to read request body")
		return nil, interfaces.Identity{}, false
	}
	caller, err := h.callerIdentity(r, body)
	if err != nil {
		h.log.Debug("caller authentication failed", "err", err)
		h.writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{
			Code:  api.CodeNotAuthorized,
			Error: err.Error(),
		})
		return nil, interfaces.Identity{}, false
	}
	return body, caller, true
}

// advanceSequence moves the sequence counter for one mutating call: forward
// by one locally, or up to an externally supplied height.
func (h *Handler) advanceSequence(r *http.Request) {
	if h.externalSequence {
		if raw := r.Header.Get(api.SequenceHeader); raw != "" {
			if height, err := strconv.ParseUint(raw, 10, 64); err == nil {
				h.sequencer.Observe(height)
				return
			}
			h.log.Debug("ignoring malformed sequence header", "value", raw)
		}
	}
	h.sequencer.Advance()
}

// productID parses the id path parameter.
func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (interfaces.ProductID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		h.badRequest(w, fmt.Sprintf("invalid product id %q", raw))
		return 0, false
	}
	return interfaces.ProductID(id), true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", "err", err)
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Code: api.CodeBadRequest, Error: msg})
}

// writeError maps a typed registry error to its HTTP status and wire code.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, interfaces.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, interfaces.ErrPaused):
		status = http.StatusServiceUnavailable
	case errors.Is(err, interfaces.ErrInvalidID):
		status = http.StatusNotFound
	case errors.Is(err, interfaces.ErrInvalidStringLength),
		errors.Is(err, interfaces.ErrInvalidQuality),
		errors.Is(err, interfaces.ErrMaxCertsExceeded),
		errors.Is(err, interfaces.ErrZeroAddress),
		errors.Is(err, interfaces.ErrNoChanges),
		errors.Is(err, interfaces.ErrInvalidOptional):
		status = http.StatusBadRequest
	case errors.Is(err, interfaces.ErrHistoryFull):
		status = http.StatusConflict
	}
	h.writeJSON(w, status, api.ErrorResponse{Code: api.ErrorCode(err), Error: err.Error()})
}
