package registry

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/markeluno8-dev/AuthentiEats/interfaces"
	"github.com/markeluno8-dev/AuthentiEats/metrics"
)

// Registry composes access control, validation, the record store, the
// ownership ledger, and the history log into the public operation surface.
// A single mutex serializes public operations, so every call is one atomic
// unit: all checks run against a stable snapshot before any write.
type Registry struct {
	mu sync.RWMutex

	access  *AccessControl
	records *RecordStore
	owners  *OwnershipLedger
	history *HistoryLog

	seq  interfaces.SequenceSource
	sink interfaces.EventSink
	log  *slog.Logger
}

// New creates a registry with the given admin, sequence source, and event
// sink. The admin must not be the zero address. A nil sink discards events.
func New(admin interfaces.Identity, seq interfaces.SequenceSource, sink interfaces.EventSink, log *slog.Logger) (*Registry, error) {
	access, err := NewAccessControl(admin)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		access:  access,
		records: NewRecordStore(),
		owners:  NewOwnershipLedger(),
		history: NewHistoryLog(),
		seq:     seq,
		sink:    sink,
		log:     log,
	}, nil
}

// TransferAdmin replaces the admin identity. Admin only.
func (r *Registry) TransferAdmin(caller, newAdmin interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.access.TransferAdmin(caller, newAdmin); err != nil {
		return r.fail("transfer_admin", err)
	}
	r.log.Info("admin transferred", "from", caller, "to", newAdmin)
	r.emit(interfaces.Event{
		Name:       interfaces.EventAdminTransferred,
		Caller:     caller,
		Attributes: map[string]string{"new_admin": newAdmin.String()},
	})
	metrics.RecordOperation("transfer_admin", nil)
	return nil
}

// SetPaused sets the pause switch. Admin only. The pause controls themselves
// are never blocked by the switch.
func (r *Registry) SetPaused(caller interfaces.Identity, paused bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.access.SetPaused(caller, paused); err != nil {
		return r.fail("set_paused", err)
	}
	name := interfaces.EventRegistryUnpaused
	if paused {
		name = interfaces.EventRegistryPaused
	}
	r.log.Info("pause switch set", "paused", paused, "caller", caller)
	r.emit(interfaces.Event{Name: name, Caller: caller})
	metrics.RecordOperation("set_paused", nil)
	return nil
}

// AddRegistrar grants registration rights. Admin only.
func (r *Registry) AddRegistrar(caller, registrar interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.access.AddRegistrar(caller, registrar); err != nil {
		return r.fail("add_registrar", err)
	}
	r.emit(interfaces.Event{
		Name:       interfaces.EventRegistrarAdded,
		Caller:     caller,
		Attributes: map[string]string{"registrar": registrar.String()},
	})
	metrics.RecordOperation("add_registrar", nil)
	return nil
}

// RemoveRegistrar revokes registration rights. Admin only; idempotent.
func (r *Registry) RemoveRegistrar(caller, registrar interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.access.RemoveRegistrar(caller, registrar); err != nil {
		return r.fail("remove_registrar", err)
	}
	r.emit(interfaces.Event{
		Name:       interfaces.EventRegistrarRemoved,
		Caller:     caller,
		Attributes: map[string]string{"registrar": registrar.String()},
	})
	metrics.RecordOperation("remove_registrar", nil)
	return nil
}

// Register validates the inputs in fixed order, allocates the next id, and
// stores the record with the caller as owner and an empty history trail.
func (r *Registry) Register(caller interfaces.Identity, batchID, origin string, quality int, certifications []string) (interfaces.ProductID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.access.Paused() {
		return 0, r.fail("register", interfaces.ErrPaused)
	}
	if !r.access.IsRegistrar(caller) {
		return 0, r.fail("register", interfaces.ErrNotAuthorized)
	}
	if err := ValidateStringLength(batchID, interfaces.MaxBatchIDLen); err != nil {
		return 0, r.fail("register", err)
	}
	if err := ValidateStringLength(origin, interfaces.MaxOriginLen); err != nil {
		return 0, r.fail("register", err)
	}
	if err := ValidateQuality(quality); err != nil {
		return 0, r.fail("register", err)
	}
	if err := ValidateCertifications(certifications); err != nil {
		return 0, r.fail("register", err)
	}

	now := r.seq.Current()
	id := r.records.Allocate(interfaces.Product{
		BatchID:        batchID,
		Origin:         origin,
		Quality:        quality,
		Certifications: certifications,
		RegisteredAt:   now,
		LastUpdatedAt:  now,
	})
	r.owners.SetOwner(id, caller)
	r.history.Init(id)

	r.log.Info("product registered", "id", id, "owner", caller, "batch_id", batchID, "sequence", now)
	r.emit(interfaces.Event{
		Name:      interfaces.EventProductRegistered,
		Sequence:  now,
		Caller:    caller,
		ProductID: id,
		Attributes: map[string]string{
			"batch_id": batchID,
			"origin":   origin,
		},
	})
	metrics.RecordOperation("register", nil)
	return id, nil
}

// stagedChange is one validated field mutation plus its history entry,
// computed against the pre-call record snapshot.
type stagedChange struct {
	apply func(*interfaces.Product)
	entry interfaces.HistoryEntry
}

// Update applies the present fields of the patch as one atomic unit.
//
// The full pipeline — authorization, per-field validation against the
// pre-call snapshot, and the history capacity check — runs to completion
// before anything is written. A failure at any step leaves the record, the
// owner ledger, and the history log untouched.
func (r *Registry) Update(caller interfaces.Identity, id interfaces.ProductID, patch interfaces.UpdatePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.access.Paused() {
		return r.fail("update", interfaces.ErrPaused)
	}
	rec, ok := r.records.Get(id)
	if !ok {
		return r.fail("update", interfaces.ErrInvalidID)
	}
	owner, _ := r.owners.Owner(id)
	if caller != owner && !r.access.IsAdmin(caller) {
		return r.fail("update", interfaces.ErrNotAuthorized)
	}
	if patch.Empty() {
		return r.fail("update", interfaces.ErrNoChanges)
	}

	now := r.seq.Current()
	staged, err := stageUpdate(rec, patch, caller, now)
	if err != nil {
		return r.fail("update", err)
	}
	if !r.history.CanAppend(id, len(staged)) {
		return r.fail("update", interfaces.ErrHistoryFull)
	}

	// Commit. Nothing below can fail.
	fields := make([]interfaces.FieldName, 0, len(staged))
	entries := make([]interfaces.HistoryEntry, 0, len(staged))
	for _, ch := range staged {
		ch.apply(&rec)
		fields = append(fields, ch.entry.Field)
		entries = append(entries, ch.entry)
	}
	rec.LastUpdatedAt = now
	r.records.Put(id, rec)
	r.history.Append(id, entries...)

	r.log.Info("product updated", "id", id, "caller", caller, "fields", len(fields), "sequence", now)
	r.emit(interfaces.Event{
		Name:      interfaces.EventProductUpdated,
		Sequence:  now,
		Caller:    caller,
		ProductID: id,
		Fields:    fields,
	})
	metrics.RecordOperation("update", nil)
	return nil
}

// stageUpdate runs the apply-if-present pipeline over the pre-call record
// snapshot in fixed field order. Old values are captured from the snapshot,
// so concurrent fields in one call never observe each other.
func stageUpdate(rec interfaces.Product, patch interfaces.UpdatePatch, caller interfaces.Identity, now uint64) ([]stagedChange, error) {
	var staged []stagedChange

	if patch.BatchID != nil {
		v := *patch.BatchID
		if err := ValidateStringLength(v, interfaces.MaxBatchIDLen); err != nil {
			return nil, err
		}
		staged = append(staged, stagedChange{
			apply: func(p *interfaces.Product) { p.BatchID = v },
			entry: interfaces.HistoryEntry{
				Timestamp: now,
				Updater:   caller,
				Field:     interfaces.FieldBatchID,
				OldValue:  rec.BatchID,
				NewValue:  v,
			},
		})
	}
	if patch.Origin != nil {
		v := *patch.Origin
		if err := ValidateStringLength(v, interfaces.MaxOriginLen); err != nil {
			return nil, err
		}
		staged = append(staged, stagedChange{
			apply: func(p *interfaces.Product) { p.Origin = v },
			entry: interfaces.HistoryEntry{
				Timestamp: now,
				Updater:   caller,
				Field:     interfaces.FieldOrigin,
				OldValue:  rec.Origin,
				NewValue:  v,
			},
		})
	}
	if patch.Quality != nil {
		v := *patch.Quality
		if err := ValidateQuality(v); err != nil {
			return nil, err
		}
		staged = append(staged, stagedChange{
			apply: func(p *interfaces.Product) { p.Quality = v },
			entry: interfaces.HistoryEntry{
				Timestamp: now,
				Updater:   caller,
				Field:     interfaces.FieldQuality,
				OldValue:  strconv.Itoa(rec.Quality),
				NewValue:  strconv.Itoa(v),
			},
		})
	}
	if patch.Certifications != nil {
		v := append([]string(nil), (*patch.Certifications)...)
		if err := ValidateCertifications(v); err != nil {
			return nil, err
		}
		staged = append(staged, stagedChange{
			apply: func(p *interfaces.Product) { p.Certifications = v },
			entry: interfaces.HistoryEntry{
				Timestamp: now,
				Updater:   caller,
				Field:     interfaces.FieldCertifications,
				OldValue:  strings.Join(rec.Certifications, ","),
				NewValue:  strings.Join(v, ","),
			},
		})
	}
	return staged, nil
}

// TransferOwnership reassigns the product to newOwner. Only the current
// owner may transfer — the admin holds no special right here.
func (r *Registry) TransferOwnership(caller interfaces.Identity, id interfaces.ProductID, newOwner interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.access.Paused() {
		return r.fail("transfer_ownership", interfaces.ErrPaused)
	}
	owner, ok := r.owners.Owner(id)
	if !ok {
		return r.fail("transfer_ownership", interfaces.ErrInvalidID)
	}
	if caller != owner {
		return r.fail("transfer_ownership", interfaces.ErrNotAuthorized)
	}
	if newOwner.IsZero() {
		return r.fail("transfer_ownership", interfaces.ErrZeroAddress)
	}

	r.owners.SetOwner(id, newOwner)
	now := r.seq.Current()
	r.log.Info("ownership transferred", "id", id, "from", caller, "to", newOwner)
	r.emit(interfaces.Event{
		Name:       interfaces.EventOwnershipTransferred,
		Sequence:   now,
		Caller:     caller,
		ProductID:  id,
		Attributes: map[string]string{"new_owner": newOwner.String()},
	})
	metrics.RecordOperation("transfer_ownership", nil)
	return nil
}

// Product returns a copy of the product record.
func (r *Registry) Product(id interfaces.ProductID) (interfaces.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.records.Get(id)
	if !ok {
		return interfaces.Product{}, interfaces.ErrInvalidID
	}
	return p, nil
}

// ProductOwner returns the current owner of the product.
func (r *Registry) ProductOwner(id interfaces.ProductID) (interfaces.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.owners.Owner(id)
	if !ok {
		return interfaces.Identity{}, interfaces.ErrInvalidID
	}
	return owner, nil
}

// UpdateHistory returns the product's audit trail in append order.
func (r *Registry) UpdateHistory(id interfaces.ProductID) ([]interfaces.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.records.Exists(id) {
		return nil, interfaces.ErrInvalidID
	}
	return r.history.Entries(id), nil
}

// NextID returns the id the next registration will receive.
func (r *Registry) NextID() interfaces.ProductID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records.NextID()
}

// Admin returns the current admin identity.
func (r *Registry) Admin() interfaces.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.access.Admin()
}

// IsPaused reports the pause switch.
func (r *Registry) IsPaused() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.access.Paused()
}

// IsRegistrar reports whether the identity may register products.
func (r *Registry) IsRegistrar(id interfaces.Identity) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.access.IsRegistrar(id)
}

// emit publishes an event with a fresh id, if a sink is configured.
func (r *Registry) emit(ev interfaces.Event) {
	if r.sink == nil {
		return
	}
	ev.ID = uuid.NewString()
	if ev.Sequence == 0 {
		ev.Sequence = r.seq.Current()
	}
	r.sink.Publish(ev)
	metrics.EventsEmitted.Inc()
}

// fail records a rejected operation and returns the error unchanged.
func (r *Registry) fail(op string, err error) error {
	metrics.RecordOperation(op, err)
	return err
}
