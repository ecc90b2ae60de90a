package registry

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

var (
	testAdmin     = interfaces.Identity{0x01}
	testRegistrar = interfaces.Identity{0x02}
	testOwner     = interfaces.Identity{0x03}
	testStranger  = interfaces.Identity{0x04}
)

// captureSink records every published event for assertions.
type captureSink struct {
	events []interfaces.Event
}

func (s *captureSink) Publish(ev interfaces.Event) {
	s.events = append(s.events, ev)
}

func (s *captureSink) last() interfaces.Event {
	return s.events[len(s.events)-1]
}

func newTestRegistry(t *testing.T) (*Registry, *Sequencer, *captureSink) {
	t.Helper()
	seq := NewSequencer(0)
	sink := &captureSink{}
	reg, err := New(testAdmin, seq, sink, nil)
	require.NoError(t, err)
	require.NoError(t, reg.AddRegistrar(testAdmin, testRegistrar))
	return reg, seq, sink
}

func registerTestProduct(t *testing.T, reg *Registry) interfaces.ProductID {
	t.Helper()
	id, err := reg.Register(testOwner, "BATCH-001", "Valle de Colchagua", 87, []string{"organic"})
	require.NoError(t, err)
	return id
}

func TestNew_RejectsZeroAdmin(t *testing.T) {
	_, err := New(interfaces.Identity{}, NewSequencer(0), nil, nil)
	assert.ErrorIs(t, err, interfaces.ErrZeroAddress)
}

func TestRegister_AssignsDenseIDs(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	for want := interfaces.ProductID(1); want <= 3; want++ {
		assert.Equal(t, want, reg.NextID())
		id, err := reg.Register(testRegistrar, fmt.Sprintf("BATCH-%03d", want), "Kenya", 70, nil)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	assert.Equal(t, interfaces.ProductID(4), reg.NextID())
}

func TestRegister_CallerBecomesOwner(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	// Owner role is granted registration rights for this test.
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)

	owner, err := reg.ProductOwner(id)
	require.NoError(t, err)
	assert.Equal(t, testOwner, owner)

	history, err := reg.UpdateHistory(id)
	require.NoError(t, err)
	assert.Empty(t, history, "fresh product should have an empty trail")
}

func TestRegister_AdminIsImplicitRegistrar(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	_, err := reg.Register(testAdmin, "BATCH-001", "Oaxaca", 90, nil)
	assert.NoError(t, err)
}

func TestRegister_StrangerRejected(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	_, err := reg.Register(testStranger, "BATCH-001", "Oaxaca", 90, nil)
	assert.ErrorIs(t, err, interfaces.ErrNotAuthorized)
	assert.Equal(t, interfaces.ProductID(1), reg.NextID(), "rejected registration must not consume an id")
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		batchID string
		origin  string
		quality int
		certs   []string
		wantErr error
	}{
		{"batch id too long", strings.Repeat("x", interfaces.MaxBatchIDLen+1), "Kenya", 70, nil, interfaces.ErrInvalidStringLength},
		{"batch id at limit", strings.Repeat("x", interfaces.MaxBatchIDLen), "Kenya", 70, nil, nil},
		{"origin too long", "B-1", strings.Repeat("x", interfaces.MaxOriginLen+1), 70, nil, interfaces.ErrInvalidStringLength},
		{"quality negative", "B-1", "Kenya", -1, nil, interfaces.ErrInvalidQuality},
		{"quality above max", "B-1", "Kenya", interfaces.MaxQuality + 1, nil, interfaces.ErrInvalidQuality},
		{"quality at bounds", "B-1", "Kenya", interfaces.MaxQuality, nil, nil},
		{"too many certifications", "B-1", "Kenya", 70, make([]string, interfaces.MaxCertifications+1), interfaces.ErrMaxCertsExceeded},
		{"certification too long", "B-1", "Kenya", 70, []string{strings.Repeat("c", interfaces.MaxCertificationLen+1)}, interfaces.ErrInvalidStringLength},
		{"empty strings accepted", "", "", 0, []string{""}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg, _, _ := newTestRegistry(t)
			_, err := reg.Register(testRegistrar, tc.batchID, tc.origin, tc.quality, tc.certs)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegister_PausedRejected(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.SetPaused(testAdmin, true))

	_, err := reg.Register(testRegistrar, "B-1", "Kenya", 70, nil)
	assert.ErrorIs(t, err, interfaces.ErrPaused)

	require.NoError(t, reg.SetPaused(testAdmin, false))
	_, err = reg.Register(testRegistrar, "B-1", "Kenya", 70, nil)
	assert.NoError(t, err)
}

func TestRegister_StampsSequence(t *testing.T) {
	seq := NewSequencer(0)
	seq.Observe(100)
	reg, err := New(testAdmin, seq, nil, nil)
	require.NoError(t, err)

	id, err := reg.Register(testAdmin, "B-1", "Kenya", 70, nil)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ProductID(1), id)

	product, err := reg.Product(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), product.RegisteredAt)
	assert.Equal(t, uint64(100), product.LastUpdatedAt)
}

func TestRegister_EndToEnd(t *testing.T) {
	seq := NewSequencer(0)
	seq.Observe(100)
	reg, err := New(testAdmin, seq, nil, nil)
	require.NoError(t, err)

	id, err := reg.Register(testAdmin, "BATCH001", "Farm XYZ", 85, []string{"Organic", "FairTrade"})
	require.NoError(t, err)
	assert.Equal(t, interfaces.ProductID(1), id)

	product, err := reg.Product(id)
	require.NoError(t, err)
	assert.Equal(t, interfaces.Product{
		BatchID:        "BATCH001",
		Origin:         "Farm XYZ",
		Quality:        85,
		Certifications: []string{"Organic", "FairTrade"},
		RegisteredAt:   100,
		LastUpdatedAt:  100,
	}, product)

	owner, err := reg.ProductOwner(id)
	require.NoError(t, err)
	assert.Equal(t, testAdmin, owner)

	history, err := reg.UpdateHistory(id)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestUpdate_SingleField(t *testing.T) {
	reg, seq, _ := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)

	seq.Advance()
	quality := 95
	require.NoError(t, reg.Update(testOwner, id, interfaces.UpdatePatch{Quality: &quality}))

	product, err := reg.Product(id)
	require.NoError(t, err)
	assert.Equal(t, 95, product.Quality)
	assert.Equal(t, "BATCH-001", product.BatchID, "absent fields must not change")
	assert.Equal(t, uint64(0), product.RegisteredAt)
	assert.Equal(t, uint64(1), product.LastUpdatedAt)

	history, err := reg.UpdateHistory(id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, interfaces.FieldQuality, history[0].Field)
	assert.Equal(t, "87", history[0].OldValue)
	assert.Equal(t, "95", history[0].NewValue)
	assert.Equal(t, testOwner, history[0].Updater)
	assert.Equal(t, uint64(1), history[0].Timestamp)
}

func TestUpdate_MultiFieldOrderAndOldValues(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)

	batchID := "BATCH-002"
	origin := "Yirgacheffe"
	quality := 91
	certs := []string{"organic", "fair-trade"}
	require.NoError(t, reg.Update(testOwner, id, interfaces.UpdatePatch{
		BatchID:        &batchID,
		Origin:         &origin,
		Quality:        &quality,
		Certifications: &certs,
	}))

	history, err := reg.UpdateHistory(id)
	require.NoError(t, err)
	require.Len(t, history, 4, "one entry per changed field")

	// Entries appear in fixed field order with old values taken from the
	// pre-call record.
	assert.Equal(t, interfaces.FieldBatchID, history[0].Field)
	assert.Equal(t, "BATCH-001", history[0].OldValue)
	assert.Equal(t, interfaces.FieldOrigin, history[1].Field)
	assert.Equal(t, "Valle de Colchagua", history[1].OldValue)
	assert.Equal(t, interfaces.FieldQuality, history[2].Field)
	assert.Equal(t, "87", history[2].OldValue)
	assert.Equal(t, interfaces.FieldCertifications, history[3].Field)
	assert.Equal(t, "organic", history[3].OldValue)
	assert.Equal(t, "organic,fair-trade", history[3].NewValue)
}

func TestUpdate_EmptyPatchRejected(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)

	err := reg.Update(testOwner, id, interfaces.UpdatePatch{})
	assert.ErrorIs(t, err, interfaces.ErrNoChanges)
}

func TestUpdate_UnknownIDRejected(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	quality := 50
	err := reg.Update(testOwner, 42, interfaces.UpdatePatch{Quality: &quality})
	assert.ErrorIs(t, err, interfaces.ErrInvalidID)
}

func TestUpdate_Authorization(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)

	quality := 50
	patch := interfaces.UpdatePatch{Quality: &quality}

	assert.ErrorIs(t, reg.Update(testStranger, id, patch), interfaces.ErrNotAuthorized)
	assert.ErrorIs(t, reg.Update(testRegistrar, id, patch), interfaces.ErrNotAuthorized,
		"registrar role grants no update rights over others' products")
	assert.NoError(t, reg.Update(testAdmin, id, patch), "admin may update any product")
	assert.NoError(t, reg.Update(testOwner, id, patch))
}

func TestUpdate_InvalidFieldLeavesStateUntouched(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)

	batchID := "BATCH-002"
	quality := interfaces.MaxQuality + 1
	err := reg.Update(testOwner, id, interfaces.UpdatePatch{
		BatchID: &batchID,
		Quality: &quality,
	})
	assert.ErrorIs(t, err, interfaces.ErrInvalidQuality)

	// The valid batch-id mutation must not have been applied.
	product, err := reg.Product(id)
	require.NoError(t, err)
	assert.Equal(t, "BATCH-001", product.BatchID)
	assert.Equal(t, 87, product.Quality)

	history, err := reg.UpdateHistory(id)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestUpdate_HistoryCap(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)

	for i := 0; i < interfaces.MaxHistoryEntries; i++ {
		quality := i % (interfaces.MaxQuality + 1)
		require.NoError(t, reg.Update(testOwner, id, interfaces.UpdatePatch{Quality: &quality}))
	}

	history, err := reg.UpdateHistory(id)
	require.NoError(t, err)
	require.Len(t, history, interfaces.MaxHistoryEntries)

	// The 51st entry is rejected and the record stays as it was.
	before, err := reg.Product(id)
	require.NoError(t, err)

	quality := 99
	err = reg.Update(testOwner, id, interfaces.UpdatePatch{Quality: &quality})
	assert.ErrorIs(t, err, interfaces.ErrHistoryFull)

	after, err := reg.Product(id)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	history, err = reg.UpdateHistory(id)
	require.NoError(t, err)
	assert.Len(t, history, interfaces.MaxHistoryEntries, "no partial append past the cap")
}

func TestUpdate_MultiFieldPatchExceedingRemainingCapacity(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)

	// Fill to one below the cap, then try a two-field patch.
	for i := 0; i < interfaces.MaxHistoryEntries-1; i++ {
		quality := i % (interfaces.MaxQuality + 1)
		require.NoError(t, reg.Update(testOwner, id, interfaces.UpdatePatch{Quality: &quality}))
	}

	batchID := "BATCH-002"
	origin := "Yirgacheffe"
	err := reg.Update(testOwner, id, interfaces.UpdatePatch{BatchID: &batchID, Origin: &origin})
	assert.ErrorIs(t, err, interfaces.ErrHistoryFull)

	product, err := reg.Product(id)
	require.NoError(t, err)
	assert.Equal(t, "BATCH-001", product.BatchID)

	// A one-field patch still fits.
	assert.NoError(t, reg.Update(testOwner, id, interfaces.UpdatePatch{BatchID: &batchID}))
}

func TestUpdate_PausedRejected(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)
	require.NoError(t, reg.SetPaused(testAdmin, true))

	quality := 50
	err := reg.Update(testOwner, id, interfaces.UpdatePatch{Quality: &quality})
	assert.ErrorIs(t, err, interfaces.ErrPaused)
}

func TestTransferOwnership(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)

	require.NoError(t, reg.TransferOwnership(testOwner, id, testStranger))

	owner, err := reg.ProductOwner(id)
	require.NoError(t, err)
	assert.Equal(t, testStranger, owner)

	// The previous owner has lost all rights.
	err = reg.TransferOwnership(testOwner, id, testOwner)
	assert.ErrorIs(t, err, interfaces.ErrNotAuthorized)
}

func TestTransferOwnership_AdminHasNoSpecialRight(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)

	err := reg.TransferOwnership(testAdmin, id, testStranger)
	assert.ErrorIs(t, err, interfaces.ErrNotAuthorized)
}

func TestTransferOwnership_ZeroAddressRejected(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)

	err := reg.TransferOwnership(testOwner, id, interfaces.Identity{})
	assert.ErrorIs(t, err, interfaces.ErrZeroAddress)

	owner, err := reg.ProductOwner(id)
	require.NoError(t, err)
	assert.Equal(t, testOwner, owner)
}

func TestTransferOwnership_UnknownIDRejected(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	err := reg.TransferOwnership(testOwner, 42, testStranger)
	assert.ErrorIs(t, err, interfaces.ErrInvalidID)
}

func TestTransferAdmin(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	assert.ErrorIs(t, reg.TransferAdmin(testStranger, testStranger), interfaces.ErrNotAuthorized)
	assert.ErrorIs(t, reg.TransferAdmin(testAdmin, interfaces.Identity{}), interfaces.ErrZeroAddress)

	require.NoError(t, reg.TransferAdmin(testAdmin, testStranger))
	assert.Equal(t, testStranger, reg.Admin())

	// The old admin has no residual rights.
	assert.ErrorIs(t, reg.SetPaused(testAdmin, true), interfaces.ErrNotAuthorized)
	assert.NoError(t, reg.SetPaused(testStranger, true))
}

func TestPauseControlsWorkWhilePaused(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	require.NoError(t, reg.SetPaused(testAdmin, true))
	assert.True(t, reg.IsPaused())

	// Admin role management is never blocked by the pause switch.
	assert.NoError(t, reg.AddRegistrar(testAdmin, testStranger))
	assert.NoError(t, reg.RemoveRegistrar(testAdmin, testStranger))
	assert.NoError(t, reg.TransferAdmin(testAdmin, testStranger))
	assert.NoError(t, reg.SetPaused(testStranger, false))
	assert.False(t, reg.IsPaused())
}

func TestRegistrarManagement(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	assert.True(t, reg.IsRegistrar(testRegistrar))
	assert.True(t, reg.IsRegistrar(testAdmin), "admin is implicitly a registrar")
	assert.False(t, reg.IsRegistrar(testStranger))

	assert.ErrorIs(t, reg.AddRegistrar(testRegistrar, testStranger), interfaces.ErrNotAuthorized)
	assert.ErrorIs(t, reg.AddRegistrar(testAdmin, interfaces.Identity{}), interfaces.ErrZeroAddress)

	require.NoError(t, reg.RemoveRegistrar(testAdmin, testRegistrar))
	assert.False(t, reg.IsRegistrar(testRegistrar))

	// Removing a non-member is fine.
	assert.NoError(t, reg.RemoveRegistrar(testAdmin, testRegistrar))
}

func TestProduct_ReturnsCopy(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))
	id := registerTestProduct(t, reg)

	product, err := reg.Product(id)
	require.NoError(t, err)
	product.Certifications[0] = "tampered"

	fresh, err := reg.Product(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"organic"}, fresh.Certifications)
}

func TestEvents(t *testing.T) {
	reg, seq, sink := newTestRegistry(t)
	require.NoError(t, reg.AddRegistrar(testAdmin, testOwner))

	seq.Observe(7)
	id := registerTestProduct(t, reg)

	ev := sink.last()
	assert.Equal(t, interfaces.EventProductRegistered, ev.Name)
	assert.Equal(t, uint64(7), ev.Sequence)
	assert.Equal(t, testOwner, ev.Caller)
	assert.Equal(t, id, ev.ProductID)
	assert.NotEmpty(t, ev.ID)

	quality := 95
	require.NoError(t, reg.Update(testOwner, id, interfaces.UpdatePatch{Quality: &quality}))
	ev = sink.last()
	assert.Equal(t, interfaces.EventProductUpdated, ev.Name)
	assert.Equal(t, []interfaces.FieldName{interfaces.FieldQuality}, ev.Fields)

	require.NoError(t, reg.TransferOwnership(testOwner, id, testStranger))
	assert.Equal(t, interfaces.EventOwnershipTransferred, sink.last().Name)

	// Failed operations publish nothing.
	published := len(sink.events)
	_, err := reg.Register(testStranger, "B-1", "Kenya", 70, nil)
	require.Error(t, err)
	assert.Len(t, sink.events, published)
}
