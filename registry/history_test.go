package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

func TestHistoryLog_AppendAndOrder(t *testing.T) {
	log := NewHistoryLog()
	log.Init(1)
	assert.Equal(t, 0, log.Len(1))

	require.NoError(t, log.Append(1,
		interfaces.HistoryEntry{Field: interfaces.FieldBatchID, NewValue: "a"},
		interfaces.HistoryEntry{Field: interfaces.FieldOrigin, NewValue: "b"},
	))

	entries := log.Entries(1)
	require.Len(t, entries, 2)
	assert.Equal(t, interfaces.FieldBatchID, entries[0].Field)
	assert.Equal(t, interfaces.FieldOrigin, entries[1].Field)
}

func TestHistoryLog_Cap(t *testing.T) {
	log := NewHistoryLog()
	log.Init(1)

	for i := 0; i < interfaces.MaxHistoryEntries; i++ {
		require.NoError(t, log.Append(1, interfaces.HistoryEntry{Field: interfaces.FieldQuality}))
	}
	assert.Equal(t, interfaces.MaxHistoryEntries, log.Len(1))
	assert.False(t, log.CanAppend(1, 1))

	err := log.Append(1, interfaces.HistoryEntry{Field: interfaces.FieldQuality})
	assert.ErrorIs(t, err, interfaces.ErrHistoryFull)
	assert.Equal(t, interfaces.MaxHistoryEntries, log.Len(1))
}

func TestHistoryLog_CanAppendBatch(t *testing.T) {
	log := NewHistoryLog()
	log.Init(1)

	for i := 0; i < interfaces.MaxHistoryEntries-1; i++ {
		require.NoError(t, log.Append(1, interfaces.HistoryEntry{}))
	}
	assert.True(t, log.CanAppend(1, 1))
	assert.False(t, log.CanAppend(1, 2))

	// A batch past the cap is rejected wholesale, not truncated.
	err := log.Append(1, interfaces.HistoryEntry{}, interfaces.HistoryEntry{})
	assert.ErrorIs(t, err, interfaces.ErrHistoryFull)
	assert.Equal(t, interfaces.MaxHistoryEntries-1, log.Len(1))
}

func TestHistoryLog_EntriesReturnsCopy(t *testing.T) {
	log := NewHistoryLog()
	log.Init(1)
	require.NoError(t, log.Append(1, interfaces.HistoryEntry{NewValue: "original"}))

	entries := log.Entries(1)
	entries[0].NewValue = "tampered"

	assert.Equal(t, "original", log.Entries(1)[0].NewValue)
}

func TestHistoryLog_InitIsIdempotent(t *testing.T) {
	log := NewHistoryLog()
	log.Init(1)
	require.NoError(t, log.Append(1, interfaces.HistoryEntry{}))

	log.Init(1)
	assert.Equal(t, 1, log.Len(1), "re-init must not clear an existing trail")
}
