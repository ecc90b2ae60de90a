package storage

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// encodeSnapshot serializes a snapshot and derives its hash-addressed id:
// the hex SHA3-256 digest of the encoded bytes. Content-addressed backends
// (IPFS) substitute their own id.
func encodeSnapshot(snap *interfaces.RegistrySnapshot) ([]byte, interfaces.SnapshotID, error) {
	if err := snap.Validate(); err != nil {
		return nil, "", fmt.Errorf("refusing to encode invalid snapshot: %w", err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, "", fmt.Errorf("could not encode snapshot: %w", err)
	}
	digest := sha3.Sum256(data)
	return data, interfaces.SnapshotID(hex.EncodeToString(digest[:])), nil
}

// decodeSnapshot parses and validates stored snapshot bytes.
func decodeSnapshot(data []byte) (*interfaces.RegistrySnapshot, error) {
	var snap interfaces.RegistrySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("could not decode snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("stored snapshot is invalid: %w", err)
	}
	return &snap, nil
}
