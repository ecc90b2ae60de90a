package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// IPFSStore persists snapshots on an IPFS node. Storage is content-addressed:
// the snapshot id is the CID returned by the node, and there is no mutable
// latest pointer — restores require an explicit id.
type IPFSStore struct {
	shell       *shell.Shell
	host        string
	port        string
	log         *slog.Logger
	locationURI string
}

// NewIPFSStore creates an IPFS snapshot store connected to host:port.
func NewIPFSStore(host, port string, log *slog.Logger) (*IPFSStore, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)
	return &IPFSStore{
		shell:       shell.NewShell(apiURL),
		host:        host,
		port:        port,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s", apiURL),
	}, nil
}

// Save adds the encoded snapshot to IPFS and returns its CID.
func (s *IPFSStore) Save(ctx context.Context, snap *interfaces.RegistrySnapshot) (interfaces.SnapshotID, error) {
	data, _, err := encodeSnapshot(snap)
	if err != nil {
		return "", err
	}

	cid, err := s.shell.Add(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to add snapshot to IPFS: %w", err)
	}

	s.log.Debug("snapshot saved to IPFS",
		slog.String("cid", cid),
		slog.Int("size", len(data)))
	return interfaces.SnapshotID(cid), nil
}

// Load fetches a snapshot by CID.
func (s *IPFSStore) Load(ctx context.Context, id interfaces.SnapshotID) (*interfaces.RegistrySnapshot, error) {
	reader, err := s.shell.Cat(string(id))
	if err != nil {
		if strings.Contains(err.Error(), "invalid path") || strings.Contains(err.Error(), "no link named") {
			return nil, interfaces.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to fetch snapshot from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot from IPFS: %w", err)
	}
	return decodeSnapshot(data)
}

// Latest is unsupported: IPFS content addressing has no mutable pointer.
func (s *IPFSStore) Latest(ctx context.Context) (interfaces.SnapshotID, error) {
	return "", interfaces.ErrLatestUnsupported
}

// Available reports whether the IPFS node answers.
func (s *IPFSStore) Available(ctx context.Context) bool {
	return s.shell.IsUp()
}

// Name returns a unique identifier for this store.
func (s *IPFSStore) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", s.host, s.port)
}

// LocationURI returns the URI that identifies this store.
func (s *IPFSStore) LocationURI() string {
	return s.locationURI
}
