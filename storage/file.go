package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

const latestPointerFile = "LATEST"

// FileStore persists snapshots on the local filesystem. Each snapshot lives
// under snapshots/<id>; a LATEST file tracks the most recent id.
type FileStore struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileStore creates a file-backed snapshot store rooted at baseDir.
func NewFileStore(baseDir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "snapshots"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileStore{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Save writes the snapshot and updates the LATEST pointer.
func (s *FileStore) Save(ctx context.Context, snap *interfaces.RegistrySnapshot) (interfaces.SnapshotID, error) {
	data, id, err := encodeSnapshot(snap)
	if err != nil {
		return "", err
	}

	path := s.snapshotPath(id)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.baseDir, latestPointerFile), []byte(id), 0o644); err != nil {
		return "", fmt.Errorf("failed to update latest pointer: %w", err)
	}

	s.log.Debug("snapshot saved to file",
		slog.String("path", path),
		slog.Int("size", len(data)))
	return id, nil
}

// Load reads a snapshot by id. Returns ErrSnapshotNotFound for unknown ids.
func (s *FileStore) Load(ctx context.Context, id interfaces.SnapshotID) (*interfaces.RegistrySnapshot, error) {
	data, err := os.ReadFile(s.snapshotPath(id))
	if os.IsNotExist(err) {
		return nil, interfaces.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

// Latest returns the id recorded in the LATEST pointer file.
func (s *FileStore) Latest(ctx context.Context) (interfaces.SnapshotID, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, latestPointerFile))
	if os.IsNotExist(err) {
		return "", interfaces.ErrSnapshotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read latest pointer: %w", err)
	}
	return interfaces.SnapshotID(strings.TrimSpace(string(data))), nil
}

// Available reports whether the base directory exists.
func (s *FileStore) Available(ctx context.Context) bool {
	_, err := os.Stat(s.baseDir)
	return err == nil
}

// Name returns a unique identifier for this store.
func (s *FileStore) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(s.baseDir))
}

// LocationURI returns the URI that identifies this store.
func (s *FileStore) LocationURI() string {
	return s.locationURI
}

func (s *FileStore) snapshotPath(id interfaces.SnapshotID) string {
	return filepath.Join(s.baseDir, "snapshots", string(id))
}
