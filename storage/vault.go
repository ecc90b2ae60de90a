package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	vault "github.com/hashicorp/vault/api"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// VaultStore persists snapshots in a HashiCorp Vault KV v2 mount. Snapshots
// live under <dataPath>/snapshots/<id>; <dataPath>/latest tracks the most
// recent id.
type VaultStore struct {
	client      *vault.Client
	mountPath   string
	dataPath    string
	log         *slog.Logger
	locationURI string
}

// NewVaultStore creates a Vault snapshot store. An empty token falls back to
// the client's environment configuration (VAULT_TOKEN).
func NewVaultStore(address, token, mountPath, dataPath string, log *slog.Logger) (*VaultStore, error) {
	cfg := vault.DefaultConfig()
	cfg.Address = address

	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	if mountPath == "" {
		mountPath = "secret"
	}
	return &VaultStore{
		client:      client,
		mountPath:   mountPath,
		dataPath:    dataPath,
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", address, mountPath, dataPath),
	}, nil
}

// Save writes the snapshot and updates the latest pointer.
func (s *VaultStore) Save(ctx context.Context, snap *interfaces.RegistrySnapshot) (interfaces.SnapshotID, error) {
	data, id, err := encodeSnapshot(snap)
	if err != nil {
		return "", err
	}

	_, err = s.client.Logical().WriteWithContext(ctx, s.snapshotPath(id), map[string]interface{}{
		"data": map[string]interface{}{
			"snapshot": string(data),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to write snapshot to vault: %w", err)
	}

	_, err = s.client.Logical().WriteWithContext(ctx, s.latestPath(), map[string]interface{}{
		"data": map[string]interface{}{
			"id": string(id),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to update latest pointer in vault: %w", err)
	}

	s.log.Debug("snapshot saved to vault",
		slog.String("path", s.snapshotPath(id)),
		slog.Int("size", len(data)))
	return id, nil
}

// Load fetches a snapshot by id.
func (s *VaultStore) Load(ctx context.Context, id interfaces.SnapshotID) (*interfaces.RegistrySnapshot, error) {
	secret, err := s.client.Logical().ReadWithContext(ctx, s.snapshotPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot from vault: %w", err)
	}
	raw, ok := vaultKVField(secret, "snapshot")
	if !ok {
		return nil, interfaces.ErrSnapshotNotFound
	}
	return decodeSnapshot([]byte(raw))
}

// Latest reads the latest pointer.
func (s *VaultStore) Latest(ctx context.Context) (interfaces.SnapshotID, error) {
	secret, err := s.client.Logical().ReadWithContext(ctx, s.latestPath())
	if err != nil {
		return "", fmt.Errorf("failed to read latest pointer from vault: %w", err)
	}
	id, ok := vaultKVField(secret, "id")
	if !ok {
		return "", interfaces.ErrSnapshotNotFound
	}
	return interfaces.SnapshotID(id), nil
}

// Available reports whether the vault server answers its health endpoint.
func (s *VaultStore) Available(ctx context.Context) bool {
	health, err := s.client.Sys().HealthWithContext(ctx)
	if err != nil {
		s.log.Debug("vault store unavailable", "err", err)
		return false
	}
	return health.Initialized && !health.Sealed
}

// Name returns a unique identifier for this store.
func (s *VaultStore) Name() string {
	return fmt.Sprintf("vault-%s", s.dataPath)
}

// LocationURI returns the URI that identifies this store.
func (s *VaultStore) LocationURI() string {
	return s.locationURI
}

func (s *VaultStore) snapshotPath(id interfaces.SnapshotID) string {
	return path.Join(s.mountPath, "data", s.dataPath, "snapshots", string(id))
}

func (s *VaultStore) latestPath() string {
	return path.Join(s.mountPath, "data", s.dataPath, "latest")
}

// vaultKVField digs a string field out of a KV v2 read response.
func vaultKVField(secret *vault.Secret, field string) (string, bool) {
	if secret == nil || secret.Data == nil {
		return "", false
	}
	inner, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", false
	}
	value, ok := inner[field].(string)
	return value, ok
}
