package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// StoreFactory creates snapshot stores from location URIs.
type StoreFactory struct {
	log *slog.Logger
}

// NewStoreFactory creates a factory instance.
func NewStoreFactory(log *slog.Logger) *StoreFactory {
	return &StoreFactory{log: log}
}

// SnapshotStoreFor creates a snapshot store from a location URI.
// The URI format is [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - file://  - Local filesystem storage
//   - s3://    - Amazon S3 or compatible object storage
//   - ipfs://  - IPFS distributed storage (no latest pointer)
//   - vault:// - HashiCorp Vault KV v2
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (f *StoreFactory) SnapshotStoreFor(locationURI string) (interfaces.SnapshotStore, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("invalid location URI: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return f.createFileStore(u)
	case "s3":
		return f.createS3Store(u)
	case "ipfs":
		return f.createIPFSStore(u)
	case "vault":
		return f.createVaultStore(u)
	default:
		return nil, fmt.Errorf("unsupported snapshot store scheme: %s", u.Scheme)
	}
}

// createFileStore builds a filesystem store.
// URI format: file:///absolute/path or file://./relative/path
func (f *StoreFactory) createFileStore(u *url.URL) (interfaces.SnapshotStore, error) {
	f.log.Debug("creating file snapshot store", slog.String("uri", u.String()))

	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return nil, fmt.Errorf("empty path in file URI: %s", u.String())
	}
	return NewFileStore(path, f.log)
}

// createS3Store builds an S3 store.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket/prefix?region=us-west-2&endpoint=minio.local
func (f *StoreFactory) createS3Store(u *url.URL) (interfaces.SnapshotStore, error) {
	f.log.Debug("creating S3 snapshot store", slog.String("uri", u.String()))

	bucketName := u.Host
	prefix := strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1"
	}
	endpoint := query.Get("endpoint")

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
	}

	return NewS3Store(bucketName, prefix, region, endpoint, accessKey, secretKey, f.log)
}

// createIPFSStore builds an IPFS store.
// URI format: ipfs://host:port
func (f *StoreFactory) createIPFSStore(u *url.URL) (interfaces.SnapshotStore, error) {
	f.log.Debug("creating IPFS snapshot store", slog.String("uri", u.String()))

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "5001"
	}
	return NewIPFSStore(host, port, f.log)
}

// createVaultStore builds a Vault KV store.
// URI format: vault://host:port/data-path?mount=secret&token=...&tls=true
func (f *StoreFactory) createVaultStore(u *url.URL) (interfaces.SnapshotStore, error) {
	f.log.Debug("creating vault snapshot store", slog.String("uri", u.String()))

	query := u.Query()
	scheme := "http"
	if query.Get("tls") == "true" {
		scheme = "https"
	}
	address := fmt.Sprintf("%s://%s", scheme, u.Host)
	dataPath := strings.Trim(u.Path, "/")
	if dataPath == "" {
		dataPath = "authentieats/registry"
	}
	return NewVaultStore(address, query.Get("token"), query.Get("mount"), dataPath, f.log)
}
