package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// S3Store persists snapshots in Amazon S3 or a compatible object store.
// Snapshots live under <prefix>/snapshots/<id>; a <prefix>/LATEST object
// tracks the most recent id.
type S3Store struct {
	client      *s3.S3
	bucketName  string
	prefix      string
	log         *slog.Logger
	locationURI string
}

// NewS3Store creates an S3 snapshot store. Credentials are optional for
// public read-only buckets; writes require them.
func NewS3Store(bucketName, prefix, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*S3Store, error) {
	cfg := aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	} else {
		log.Warn("no S3 credentials provided, snapshot writes may fail")
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	uri := fmt.Sprintf("s3://%s/%s?region=%s", bucketName, prefix, region)
	return &S3Store{
		client:      s3.New(sess),
		bucketName:  bucketName,
		prefix:      strings.TrimSuffix(prefix, "/"),
		log:         log,
		locationURI: uri,
	}, nil
}

// Save uploads the snapshot and updates the LATEST pointer object.
func (s *S3Store) Save(ctx context.Context, snap *interfaces.RegistrySnapshot) (interfaces.SnapshotID, error) {
	data, id, err := encodeSnapshot(snap)
	if err != nil {
		return "", err
	}

	key := s.snapshotKey(id)
	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(s.latestKey()),
		Body:        bytes.NewReader([]byte(id)),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to update latest pointer: %w", err)
	}

	s.log.Debug("snapshot saved to S3",
		slog.String("bucket", s.bucketName),
		slog.String("key", key),
		slog.Int("size", len(data)))
	return id, nil
}

// Load fetches a snapshot object by id.
func (s *S3Store) Load(ctx context.Context, id interfaces.SnapshotID) (*interfaces.RegistrySnapshot, error) {
	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.snapshotKey(id)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, interfaces.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}
	return decodeSnapshot(data)
}

// Latest reads the LATEST pointer object.
func (s *S3Store) Latest(ctx context.Context) (interfaces.SnapshotID, error) {
	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.latestKey()),
	})
	if err != nil {
		if isS3NotFound(err) {
			return "", interfaces.ErrSnapshotNotFound
		}
		return "", fmt.Errorf("failed to fetch latest pointer: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read latest pointer: %w", err)
	}
	return interfaces.SnapshotID(strings.TrimSpace(string(data))), nil
}

// Available reports whether the bucket responds to a head request.
func (s *S3Store) Available(ctx context.Context) bool {
	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	})
	if err != nil {
		s.log.Debug("S3 store unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this store.
func (s *S3Store) Name() string {
	return fmt.Sprintf("s3-%s", s.bucketName)
}

// LocationURI returns the URI that identifies this store.
func (s *S3Store) LocationURI() string {
	return s.locationURI
}

func (s *S3Store) snapshotKey(id interfaces.SnapshotID) string {
	return path.Join(s.prefix, "snapshots", string(id))
}

func (s *S3Store) latestKey() string {
	return path.Join(s.prefix, latestPointerFile)
}

func isS3NotFound(err error) bool {
	return strings.Contains(err.Error(), "NoSuchKey") ||
		strings.Contains(err.Error(), "NotFound") ||
		strings.Contains(err.Error(), "404")
}
