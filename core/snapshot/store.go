package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"query-sync/core/storage"
)

const objectPrefix = "snapshots/"

// Store persists serialized state snapshots in object storage. It is the
// durable leg of the passive-sync channel: one consumer publishes its
// current state, another fetches it and seeds a passive orchestrator instead
// of fetching on its own.
type Store struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewStore creates a snapshot store on the given bucket.
func NewStore(client storage.Client, bucket string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, bucket: bucket, logger: logger}
}

// EnsureBucket creates the snapshot bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check snapshot bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create snapshot bucket: %w", err)
	}
	return nil
}

// Publish stores v as a JSON snapshot under a generated name and returns
// that name.
func (s *Store) Publish(ctx context.Context, v any) (string, error) {
	name := objectPrefix + time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString() + ".json"
	if err := s.PublishAs(ctx, name, v); err != nil {
		return "", err
	}
	return name, nil
}

// PublishAs stores v as a JSON snapshot under an explicit object name.
func (s *Store) PublishAs(ctx context.Context, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, name,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot %q: %w", name, err)
	}

	s.logger.Debug("snapshot published",
		zap.String("object", name),
		zap.Int("bytes", len(payload)))
	return nil
}

// Fetch loads the snapshot stored under name into out.
func (s *Store) Fetch(ctx context.Context, name string, out any) error {
	reader, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to download snapshot %q: %w", name, err)
	}
	defer reader.Close()

	payload, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read snapshot %q: %w", name, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode snapshot %q: %w", name, err)
	}
	return nil
}

// Remove deletes the snapshot stored under name.
func (s *Store) Remove(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove snapshot %q: %w", name, err)
	}
	return nil
}
