package storage

import (
	"context"
	"io"
)

// ObjectStorage is the minimal object-store write path the artifact
// retention archiver needs. Kept small and swappable so another
// S3-compatible backend could stand in for MinIO without touching
// retention.go.
type ObjectStorage interface {
	// PutObject uploads reader's content as one object, sizeBytes long.
	PutObject(ctx context.Context, bucket, objectKey string, reader io.Reader, sizeBytes int64, contentType string) error
}
