package transfer

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// MinIOStore adapts minio.Client to the blobStore interface.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore constructs an adapter writing into one bucket.
func NewMinIOStore(client *minio.Client, bucket string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket}
}

// WriteStream streams the reader's bytes into the object under key. A
// non-positive size switches minio to multipart streaming; the declared
// size advises the upload, it is not enforced as a bound.
func (s *MinIOStore) WriteStream(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if size <= 0 {
		size = -1
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("store object %q: %w", key, err)
	}
	return nil
}
