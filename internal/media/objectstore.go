package media

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// StoredObject is the listing shape the janitor works with.
type StoredObject struct {
	Key     string
	Created time.Time
}

// ObjectStore is the narrow blob-storage contract. Production uses Google
// Cloud Storage through the Firebase app's default bucket; tests use a
// fake.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, blob []byte) error
	DownloadURL(ctx context.Context, key string) (string, error)
	List(ctx context.Context, prefix string) ([]StoredObject, error)
	Delete(ctx context.Context, key string) error
}

type GCSStore struct {
	bucket *storage.BucketHandle
}

func NewGCSStore(bucket *storage.BucketHandle) *GCSStore {
	return &GCSStore{bucket: bucket}
}

func (s *GCSStore) Put(ctx context.Context, key, contentType string, blob []byte) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(blob); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", key, err)
	}
	return nil
}

func (s *GCSStore) DownloadURL(ctx context.Context, key string) (string, error) {
	attrs, err := s.bucket.Object(key).Attrs(ctx)
	if err != nil {
		return "", fmt.Errorf("object attrs %s: %w", key, err)
	}
	return attrs.MediaLink, nil
}

func (s *GCSStore) List(ctx context.Context, prefix string) ([]StoredObject, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var out []StoredObject
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects %s: %w", prefix, err)
		}
		out = append(out, StoredObject{Key: attrs.Name, Created: attrs.Created})
	}
	return out, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}
