package media

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const imageKeyPrefix = "chat_images/"

// Uploader converts raw image bytes into a durable download URL. Keys are
// {prefix}{uid}/{uuid}: the random token breaks the wall-clock collision
// that two same-tick uploads from one user would otherwise hit.
type Uploader struct {
	objects ObjectStore
}

func NewUploader(objects ObjectStore) *Uploader {
	return &Uploader{objects: objects}
}

// Upload writes the blob and resolves its download URL. The caller is
// expected to follow up with a message referencing the URL; if that write
// fails the object stays behind until the janitor sweeps it.
func (u *Uploader) Upload(ctx context.Context, uid, contentType string, blob []byte) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("uid required")
	}
	if len(blob) == 0 {
		return "", fmt.Errorf("empty upload")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s%s/%s", imageKeyPrefix, uid, uuid.NewString())
	if err := u.objects.Put(ctx, key, contentType, blob); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}

	url, err := u.objects.DownloadURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("resolve download url: %w", err)
	}
	return url, nil
}
