package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	contentType string
	blob        []byte
	created     time.Time
}

type fakeObjectStore struct {
	objects map[string]*fakeObject
	now     time.Time

	failPut error
	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects: map[string]*fakeObject{},
		now:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *fakeObjectStore) Put(_ context.Context, key, contentType string, blob []byte) error {
	if s.failPut != nil {
		return s.failPut
	}
	s.objects[key] = &fakeObject{contentType: contentType, blob: blob, created: s.now}
	return nil
}

func (s *fakeObjectStore) DownloadURL(_ context.Context, key string) (string, error) {
	if _, ok := s.objects[key]; !ok {
		return "", errors.New("object not found: " + key)
	}
	return "https://objects.test/" + key, nil
}

func (s *fakeObjectStore) List(_ context.Context, prefix string) ([]StoredObject, error) {
	var out []StoredObject
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, StoredObject{Key: key, Created: obj.created})
		}
	}
	return out, nil
}

func (s *fakeObjectStore) Delete(_ context.Context, key string) error {
	if _, ok := s.objects[key]; !ok {
		return errors.New("object not found: " + key)
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func TestUploader_KeyShape(t *testing.T) {
	store := newFakeObjectStore()
	up := NewUploader(store)

	url, err := up.Upload(context.Background(), "u1", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://objects.test/chat_images/u1/"), url)
	require.Len(t, store.objects, 1)
	for key, obj := range store.objects {
		assert.True(t, strings.HasPrefix(key, "chat_images/u1/"))
		assert.Equal(t, "image/jpeg", obj.contentType)
		assert.Equal(t, []byte("jpeg-bytes"), obj.blob)
	}
}

func TestUploader_KeysNeverCollide(t *testing.T) {
	store := newFakeObjectStore()
	up := NewUploader(store)

	// Two uploads from the same user in the same instant must land under
	// distinct keys.
	_, err := up.Upload(context.Background(), "u1", "image/png", []byte("a"))
	require.NoError(t, err)
	_, err = up.Upload(context.Background(), "u1", "image/png", []byte("b"))
	require.NoError(t, err)

	assert.Len(t, store.objects, 2)
}

func TestUploader_Validation(t *testing.T) {
	store := newFakeObjectStore()
	up := NewUploader(store)

	_, err := up.Upload(context.Background(), "", "image/png", []byte("a"))
	assert.Error(t, err)

	_, err = up.Upload(context.Background(), "u1", "image/png", nil)
	assert.Error(t, err)
}

func TestUploader_PutFailureSurfaces(t *testing.T) {
	store := newFakeObjectStore()
	store.failPut = errors.New("bucket unavailable")
	up := NewUploader(store)

	_, err := up.Upload(context.Background(), "u1", "image/png", []byte("a"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "bucket unavailable")
	assert.Empty(t, store.objects)
}
