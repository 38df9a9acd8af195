package storage

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/basma-club/clubhub/internal/config"
	"github.com/basma-club/clubhub/internal/domain"
)

// A 1x1 transparent PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

type memUploader struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemUploader() *memUploader {
	return &memUploader{
		objects: map[string][]byte{},
		types:   map[string]string{},
	}
}

func (u *memUploader) Put(_ context.Context, objectPath, contentType string, data []byte) error {
	if u.err != nil {
		return u.err
	}
	u.objects[objectPath] = data
	u.types[objectPath] = contentType
	return nil
}

func TestObjectPath(t *testing.T) {
	owner := uuid.MustParse("6f1c7a52-5c39-4d0e-9f44-0d3b1b2c9a10")

	assert.Equal(t, "avatars/6f1c7a52-5c39-4d0e-9f44-0d3b1b2c9a10/1700000000000.png",
		ObjectPath(CategoryAvatars, owner, "1700000000000.png"))
	assert.Equal(t, "posts/6f1c7a52-5c39-4d0e-9f44-0d3b1b2c9a10/_x.png",
		ObjectPath(CategoryPosts, owner, "../x.png"))
}

func TestUploadImage(t *testing.T) {
	up := newMemUploader()
	s := New(up, &config.StorageConfig{Bucket: "club-media"})
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	owner := uuid.New()

	url, err := s.UploadImage(context.Background(), CategoryAvatars, owner, pngBytes)
	require.NoError(t, err)

	objectPath := "avatars/" + owner.String() + "/1700000000000.png"
	assert.Equal(t, "https://storage.googleapis.com/club-media/"+objectPath, url)
	assert.Equal(t, pngBytes, up.objects[objectPath])
	assert.Equal(t, "image/png", up.types[objectPath])
}

func TestUploadRejects(t *testing.T) {
	up := newMemUploader()
	s := New(up, &config.StorageConfig{Bucket: "b", MaxUploadBytes: 64})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmptyFile},
		{"too large", bytes.Repeat([]byte{0x1}, 65), ErrFileTooLarge},
		{"not an image", []byte("%PDF-1.4 plain document"), ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Upload(context.Background(), "posts/x/y", tt.data)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.True(t, IsValidation(err))
		})
	}
	assert.Empty(t, up.objects)
}

func TestUploadWithoutBucket(t *testing.T) {
	s := New(nil, &config.StorageConfig{})

	_, err := s.Upload(context.Background(), "avatars/x/1.png", pngBytes)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestPublicURLOverride(t *testing.T) {
	s := New(nil, &config.StorageConfig{Bucket: "b", PublicBaseURL: "https://cdn.example.org/"})

	assert.Equal(t, "https://cdn.example.org/posts/a/b.png", s.PublicURL("/posts/a/b.png"))
}

func TestClassifyGCS(t *testing.T) {
	assert.ErrorIs(t, classifyGCS(&googleapi.Error{Code: http.StatusPreconditionFailed}), ErrObjectExists)
	assert.ErrorIs(t, classifyGCS(&googleapi.Error{Code: http.StatusServiceUnavailable}), domain.ErrBackendUnavailable)
	assert.ErrorIs(t, classifyGCS(context.DeadlineExceeded), domain.ErrBackendUnavailable)

	other := errors.New("boom")
	assert.Equal(t, other, classifyGCS(other))
}
