// Package storage uploads member files (avatars, post images) to object
// storage and resolves their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/config"
	"github.com/basma-club/clubhub/internal/domain"
)

const (
	CategoryAvatars = "avatars"
	CategoryPosts   = "posts"

	DefaultMaxBytes int64 = 5 << 20
)

var (
	ErrFileTooLarge    = fmt.Errorf("file exceeds the upload limit: %w", domain.ErrValidation)
	ErrUnsupportedType = fmt.Errorf("file type is not an allowed image: %w", domain.ErrValidation)
	ErrEmptyFile       = fmt.Errorf("file is empty: %w", domain.ErrValidation)
	ErrNotConfigured   = fmt.Errorf("object storage is not configured: %w", domain.ErrBackendUnavailable)
)

// allowedTypes maps accepted image MIME types to the extension stored.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Uploader writes one object. Implementations must not overwrite silently.
type Uploader interface {
	Put(ctx context.Context, objectPath, contentType string, data []byte) error
}

type Store struct {
	uploader   Uploader
	publicBase string
	maxBytes   int64
	now        func() time.Time
}

func New(uploader Uploader, conf *config.StorageConfig) *Store {
	maxBytes := conf.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	base := strings.TrimRight(strings.TrimSpace(conf.PublicBaseURL), "/")
	if base == "" && conf.Bucket != "" {
		base = "https://storage.googleapis.com/" + conf.Bucket
	}

	return &Store{
		uploader:   uploader,
		publicBase: base,
		maxBytes:   maxBytes,
		now:        time.Now,
	}
}

// ObjectPath builds "{category}/{ownerID}/{filename}".
func ObjectPath(category string, ownerID uuid.UUID, filename string) string {
	return path.Join(sanitize(category), ownerID.String(), sanitize(filename))
}

func (s *Store) PublicURL(objectPath string) string {
	return s.publicBase + "/" + strings.TrimLeft(objectPath, "/")
}

// Upload checks the size ceiling and the image allow-list, stores data at
// objectPath and returns its public URL.
func (s *Store) Upload(ctx context.Context, objectPath string, data []byte) (string, error) {
	contentType, _, err := s.check(data)
	if err != nil {
		return "", err
	}

	if s.uploader == nil {
		return "", ErrNotConfigured
	}
	if err := s.uploader.Put(ctx, objectPath, contentType, data); err != nil {
		return "", fmt.Errorf("s.uploader.Put -> %w", err)
	}

	return s.PublicURL(objectPath), nil
}

// UploadImage stores data under category/ownerID with a timestamped name and
// an extension derived from the sniffed content type.
func (s *Store) UploadImage(ctx context.Context, category string, ownerID uuid.UUID, data []byte) (string, error) {
	_, ext, err := s.check(data)
	if err != nil {
		return "", err
	}

	name := strconv.FormatInt(s.now().UnixMilli(), 10) + ext

	return s.Upload(ctx, ObjectPath(category, ownerID, name), data)
}

func (s *Store) check(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return "", "", ErrFileTooLarge
	}

	mt := mimetype.Detect(data)
	for t := mt; t != nil; t = t.Parent() {
		if ext, ok := allowedTypes[t.String()]; ok {
			return t.String(), ext, nil
		}
	}

	return "", "", ErrUnsupportedType
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return strings.Trim(s, ". ")
}

// IsValidation reports whether err is a rejected upload rather than a
// storage failure.
func IsValidation(err error) bool {
	return errors.Is(err, domain.ErrValidation)
}
