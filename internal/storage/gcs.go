package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/basma-club/clubhub/internal/config"
	"github.com/basma-club/clubhub/internal/domain"
)

var ErrObjectExists = errors.New("object already exists")

// GCSUploader writes objects to a Google Cloud Storage bucket.
type GCSUploader struct {
	client *storage.Client
	bucket string
}

// NewGCS opens a storage client for conf.Bucket. When no bucket is
// configured the returned Store rejects uploads with ErrNotConfigured.
func NewGCS(ctx context.Context, conf *config.StorageConfig) (*Store, func() error, error) {
	bucket := strings.TrimSpace(conf.Bucket)
	if bucket == "" {
		return New(nil, conf), func() error { return nil }, nil
	}

	var opts []option.ClientOption
	if conf.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("storage.NewClient -> %w", err)
	}

	uploader := &GCSUploader{
		client: client,
		bucket: bucket,
	}

	return New(uploader, conf), client.Close, nil
}

func (u *GCSUploader) Put(ctx context.Context, objectPath, contentType string, data []byte) error {
	obj := u.client.Bucket(u.bucket).Object(objectPath).If(storage.Conditions{DoesNotExist: true})

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return classifyGCS(err)
	}
	if err := w.Close(); err != nil {
		return classifyGCS(err)
	}

	return nil
}

func classifyGCS(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusPreconditionFailed:
			return ErrObjectExists
		case gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	return err
}
