package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/domain"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, domain.ErrValidation)...)
}

func denied(action string) error {
	return fmt.Errorf("%s: %w", action, domain.ErrPermission)
}

// ImageStore uploads an image under category/ownerID and returns its URL.
type ImageStore interface {
	UploadImage(ctx context.Context, category string, ownerID uuid.UUID, data []byte) (string, error)
}
