package domain

import "errors"

// Error taxonomy shared by every layer. Lower layers wrap these with %w so
// handlers can classify failures with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrPermission         = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrBackendUnavailable = errors.New("backend unavailable")
)
