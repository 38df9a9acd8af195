package dao

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/basma-club/clubhub/internal/domain"
)

var (
	ErrMemberNotFound     = fmt.Errorf("member %w", domain.ErrNotFound)
	ErrMemberEmailExists  = fmt.Errorf("member email already exists: %w", domain.ErrValidation)
	ErrRoleNotFound       = fmt.Errorf("role %w", domain.ErrNotFound)
	ErrPostNotFound       = fmt.Errorf("post %w", domain.ErrNotFound)
	ErrMeetingNotFound    = fmt.Errorf("meeting %w", domain.ErrNotFound)
	ErrAttendanceNotFound = fmt.Errorf("attendance %w", domain.ErrNotFound)
	ErrDuplicateLike      = errors.New("like already exists")
	ErrDuplicateRSVP      = errors.New("rsvp already exists")
)

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	// glebarez/sqlite reports constraint failures as plain text.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgerrcode.IsInsufficientResources(pgErr.Code) ||
			pgErr.Code == pgerrcode.AdminShutdown ||
			pgErr.Code == pgerrcode.CannotConnectNow
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// classify maps a driver error onto the domain taxonomy. Errors it does not
// recognise are returned unchanged.
func classify(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	return err
}
