package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/basma-club/clubhub/internal/domain"
)

// Err is the JSON body of every failed request.
type Err struct {
	Err        error  `json:"-"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Err.Error()
}

func (e *Err) Unwrap() error {
	return e.Err
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.StatusCode >= http.StatusInternalServerError {
		zap.L().Error(e.Message,
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("path", ctx.Request.URL.Path),
			zap.Error(e.Err),
		)
	}
	_ = ctx.Error(e)
	ctx.AbortWithStatusJSON(e.StatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusBadRequest,
		Message:    "bad request",
		ErrorText:  err.Error(),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusUnauthorized,
		Message:    "authentication required",
		ErrorText:  err.Error(),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusUnauthorized,
		Message:    "wrong email or password",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusForbidden,
		Message:    "permission denied",
		ErrorText:  err.Error(),
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		Err:        fmt.Errorf("%s %s=%v: %w", resource, key, value, domain.ErrNotFound),
		StatusCode: http.StatusNotFound,
		Message:    "resource not found",
		ErrorText:  fmt.Sprintf("%s with %s %v does not exist", resource, key, value),
	}
}

// ErrServiceUnavailable hides the cause; it is logged instead.
func ErrServiceUnavailable(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusServiceUnavailable,
		Message:    "service temporarily unavailable",
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusInternalServerError,
		Message:    "internal server error",
	}
}

// FromDomain classifies a service error by the taxonomy sentinel it wraps.
func FromDomain(err error) *Err {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return ErrBadRequest(err)
	case errors.Is(err, domain.ErrPermission):
		return ErrPermissionDenied(err)
	case errors.Is(err, domain.ErrNotFound):
		return &Err{
			Err:        err,
			StatusCode: http.StatusNotFound,
			Message:    "resource not found",
			ErrorText:  err.Error(),
		}
	case errors.Is(err, domain.ErrBackendUnavailable):
		return ErrServiceUnavailable(err)
	}
	return ErrInternalServerError(err)
}
