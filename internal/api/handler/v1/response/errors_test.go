package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/basma-club/clubhub/internal/domain"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{fmt.Errorf("bad: %w", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("s.x -> %w", fmt.Errorf("no: %w", domain.ErrPermission)), http.StatusForbidden},
		{fmt.Errorf("post %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: dial tcp", domain.ErrBackendUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			e := FromDomain(tt.err)
			assert.Equal(t, tt.wantStatus, e.StatusCode)
			assert.ErrorIs(t, e, tt.err)
		})
	}
}

func TestRenderErrHidesInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	RenderErr(ctx, ErrInternalServerError(errors.New("pq: password authentication failed")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.True(t, ctx.IsAborted())
}
