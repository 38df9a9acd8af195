package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/api/handler/v1/response"
	"github.com/basma-club/clubhub/internal/api/middleware"
	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/storage"
)

var errNotAuthenticated = errors.New("not authenticated")

// HandleHealthcheck godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.HealthResponse
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.HealthResponse{Status: "ok"})
}

// getPrincipal returns the authenticated principal or renders 401.
func getPrincipal(ctx *gin.Context) (domain.Principal, *response.Err) {
	p := middleware.GetPrincipal(ctx)
	if !p.Authenticated() {
		return domain.Principal{}, response.ErrUnauthorized(errNotAuthenticated)
	}
	return p, nil
}

func parseUUIDParam(ctx *gin.Context, name string) (uuid.UUID, *response.Err) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, response.ErrBadRequest(fmt.Errorf("%s must be a UUID", name))
	}
	return id, nil
}

// readUpload returns the bytes of a multipart file field. A missing field
// yields nil. Reading stops one byte past the upload limit so the store can
// reject oversized files.
func readUpload(ctx *gin.Context, field string) ([]byte, *response.Err) {
	header, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, response.ErrBadRequest(err)
	}

	f, err := header.Open()
	if err != nil {
		return nil, response.ErrBadRequest(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.DefaultMaxBytes+1))
	if err != nil {
		return nil, response.ErrBadRequest(err)
	}

	return data, nil
}

func renderServiceErr(ctx *gin.Context, handler, call string, err error) {
	response.RenderErr(ctx, response.FromDomain(fmt.Errorf("v1.%s -> %s -> %w", handler, call, err)))
}
