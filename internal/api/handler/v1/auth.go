package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/api/handler/v1/request"
	"github.com/basma-club/clubhub/internal/api/handler/v1/response"
	"github.com/basma-club/clubhub/internal/api/middleware"
	"github.com/basma-club/clubhub/internal/config"
	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/pkg/jwthelper"
	"github.com/basma-club/clubhub/internal/service"
)

type AuthService interface {
	SignUp(ctx context.Context, member domain.Member, password string) (domain.Member, error)
	SignIn(ctx context.Context, email, password string) (domain.Member, error)
	SignOut(tokenID string, expiresAt time.Time)
}

type PrincipalResolver interface {
	Resolve(ctx context.Context, memberID uuid.UUID) (domain.Principal, error)
}

type AuthHandler struct {
	conf     *config.APIConfig
	svc      AuthService
	identity PrincipalResolver
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService, identity PrincipalResolver) *AuthHandler {
	return &AuthHandler{
		conf:     conf,
		svc:      svc,
		identity: identity,
	}
}

// HandleSignup godoc
// @Summary      Signup a new member
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.SignupRequest true "request body"
// @Success      201      {object}   domain.Member
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/signup [post]
func (h *AuthHandler) HandleSignup(ctx *gin.Context) {
	var req request.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	member, err := h.svc.SignUp(ctx.Request.Context(), domain.Member{
		Email:    req.Email,
		FullName: req.FullName,
	}, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrMemberEmailExists) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrMemberEmailExists))
			return
		}
		renderServiceErr(ctx, "HandleSignup", "h.svc.SignUp", err)
		return
	}

	ctx.JSON(http.StatusCreated, member)
}

// HandleLogin godoc
// @Summary      Login a member
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	member, err := h.svc.SignIn(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) || errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))

			return
		}

		renderServiceErr(ctx, "HandleLogin", "h.svc.SignIn", err)

		return
	}

	principal, err := h.identity.Resolve(ctx.Request.Context(), member.ID)
	if err != nil {
		renderServiceErr(ctx, "HandleLogin", "h.identity.Resolve", err)

		return
	}

	ttl := h.conf.JWTTTL
	if ttl <= 0 {
		ttl = jwthelper.DefaultTTL
	}
	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), member.ID, ctx.Request.UserAgent(), ttl)
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken() -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl).Unix(),
		Member:    member,
		Principal: principal,
	})
}

// HandleSignout godoc
// @Summary      Revoke the current session token
// @Tags         auth
// @Success      204
// @Failure      401      {object}   response.Err
// @Router       /auth/signout [post]
// @Security BearerAuth
func (h *AuthHandler) HandleSignout(ctx *gin.Context) {
	claims, ok := middleware.GetClaims(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(errNotAuthenticated))
		return
	}

	expiresAt := time.Now().Add(h.conf.JWTTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	h.svc.SignOut(claims.ID, expiresAt)

	ctx.Status(http.StatusNoContent)
}
