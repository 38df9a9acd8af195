package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/api/handler/v1/response"
	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/pkg/jwthelper"
)

const (
	principalKey = "principal"
	claimsKey    = "claims"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errRevokedToken = errors.New("token has been revoked")
)

type Revoker interface {
	IsRevoked(tokenID string) bool
}

type Resolver interface {
	Resolve(ctx context.Context, memberID uuid.UUID) (domain.Principal, error)
}

type Authenticator struct {
	key      []byte
	revoker  Revoker
	resolver Resolver
}

func NewAuthenticator(key string, revoker Revoker, resolver Resolver) *Authenticator {
	return &Authenticator{
		key:      []byte(key),
		revoker:  revoker,
		resolver: resolver,
	}
}

// VerifyJWT rejects requests without a valid session and stores the
// resolved principal in the context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		if respErr := a.authenticate(ctx, token); respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}

		ctx.Next()
	}
}

// OptionalJWT lets anonymous requests through. A token that is present
// must still be valid.
func (a *Authenticator) OptionalJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			ctx.Set(principalKey, domain.Anonymous())
			ctx.Next()
			return
		}

		if respErr := a.authenticate(ctx, token); respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}

		ctx.Next()
	}
}

func (a *Authenticator) authenticate(ctx *gin.Context, token string) *response.Err {
	claims, err := jwthelper.ParseToken(a.key, token)
	if err != nil {
		return response.ErrUnauthorized(err)
	}
	if a.revoker != nil && a.revoker.IsRevoked(claims.ID) {
		return response.ErrUnauthorized(errRevokedToken)
	}

	memberID, err := claims.MemberID()
	if err != nil {
		return response.ErrUnauthorized(err)
	}

	principal, err := a.resolver.Resolve(ctx.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.ErrUnauthorized(err)
		}
		return response.FromDomain(fmt.Errorf("a.resolver.Resolve -> %w", err))
	}

	ctx.Set(claimsKey, claims)
	ctx.Set(principalKey, principal)

	return nil
}

// bearerToken reads the Authorization header. Websocket clients cannot set
// headers, so the token query parameter is accepted as well.
func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ctx.Query("token")
}

// GetPrincipal returns the principal stored by the authenticator, or the
// anonymous principal.
func GetPrincipal(ctx *gin.Context) domain.Principal {
	v, ok := ctx.Get(principalKey)
	if !ok {
		return domain.Anonymous()
	}
	p, _ := v.(domain.Principal)
	return p
}

func GetClaims(ctx *gin.Context) (*jwthelper.Claims, bool) {
	v, ok := ctx.Get(claimsKey)
	if !ok {
		return nil, false
	}
	c, ok := v.(*jwthelper.Claims)
	return c, ok
}
