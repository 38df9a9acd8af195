package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/api/handler/v1/request"
	"github.com/basma-club/clubhub/internal/api/handler/v1/response"
	"github.com/basma-club/clubhub/internal/domain"
)

type EngagementService interface {
	ToggleLike(ctx context.Context, actor domain.Principal, postID uuid.UUID) (domain.Engagement, error)
	Engagement(ctx context.Context, viewer domain.Principal, postID uuid.UUID) (domain.Engagement, error)
	Comments(ctx context.Context, viewer domain.Principal, postID uuid.UUID) ([]domain.PostComment, error)
	AddComment(ctx context.Context, actor domain.Principal, postID uuid.UUID, content string) (domain.PostComment, error)
}

type EngagementHandler struct {
	svc EngagementService
}

func NewEngagementHandler(svc EngagementService) *EngagementHandler {
	return &EngagementHandler{
		svc: svc,
	}
}

// HandleToggleLike godoc
// @Summary      Like or unlike a post
// @Tags         posts
// @Produce      json
// @Param        postID  path      string  true  "post id"
// @Success      200     {object}  domain.Engagement
// @Failure      404     {object}  response.Err
// @Router       /posts/{postID}/like [post]
// @Security BearerAuth
func (h *EngagementHandler) HandleToggleLike(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseUUIDParam(ctx, "postID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	engagement, err := h.svc.ToggleLike(ctx.Request.Context(), p, id)
	if err != nil {
		renderServiceErr(ctx, "HandleToggleLike", "h.svc.ToggleLike", err)
		return
	}

	ctx.JSON(http.StatusOK, engagement)
}

// HandleGetEngagement godoc
// @Summary      Like and comment counts of a post
// @Tags         posts
// @Produce      json
// @Param        postID  path      string  true  "post id"
// @Success      200     {object}  domain.Engagement
// @Failure      404     {object}  response.Err
// @Router       /posts/{postID}/engagement [get]
// @Security BearerAuth
func (h *EngagementHandler) HandleGetEngagement(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseUUIDParam(ctx, "postID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	engagement, err := h.svc.Engagement(ctx.Request.Context(), p, id)
	if err != nil {
		renderServiceErr(ctx, "HandleGetEngagement", "h.svc.Engagement", err)
		return
	}

	ctx.JSON(http.StatusOK, engagement)
}

// HandleGetComments godoc
// @Summary      Comments of a post
// @Tags         posts
// @Produce      json
// @Param        postID  path      string  true  "post id"
// @Success      200     {array}   domain.PostComment
// @Failure      404     {object}  response.Err
// @Router       /posts/{postID}/comments [get]
// @Security BearerAuth
func (h *EngagementHandler) HandleGetComments(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseUUIDParam(ctx, "postID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	comments, err := h.svc.Comments(ctx.Request.Context(), p, id)
	if err != nil {
		renderServiceErr(ctx, "HandleGetComments", "h.svc.Comments", err)
		return
	}

	ctx.JSON(http.StatusOK, comments)
}

// HandleAddComment godoc
// @Summary      Comment on a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        postID   path      string                  true  "post id"
// @Param        request  body      request.CommentRequest  true  "request body"
// @Success      201      {object}  domain.PostComment
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /posts/{postID}/comments [post]
// @Security BearerAuth
func (h *EngagementHandler) HandleAddComment(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseUUIDParam(ctx, "postID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	comment, err := h.svc.AddComment(ctx.Request.Context(), p, id, req.Content)
	if err != nil {
		renderServiceErr(ctx, "HandleAddComment", "h.svc.AddComment", err)
		return
	}

	ctx.JSON(http.StatusCreated, comment)
}
