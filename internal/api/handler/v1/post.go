package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/api/handler/v1/request"
	"github.com/basma-club/clubhub/internal/api/handler/v1/response"
	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/policy"
	"github.com/basma-club/clubhub/internal/service"
)

const topMembersLimit = 5

var errUnknownScope = errors.New("scope must be all or committee")

type PostService interface {
	Feed(ctx context.Context, viewer domain.Principal, scope service.FeedScope) ([]domain.PostWithEngagement, error)
	Blog(ctx context.Context) ([]domain.PostWithEngagement, error)
	BlogPost(ctx context.Context, id uuid.UUID) (domain.PostWithEngagement, error)
	ManagedPosts(ctx context.Context, actor domain.Principal, search string, visibility *domain.Visibility) ([]domain.PostWithEngagement, error)
	Create(ctx context.Context, actor domain.Principal, flow policy.PostFlow, in service.PostInput) (domain.Post, error)
	Update(ctx context.Context, actor domain.Principal, id uuid.UUID, in service.PostInput) (domain.Post, error)
	Delete(ctx context.Context, actor domain.Principal, id uuid.UUID) error
}

type TopMembers interface {
	Top(ctx context.Context, limit int) ([]domain.Member, error)
}

type PostHandler struct {
	svc     PostService
	members TopMembers
}

func NewPostHandler(svc PostService, members TopMembers) *PostHandler {
	return &PostHandler{
		svc:     svc,
		members: members,
	}
}

// HandleFeed godoc
// @Summary      Dashboard feed
// @Description  Posts visible to the caller, newest first, with the top members sidebar.
// @Tags         posts
// @Produce      json
// @Param        scope  query     string  false  "all (default) or committee"
// @Success      200    {object}  response.FeedResponse
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Router       /feed [get]
// @Security BearerAuth
func (h *PostHandler) HandleFeed(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	scope := service.FeedScope(ctx.DefaultQuery("scope", string(service.FeedAll)))
	if scope != service.FeedAll && scope != service.FeedCommittee {
		response.RenderErr(ctx, response.ErrBadRequest(errUnknownScope))
		return
	}

	posts, err := h.svc.Feed(ctx.Request.Context(), p, scope)
	if err != nil {
		renderServiceErr(ctx, "HandleFeed", "h.svc.Feed", err)
		return
	}

	top, err := h.members.Top(ctx.Request.Context(), topMembersLimit)
	if err != nil {
		renderServiceErr(ctx, "HandleFeed", "h.members.Top", err)
		return
	}

	ctx.JSON(http.StatusOK, response.FeedResponse{
		Posts:      posts,
		TopMembers: top,
	})
}

// HandleCreateFeedPost godoc
// @Summary      Quick post from the dashboard
// @Description  Elevated roles except embesa.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        request  body      request.PostRequest  true  "request body"
// @Success      201      {object}  domain.Post
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Router       /feed/posts [post]
// @Security BearerAuth
func (h *PostHandler) HandleCreateFeedPost(ctx *gin.Context) {
	h.create(ctx, policy.FlowFeed)
}

// HandleBlog godoc
// @Summary      Public blog
// @Tags         blog
// @Produce      json
// @Success      200  {array}  domain.PostWithEngagement
// @Router       /blog [get]
func (h *PostHandler) HandleBlog(ctx *gin.Context) {
	posts, err := h.svc.Blog(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "HandleBlog", "h.svc.Blog", err)
		return
	}

	ctx.JSON(http.StatusOK, posts)
}

// HandleBlogPost godoc
// @Summary      Public blog post
// @Tags         blog
// @Produce      json
// @Param        postID  path      string  true  "post id"
// @Success      200     {object}  domain.PostWithEngagement
// @Failure      404     {object}  response.Err
// @Router       /blog/{postID} [get]
func (h *PostHandler) HandleBlogPost(ctx *gin.Context) {
	id, respErr := parseUUIDParam(ctx, "postID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	post, err := h.svc.BlogPost(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("post", "id", id))
			return
		}
		renderServiceErr(ctx, "HandleBlogPost", "h.svc.BlogPost", err)
		return
	}

	ctx.JSON(http.StatusOK, post)
}

// HandleAdminListPosts godoc
// @Summary      Blog management listing
// @Tags         admin
// @Produce      json
// @Param        search      query     string  false  "title or content substring"
// @Param        visibility  query     string  false  "visibility filter"
// @Success      200         {array}   domain.PostWithEngagement
// @Failure      403         {object}  response.Err
// @Router       /admin/posts [get]
// @Security BearerAuth
func (h *PostHandler) HandleAdminListPosts(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var visibility *domain.Visibility
	if v := ctx.Query("visibility"); v != "" && v != "all" {
		vis := domain.Visibility(v)
		visibility = &vis
	}

	posts, err := h.svc.ManagedPosts(ctx.Request.Context(), p, strings.TrimSpace(ctx.Query("search")), visibility)
	if err != nil {
		renderServiceErr(ctx, "HandleAdminListPosts", "h.svc.ManagedPosts", err)
		return
	}

	ctx.JSON(http.StatusOK, posts)
}

// HandleAdminCreatePost godoc
// @Summary      Create a blog post
// @Description  JSON body, or multipart fields with an optional image file.
// @Tags         admin
// @Accept       json,mpfd
// @Produce      json
// @Param        request  body      request.PostRequest  true  "request body"
// @Success      201      {object}  domain.Post
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Router       /admin/posts [post]
// @Security BearerAuth
func (h *PostHandler) HandleAdminCreatePost(ctx *gin.Context) {
	h.create(ctx, policy.FlowBlogAdmin)
}

// HandleAdminUpdatePost godoc
// @Summary      Update a blog post
// @Tags         admin
// @Accept       json,mpfd
// @Produce      json
// @Param        postID   path      string               true  "post id"
// @Param        request  body      request.PostRequest  true  "request body"
// @Success      200      {object}  domain.Post
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /admin/posts/{postID} [put]
// @Security BearerAuth
func (h *PostHandler) HandleAdminUpdatePost(ctx *gin.Context) {
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

	in, respErr := bindPost(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	post, err := h.svc.Update(ctx.Request.Context(), p, id, in)
	if err != nil {
		renderServiceErr(ctx, "HandleAdminUpdatePost", "h.svc.Update", err)
		return
	}

	ctx.JSON(http.StatusOK, post)
}

// HandleAdminDeletePost godoc
// @Summary      Delete a blog post
// @Tags         admin
// @Param        postID  path  string  true  "post id"
// @Success      204
// @Failure      403     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Router       /admin/posts/{postID} [delete]
// @Security BearerAuth
func (h *PostHandler) HandleAdminDeletePost(ctx *gin.Context) {
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

	if err := h.svc.Delete(ctx.Request.Context(), p, id); err != nil {
		renderServiceErr(ctx, "HandleAdminDeletePost", "h.svc.Delete", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *PostHandler) create(ctx *gin.Context, flow policy.PostFlow) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	in, respErr := bindPost(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	post, err := h.svc.Create(ctx.Request.Context(), p, flow, in)
	if err != nil {
		renderServiceErr(ctx, "HandleCreatePost", "h.svc.Create", err)
		return
	}

	ctx.JSON(http.StatusCreated, post)
}

// bindPost accepts a JSON body or a multipart form with an "image" file.
func bindPost(ctx *gin.Context) (service.PostInput, *response.Err) {
	var req request.PostRequest
	var image []byte

	if ctx.ContentType() == gin.MIMEMultipartPOSTForm {
		if err := ctx.ShouldBind(&req); err != nil {
			return service.PostInput{}, response.ErrBadRequest(err)
		}
		data, respErr := readUpload(ctx, "image")
		if respErr != nil {
			return service.PostInput{}, respErr
		}
		image = data
	} else if err := ctx.ShouldBindJSON(&req); err != nil {
		return service.PostInput{}, response.ErrBadRequest(err)
	}

	if err := req.Validate(); err != nil {
		return service.PostInput{}, response.ErrBadRequest(fmt.Errorf("invalid post: %w", err))
	}

	return req.Input(image), nil
}
