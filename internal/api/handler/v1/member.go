package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/api/handler/v1/request"
	"github.com/basma-club/clubhub/internal/api/handler/v1/response"
	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/service"
)

type MemberService interface {
	Directory(ctx context.Context, viewer domain.Principal, filter domain.MemberFilter) ([]domain.MemberProfile, error)
	Overview(ctx context.Context, viewer domain.Principal, id uuid.UUID) (service.MemberOverview, error)
	UpdateMember(ctx context.Context, actor domain.Principal, id uuid.UUID, update domain.MemberUpdate) (domain.MemberProfile, error)
	UpdateProfile(ctx context.Context, actor domain.Principal, id uuid.UUID, fullName string) (domain.Member, error)
	UploadAvatar(ctx context.Context, actor domain.Principal, id uuid.UUID, data []byte) (domain.Member, error)
}

type MemberHandler struct {
	svc MemberService
}

func NewMemberHandler(svc MemberService) *MemberHandler {
	return &MemberHandler{
		svc: svc,
	}
}

// HandleGetMe godoc
// @Summary      Current principal and profile
// @Tags         members
// @Produce      json
// @Success      200  {object}  response.MeResponse
// @Failure      401  {object}  response.Err
// @Router       /me [get]
// @Security BearerAuth
func (h *MemberHandler) HandleGetMe(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	overview, err := h.svc.Overview(ctx.Request.Context(), p, p.MemberID)
	if err != nil {
		renderServiceErr(ctx, "HandleGetMe", "h.svc.Overview", err)
		return
	}

	ctx.JSON(http.StatusOK, response.MeResponse{
		Principal: p,
		Profile:   overview.Profile,
	})
}

// HandleUpdateMe godoc
// @Summary      Edit own profile
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        request  body      request.ProfileRequest  true  "request body"
// @Success      200      {object}  domain.Member
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Router       /me [patch]
// @Security BearerAuth
func (h *MemberHandler) HandleUpdateMe(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	member, err := h.svc.UpdateProfile(ctx.Request.Context(), p, p.MemberID, req.FullName)
	if err != nil {
		renderServiceErr(ctx, "HandleUpdateMe", "h.svc.UpdateProfile", err)
		return
	}

	ctx.JSON(http.StatusOK, member)
}

// HandleUploadAvatar godoc
// @Summary      Upload own avatar
// @Tags         members
// @Accept       multipart/form-data
// @Produce      json
// @Param        avatar  formData  file  true  "image, at most 5 MB"
// @Success      200     {object}  domain.Member
// @Failure      400     {object}  response.Err
// @Failure      503     {object}  response.Err
// @Router       /me/avatar [post]
// @Security BearerAuth
func (h *MemberHandler) HandleUploadAvatar(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	data, respErr := readUpload(ctx, "avatar")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	if data == nil {
		response.RenderErr(ctx, response.ErrBadRequest(http.ErrMissingFile))
		return
	}

	member, err := h.svc.UploadAvatar(ctx.Request.Context(), p, p.MemberID, data)
	if err != nil {
		renderServiceErr(ctx, "HandleUploadAvatar", "h.svc.UploadAvatar", err)
		return
	}

	ctx.JSON(http.StatusOK, member)
}

// HandleListMembers godoc
// @Summary      Members directory
// @Tags         members
// @Produce      json
// @Param        search     query  string  false  "name or email substring"
// @Param        committee  query  string  false  "committee"
// @Param        status     query  string  false  "active, embesa or banned"
// @Success      200  {array}   domain.MemberProfile
// @Failure      400  {object}  response.Err
// @Router       /members [get]
// @Security BearerAuth
func (h *MemberHandler) HandleListMembers(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter := domain.MemberFilter{Search: strings.TrimSpace(ctx.Query("search"))}
	if c := ctx.Query("committee"); c != "" {
		committee := domain.Committee(c)
		filter.Committee = &committee
	}
	if s := ctx.Query("status"); s != "" {
		status := domain.MemberStatus(s)
		filter.Status = &status
	}

	members, err := h.svc.Directory(ctx.Request.Context(), p, filter)
	if err != nil {
		renderServiceErr(ctx, "HandleListMembers", "h.svc.Directory", err)
		return
	}

	ctx.JSON(http.StatusOK, members)
}

// HandleGetMember godoc
// @Summary      Member profile
// @Tags         members
// @Produce      json
// @Param        memberID  path      string  true  "member id"
// @Success      200       {object}  service.MemberOverview
// @Failure      404       {object}  response.Err
// @Router       /members/{memberID} [get]
// @Security BearerAuth
func (h *MemberHandler) HandleGetMember(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseUUIDParam(ctx, "memberID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	overview, err := h.svc.Overview(ctx.Request.Context(), p, id)
	if err != nil {
		renderServiceErr(ctx, "HandleGetMember", "h.svc.Overview", err)
		return
	}

	ctx.JSON(http.StatusOK, overview)
}

// HandleUpdateMember godoc
// @Summary      Edit a member's role, committees and status
// @Description  Bureau and admin only. All changes are applied together or not at all.
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        memberID  path      string                       true  "member id"
// @Param        request   body      request.MemberUpdateRequest  true  "request body"
// @Success      200       {object}  domain.MemberProfile
// @Failure      400       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Router       /members/{memberID} [patch]
// @Security BearerAuth
func (h *MemberHandler) HandleUpdateMember(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseUUIDParam(ctx, "memberID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.MemberUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	profile, err := h.svc.UpdateMember(ctx.Request.Context(), p, id, req.Update())
	if err != nil {
		renderServiceErr(ctx, "HandleUpdateMember", "h.svc.UpdateMember", err)
		return
	}

	ctx.JSON(http.StatusOK, profile)
}
