package v1

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/api/handler/v1/request"
	"github.com/basma-club/clubhub/internal/api/handler/v1/response"
	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/service"
)

type PointsService interface {
	GrantPoints(ctx context.Context, actor domain.Principal, in service.GrantInput) (domain.PointsLogEntry, error)
	HistoryFor(ctx context.Context, viewer domain.Principal, memberID uuid.UUID, limit int) ([]domain.PointsLogEntry, error)
	Recent(ctx context.Context, actor domain.Principal, limit int) ([]domain.PointsLogEntry, error)
	Leaderboard(ctx context.Context, viewer domain.Principal, committee *domain.Committee, period domain.LeaderboardPeriod) ([]domain.LeaderboardEntry, error)
}

type PointsHandler struct {
	svc PointsService
}

func NewPointsHandler(svc PointsService) *PointsHandler {
	return &PointsHandler{
		svc: svc,
	}
}

// HandleLeaderboard godoc
// @Summary      Points leaderboard
// @Tags         points
// @Produce      json
// @Param        committee  query     string  false  "committee filter"
// @Param        period     query     string  false  "all (default), month or week"
// @Success      200        {array}   domain.LeaderboardEntry
// @Failure      400        {object}  response.Err
// @Router       /leaderboard [get]
// @Security BearerAuth
func (h *PointsHandler) HandleLeaderboard(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var committee *domain.Committee
	if c := ctx.Query("committee"); c != "" && c != "all" {
		cc := domain.Committee(c)
		committee = &cc
	}
	period := domain.LeaderboardPeriod(ctx.DefaultQuery("period", string(domain.PeriodAll)))

	entries, err := h.svc.Leaderboard(ctx.Request.Context(), p, committee, period)
	if err != nil {
		renderServiceErr(ctx, "HandleLeaderboard", "h.svc.Leaderboard", err)
		return
	}

	ctx.JSON(http.StatusOK, entries)
}

// HandleGrantPoints godoc
// @Summary      Grant points for a completed task
// @Description  Elevated roles only. The score must be one of 1, 2, 3, 5, 8, 10.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.GrantPointsRequest  true  "request body"
// @Success      201      {object}  domain.PointsLogEntry
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /admin/points [post]
// @Security BearerAuth
func (h *PointsHandler) HandleGrantPoints(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.GrantPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, err := h.svc.GrantPoints(ctx.Request.Context(), p, req.Input())
	if err != nil {
		renderServiceErr(ctx, "HandleGrantPoints", "h.svc.GrantPoints", err)
		return
	}

	ctx.JSON(http.StatusCreated, entry)
}

// HandlePointsHistory godoc
// @Summary      Points ledger
// @Description  With member_id, that member's history (own or elevated viewer). Without it, the latest grants across the club (elevated only).
// @Tags         admin
// @Produce      json
// @Param        member_id  query     string  false  "member id"
// @Param        limit      query     int     false  "default 20, at most 200"
// @Success      200        {array}   domain.PointsLogEntry
// @Failure      403        {object}  response.Err
// @Router       /admin/points/history [get]
// @Security BearerAuth
func (h *PointsHandler) HandlePointsHistory(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	if raw := ctx.Query("member_id"); raw != "" {
		memberID, err := uuid.Parse(raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		entries, err := h.svc.HistoryFor(ctx.Request.Context(), p, memberID, limit)
		if err != nil {
			renderServiceErr(ctx, "HandlePointsHistory", "h.svc.HistoryFor", err)
			return
		}
		ctx.JSON(http.StatusOK, entries)
		return
	}

	entries, err := h.svc.Recent(ctx.Request.Context(), p, limit)
	if err != nil {
		renderServiceErr(ctx, "HandlePointsHistory", "h.svc.Recent", err)
		return
	}

	ctx.JSON(http.StatusOK, entries)
}
