package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/api/handler/v1/request"
	"github.com/basma-club/clubhub/internal/api/handler/v1/response"
	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/service"
)

type MeetingService interface {
	Schedule(ctx context.Context, viewer domain.Principal) (domain.MeetingSchedule, error)
	Create(ctx context.Context, actor domain.Principal, in service.MeetingInput) (domain.Meeting, error)
	Update(ctx context.Context, actor domain.Principal, id uuid.UUID, in service.MeetingInput) (domain.Meeting, error)
	Delete(ctx context.Context, actor domain.Principal, id uuid.UUID) error
	SetRSVP(ctx context.Context, actor domain.Principal, meetingID uuid.UUID, requested domain.RSVPStatus) (domain.AttendanceSummary, error)
	Attendance(ctx context.Context, viewer domain.Principal, meetingID uuid.UUID) (domain.AttendanceSummary, error)
	HasNewMeetings(ctx context.Context, viewer domain.Principal) (bool, error)
}

type MeetingHandler struct {
	svc MeetingService
}

func NewMeetingHandler(svc MeetingService) *MeetingHandler {
	return &MeetingHandler{
		svc: svc,
	}
}

// HandleListMeetings godoc
// @Summary      Upcoming and past meetings
// @Tags         meetings
// @Produce      json
// @Success      200  {object}  domain.MeetingSchedule
// @Failure      401  {object}  response.Err
// @Router       /meetings [get]
// @Security BearerAuth
func (h *MeetingHandler) HandleListMeetings(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	schedule, err := h.svc.Schedule(ctx.Request.Context(), p)
	if err != nil {
		renderServiceErr(ctx, "HandleListMeetings", "h.svc.Schedule", err)
		return
	}

	ctx.JSON(http.StatusOK, schedule)
}

// HandleCreateMeeting godoc
// @Summary      Schedule a meeting
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        request  body      request.MeetingRequest  true  "request body"
// @Success      201      {object}  domain.Meeting
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Router       /meetings [post]
// @Security BearerAuth
func (h *MeetingHandler) HandleCreateMeeting(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.MeetingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	meeting, err := h.svc.Create(ctx.Request.Context(), p, req.Input())
	if err != nil {
		renderServiceErr(ctx, "HandleCreateMeeting", "h.svc.Create", err)
		return
	}

	ctx.JSON(http.StatusCreated, meeting)
}

// HandleUpdateMeeting godoc
// @Summary      Edit a meeting
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        meetingID  path      string                  true  "meeting id"
// @Param        request    body      request.MeetingRequest  true  "request body"
// @Success      200        {object}  domain.Meeting
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /meetings/{meetingID} [put]
// @Security BearerAuth
func (h *MeetingHandler) HandleUpdateMeeting(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseUUIDParam(ctx, "meetingID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.MeetingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	meeting, err := h.svc.Update(ctx.Request.Context(), p, id, req.Input())
	if err != nil {
		renderServiceErr(ctx, "HandleUpdateMeeting", "h.svc.Update", err)
		return
	}

	ctx.JSON(http.StatusOK, meeting)
}

// HandleDeleteMeeting godoc
// @Summary      Cancel a meeting
// @Tags         meetings
// @Param        meetingID  path  string  true  "meeting id"
// @Success      204
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /meetings/{meetingID} [delete]
// @Security BearerAuth
func (h *MeetingHandler) HandleDeleteMeeting(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseUUIDParam(ctx, "meetingID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), p, id); err != nil {
		renderServiceErr(ctx, "HandleDeleteMeeting", "h.svc.Delete", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleNotifications godoc
// @Summary      Whether a visible meeting was announced in the last 48 hours
// @Tags         meetings
// @Produce      json
// @Success      200  {object}  response.NotificationsResponse
// @Router       /meetings/notifications [get]
// @Security BearerAuth
func (h *MeetingHandler) HandleNotifications(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	hasNew, err := h.svc.HasNewMeetings(ctx.Request.Context(), p)
	if err != nil {
		renderServiceErr(ctx, "HandleNotifications", "h.svc.HasNewMeetings", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NotificationsResponse{HasNewMeetings: hasNew})
}

// HandleSetRSVP godoc
// @Summary      Answer a meeting invitation
// @Description  Sending the current answer again withdraws it.
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        meetingID  path      string               true  "meeting id"
// @Param        request    body      request.RSVPRequest  true  "request body"
// @Success      200        {object}  domain.AttendanceSummary
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /meetings/{meetingID}/rsvp [put]
// @Security BearerAuth
func (h *MeetingHandler) HandleSetRSVP(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseUUIDParam(ctx, "meetingID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RSVPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	summary, err := h.svc.SetRSVP(ctx.Request.Context(), p, id, domain.RSVPStatus(req.Status))
	if err != nil {
		renderServiceErr(ctx, "HandleSetRSVP", "h.svc.SetRSVP", err)
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

// HandleAttendance godoc
// @Summary      Attendance of a meeting
// @Tags         meetings
// @Produce      json
// @Param        meetingID  path      string  true  "meeting id"
// @Success      200        {object}  domain.AttendanceSummary
// @Failure      404        {object}  response.Err
// @Router       /meetings/{meetingID}/attendance [get]
// @Security BearerAuth
func (h *MeetingHandler) HandleAttendance(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseUUIDParam(ctx, "meetingID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	summary, err := h.svc.Attendance(ctx.Request.Context(), p, id)
	if err != nil {
		renderServiceErr(ctx, "HandleAttendance", "h.svc.Attendance", err)
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
