package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/basma-club/clubhub/internal/api/handler/v1/request"
	"github.com/basma-club/clubhub/internal/api/handler/v1/response"
	"github.com/basma-club/clubhub/internal/service"
)

type ContactService interface {
	Send(ctx context.Context, msg service.ContactMessage) error
}

type ContactHandler struct {
	svc ContactService
}

func NewContactHandler(svc ContactService) *ContactHandler {
	return &ContactHandler{
		svc: svc,
	}
}

// HandleContact godoc
// @Summary      Send a message to the club
// @Tags         contact
// @Accept       json
// @Param        request  body  request.ContactRequest  true  "request body"
// @Success      202
// @Failure      400  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Router       /contact [post]
func (h *ContactHandler) HandleContact(ctx *gin.Context) {
	var req request.ContactRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.Send(ctx.Request.Context(), req.ContactMessage()); err != nil {
		renderServiceErr(ctx, "HandleContact", "h.svc.Send", err)
		return
	}

	ctx.Status(http.StatusAccepted)
}
