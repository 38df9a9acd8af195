package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/service"
)

type GrantPointsRequest struct {
	MemberID        string     `json:"member_id"`
	TaskDescription string     `json:"task_description"`
	ComplexityScore int        `json:"complexity_score"`
	AdminComment    *string    `json:"admin_comment"`
	Date            *time.Time `json:"date"`
}

func (req *GrantPointsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.MemberID, validation.Required, is.UUID),
		validation.Field(&req.TaskDescription, validation.Required, validation.Length(1, 500)),
		validation.Field(&req.ComplexityScore, validation.Required),
	)
}

func (req *GrantPointsRequest) Input() service.GrantInput {
	in := service.GrantInput{
		MemberID:        uuid.MustParse(req.MemberID),
		TaskDescription: req.TaskDescription,
		ComplexityScore: req.ComplexityScore,
		AdminComment:    req.AdminComment,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	return in
}
