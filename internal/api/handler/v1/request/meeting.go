package request

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/service"
)

type MeetingRequest struct {
	Title          string    `json:"title"`
	Description    *string   `json:"description"`
	Date           time.Time `json:"date"`
	Type           string    `json:"type"`
	Location       *string   `json:"location"`
	TargetAudience *string   `json:"target_audience"`
}

func (req *MeetingRequest) Validate() error {
	if req.TargetAudience != nil && strings.TrimSpace(*req.TargetAudience) == "" {
		req.TargetAudience = nil
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Date, validation.Required),
		validation.Field(&req.Type, validation.In(string(domain.MeetingOnline), string(domain.MeetingPresential))),
		validation.Field(&req.TargetAudience, validation.By(committeeRule)),
	)
}

func (req *MeetingRequest) Input() service.MeetingInput {
	in := service.MeetingInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Type:        domain.MeetingType(req.Type),
		Location:    req.Location,
	}
	if req.TargetAudience != nil {
		c := domain.Committee(*req.TargetAudience)
		in.TargetAudience = &c
	}
	return in
}

// RSVPRequest sets the caller's answer. Sending the current answer again
// clears it.
type RSVPRequest struct {
	Status string `json:"status"`
}

func (req *RSVPRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In(
			string(domain.RSVPAttending),
			string(domain.RSVPMaybe),
			string(domain.RSVPNotAttending),
		)),
	)
}
