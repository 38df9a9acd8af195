package request

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/service"
)

const maxContentLength = 20000

// PostRequest is the JSON form of a post write. The admin blog endpoints
// also accept it as multipart fields next to an "image" file.
type PostRequest struct {
	Title        string  `json:"title" form:"title"`
	Content      string  `json:"content" form:"content"`
	Visibility   string  `json:"visibility" form:"visibility"`
	CommitteeTag *string `json:"committee_tag" form:"committee_tag"`
}

func (req *PostRequest) Validate() error {
	if req.CommitteeTag != nil && strings.TrimSpace(*req.CommitteeTag) == "" {
		req.CommitteeTag = nil
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Content, validation.Required, validation.Length(1, maxContentLength)),
		validation.Field(&req.Visibility, validation.In(
			string(domain.VisibilityPublic),
			string(domain.VisibilityInternalAll),
			string(domain.VisibilityCommitteeOnly),
			string(domain.VisibilityAdminOnly),
		)),
		validation.Field(&req.CommitteeTag, validation.NilOrNotEmpty, validation.By(committeeRule)),
	)
}

func (req *PostRequest) Input(image []byte) service.PostInput {
	in := service.PostInput{
		Title:      req.Title,
		Content:    req.Content,
		Visibility: domain.Visibility(req.Visibility),
		Image:      image,
	}
	if req.CommitteeTag != nil {
		c := domain.Committee(*req.CommitteeTag)
		in.CommitteeTag = &c
	}
	return in
}

type CommentRequest struct {
	Content string `json:"content"`
}

func (req *CommentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Content, validation.Required),
	)
}
