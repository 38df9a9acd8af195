package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/basma-club/clubhub/internal/domain"
)

// MemberUpdateRequest is the admin edit of another member. A committee set
// to "" clears the primary committee.
type MemberUpdateRequest struct {
	Role       *string   `json:"role"`
	Committee  *string   `json:"committee"`
	Committees *[]string `json:"committees"`
	Status     *string   `json:"status"`
}

func (req *MemberUpdateRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Role, validation.By(roleRule)),
		validation.Field(&req.Committee, validation.By(committeeRule)),
		validation.Field(&req.Committees, validation.By(func(value any) error {
			list, _ := value.(*[]string)
			if list == nil {
				return nil
			}
			for _, c := range *list {
				if !domain.Committee(c).Valid() {
					return errUnknownCommittee
				}
			}
			return nil
		})),
		validation.Field(&req.Status, validation.By(statusRule)),
	)
}

func (req *MemberUpdateRequest) Update() domain.MemberUpdate {
	var u domain.MemberUpdate
	if req.Role != nil {
		r := domain.Role(*req.Role)
		u.Role = &r
	}
	if req.Committee != nil {
		if *req.Committee == "" {
			u.ClearCommittee = true
		} else {
			c := domain.Committee(*req.Committee)
			u.Committee = &c
		}
	}
	if req.Committees != nil {
		u.Committees = make([]domain.Committee, len(*req.Committees))
		for i, c := range *req.Committees {
			u.Committees[i] = domain.Committee(c)
		}
	}
	if req.Status != nil {
		s := domain.MemberStatus(*req.Status)
		u.Status = &s
	}
	return u
}

type ProfileRequest struct {
	FullName string `json:"full_name"`
}

func (req *ProfileRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.FullName, validation.Required, validation.Length(2, 100)),
	)
}
