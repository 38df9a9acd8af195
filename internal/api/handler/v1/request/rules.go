package request

import (
	"errors"

	"github.com/basma-club/clubhub/internal/domain"
)

var (
	errUnknownCommittee = errors.New("unknown committee")
	errUnknownRole      = errors.New("unknown role")
	errUnknownStatus    = errors.New("unknown status")
)

func committeeRule(value any) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return errUnknownCommittee
	}
	if s == "" {
		return nil
	}
	if !domain.Committee(s).Valid() {
		return errUnknownCommittee
	}
	return nil
}

func roleRule(value any) error {
	v, _ := value.(*string)
	if v == nil {
		return nil
	}
	if !domain.Role(*v).Valid() {
		return errUnknownRole
	}
	return nil
}

func statusRule(value any) error {
	v, _ := value.(*string)
	if v == nil {
		return nil
	}
	if !domain.MemberStatus(*v).Valid() {
		return errUnknownStatus
	}
	return nil
}
