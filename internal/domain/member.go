package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleMember Role = "member"
	RoleRespo  Role = "respo"
	RoleAdmin  Role = "admin"
	RoleBureau Role = "bureau"
	RoleEmbesa Role = "embesa"
)

var Roles = []Role{RoleMember, RoleRespo, RoleAdmin, RoleBureau, RoleEmbesa}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// Elevated reports whether the role is anything other than a plain member.
func (r Role) Elevated() bool {
	switch r {
	case RoleBureau, RoleAdmin, RoleRespo, RoleEmbesa:
		return true
	}
	return false
}

type Committee string

const (
	CommitteeSponsoring    Committee = "Sponsoring"
	CommitteeCommunication Committee = "Communication"
	CommitteeEvent         Committee = "Event"
	CommitteeTechnique     Committee = "Technique"
	CommitteeMedia         Committee = "Media"
	CommitteeBureau        Committee = "Bureau"
)

var Committees = []Committee{
	CommitteeSponsoring,
	CommitteeCommunication,
	CommitteeEvent,
	CommitteeTechnique,
	CommitteeMedia,
	CommitteeBureau,
}

func (c Committee) Valid() bool {
	for _, v := range Committees {
		if v == c {
			return true
		}
	}
	return false
}

type MemberStatus string

const (
	StatusActive MemberStatus = "active"
	StatusEmbesa MemberStatus = "embesa"
	StatusBanned MemberStatus = "banned"
)

func (s MemberStatus) Valid() bool {
	return s == StatusActive || s == StatusEmbesa || s == StatusBanned
}

type Member struct {
	ID           uuid.UUID    `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	FullName     string       `json:"full_name"`
	AvatarURL    *string      `json:"avatar_url"`
	Committee    *Committee   `json:"committee"`
	Status       MemberStatus `json:"status"`
	TotalPoints  int          `json:"total_points"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// MemberProfile is a member together with its role and committee memberships.
type MemberProfile struct {
	Member
	Role       Role        `json:"role"`
	Committees []Committee `json:"committees"`
}

type MemberFilter struct {
	Search    string
	Committee *Committee
	Status    *MemberStatus
}

// MemberUpdate carries the elevated-role edit of another member. Nil fields
// are left untouched.
type MemberUpdate struct {
	Role           *Role
	Committee      *Committee
	ClearCommittee bool
	Committees     []Committee
	Status         *MemberStatus
}
