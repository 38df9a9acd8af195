package domain

import "github.com/google/uuid"

// Principal is the resolved identity of whoever performs a request. The zero
// value is the anonymous principal.
type Principal struct {
	MemberID   uuid.UUID  `json:"member_id"`
	FullName   string     `json:"full_name"`
	AvatarURL  *string    `json:"avatar_url"`
	Committee  *Committee `json:"committee"`
	Role       Role       `json:"role"`
	IsElevated bool       `json:"is_elevated"`
}

func Anonymous() Principal {
	return Principal{}
}

func (p Principal) Authenticated() bool {
	return p.MemberID != uuid.Nil
}

// CanAddFeedPost is the feed quick-post rule: elevated, but never embesa.
func (p Principal) CanAddFeedPost() bool {
	return p.Authenticated() && p.IsElevated && p.Role != RoleEmbesa
}

// NewPrincipal derives the principal of a member holding the given role.
func NewPrincipal(m Member, role Role) Principal {
	if !role.Valid() {
		role = RoleMember
	}
	return Principal{
		MemberID:   m.ID,
		FullName:   m.FullName,
		AvatarURL:  m.AvatarURL,
		Committee:  m.Committee,
		Role:       role,
		IsElevated: role.Elevated(),
	}
}
