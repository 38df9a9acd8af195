// Package policy decides what a principal may see and do. Every function is
// pure; callers resolve the principal first and pass it in explicitly.
package policy

import (
	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/domain"
)

// PostFlow identifies the surface a post write comes from. The two flows
// share the Post entity but not the same write rule.
type PostFlow int

const (
	// FlowFeed is the dashboard quick-post box. Embesa may not post here.
	FlowFeed PostFlow = iota
	// FlowBlogAdmin is the blog management page. Any elevated role may write.
	FlowBlogAdmin
)

// AudienceMatches reports whether p belongs to the audience described by tag.
// A nil tag is everyone. A principal without a committee never matches a
// non-nil tag unless elevated.
func AudienceMatches(p domain.Principal, tag *domain.Committee) bool {
	if tag == nil {
		return true
	}
	if p.IsElevated {
		return true
	}
	return p.Committee != nil && *p.Committee == *tag
}

func CanViewPost(p domain.Principal, post domain.Post) bool {
	switch post.Visibility {
	case domain.VisibilityPublic:
		return true
	case domain.VisibilityInternalAll:
		return p.Authenticated()
	case domain.VisibilityCommitteeOnly:
		if !p.Authenticated() {
			return false
		}
		if post.CommitteeTag == nil {
			return p.IsElevated
		}
		return AudienceMatches(p, post.CommitteeTag)
	case domain.VisibilityAdminOnly:
		return p.Authenticated() && p.IsElevated
	}
	return false
}

// CanViewMeeting applies the audience rule to a meeting. Meetings live on
// the dashboard so the anonymous principal sees none of them.
func CanViewMeeting(p domain.Principal, m domain.Meeting) bool {
	return p.Authenticated() && AudienceMatches(p, m.TargetAudience)
}

func CanMutatePost(p domain.Principal, flow PostFlow) bool {
	if !p.Authenticated() || !p.IsElevated {
		return false
	}
	if flow == FlowFeed {
		return p.Role != domain.RoleEmbesa
	}
	return true
}

func CanMutateMeeting(p domain.Principal) bool {
	return p.Authenticated() && p.IsElevated
}

// CanEditMemberRole covers role, committee and status edits of any member.
func CanEditMemberRole(p domain.Principal) bool {
	return p.Authenticated() && (p.Role == domain.RoleBureau || p.Role == domain.RoleAdmin)
}

// CanEditProfile is ownership only, with no role requirement.
func CanEditProfile(p domain.Principal, target uuid.UUID) bool {
	return p.Authenticated() && p.MemberID == target
}

func CanGrantPoints(p domain.Principal) bool {
	return p.Authenticated() && p.IsElevated
}

// CanViewPointsHistory allows a member to read their own ledger, and elevated
// roles to read anyone's.
func CanViewPointsHistory(p domain.Principal, target uuid.UUID) bool {
	return p.Authenticated() && (p.IsElevated || p.MemberID == target)
}

func CanComment(p domain.Principal, post domain.Post) bool {
	return p.Authenticated() && CanViewPost(p, post)
}

// PostAudience is CanViewPost expressed as a row filter, so listings can be
// narrowed before a limit applies.
func PostAudience(p domain.Principal) domain.PostAudience {
	switch {
	case !p.Authenticated():
		return domain.PostAudience{Visibilities: []domain.Visibility{domain.VisibilityPublic}}
	case p.IsElevated:
		return domain.PostAudience{Visibilities: []domain.Visibility{
			domain.VisibilityPublic,
			domain.VisibilityInternalAll,
			domain.VisibilityCommitteeOnly,
			domain.VisibilityAdminOnly,
		}}
	}

	return domain.PostAudience{
		Visibilities: []domain.Visibility{domain.VisibilityPublic, domain.VisibilityInternalAll},
		Committee:    p.Committee,
	}
}

func FilterPosts(p domain.Principal, posts []domain.Post) []domain.Post {
	visible := make([]domain.Post, 0, len(posts))
	for _, post := range posts {
		if CanViewPost(p, post) {
			visible = append(visible, post)
		}
	}
	return visible
}

func FilterMeetings(p domain.Principal, meetings []domain.Meeting) []domain.Meeting {
	visible := make([]domain.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if CanViewMeeting(p, m) {
			visible = append(visible, m)
		}
	}
	return visible
}
