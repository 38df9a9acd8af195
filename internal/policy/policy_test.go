package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/basma-club/clubhub/internal/domain"
)

func committee(c domain.Committee) *domain.Committee {
	return &c
}

func principal(role domain.Role, c *domain.Committee) domain.Principal {
	return domain.NewPrincipal(domain.Member{ID: uuid.New(), FullName: "Test", Committee: c}, role)
}

func post(v domain.Visibility, tag *domain.Committee) domain.Post {
	return domain.Post{ID: uuid.New(), AuthorID: uuid.New(), Title: "t", Content: "c", Visibility: v, CommitteeTag: tag}
}

func TestAnonymousSeesOnlyPublicPosts(t *testing.T) {
	posts := []domain.Post{
		post(domain.VisibilityPublic, nil),
		post(domain.VisibilityInternalAll, nil),
		post(domain.VisibilityCommitteeOnly, committee(domain.CommitteeMedia)),
		post(domain.VisibilityAdminOnly, nil),
		post(domain.VisibilityPublic, nil),
	}

	visible := FilterPosts(domain.Anonymous(), posts)

	assert.Len(t, visible, 2)
	for _, p := range visible {
		assert.Equal(t, domain.VisibilityPublic, p.Visibility)
	}
}

func TestCanViewPost(t *testing.T) {
	media := committee(domain.CommitteeMedia)
	event := committee(domain.CommitteeEvent)

	tests := []struct {
		name string
		who  domain.Principal
		post domain.Post
		want bool
	}{
		{"anonymous public", domain.Anonymous(), post(domain.VisibilityPublic, nil), true},
		{"anonymous internal", domain.Anonymous(), post(domain.VisibilityInternalAll, nil), false},
		{"member internal", principal(domain.RoleMember, nil), post(domain.VisibilityInternalAll, nil), true},
		{"member same committee", principal(domain.RoleMember, media), post(domain.VisibilityCommitteeOnly, media), true},
		{"member other committee", principal(domain.RoleMember, media), post(domain.VisibilityCommitteeOnly, event), false},
		{"member without committee", principal(domain.RoleMember, nil), post(domain.VisibilityCommitteeOnly, media), false},
		{"respo other committee", principal(domain.RoleRespo, event), post(domain.VisibilityCommitteeOnly, media), true},
		{"embesa reads committee", principal(domain.RoleEmbesa, nil), post(domain.VisibilityCommitteeOnly, media), true},
		{"member admin only", principal(domain.RoleMember, media), post(domain.VisibilityAdminOnly, nil), false},
		{"bureau admin only", principal(domain.RoleBureau, nil), post(domain.VisibilityAdminOnly, nil), true},
		{"anonymous admin only", domain.Anonymous(), post(domain.VisibilityAdminOnly, nil), false},
		{"unknown visibility", principal(domain.RoleAdmin, nil), post("secret", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewPost(tt.who, tt.post))
		})
	}
}

func TestCanViewMeeting(t *testing.T) {
	media := committee(domain.CommitteeMedia)
	technique := committee(domain.CommitteeTechnique)

	open := domain.Meeting{ID: uuid.New(), Title: "AG"}
	mediaOnly := domain.Meeting{ID: uuid.New(), Title: "Montage", TargetAudience: media}

	assert.True(t, CanViewMeeting(principal(domain.RoleMember, nil), open))
	assert.False(t, CanViewMeeting(domain.Anonymous(), open))
	assert.True(t, CanViewMeeting(principal(domain.RoleMember, media), mediaOnly))
	assert.False(t, CanViewMeeting(principal(domain.RoleMember, technique), mediaOnly))
	assert.False(t, CanViewMeeting(principal(domain.RoleMember, nil), mediaOnly))
	assert.True(t, CanViewMeeting(principal(domain.RoleAdmin, technique), mediaOnly))

	visible := FilterMeetings(principal(domain.RoleMember, technique), []domain.Meeting{open, mediaOnly})
	assert.Equal(t, []domain.Meeting{open}, visible)
}

func TestCanMutatePostFlows(t *testing.T) {
	tests := []struct {
		role domain.Role
		feed bool
		blog bool
	}{
		{domain.RoleMember, false, false},
		{domain.RoleRespo, true, true},
		{domain.RoleAdmin, true, true},
		{domain.RoleBureau, true, true},
		{domain.RoleEmbesa, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			p := principal(tt.role, nil)
			assert.Equal(t, tt.feed, CanMutatePost(p, FlowFeed))
			assert.Equal(t, tt.feed, p.CanAddFeedPost())
			assert.Equal(t, tt.blog, CanMutatePost(p, FlowBlogAdmin))
		})
	}

	assert.False(t, CanMutatePost(domain.Anonymous(), FlowBlogAdmin))
}

func TestMemberEditRules(t *testing.T) {
	self := principal(domain.RoleMember, nil)

	assert.True(t, CanEditProfile(self, self.MemberID))
	assert.False(t, CanEditProfile(self, uuid.New()))
	assert.False(t, CanEditProfile(domain.Anonymous(), uuid.Nil))

	assert.True(t, CanEditMemberRole(principal(domain.RoleBureau, nil)))
	assert.True(t, CanEditMemberRole(principal(domain.RoleAdmin, nil)))
	assert.False(t, CanEditMemberRole(principal(domain.RoleRespo, nil)))
	assert.False(t, CanEditMemberRole(principal(domain.RoleEmbesa, nil)))
	assert.False(t, CanEditMemberRole(self))
}

func TestPointsRules(t *testing.T) {
	self := principal(domain.RoleMember, nil)

	assert.False(t, CanGrantPoints(self))
	assert.True(t, CanGrantPoints(principal(domain.RoleRespo, nil)))
	assert.True(t, CanViewPointsHistory(self, self.MemberID))
	assert.False(t, CanViewPointsHistory(self, uuid.New()))
	assert.True(t, CanViewPointsHistory(principal(domain.RoleEmbesa, nil), uuid.New()))
}

func TestScenarioCommitteePost(t *testing.T) {
	a := principal(domain.RoleMember, nil)
	b := principal(domain.RoleRespo, committee(domain.CommitteeMedia))
	c := principal(domain.RoleMember, committee(domain.CommitteeMedia))
	d := principal(domain.RoleMember, committee(domain.CommitteeTechnique))

	public := post(domain.VisibilityPublic, nil)
	existing := []domain.Post{
		public,
		post(domain.VisibilityCommitteeOnly, committee(domain.CommitteeMedia)),
		post(domain.VisibilityAdminOnly, nil),
	}
	assert.Equal(t, []domain.Post{public}, FilterPosts(a, existing))

	assert.True(t, CanMutatePost(b, FlowFeed))
	created := post(domain.VisibilityCommitteeOnly, committee(domain.CommitteeMedia))
	created.AuthorID = b.MemberID
	assert.True(t, created.CheckTag())

	assert.True(t, CanViewPost(c, created))
	assert.False(t, CanViewPost(d, created))
}

func TestCheckTag(t *testing.T) {
	assert.True(t, post(domain.VisibilityCommitteeOnly, committee(domain.CommitteeEvent)).CheckTag())
	assert.False(t, post(domain.VisibilityCommitteeOnly, nil).CheckTag())
	assert.False(t, post(domain.VisibilityCommitteeOnly, committee("Chess")).CheckTag())
	assert.True(t, post(domain.VisibilityPublic, nil).CheckTag())
	assert.False(t, post(domain.VisibilityInternalAll, committee(domain.CommitteeEvent)).CheckTag())
}

func TestPostAudienceMatchesCanViewPost(t *testing.T) {
	media := committee(domain.CommitteeMedia)
	viewers := []domain.Principal{
		domain.Anonymous(),
		principal(domain.RoleMember, nil),
		principal(domain.RoleMember, media),
		principal(domain.RoleRespo, committee(domain.CommitteeEvent)),
		principal(domain.RoleEmbesa, nil),
		principal(domain.RoleAdmin, nil),
	}
	posts := []domain.Post{
		post(domain.VisibilityPublic, nil),
		post(domain.VisibilityInternalAll, nil),
		post(domain.VisibilityCommitteeOnly, media),
		post(domain.VisibilityCommitteeOnly, committee(domain.CommitteeTechnique)),
		post(domain.VisibilityAdminOnly, nil),
	}

	inAudience := func(a domain.PostAudience, p domain.Post) bool {
		for _, v := range a.Visibilities {
			if p.Visibility == v {
				return true
			}
		}
		return a.Committee != nil && p.Visibility == domain.VisibilityCommitteeOnly &&
			p.CommitteeTag != nil && *p.CommitteeTag == *a.Committee
	}

	for _, v := range viewers {
		audience := PostAudience(v)
		for _, p := range posts {
			assert.Equal(t, CanViewPost(v, p), inAudience(audience, p), "role=%s visibility=%s", v.Role, p.Visibility)
		}
	}
}
