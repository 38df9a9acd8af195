package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/policy"
)

func titles(posts []domain.PostWithEngagement) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestCommitteePostScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewPostService(env.posts, env.images)

	a := env.actor(t, domain.RoleMember, nil)
	b := env.actor(t, domain.RoleRespo, committee(domain.CommitteeMedia))
	c := env.actor(t, domain.RoleMember, committee(domain.CommitteeMedia))
	d := env.actor(t, domain.RoleMember, committee(domain.CommitteeTechnique))

	_, err := svc.Create(ctx, b, policy.FlowFeed, PostInput{Title: "Open day", Content: "Everyone welcome", Visibility: domain.VisibilityPublic})
	require.NoError(t, err)
	_, err = svc.Create(ctx, b, policy.FlowFeed, PostInput{Title: "Internal", Content: "Members only", Visibility: domain.VisibilityInternalAll})
	require.NoError(t, err)
	_, err = svc.Create(ctx, b, policy.FlowFeed, PostInput{
		Title:        "Shooting plan",
		Content:      "Media crew",
		Visibility:   domain.VisibilityCommitteeOnly,
		CommitteeTag: committee(domain.CommitteeMedia),
	})
	require.NoError(t, err)

	anon, err := svc.Feed(ctx, domain.Anonymous(), FeedAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"Open day"}, titles(anon))

	feedA, err := svc.Feed(ctx, a, FeedAll)
	require.NoError(t, err)
	assert.NotContains(t, titles(feedA), "Shooting plan")

	feedC, err := svc.Feed(ctx, c, FeedAll)
	require.NoError(t, err)
	assert.Contains(t, titles(feedC), "Shooting plan")

	feedD, err := svc.Feed(ctx, d, FeedAll)
	require.NoError(t, err)
	assert.NotContains(t, titles(feedD), "Shooting plan")

	scoped, err := svc.Feed(ctx, c, FeedCommittee)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shooting plan"}, titles(scoped))
}

func TestFeedLimitAppliesToVisiblePosts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewPostService(env.posts, env.images)

	admin := env.actor(t, domain.RoleAdmin, nil)
	member := env.actor(t, domain.RoleMember, nil)
	media := env.actor(t, domain.RoleMember, committee(domain.CommitteeMedia))

	_, err := svc.Create(ctx, admin, policy.FlowBlogAdmin, PostInput{Title: "Welcome", Content: "c", Visibility: domain.VisibilityInternalAll})
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, policy.FlowBlogAdmin, PostInput{
		Title:        "Media brief",
		Content:      "c",
		Visibility:   domain.VisibilityCommitteeOnly,
		CommitteeTag: committee(domain.CommitteeMedia),
	})
	require.NoError(t, err)

	for i := 0; i < feedLimit+5; i++ {
		in := PostInput{Title: "Board notes", Content: "c", Visibility: domain.VisibilityAdminOnly}
		if i%2 == 1 {
			in = PostInput{
				Title:        "Tech sync",
				Content:      "c",
				Visibility:   domain.VisibilityCommitteeOnly,
				CommitteeTag: committee(domain.CommitteeTechnique),
			}
		}
		_, err = svc.Create(ctx, admin, policy.FlowBlogAdmin, in)
		require.NoError(t, err)
	}

	feed, err := svc.Feed(ctx, member, FeedAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"Welcome"}, titles(feed))

	feed, err = svc.Feed(ctx, media, FeedAll)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Welcome", "Media brief"}, titles(feed))

	scoped, err := svc.Feed(ctx, media, FeedCommittee)
	require.NoError(t, err)
	assert.Equal(t, []string{"Media brief"}, titles(scoped))

	scoped, err = svc.Feed(ctx, member, FeedCommittee)
	require.NoError(t, err)
	assert.Empty(t, scoped)

	feed, err = svc.Feed(ctx, admin, FeedAll)
	require.NoError(t, err)
	assert.Len(t, feed, feedLimit)
}

func TestCreatePostRules(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewPostService(env.posts, env.images)

	member := env.actor(t, domain.RoleMember, nil)
	embesa := env.actor(t, domain.RoleEmbesa, nil)
	admin := env.actor(t, domain.RoleAdmin, nil)
	in := PostInput{Title: "t", Content: "c", Visibility: domain.VisibilityPublic}

	_, err := svc.Create(ctx, member, policy.FlowFeed, in)
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = svc.Create(ctx, embesa, policy.FlowFeed, in)
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = svc.Create(ctx, embesa, policy.FlowBlogAdmin, in)
	assert.NoError(t, err)

	_, err = svc.Create(ctx, admin, policy.FlowFeed, PostInput{Title: "t", Content: "c", Visibility: domain.VisibilityCommitteeOnly})
	assert.ErrorIs(t, err, ErrCommitteeTagRequired)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, admin, policy.FlowFeed, PostInput{Title: " ", Content: "c"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, admin, policy.FlowFeed, PostInput{Title: "t", Content: "c", Visibility: "secret"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// A tag on a non committee-only post is dropped.
	created, err := svc.Create(ctx, admin, policy.FlowFeed, PostInput{
		Title:        "t",
		Content:      "c",
		Visibility:   domain.VisibilityInternalAll,
		CommitteeTag: committee(domain.CommitteeEvent),
	})
	require.NoError(t, err)
	assert.Nil(t, created.CommitteeTag)
	assert.True(t, created.CheckTag())
}

func TestBlog(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewPostService(env.posts, env.images)
	admin := env.actor(t, domain.RoleAdmin, nil)

	public, err := svc.Create(ctx, admin, policy.FlowBlogAdmin, PostInput{Title: "Caravane", Content: "Bilan", Visibility: domain.VisibilityPublic, Image: []byte("img")})
	require.NoError(t, err)
	require.NotNil(t, public.ImageURL)
	assert.Len(t, env.images.uploads, 1)
	internal, err := svc.Create(ctx, admin, policy.FlowBlogAdmin, PostInput{Title: "Budget", Content: "Interne", Visibility: domain.VisibilityAdminOnly})
	require.NoError(t, err)

	blog, err := svc.Blog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Caravane"}, titles(blog))
	assert.Equal(t, admin.FullName, blog[0].AuthorName)

	got, err := svc.BlogPost(ctx, public.ID)
	require.NoError(t, err)
	assert.Equal(t, public.ID, got.ID)

	_, err = svc.BlogPost(ctx, internal.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.BlogPost(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManagePosts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewPostService(env.posts, env.images)
	admin := env.actor(t, domain.RoleAdmin, nil)
	member := env.actor(t, domain.RoleMember, nil)

	p, err := svc.Create(ctx, admin, policy.FlowBlogAdmin, PostInput{Title: "Kits scolaires", Content: "Distribution", Visibility: domain.VisibilityPublic})
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, policy.FlowBlogAdmin, PostInput{Title: "Réunion", Content: "Ordre du jour", Visibility: domain.VisibilityInternalAll})
	require.NoError(t, err)

	_, err = svc.ManagedPosts(ctx, member, "", nil)
	assert.ErrorIs(t, err, domain.ErrPermission)

	all, err := svc.ManagedPosts(ctx, admin, "", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	internal := domain.VisibilityInternalAll
	filtered, err := svc.ManagedPosts(ctx, admin, "", &internal)
	require.NoError(t, err)
	assert.Equal(t, []string{"Réunion"}, titles(filtered))

	searched, err := svc.ManagedPosts(ctx, admin, "kits", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kits scolaires"}, titles(searched))

	updated, err := svc.Update(ctx, admin, p.ID, PostInput{
		Title:        "Kits scolaires 2024",
		Content:      "Distribution",
		Visibility:   domain.VisibilityCommitteeOnly,
		CommitteeTag: committee(domain.CommitteeEvent),
	})
	require.NoError(t, err)
	assert.Equal(t, "Kits scolaires 2024", updated.Title)
	require.NotNil(t, updated.CommitteeTag)
	assert.Equal(t, domain.CommitteeEvent, *updated.CommitteeTag)

	_, err = svc.Update(ctx, member, p.ID, PostInput{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, domain.ErrPermission)

	assert.ErrorIs(t, svc.Delete(ctx, member, p.ID), domain.ErrPermission)
	require.NoError(t, svc.Delete(ctx, admin, p.ID))
	assert.ErrorIs(t, svc.Delete(ctx, admin, p.ID), ErrPostNotFound)
}
