package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/policy"
	"github.com/basma-club/clubhub/internal/repository"
	"github.com/basma-club/clubhub/internal/storage"
)

var (
	ErrPostNotFound         = repository.ErrPostNotFound
	ErrCommitteeTagRequired = fmt.Errorf("committee tag is required for committee-only posts: %w", domain.ErrValidation)
)

const feedLimit = 100

// FeedScope selects the feed tab.
type FeedScope string

const (
	FeedAll       FeedScope = "all"
	FeedCommittee FeedScope = "committee"
)

type PostRepository interface {
	Create(ctx context.Context, post domain.Post) (domain.Post, error)
	Update(ctx context.Context, post domain.Post) (domain.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Post, error)
	List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error)
	Engagement(ctx context.Context, postIDs []uuid.UUID, viewer uuid.UUID) (map[uuid.UUID]domain.Engagement, error)
}

// PostInput is the writable part of a post. Image, when set, is uploaded
// and replaces the current image.
type PostInput struct {
	Title        string
	Content      string
	Visibility   domain.Visibility
	CommitteeTag *domain.Committee
	Image        []byte
}

type PostService struct {
	repo   PostRepository
	images ImageStore
	now    func() time.Time
}

func NewPostService(repo PostRepository, images ImageStore) *PostService {
	return &PostService{
		repo:   repo,
		images: images,
		now:    time.Now,
	}
}

// Feed lists the posts viewer may see, newest first. The committee scope
// keeps only posts tagged with the viewer's own committee.
func (s *PostService) Feed(ctx context.Context, viewer domain.Principal, scope FeedScope) ([]domain.PostWithEngagement, error) {
	audience := policy.PostAudience(viewer)
	filter := domain.PostFilter{
		Audience: &audience,
		Limit:    feedLimit,
	}
	if scope == FeedCommittee {
		if viewer.Committee == nil {
			return []domain.PostWithEngagement{}, nil
		}
		filter.CommitteeTag = viewer.Committee
	}

	posts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return decorate(ctx, s.repo, viewer, policy.FilterPosts(viewer, posts))
}

// Blog lists public posts for the anonymous site.
func (s *PostService) Blog(ctx context.Context) ([]domain.PostWithEngagement, error) {
	posts, err := s.repo.List(ctx, domain.PostFilter{
		Visibilities: []domain.Visibility{domain.VisibilityPublic},
	})
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return decorate(ctx, s.repo, domain.Anonymous(), posts)
}

// BlogPost returns a public post. Any other visibility reads as not found.
func (s *PostService) BlogPost(ctx context.Context, id uuid.UUID) (domain.PostWithEngagement, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.PostWithEngagement{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !policy.CanViewPost(domain.Anonymous(), post) {
		return domain.PostWithEngagement{}, ErrPostNotFound
	}

	decorated, err := decorate(ctx, s.repo, domain.Anonymous(), []domain.Post{post})
	if err != nil {
		return domain.PostWithEngagement{}, err
	}

	return decorated[0], nil
}

// ManagedPosts is the blog management listing: every post, searchable and
// filterable by visibility.
func (s *PostService) ManagedPosts(ctx context.Context, actor domain.Principal, search string, visibility *domain.Visibility) ([]domain.PostWithEngagement, error) {
	if !policy.CanMutatePost(actor, policy.FlowBlogAdmin) {
		return nil, denied("manage posts")
	}

	filter := domain.PostFilter{Search: search}
	if visibility != nil {
		if !visibility.Valid() {
			return nil, invalid("unknown visibility %q", *visibility)
		}
		filter.Visibilities = []domain.Visibility{*visibility}
	}

	posts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return decorate(ctx, s.repo, actor, posts)
}

func (s *PostService) Create(ctx context.Context, actor domain.Principal, flow policy.PostFlow, in PostInput) (domain.Post, error) {
	if !policy.CanMutatePost(actor, flow) {
		return domain.Post{}, denied("create post")
	}

	now := s.now().UTC()
	post := domain.Post{
		AuthorID:   actor.MemberID,
		AuthorName: actor.FullName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := applyPostInput(&post, in); err != nil {
		return domain.Post{}, err
	}

	if len(in.Image) > 0 {
		url, err := s.images.UploadImage(ctx, storage.CategoryPosts, actor.MemberID, in.Image)
		if err != nil {
			return domain.Post{}, fmt.Errorf("s.images.UploadImage -> %w", err)
		}
		post.ImageURL = &url
	}

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// Update edits a post from the blog management surface.
func (s *PostService) Update(ctx context.Context, actor domain.Principal, id uuid.UUID, in PostInput) (domain.Post, error) {
	if !policy.CanMutatePost(actor, policy.FlowBlogAdmin) {
		return domain.Post{}, denied("update post")
	}

	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if err := applyPostInput(&post, in); err != nil {
		return domain.Post{}, err
	}
	post.UpdatedAt = s.now().UTC()

	if len(in.Image) > 0 {
		url, err := s.images.UploadImage(ctx, storage.CategoryPosts, actor.MemberID, in.Image)
		if err != nil {
			return domain.Post{}, fmt.Errorf("s.images.UploadImage -> %w", err)
		}
		post.ImageURL = &url
	}

	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *PostService) Delete(ctx context.Context, actor domain.Principal, id uuid.UUID) error {
	if !policy.CanMutatePost(actor, policy.FlowBlogAdmin) {
		return denied("delete post")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// applyPostInput validates in and copies it onto post. A committee tag on a
// post that is not committee-only is dropped.
func applyPostInput(post *domain.Post, in PostInput) error {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" {
		return invalid("title is required")
	}
	if content == "" {
		return invalid("content is required")
	}

	visibility := in.Visibility
	if visibility == "" {
		visibility = domain.VisibilityInternalAll
	}
	if !visibility.Valid() {
		return invalid("unknown visibility %q", visibility)
	}

	post.Title = title
	post.Content = content
	post.Visibility = visibility
	post.CommitteeTag = nil
	if visibility == domain.VisibilityCommitteeOnly {
		post.CommitteeTag = in.CommitteeTag
	}

	if !post.CheckTag() {
		if post.CommitteeTag == nil {
			return ErrCommitteeTagRequired
		}
		return invalid("unknown committee %q", *post.CommitteeTag)
	}

	return nil
}

type engagementSource interface {
	Engagement(ctx context.Context, postIDs []uuid.UUID, viewer uuid.UUID) (map[uuid.UUID]domain.Engagement, error)
}

// decorate attaches engagement to posts with one aggregate lookup.
func decorate(ctx context.Context, src engagementSource, viewer domain.Principal, posts []domain.Post) ([]domain.PostWithEngagement, error) {
	out := make([]domain.PostWithEngagement, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	engagement, err := src.Engagement(ctx, ids, viewer.MemberID)
	if err != nil {
		return nil, fmt.Errorf("src.Engagement -> %w", err)
	}

	for _, p := range posts {
		out = append(out, domain.PostWithEngagement{
			Post:       p,
			Engagement: engagement[p.ID],
		})
	}

	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
