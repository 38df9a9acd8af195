package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/policy"
	"github.com/basma-club/clubhub/internal/storage"
)

const (
	profileHistoryLimit = 20
	profilePostsLimit   = 10
)

type MemberRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Member, error)
	FindProfile(ctx context.Context, id uuid.UUID) (domain.MemberProfile, error)
	List(ctx context.Context, filter domain.MemberFilter) ([]domain.MemberProfile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName *string, avatarURL *string) (domain.Member, error)
	ApplyUpdate(ctx context.Context, id uuid.UUID, update domain.MemberUpdate) error
	Top(ctx context.Context, committee *domain.Committee, limit int) ([]domain.Member, error)
}

type MemberPointsRepository interface {
	History(ctx context.Context, memberID uuid.UUID, limit int) ([]domain.PointsLogEntry, error)
}

type MemberPostRepository interface {
	List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error)
	Engagement(ctx context.Context, postIDs []uuid.UUID, viewer uuid.UUID) (map[uuid.UUID]domain.Engagement, error)
}

// MemberOverview is the member profile page.
type MemberOverview struct {
	Profile       domain.MemberProfile        `json:"profile"`
	PointsHistory []domain.PointsLogEntry     `json:"points_history,omitempty"`
	Posts         []domain.PostWithEngagement `json:"posts"`
}

type MemberService struct {
	repo   MemberRepository
	points MemberPointsRepository
	posts  MemberPostRepository
	images ImageStore
}

func NewMemberService(repo MemberRepository, points MemberPointsRepository, posts MemberPostRepository, images ImageStore) *MemberService {
	return &MemberService{
		repo:   repo,
		points: points,
		posts:  posts,
		images: images,
	}
}

func (s *MemberService) Directory(ctx context.Context, viewer domain.Principal, filter domain.MemberFilter) ([]domain.MemberProfile, error) {
	if !viewer.Authenticated() {
		return nil, denied("list members")
	}
	if filter.Committee != nil && !filter.Committee.Valid() {
		return nil, invalid("unknown committee %q", *filter.Committee)
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalid("unknown status %q", *filter.Status)
	}

	members, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return members, nil
}

// Overview returns a member's profile. The points history is only included
// for the member themself and for elevated viewers.
func (s *MemberService) Overview(ctx context.Context, viewer domain.Principal, id uuid.UUID) (MemberOverview, error) {
	if !viewer.Authenticated() {
		return MemberOverview{}, denied("view member profile")
	}

	profile, err := s.repo.FindProfile(ctx, id)
	if err != nil {
		return MemberOverview{}, fmt.Errorf("s.repo.FindProfile -> %w", err)
	}

	overview := MemberOverview{
		Profile: profile,
		Posts:   []domain.PostWithEngagement{},
	}

	if policy.CanViewPointsHistory(viewer, id) {
		history, err := s.points.History(ctx, id, profileHistoryLimit)
		if err != nil {
			return MemberOverview{}, fmt.Errorf("s.points.History -> %w", err)
		}
		overview.PointsHistory = history
	}

	posts, err := s.posts.List(ctx, domain.PostFilter{
		AuthorID:     &id,
		Visibilities: []domain.Visibility{domain.VisibilityPublic, domain.VisibilityInternalAll},
		Limit:        profilePostsLimit,
	})
	if err != nil {
		return MemberOverview{}, fmt.Errorf("s.posts.List -> %w", err)
	}

	decorated, err := decorate(ctx, s.posts, viewer, policy.FilterPosts(viewer, posts))
	if err != nil {
		return MemberOverview{}, err
	}
	overview.Posts = decorated

	return overview, nil
}

// UpdateMember applies a role, committee and status edit in one write.
func (s *MemberService) UpdateMember(ctx context.Context, actor domain.Principal, id uuid.UUID, update domain.MemberUpdate) (domain.MemberProfile, error) {
	if !policy.CanEditMemberRole(actor) {
		return domain.MemberProfile{}, denied("edit member")
	}
	if err := validateMemberUpdate(update); err != nil {
		return domain.MemberProfile{}, err
	}

	if err := s.repo.ApplyUpdate(ctx, id, update); err != nil {
		return domain.MemberProfile{}, fmt.Errorf("s.repo.ApplyUpdate -> %w", err)
	}

	profile, err := s.repo.FindProfile(ctx, id)
	if err != nil {
		return domain.MemberProfile{}, fmt.Errorf("s.repo.FindProfile -> %w", err)
	}

	return profile, nil
}

func (s *MemberService) UpdateProfile(ctx context.Context, actor domain.Principal, id uuid.UUID, fullName string) (domain.Member, error) {
	if !policy.CanEditProfile(actor, id) {
		return domain.Member{}, denied("edit profile")
	}

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return domain.Member{}, invalid("full name is required")
	}

	member, err := s.repo.UpdateProfile(ctx, id, &fullName, nil)
	if err != nil {
		return domain.Member{}, fmt.Errorf("s.repo.UpdateProfile -> %w", err)
	}

	return member, nil
}

func (s *MemberService) UploadAvatar(ctx context.Context, actor domain.Principal, id uuid.UUID, data []byte) (domain.Member, error) {
	if !policy.CanEditProfile(actor, id) {
		return domain.Member{}, denied("edit avatar")
	}

	url, err := s.images.UploadImage(ctx, storage.CategoryAvatars, id, data)
	if err != nil {
		return domain.Member{}, fmt.Errorf("s.images.UploadImage -> %w", err)
	}

	member, err := s.repo.UpdateProfile(ctx, id, nil, &url)
	if err != nil {
		return domain.Member{}, fmt.Errorf("s.repo.UpdateProfile -> %w", err)
	}

	return member, nil
}

// Top returns the highest scoring members for the feed sidebar.
func (s *MemberService) Top(ctx context.Context, limit int) ([]domain.Member, error) {
	members, err := s.repo.Top(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Top -> %w", err)
	}

	return members, nil
}

func validateMemberUpdate(u domain.MemberUpdate) error {
	if u.Role != nil && !u.Role.Valid() {
		return invalid("unknown role %q", *u.Role)
	}
	if u.Committee != nil && !u.Committee.Valid() {
		return invalid("unknown committee %q", *u.Committee)
	}
	if u.Status != nil && !u.Status.Valid() {
		return invalid("unknown status %q", *u.Status)
	}

	seen := make(map[domain.Committee]bool, len(u.Committees))
	for _, c := range u.Committees {
		if !c.Valid() {
			return invalid("unknown committee %q", c)
		}
		if seen[c] {
			return invalid("committee %q listed twice", c)
		}
		seen[c] = true
	}

	return nil
}
