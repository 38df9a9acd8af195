package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/metrics"
	"github.com/basma-club/clubhub/internal/policy"
	"github.com/basma-club/clubhub/internal/repository"
)

const maxCommentLength = 2000

type EngagementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Post, error)
	Engagement(ctx context.Context, postIDs []uuid.UUID, viewer uuid.UUID) (map[uuid.UUID]domain.Engagement, error)
	RemoveLike(ctx context.Context, postID, memberID uuid.UUID) (bool, error)
	AddLike(ctx context.Context, postID, memberID uuid.UUID) error
	AddComment(ctx context.Context, comment domain.PostComment) (domain.PostComment, error)
	Comments(ctx context.Context, postID uuid.UUID) ([]domain.PostComment, error)
}

// EngagementService handles likes and comments on posts.
type EngagementService struct {
	repo    EngagementRepository
	metrics *metrics.Metrics
}

func NewEngagementService(repo EngagementRepository, m *metrics.Metrics) *EngagementService {
	return &EngagementService{
		repo:    repo,
		metrics: m,
	}
}

// visiblePost loads a post and hides it from viewers who may not see it.
func (s *EngagementService) visiblePost(ctx context.Context, viewer domain.Principal, id uuid.UUID) (domain.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !policy.CanViewPost(viewer, post) {
		return domain.Post{}, ErrPostNotFound
	}

	return post, nil
}

// ToggleLike removes the actor's like when present and adds it otherwise.
// The unique (post, member) index arbitrates concurrent toggles: losing an
// insert race means the post is already liked.
func (s *EngagementService) ToggleLike(ctx context.Context, actor domain.Principal, postID uuid.UUID) (domain.Engagement, error) {
	if !actor.Authenticated() {
		return domain.Engagement{}, denied("like post")
	}
	if _, err := s.visiblePost(ctx, actor, postID); err != nil {
		return domain.Engagement{}, err
	}

	removed, err := s.repo.RemoveLike(ctx, postID, actor.MemberID)
	if err != nil {
		return domain.Engagement{}, fmt.Errorf("s.repo.RemoveLike -> %w", err)
	}

	if !removed {
		err = s.repo.AddLike(ctx, postID, actor.MemberID)
		if err != nil && !errors.Is(err, repository.ErrDuplicateLike) {
			return domain.Engagement{}, fmt.Errorf("s.repo.AddLike -> %w", err)
		}
		if err != nil {
			zap.L().Debug("concurrent like already recorded",
				zap.String("post_id", postID.String()),
				zap.String("member_id", actor.MemberID.String()),
			)
		}
	}
	s.metrics.IncLikeToggle(!removed)

	return s.engagement(ctx, postID, actor.MemberID)
}

func (s *EngagementService) Engagement(ctx context.Context, viewer domain.Principal, postID uuid.UUID) (domain.Engagement, error) {
	if _, err := s.visiblePost(ctx, viewer, postID); err != nil {
		return domain.Engagement{}, err
	}

	return s.engagement(ctx, postID, viewer.MemberID)
}

func (s *EngagementService) engagement(ctx context.Context, postID, viewer uuid.UUID) (domain.Engagement, error) {
	all, err := s.repo.Engagement(ctx, []uuid.UUID{postID}, viewer)
	if err != nil {
		return domain.Engagement{}, fmt.Errorf("s.repo.Engagement -> %w", err)
	}

	return all[postID], nil
}

// Comments returns the comments of a post, oldest first.
func (s *EngagementService) Comments(ctx context.Context, viewer domain.Principal, postID uuid.UUID) ([]domain.PostComment, error) {
	if _, err := s.visiblePost(ctx, viewer, postID); err != nil {
		return nil, err
	}

	comments, err := s.repo.Comments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Comments -> %w", err)
	}

	return comments, nil
}

func (s *EngagementService) AddComment(ctx context.Context, actor domain.Principal, postID uuid.UUID, content string) (domain.PostComment, error) {
	if !actor.Authenticated() {
		return domain.PostComment{}, denied("comment on post")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return domain.PostComment{}, invalid("comment is empty")
	}
	if len([]rune(content)) > maxCommentLength {
		return domain.PostComment{}, invalid("comment exceeds %d characters", maxCommentLength)
	}

	post, err := s.visiblePost(ctx, actor, postID)
	if err != nil {
		return domain.PostComment{}, err
	}
	if !policy.CanComment(actor, post) {
		return domain.PostComment{}, denied("comment on post")
	}

	comment, err := s.repo.AddComment(ctx, domain.PostComment{
		PostID:     postID,
		MemberID:   actor.MemberID,
		AuthorName: actor.FullName,
		Content:    content,
	})
	if err != nil {
		return domain.PostComment{}, fmt.Errorf("s.repo.AddComment -> %w", err)
	}

	return comment, nil
}
