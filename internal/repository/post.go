package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/repository/dao"
)

var (
	ErrPostNotFound  = dao.ErrPostNotFound
	ErrDuplicateLike = dao.ErrDuplicateLike
)

type PostDAO interface {
	Insert(ctx context.Context, post dao.Post) (dao.Post, error)
	Update(ctx context.Context, post dao.Post) (dao.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (dao.PostRow, error)
	List(ctx context.Context, q dao.PostQuery) ([]dao.PostRow, error)
	Counts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]dao.Counts, error)
	LikedBy(ctx context.Context, postIDs []uuid.UUID, memberID uuid.UUID) (map[uuid.UUID]bool, error)
	DeleteLike(ctx context.Context, postID, memberID uuid.UUID) (bool, error)
	InsertLike(ctx context.Context, postID, memberID uuid.UUID) error
	InsertComment(ctx context.Context, comment dao.PostComment) (dao.PostComment, error)
	Comments(ctx context.Context, postID uuid.UUID) ([]dao.CommentRow, error)
}

type PostRepository struct {
	dao PostDAO
}

func NewPostRepository(dao PostDAO) *PostRepository {
	return &PostRepository{
		dao: dao,
	}
}

func (r *PostRepository) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	created, err := r.dao.Insert(ctx, postDomainToDao(post))
	if err != nil {
		return domain.Post{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	p := postDaoToDomain(created)
	p.AuthorName = post.AuthorName

	return p, nil
}

func (r *PostRepository) Update(ctx context.Context, post domain.Post) (domain.Post, error) {
	if _, err := r.dao.Update(ctx, postDomainToDao(post)); err != nil {
		return domain.Post{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.FindByID(ctx, post.ID)
}

func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	row, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return postRowToDomain(row), nil
}

func (r *PostRepository) List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	q := dao.PostQuery{
		AuthorID: filter.AuthorID,
		Search:   filter.Search,
		Limit:    filter.Limit,
	}
	for _, v := range filter.Visibilities {
		q.Visibilities = append(q.Visibilities, string(v))
	}
	if a := filter.Audience; a != nil {
		q.Audience = &dao.AudienceQuery{}
		for _, v := range a.Visibilities {
			q.Audience.Visibilities = append(q.Audience.Visibilities, string(v))
		}
		if a.Committee != nil {
			q.Audience.TaggedVisibility = string(domain.VisibilityCommitteeOnly)
			q.Audience.Tag = string(*a.Committee)
		}
	}
	if filter.CommitteeTag != nil {
		tag := string(*filter.CommitteeTag)
		q.CommitteeTag = &tag
	}

	rows, err := r.dao.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	posts := make([]domain.Post, len(rows))
	for i, row := range rows {
		posts[i] = postRowToDomain(row)
	}

	return posts, nil
}

// Engagement returns like and comment counts of every post in postIDs, and
// whether viewer liked it. A nil viewer never has liked anything.
func (r *PostRepository) Engagement(ctx context.Context, postIDs []uuid.UUID, viewer uuid.UUID) (map[uuid.UUID]domain.Engagement, error) {
	counts, err := r.dao.Counts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Counts -> %w", err)
	}

	liked, err := r.dao.LikedBy(ctx, postIDs, viewer)
	if err != nil {
		return nil, fmt.Errorf("r.dao.LikedBy -> %w", err)
	}

	out := make(map[uuid.UUID]domain.Engagement, len(postIDs))
	for _, id := range postIDs {
		c := counts[id]
		out[id] = domain.Engagement{
			LikeCount:      c.Likes,
			CommentCount:   c.Comments,
			ViewerHasLiked: liked[id],
		}
	}

	return out, nil
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, memberID uuid.UUID) (bool, error) {
	removed, err := r.dao.DeleteLike(ctx, postID, memberID)
	if err != nil {
		return false, fmt.Errorf("r.dao.DeleteLike -> %w", err)
	}

	return removed, nil
}

func (r *PostRepository) AddLike(ctx context.Context, postID, memberID uuid.UUID) error {
	if err := r.dao.InsertLike(ctx, postID, memberID); err != nil {
		return fmt.Errorf("r.dao.InsertLike -> %w", err)
	}

	return nil
}

func (r *PostRepository) AddComment(ctx context.Context, comment domain.PostComment) (domain.PostComment, error) {
	created, err := r.dao.InsertComment(ctx, dao.PostComment{
		PostID:  comment.PostID,
		UserID:  comment.MemberID,
		Content: comment.Content,
	})
	if err != nil {
		return domain.PostComment{}, fmt.Errorf("r.dao.InsertComment -> %w", err)
	}

	return domain.PostComment{
		ID:         created.ID,
		PostID:     created.PostID,
		MemberID:   created.UserID,
		AuthorName: comment.AuthorName,
		Content:    created.Content,
		CreatedAt:  created.CreatedAt,
	}, nil
}

func (r *PostRepository) Comments(ctx context.Context, postID uuid.UUID) ([]domain.PostComment, error) {
	rows, err := r.dao.Comments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Comments -> %w", err)
	}

	comments := make([]domain.PostComment, len(rows))
	for i, row := range rows {
		comments[i] = domain.PostComment{
			ID:         row.ID,
			PostID:     row.PostID,
			MemberID:   row.UserID,
			AuthorName: row.AuthorName,
			Content:    row.Content,
			CreatedAt:  row.CreatedAt,
		}
	}

	return comments, nil
}

func postDomainToDao(p domain.Post) dao.Post {
	return dao.Post{
		ID:           p.ID,
		AuthorID:     p.AuthorID,
		Title:        p.Title,
		Content:      p.Content,
		ImageURL:     p.ImageURL,
		Visibility:   string(p.Visibility),
		CommitteeTag: committeeToDao(p.CommitteeTag),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func postDaoToDomain(p dao.Post) domain.Post {
	return domain.Post{
		ID:           p.ID,
		AuthorID:     p.AuthorID,
		Title:        p.Title,
		Content:      p.Content,
		ImageURL:     p.ImageURL,
		Visibility:   domain.Visibility(p.Visibility),
		CommitteeTag: committeeToDomain(p.CommitteeTag),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func postRowToDomain(row dao.PostRow) domain.Post {
	p := postDaoToDomain(row.Post)
	p.AuthorName = row.AuthorName
	return p
}
