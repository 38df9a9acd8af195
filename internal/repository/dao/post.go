package dao

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AuthorID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Author       Member    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Title        string    `gorm:"not null"`
	Content      string    `gorm:"type:text;not null"`
	ImageURL     *string
	Visibility   string    `gorm:"type:varchar(16);not null;default:internal_all;index"`
	CommitteeTag *string   `gorm:"type:varchar(32)"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type PostLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_like"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_like"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User      Member    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (PostLike) TableName() string {
	return "post_likes"
}

func (l *PostLike) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type PostComment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User      Member    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (PostComment) TableName() string {
	return "post_comments"
}

func (c *PostComment) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// PostRow is a post joined with its author's name.
type PostRow struct {
	Post       `gorm:"embedded"`
	AuthorName string
}

type CommentRow struct {
	PostComment `gorm:"embedded"`
	AuthorName  string
}

// AudienceQuery keeps rows whose visibility is in Visibilities, or whose
// visibility is TaggedVisibility with committee tag Tag.
type AudienceQuery struct {
	Visibilities     []string
	TaggedVisibility string
	Tag              string
}

type PostQuery struct {
	AuthorID     *uuid.UUID
	Visibilities []string
	Audience     *AudienceQuery
	CommitteeTag *string
	Search       string
	Limit        int
}

// Counts holds the aggregate engagement of one post.
type Counts struct {
	Likes    int
	Comments int
}

type PostDAO struct {
	db *gorm.DB
}

func NewPostDAO(db *gorm.DB) *PostDAO {
	return &PostDAO{
		db: db,
	}
}

func (d *PostDAO) withAuthor(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).
		Table("posts").
		Select("posts.*, profiles.full_name AS author_name").
		Joins("LEFT JOIN profiles ON profiles.id = posts.author_id")
}

func (d *PostDAO) Insert(ctx context.Context, post Post) (Post, error) {
	if err := d.db.WithContext(ctx).Omit("Author").Create(&post).Error; err != nil {
		return Post{}, classify(err, nil)
	}

	return post, nil
}

func (d *PostDAO) Update(ctx context.Context, post Post) (Post, error) {
	result := d.db.WithContext(ctx).
		Model(&Post{ID: post.ID}).
		Select("Title", "Content", "ImageURL", "Visibility", "CommitteeTag", "UpdatedAt").
		Updates(&post)
	if result.Error != nil {
		return Post{}, classify(result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return Post{}, ErrPostNotFound
	}

	return post, nil
}

func (d *PostDAO) Delete(ctx context.Context, id uuid.UUID) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&PostComment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Post{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})

	return classify(err, ErrPostNotFound)
}

func (d *PostDAO) FindByID(ctx context.Context, id uuid.UUID) (PostRow, error) {
	var row PostRow

	result := d.withAuthor(ctx).Where("posts.id = ?", id).Take(&row)
	if result.Error != nil {
		return PostRow{}, classify(result.Error, ErrPostNotFound)
	}

	return row, nil
}

// List returns posts newest first.
func (d *PostDAO) List(ctx context.Context, q PostQuery) ([]PostRow, error) {
	var rows []PostRow

	tx := d.withAuthor(ctx)
	if q.AuthorID != nil {
		tx = tx.Where("posts.author_id = ?", *q.AuthorID)
	}
	if len(q.Visibilities) > 0 {
		tx = tx.Where("posts.visibility IN ?", q.Visibilities)
	}
	if a := q.Audience; a != nil {
		if a.TaggedVisibility != "" {
			tx = tx.Where("(posts.visibility IN ? OR (posts.visibility = ? AND posts.committee_tag = ?))",
				a.Visibilities, a.TaggedVisibility, a.Tag)
		} else {
			tx = tx.Where("posts.visibility IN ?", a.Visibilities)
		}
	}
	if q.CommitteeTag != nil {
		tx = tx.Where("posts.committee_tag = ?", *q.CommitteeTag)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("(LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?)", like, like)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	if err := tx.Order("posts.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, classify(err, nil)
	}

	return rows, nil
}

// Counts aggregates likes and comments of many posts with one grouped query
// per table.
func (d *PostDAO) Counts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]Counts, error) {
	counts := make(map[uuid.UUID]Counts, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	type grouped struct {
		PostID uuid.UUID
		N      int
	}

	var likes []grouped
	err := d.db.WithContext(ctx).
		Model(&PostLike{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&likes).Error
	if err != nil {
		return nil, classify(err, nil)
	}

	var comments []grouped
	err = d.db.WithContext(ctx).
		Model(&PostComment{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&comments).Error
	if err != nil {
		return nil, classify(err, nil)
	}

	for _, g := range likes {
		c := counts[g.PostID]
		c.Likes = g.N
		counts[g.PostID] = c
	}
	for _, g := range comments {
		c := counts[g.PostID]
		c.Comments = g.N
		counts[g.PostID] = c
	}

	return counts, nil
}

// LikedBy returns the subset of postIDs liked by memberID.
func (d *PostDAO) LikedBy(ctx context.Context, postIDs []uuid.UUID, memberID uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool)
	if len(postIDs) == 0 || memberID == uuid.Nil {
		return liked, nil
	}

	var ids []uuid.UUID
	err := d.db.WithContext(ctx).
		Model(&PostLike{}).
		Where("post_id IN ? AND user_id = ?", postIDs, memberID).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, classify(err, nil)
	}
	for _, id := range ids {
		liked[id] = true
	}

	return liked, nil
}

// DeleteLike removes the like of memberID on postID and reports whether a
// row existed.
func (d *PostDAO) DeleteLike(ctx context.Context, postID, memberID uuid.UUID) (bool, error) {
	result := d.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, memberID).
		Delete(&PostLike{})
	if result.Error != nil {
		return false, classify(result.Error, nil)
	}

	return result.RowsAffected > 0, nil
}

// InsertLike relies on the (post_id, user_id) unique index to reject a
// concurrent duplicate.
func (d *PostDAO) InsertLike(ctx context.Context, postID, memberID uuid.UUID) error {
	like := PostLike{PostID: postID, UserID: memberID}
	if err := d.db.WithContext(ctx).Omit("Post", "User").Create(&like).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateLike
		}
		return classify(err, nil)
	}

	return nil
}

func (d *PostDAO) InsertComment(ctx context.Context, comment PostComment) (PostComment, error) {
	if err := d.db.WithContext(ctx).Omit("Post", "User").Create(&comment).Error; err != nil {
		return PostComment{}, classify(err, nil)
	}

	return comment, nil
}

// Comments returns the comments of a post, oldest first.
func (d *PostDAO) Comments(ctx context.Context, postID uuid.UUID) ([]CommentRow, error) {
	var rows []CommentRow

	err := d.db.WithContext(ctx).
		Table("post_comments").
		Select("post_comments.*, profiles.full_name AS author_name").
		Joins("LEFT JOIN profiles ON profiles.id = post_comments.user_id").
		Where("post_comments.post_id = ?", postID).
		Order("post_comments.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, classify(err, nil)
	}

	return rows, nil
}
