package domain

import (
	"time"

	"github.com/google/uuid"
)

type Visibility string

const (
	VisibilityPublic        Visibility = "public"
	VisibilityInternalAll   Visibility = "internal_all"
	VisibilityCommitteeOnly Visibility = "committee_only"
	VisibilityAdminOnly     Visibility = "admin_only"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityInternalAll, VisibilityCommitteeOnly, VisibilityAdminOnly:
		return true
	}
	return false
}

type Post struct {
	ID           uuid.UUID  `json:"id"`
	AuthorID     uuid.UUID  `json:"author_id"`
	AuthorName   string     `json:"author_name,omitempty"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	ImageURL     *string    `json:"image_url"`
	Visibility   Visibility `json:"visibility"`
	CommitteeTag *Committee `json:"committee_tag"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CheckTag verifies that a committee tag is present exactly when the post is
// committee-only.
func (p Post) CheckTag() bool {
	if p.Visibility == VisibilityCommitteeOnly {
		return p.CommitteeTag != nil && p.CommitteeTag.Valid()
	}
	return p.CommitteeTag == nil
}

// PostAudience narrows a listing to what one viewer may read: posts whose
// visibility is in Visibilities, plus committee-only posts tagged Committee.
type PostAudience struct {
	Visibilities []Visibility
	Committee    *Committee
}

type PostFilter struct {
	AuthorID     *uuid.UUID
	Visibilities []Visibility
	Audience     *PostAudience
	CommitteeTag *Committee
	Search       string
	Limit        int
}

type PostComment struct {
	ID         uuid.UUID `json:"id"`
	PostID     uuid.UUID `json:"post_id"`
	MemberID   uuid.UUID `json:"member_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type Engagement struct {
	LikeCount      int  `json:"like_count"`
	CommentCount   int  `json:"comment_count"`
	ViewerHasLiked bool `json:"viewer_has_liked"`
}

// PostWithEngagement decorates a post for rendering in a feed.
type PostWithEngagement struct {
	Post
	Engagement
}
