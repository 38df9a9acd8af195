package response

import (
	"github.com/basma-club/clubhub/internal/domain"
)

type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt int64            `json:"expires_at"`
	Member    domain.Member    `json:"member"`
	Principal domain.Principal `json:"principal"`
}

type MeResponse struct {
	Principal domain.Principal     `json:"principal"`
	Profile   domain.MemberProfile `json:"profile"`
}

type FeedResponse struct {
	Posts      []domain.PostWithEngagement `json:"posts"`
	TopMembers []domain.Member             `json:"top_members"`
}

type NotificationsResponse struct {
	HasNewMeetings bool `json:"has_new_meetings"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
