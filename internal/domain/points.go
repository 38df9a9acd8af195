package domain

import (
	"time"

	"github.com/google/uuid"
)

// SanctionedScores are the complexity tiers a task may be scored with.
var SanctionedScores = []int{1, 2, 3, 5, 8, 10}

func IsSanctionedScore(score int) bool {
	for _, s := range SanctionedScores {
		if s == score {
			return true
		}
	}
	return false
}

type PointsLogEntry struct {
	ID              uuid.UUID `json:"id"`
	MemberID        uuid.UUID `json:"member_id"`
	MemberName      string    `json:"member_name,omitempty"`
	TaskDescription string    `json:"task_description"`
	ComplexityScore int       `json:"complexity_score"`
	Date            time.Time `json:"date"`
	AdminComment    *string   `json:"admin_comment"`
	CreatedBy       uuid.UUID `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

type LeaderboardPeriod string

const (
	PeriodAll   LeaderboardPeriod = "all"
	PeriodMonth LeaderboardPeriod = "month"
	PeriodWeek  LeaderboardPeriod = "week"
)

// Since returns the lower bound of the period relative to now, or the zero
// time for PeriodAll.
func (p LeaderboardPeriod) Since(now time.Time) time.Time {
	switch p {
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	}
	return time.Time{}
}

type LeaderboardEntry struct {
	Rank           int        `json:"rank"`
	MemberID       uuid.UUID  `json:"member_id"`
	FullName       string     `json:"full_name"`
	AvatarURL      *string    `json:"avatar_url"`
	Committee      *Committee `json:"committee"`
	Points         int        `json:"points"`
	TasksCompleted int        `json:"tasks_completed"`
}

// PointsTotal is a member's ledger sum over some window.
type PointsTotal struct {
	MemberID uuid.UUID
	Points   int
	Tasks    int
}
