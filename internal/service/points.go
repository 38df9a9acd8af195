package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/metrics"
	"github.com/basma-club/clubhub/internal/policy"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

var ErrUnsanctionedScore = fmt.Errorf("complexity score must be one of %v: %w", domain.SanctionedScores, domain.ErrValidation)

type PointsRepository interface {
	Append(ctx context.Context, entry domain.PointsLogEntry) (domain.PointsLogEntry, int, error)
	History(ctx context.Context, memberID uuid.UUID, limit int) ([]domain.PointsLogEntry, error)
	Recent(ctx context.Context, limit int) ([]domain.PointsLogEntry, error)
	Totals(ctx context.Context, since time.Time) (map[uuid.UUID]domain.PointsTotal, error)
}

type PointsMemberRepository interface {
	Top(ctx context.Context, committee *domain.Committee, limit int) ([]domain.Member, error)
}

type GrantInput struct {
	MemberID        uuid.UUID
	TaskDescription string
	ComplexityScore int
	AdminComment    *string
	Date            time.Time
}

// PointsService owns the append-only points ledger.
type PointsService struct {
	repo    PointsRepository
	members PointsMemberRepository
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewPointsService(repo PointsRepository, members PointsMemberRepository, m *metrics.Metrics) *PointsService {
	return &PointsService{
		repo:    repo,
		members: members,
		metrics: m,
		now:     time.Now,
	}
}

// GrantPoints appends a ledger entry and raises the member's total by the
// score. Nothing is written when the actor is not elevated.
func (s *PointsService) GrantPoints(ctx context.Context, actor domain.Principal, in GrantInput) (domain.PointsLogEntry, error) {
	if !policy.CanGrantPoints(actor) {
		return domain.PointsLogEntry{}, denied("grant points")
	}

	task := strings.TrimSpace(in.TaskDescription)
	if task == "" {
		return domain.PointsLogEntry{}, invalid("task description is required")
	}
	if in.ComplexityScore <= 0 {
		return domain.PointsLogEntry{}, invalid("complexity score must be positive")
	}
	if !domain.IsSanctionedScore(in.ComplexityScore) {
		return domain.PointsLogEntry{}, ErrUnsanctionedScore
	}
	if in.MemberID == uuid.Nil {
		return domain.PointsLogEntry{}, invalid("member is required")
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	var comment *string
	if in.AdminComment != nil {
		if c := strings.TrimSpace(*in.AdminComment); c != "" {
			comment = &c
		}
	}

	entry, total, err := s.repo.Append(ctx, domain.PointsLogEntry{
		MemberID:        in.MemberID,
		TaskDescription: task,
		ComplexityScore: in.ComplexityScore,
		Date:            date,
		AdminComment:    comment,
		CreatedBy:       actor.MemberID,
	})
	if err != nil {
		return domain.PointsLogEntry{}, fmt.Errorf("s.repo.Append -> %w", err)
	}

	s.metrics.AddPoints(entry.ComplexityScore)
	zap.L().Info("points granted",
		zap.String("member_id", entry.MemberID.String()),
		zap.String("granted_by", actor.MemberID.String()),
		zap.Int("score", entry.ComplexityScore),
		zap.Int("total", total),
	)

	return entry, nil
}

// HistoryFor returns a member's ledger, newest first.
func (s *PointsService) HistoryFor(ctx context.Context, viewer domain.Principal, memberID uuid.UUID, limit int) ([]domain.PointsLogEntry, error) {
	if !policy.CanViewPointsHistory(viewer, memberID) {
		return nil, denied("view points history")
	}

	entries, err := s.repo.History(ctx, memberID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("s.repo.History -> %w", err)
	}

	return entries, nil
}

// Recent lists the latest grants across all members for the admin page.
func (s *PointsService) Recent(ctx context.Context, actor domain.Principal, limit int) ([]domain.PointsLogEntry, error) {
	if !policy.CanGrantPoints(actor) {
		return nil, denied("view points log")
	}

	entries, err := s.repo.Recent(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("s.repo.Recent -> %w", err)
	}

	return entries, nil
}

// Leaderboard ranks members by points. PeriodAll ranks by running total;
// shorter periods sum the ledger entries dated inside the window and leave
// out members who scored nothing in it.
func (s *PointsService) Leaderboard(ctx context.Context, viewer domain.Principal, committee *domain.Committee, period domain.LeaderboardPeriod) ([]domain.LeaderboardEntry, error) {
	if !viewer.Authenticated() {
		return nil, denied("view leaderboard")
	}
	if committee != nil && !committee.Valid() {
		return nil, invalid("unknown committee %q", *committee)
	}
	if period == "" {
		period = domain.PeriodAll
	}
	if period != domain.PeriodAll && period != domain.PeriodMonth && period != domain.PeriodWeek {
		return nil, invalid("unknown period %q", period)
	}

	members, err := s.members.Top(ctx, committee, 0)
	if err != nil {
		return nil, fmt.Errorf("s.members.Top -> %w", err)
	}

	totals, err := s.repo.Totals(ctx, period.Since(s.now()))
	if err != nil {
		return nil, fmt.Errorf("s.repo.Totals -> %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(members))
	for _, m := range members {
		t := totals[m.ID]
		points := t.Points
		if period == domain.PeriodAll {
			points = m.TotalPoints
		} else if points == 0 {
			continue
		}

		entries = append(entries, domain.LeaderboardEntry{
			MemberID:       m.ID,
			FullName:       m.FullName,
			AvatarURL:      m.AvatarURL,
			Committee:      m.Committee,
			Points:         points,
			TasksCompleted: t.Tasks,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
