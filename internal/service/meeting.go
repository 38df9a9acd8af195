package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/metrics"
	"github.com/basma-club/clubhub/internal/policy"
	"github.com/basma-club/clubhub/internal/repository"
)

var ErrMeetingNotFound = repository.ErrMeetingNotFound

// NewMeetingWindow is how long a freshly created meeting counts as new.
const NewMeetingWindow = 48 * time.Hour

type MeetingRepository interface {
	Create(ctx context.Context, m domain.Meeting) (domain.Meeting, error)
	Update(ctx context.Context, m domain.Meeting) (domain.Meeting, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Meeting, error)
	List(ctx context.Context) ([]domain.Meeting, error)
	ListAnnounced(ctx context.Context, now, since time.Time) ([]domain.Meeting, error)
	FindRSVP(ctx context.Context, meetingID, memberID uuid.UUID) (uuid.UUID, domain.RSVPStatus, error)
	InsertRSVP(ctx context.Context, meetingID, memberID uuid.UUID, status domain.RSVPStatus) error
	UpdateRSVP(ctx context.Context, id uuid.UUID, status domain.RSVPStatus) error
	DeleteRSVP(ctx context.Context, id uuid.UUID) error
	Attendance(ctx context.Context, meetingID uuid.UUID) ([]domain.Attendance, error)
}

// MeetingNotifier is told about every new meeting.
type MeetingNotifier interface {
	MeetingCreated(m domain.Meeting)
}

type MeetingInput struct {
	Title          string
	Description    *string
	Date           time.Time
	Type           domain.MeetingType
	Location       *string
	TargetAudience *domain.Committee
}

type MeetingService struct {
	repo     MeetingRepository
	notifier MeetingNotifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewMeetingService(repo MeetingRepository, notifier MeetingNotifier, m *metrics.Metrics) *MeetingService {
	return &MeetingService{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// Schedule splits the meetings viewer may see into upcoming (soonest first)
// and past (latest first).
func (s *MeetingService) Schedule(ctx context.Context, viewer domain.Principal) (domain.MeetingSchedule, error) {
	meetings, err := s.repo.List(ctx)
	if err != nil {
		return domain.MeetingSchedule{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	now := s.now()
	schedule := domain.MeetingSchedule{
		Upcoming: []domain.Meeting{},
		Past:     []domain.Meeting{},
	}
	for _, m := range policy.FilterMeetings(viewer, meetings) {
		if m.Date.Before(now) {
			schedule.Past = append(schedule.Past, m)
		} else {
			schedule.Upcoming = append(schedule.Upcoming, m)
		}
	}

	sort.SliceStable(schedule.Upcoming, func(i, j int) bool {
		return schedule.Upcoming[i].Date.Before(schedule.Upcoming[j].Date)
	})
	sort.SliceStable(schedule.Past, func(i, j int) bool {
		return schedule.Past[i].Date.After(schedule.Past[j].Date)
	})

	return schedule, nil
}

func (s *MeetingService) Create(ctx context.Context, actor domain.Principal, in MeetingInput) (domain.Meeting, error) {
	if !policy.CanMutateMeeting(actor) {
		return domain.Meeting{}, denied("create meeting")
	}

	m, err := meetingFromInput(in)
	if err != nil {
		return domain.Meeting{}, err
	}
	creator := actor.MemberID
	m.CreatedBy = &creator

	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	if s.notifier != nil {
		s.notifier.MeetingCreated(created)
	}

	return created, nil
}

// Update replaces the editable fields of a meeting. RSVPs are kept.
func (s *MeetingService) Update(ctx context.Context, actor domain.Principal, id uuid.UUID, in MeetingInput) (domain.Meeting, error) {
	if !policy.CanMutateMeeting(actor) {
		return domain.Meeting{}, denied("update meeting")
	}

	m, err := meetingFromInput(in)
	if err != nil {
		return domain.Meeting{}, err
	}
	m.ID = id

	updated, err := s.repo.Update(ctx, m)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// Delete removes a meeting and every RSVP to it.
func (s *MeetingService) Delete(ctx context.Context, actor domain.Principal, id uuid.UUID) error {
	if !policy.CanMutateMeeting(actor) {
		return denied("delete meeting")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	zap.L().Info("meeting deleted",
		zap.String("meeting_id", id.String()),
		zap.String("member_id", actor.MemberID.String()),
	)

	return nil
}

func meetingFromInput(in MeetingInput) (domain.Meeting, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Meeting{}, invalid("title is required")
	}
	if in.Date.IsZero() {
		return domain.Meeting{}, invalid("date is required")
	}
	if in.Type == "" {
		in.Type = domain.MeetingOnline
	}
	if !in.Type.Valid() {
		return domain.Meeting{}, invalid("unknown meeting type %q", in.Type)
	}
	if in.TargetAudience != nil && !in.TargetAudience.Valid() {
		return domain.Meeting{}, invalid("unknown committee %q", *in.TargetAudience)
	}

	return domain.Meeting{
		Title:          title,
		Description:    in.Description,
		Date:           in.Date,
		Type:           in.Type,
		Location:       in.Location,
		TargetAudience: in.TargetAudience,
	}, nil
}

// visibleMeeting loads a meeting and hides it from viewers outside its
// audience.
func (s *MeetingService) visibleMeeting(ctx context.Context, viewer domain.Principal, id uuid.UUID) (domain.Meeting, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !policy.CanViewMeeting(viewer, m) {
		return domain.Meeting{}, ErrMeetingNotFound
	}

	return m, nil
}

// SetRSVP applies the RSVP toggle: requesting the current status clears it,
// any other status replaces it.
func (s *MeetingService) SetRSVP(ctx context.Context, actor domain.Principal, meetingID uuid.UUID, requested domain.RSVPStatus) (domain.AttendanceSummary, error) {
	if !actor.Authenticated() {
		return domain.AttendanceSummary{}, denied("rsvp")
	}
	if requested != domain.RSVPNone && !requested.Valid() {
		return domain.AttendanceSummary{}, invalid("unknown rsvp status %q", requested)
	}
	if _, err := s.visibleMeeting(ctx, actor, meetingID); err != nil {
		return domain.AttendanceSummary{}, err
	}

	err := s.applyRSVP(ctx, meetingID, actor.MemberID, requested)
	if errors.Is(err, repository.ErrDuplicateRSVP) {
		// Another request inserted first; plan again against its row.
		err = s.applyRSVP(ctx, meetingID, actor.MemberID, requested)
	}
	if err != nil {
		return domain.AttendanceSummary{}, err
	}

	return s.summary(ctx, meetingID, actor.MemberID)
}

func (s *MeetingService) applyRSVP(ctx context.Context, meetingID, memberID uuid.UUID, requested domain.RSVPStatus) error {
	rowID, current, err := s.repo.FindRSVP(ctx, meetingID, memberID)
	if err != nil {
		return fmt.Errorf("s.repo.FindRSVP -> %w", err)
	}

	next, action := policy.PlanRSVP(current, requested)
	switch action {
	case policy.RSVPInsert:
		err = s.repo.InsertRSVP(ctx, meetingID, memberID, next)
	case policy.RSVPUpdate:
		err = s.repo.UpdateRSVP(ctx, rowID, next)
	case policy.RSVPDelete:
		err = s.repo.DeleteRSVP(ctx, rowID)
		if isNotFound(err) {
			err = nil
		}
	}
	if err != nil {
		return fmt.Errorf("rsvp %s -> %w", action, err)
	}

	if action != policy.RSVPNoop {
		s.metrics.IncRSVP(action.String())
		zap.L().Debug("rsvp written",
			zap.String("meeting_id", meetingID.String()),
			zap.String("action", action.String()),
			zap.String("status", string(next)),
		)
	}

	return nil
}

func (s *MeetingService) Attendance(ctx context.Context, viewer domain.Principal, meetingID uuid.UUID) (domain.AttendanceSummary, error) {
	if _, err := s.visibleMeeting(ctx, viewer, meetingID); err != nil {
		return domain.AttendanceSummary{}, err
	}

	return s.summary(ctx, meetingID, viewer.MemberID)
}

func (s *MeetingService) summary(ctx context.Context, meetingID, viewer uuid.UUID) (domain.AttendanceSummary, error) {
	rows, err := s.repo.Attendance(ctx, meetingID)
	if err != nil {
		return domain.AttendanceSummary{}, fmt.Errorf("s.repo.Attendance -> %w", err)
	}

	return domain.Summarize(meetingID, viewer, rows), nil
}

// HasNewMeetings reports whether a meeting viewer can see was created in the
// last NewMeetingWindow and has not happened yet.
func (s *MeetingService) HasNewMeetings(ctx context.Context, viewer domain.Principal) (bool, error) {
	if !viewer.Authenticated() {
		return false, nil
	}

	now := s.now()
	meetings, err := s.repo.ListAnnounced(ctx, now, now.Add(-NewMeetingWindow))
	if err != nil {
		return false, fmt.Errorf("s.repo.ListAnnounced -> %w", err)
	}

	return len(policy.FilterMeetings(viewer, meetings)) > 0, nil
}
