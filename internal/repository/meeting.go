package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/repository/dao"
)

var (
	ErrMeetingNotFound    = dao.ErrMeetingNotFound
	ErrAttendanceNotFound = dao.ErrAttendanceNotFound
	ErrDuplicateRSVP      = dao.ErrDuplicateRSVP
)

type MeetingDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (dao.Event, error)
	List(ctx context.Context) ([]dao.Event, error)
	ListAnnounced(ctx context.Context, now, since time.Time) ([]dao.Event, error)
	FindAttendance(ctx context.Context, eventID, memberID uuid.UUID) (dao.MeetingAttendance, error)
	InsertAttendance(ctx context.Context, a dao.MeetingAttendance) (dao.MeetingAttendance, error)
	UpdateAttendanceStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteAttendance(ctx context.Context, id uuid.UUID) error
	ListAttendance(ctx context.Context, eventID uuid.UUID) ([]dao.AttendanceRow, error)
}

type MeetingRepository struct {
	dao MeetingDAO
}

func NewMeetingRepository(dao MeetingDAO) *MeetingRepository {
	return &MeetingRepository{
		dao: dao,
	}
}

func (r *MeetingRepository) Create(ctx context.Context, m domain.Meeting) (domain.Meeting, error) {
	created, err := r.dao.Insert(ctx, dao.Event{
		Title:          m.Title,
		Description:    m.Description,
		Date:           m.Date.UTC(),
		Type:           string(m.Type),
		Location:       m.Location,
		CreatedBy:      m.CreatedBy,
		TargetAudience: committeeToDao(m.TargetAudience),
	})
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return eventDaoToDomain(created), nil
}

func (r *MeetingRepository) Update(ctx context.Context, m domain.Meeting) (domain.Meeting, error) {
	updated, err := r.dao.Update(ctx, dao.Event{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description,
		Date:           m.Date.UTC(),
		Type:           string(m.Type),
		Location:       m.Location,
		TargetAudience: committeeToDao(m.TargetAudience),
	})
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return eventDaoToDomain(updated), nil
}

func (r *MeetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *MeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return eventDaoToDomain(found), nil
}

func (r *MeetingRepository) List(ctx context.Context) ([]domain.Meeting, error) {
	found, err := r.dao.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return eventsDaoToDomain(found), nil
}

func (r *MeetingRepository) ListAnnounced(ctx context.Context, now, since time.Time) ([]domain.Meeting, error) {
	found, err := r.dao.ListAnnounced(ctx, now.UTC(), since.UTC())
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListAnnounced -> %w", err)
	}

	return eventsDaoToDomain(found), nil
}

// FindRSVP returns the member's current RSVP. A missing row is RSVPNone with
// a nil id.
func (r *MeetingRepository) FindRSVP(ctx context.Context, meetingID, memberID uuid.UUID) (uuid.UUID, domain.RSVPStatus, error) {
	found, err := r.dao.FindAttendance(ctx, meetingID, memberID)
	if err != nil {
		if errors.Is(err, dao.ErrAttendanceNotFound) {
			return uuid.Nil, domain.RSVPNone, nil
		}
		return uuid.Nil, domain.RSVPNone, fmt.Errorf("r.dao.FindAttendance -> %w", err)
	}

	return found.ID, domain.RSVPStatus(found.Status), nil
}

func (r *MeetingRepository) InsertRSVP(ctx context.Context, meetingID, memberID uuid.UUID, status domain.RSVPStatus) error {
	_, err := r.dao.InsertAttendance(ctx, dao.MeetingAttendance{
		EventID: meetingID,
		UserID:  memberID,
		Status:  string(status),
	})
	if err != nil {
		return fmt.Errorf("r.dao.InsertAttendance -> %w", err)
	}

	return nil
}

func (r *MeetingRepository) UpdateRSVP(ctx context.Context, id uuid.UUID, status domain.RSVPStatus) error {
	if err := r.dao.UpdateAttendanceStatus(ctx, id, string(status)); err != nil {
		return fmt.Errorf("r.dao.UpdateAttendanceStatus -> %w", err)
	}

	return nil
}

func (r *MeetingRepository) DeleteRSVP(ctx context.Context, id uuid.UUID) error {
	if err := r.dao.DeleteAttendance(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteAttendance -> %w", err)
	}

	return nil
}

func (r *MeetingRepository) Attendance(ctx context.Context, meetingID uuid.UUID) ([]domain.Attendance, error) {
	rows, err := r.dao.ListAttendance(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListAttendance -> %w", err)
	}

	out := make([]domain.Attendance, len(rows))
	for i, row := range rows {
		out[i] = domain.Attendance{
			ID:         row.ID,
			MeetingID:  row.EventID,
			MemberID:   row.UserID,
			MemberName: row.FullName,
			AvatarURL:  row.AvatarURL,
			Status:     domain.RSVPStatus(row.Status),
		}
	}

	return out, nil
}

func eventDaoToDomain(e dao.Event) domain.Meeting {
	return domain.Meeting{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Date:           e.Date,
		Type:           domain.MeetingType(e.Type),
		Location:       e.Location,
		CreatedBy:      e.CreatedBy,
		TargetAudience: committeeToDomain(e.TargetAudience),
		CreatedAt:      e.CreatedAt,
	}
}

func eventsDaoToDomain(events []dao.Event) []domain.Meeting {
	out := make([]domain.Meeting, len(events))
	for i, e := range events {
		out[i] = eventDaoToDomain(e)
	}
	return out
}
