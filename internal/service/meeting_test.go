package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/repository/dao"
)

type recordingNotifier struct {
	created []domain.Meeting
}

func (n *recordingNotifier) MeetingCreated(m domain.Meeting) {
	n.created = append(n.created, m)
}

func TestRSVPScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewMeetingService(env.meetings, nil, nil)

	admin := env.actor(t, domain.RoleAdmin, nil)
	member := env.actor(t, domain.RoleMember, nil)
	x, err := svc.Create(ctx, admin, MeetingInput{Title: "AG", Date: time.Now().Add(24 * time.Hour)})
	require.NoError(t, err)

	sum, err := svc.SetRSVP(ctx, member, x.ID, domain.RSVPAttending)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AttendingCount)
	assert.Equal(t, 0, sum.MaybeCount)
	assert.Equal(t, domain.RSVPAttending, sum.ViewerStatus)
	assert.Equal(t, member.FullName, sum.Attending[0].MemberName)

	sum, err = svc.SetRSVP(ctx, member, x.ID, domain.RSVPMaybe)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.AttendingCount)
	assert.Equal(t, 1, sum.MaybeCount)
	assert.Equal(t, domain.RSVPMaybe, sum.ViewerStatus)

	var rows int64
	require.NoError(t, env.db.Model(&dao.MeetingAttendance{}).Where("event_id = ?", x.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	sum, err = svc.SetRSVP(ctx, member, x.ID, domain.RSVPMaybe)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.MaybeCount)
	assert.Equal(t, domain.RSVPNone, sum.ViewerStatus)

	sum, err = svc.SetRSVP(ctx, member, x.ID, domain.RSVPNone)
	require.NoError(t, err)
	assert.Equal(t, domain.RSVPNone, sum.ViewerStatus)

	_, err = svc.SetRSVP(ctx, member, x.ID, "sometimes")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.SetRSVP(ctx, domain.Anonymous(), x.ID, domain.RSVPAttending)
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = svc.SetRSVP(ctx, member, uuid.New(), domain.RSVPAttending)
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestSetRSVPTwiceClears(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewMeetingService(env.meetings, nil, nil)
	admin := env.actor(t, domain.RoleAdmin, nil)
	m, err := svc.Create(ctx, admin, MeetingInput{Title: "AG", Date: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	for _, status := range []domain.RSVPStatus{domain.RSVPAttending, domain.RSVPMaybe, domain.RSVPNotAttending} {
		member := env.actor(t, domain.RoleMember, nil)

		_, err := svc.SetRSVP(ctx, member, m.ID, status)
		require.NoError(t, err)
		sum, err := svc.SetRSVP(ctx, member, m.ID, status)
		require.NoError(t, err)
		assert.Equal(t, domain.RSVPNone, sum.ViewerStatus, status)
	}

	sum, err := svc.Attendance(ctx, admin, m.ID)
	require.NoError(t, err)
	assert.Zero(t, sum.AttendingCount+sum.MaybeCount+sum.NotAttendingCount)
}

func TestCreateMeeting(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	notifier := &recordingNotifier{}
	svc := NewMeetingService(env.meetings, notifier, nil)

	member := env.actor(t, domain.RoleMember, nil)
	embesa := env.actor(t, domain.RoleEmbesa, nil)
	date := time.Now().Add(time.Hour)

	_, err := svc.Create(ctx, member, MeetingInput{Title: "AG", Date: date})
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = svc.Create(ctx, embesa, MeetingInput{Title: "", Date: date})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, embesa, MeetingInput{Title: "AG", Date: date, Type: "hybrid"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, embesa, MeetingInput{Title: "AG"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	m, err := svc.Create(ctx, embesa, MeetingInput{Title: "AG", Date: date, TargetAudience: committee(domain.CommitteeEvent)})
	require.NoError(t, err)
	assert.Equal(t, domain.MeetingOnline, m.Type)
	require.NotNil(t, m.CreatedBy)
	assert.Equal(t, embesa.MemberID, *m.CreatedBy)

	require.Len(t, notifier.created, 1)
	assert.Equal(t, m.ID, notifier.created[0].ID)
}

func TestUpdateAndDeleteMeeting(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	notifier := &recordingNotifier{}
	svc := NewMeetingService(env.meetings, notifier, nil)

	respo := env.actor(t, domain.RoleRespo, committee(domain.CommitteeEvent))
	embesa := env.actor(t, domain.RoleEmbesa, nil)
	member := env.actor(t, domain.RoleMember, committee(domain.CommitteeMedia))
	when := time.Now().Add(72 * time.Hour).Truncate(time.Second)

	m, err := svc.Create(ctx, respo, MeetingInput{Title: "Planning", Date: when})
	require.NoError(t, err)
	_, err = svc.SetRSVP(ctx, member, m.ID, domain.RSVPAttending)
	require.NoError(t, err)

	_, err = svc.Update(ctx, member, m.ID, MeetingInput{Title: "Hijack", Date: when})
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = svc.Update(ctx, respo, m.ID, MeetingInput{Title: " ", Date: when})
	assert.ErrorIs(t, err, domain.ErrValidation)

	place := "Room B"
	updated, err := svc.Update(ctx, embesa, m.ID, MeetingInput{
		Title:          " Planning v2 ",
		Date:           when.Add(time.Hour),
		Type:           domain.MeetingPresential,
		Location:       &place,
		TargetAudience: committee(domain.CommitteeEvent),
	})
	require.NoError(t, err)
	assert.Equal(t, "Planning v2", updated.Title)
	assert.Equal(t, domain.MeetingPresential, updated.Type)
	assert.True(t, updated.Date.Equal(when.Add(time.Hour)))
	require.NotNil(t, updated.CreatedBy)
	assert.Equal(t, respo.MemberID, *updated.CreatedBy)
	assert.Len(t, notifier.created, 1)

	// The new audience hides the meeting from the media member.
	_, err = svc.Attendance(ctx, member, m.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(ctx, respo, uuid.New(), MeetingInput{Title: "Ghost", Date: when})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, member, m.ID), domain.ErrPermission)
	require.NoError(t, svc.Delete(ctx, respo, m.ID))
	assert.ErrorIs(t, svc.Delete(ctx, respo, m.ID), domain.ErrNotFound)

	var rows int64
	require.NoError(t, env.db.Model(&dao.MeetingAttendance{}).Where("event_id = ?", m.ID).Count(&rows).Error)
	assert.Zero(t, rows)

	schedule, err := svc.Schedule(ctx, respo)
	require.NoError(t, err)
	assert.Empty(t, schedule.Upcoming)
}

func TestScheduleAndAudience(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewMeetingService(env.meetings, nil, nil)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	admin := env.actor(t, domain.RoleAdmin, nil)
	media := env.actor(t, domain.RoleMember, committee(domain.CommitteeMedia))
	loner := env.actor(t, domain.RoleMember, nil)

	create := func(title string, date time.Time, audience *domain.Committee) domain.Meeting {
		m, err := svc.Create(ctx, admin, MeetingInput{Title: title, Date: date, TargetAudience: audience})
		require.NoError(t, err)
		return m
	}
	create("past general", now.Add(-48*time.Hour), nil)
	create("older past", now.Add(-96*time.Hour), nil)
	create("next week", now.Add(7*24*time.Hour), nil)
	create("tomorrow media", now.Add(24*time.Hour), committee(domain.CommitteeMedia))
	hidden := create("tomorrow event", now.Add(24*time.Hour), committee(domain.CommitteeEvent))

	names := func(ms []domain.Meeting) []string {
		out := make([]string, len(ms))
		for i, m := range ms {
			out[i] = m.Title
		}
		return out
	}

	s, err := svc.Schedule(ctx, media)
	require.NoError(t, err)
	assert.Equal(t, []string{"tomorrow media", "next week"}, names(s.Upcoming))
	assert.Equal(t, []string{"past general", "older past"}, names(s.Past))

	s, err = svc.Schedule(ctx, loner)
	require.NoError(t, err)
	assert.Equal(t, []string{"next week"}, names(s.Upcoming))

	s, err = svc.Schedule(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, s.Upcoming, 3)

	s, err = svc.Schedule(ctx, domain.Anonymous())
	require.NoError(t, err)
	assert.Empty(t, s.Upcoming)
	assert.Empty(t, s.Past)

	_, err = svc.Attendance(ctx, media, hidden.ID)
	assert.ErrorIs(t, err, ErrMeetingNotFound)
	_, err = svc.SetRSVP(ctx, media, hidden.ID, domain.RSVPAttending)
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestHasNewMeetings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewMeetingService(env.meetings, nil, nil)

	admin := env.actor(t, domain.RoleAdmin, nil)
	media := env.actor(t, domain.RoleMember, committee(domain.CommitteeMedia))
	event := env.actor(t, domain.RoleMember, committee(domain.CommitteeEvent))

	has, err := svc.HasNewMeetings(ctx, media)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = svc.Create(ctx, admin, MeetingInput{Title: "Media sync", Date: time.Now().Add(time.Hour), TargetAudience: committee(domain.CommitteeMedia)})
	require.NoError(t, err)

	has, err = svc.HasNewMeetings(ctx, media)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = svc.HasNewMeetings(ctx, event)
	require.NoError(t, err)
	assert.False(t, has)

	has, err = svc.HasNewMeetings(ctx, domain.Anonymous())
	require.NoError(t, err)
	assert.False(t, has)

	svc.now = func() time.Time { return time.Now().Add(72 * time.Hour) }
	has, err = svc.HasNewMeetings(ctx, media)
	require.NoError(t, err)
	assert.False(t, has)
}
