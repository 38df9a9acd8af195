package domain

import (
	"time"

	"github.com/google/uuid"
)

type MeetingType string

const (
	MeetingOnline     MeetingType = "online"
	MeetingPresential MeetingType = "presential"
)

func (t MeetingType) Valid() bool {
	return t == MeetingOnline || t == MeetingPresential
}

type Meeting struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Description    *string     `json:"description"`
	Date           time.Time   `json:"date"`
	Type           MeetingType `json:"type"`
	Location       *string     `json:"location"`
	CreatedBy      *uuid.UUID  `json:"created_by"`
	TargetAudience *Committee  `json:"target_audience"`
	CreatedAt      time.Time   `json:"created_at"`
}

type RSVPStatus string

const (
	RSVPNone         RSVPStatus = ""
	RSVPAttending    RSVPStatus = "attending"
	RSVPMaybe        RSVPStatus = "maybe"
	RSVPNotAttending RSVPStatus = "not_attending"
)

func (s RSVPStatus) Valid() bool {
	return s == RSVPAttending || s == RSVPMaybe || s == RSVPNotAttending
}

type Attendance struct {
	ID         uuid.UUID  `json:"id"`
	MeetingID  uuid.UUID  `json:"event_id"`
	MemberID   uuid.UUID  `json:"user_id"`
	MemberName string     `json:"full_name,omitempty"`
	AvatarURL  *string    `json:"avatar_url,omitempty"`
	Status     RSVPStatus `json:"status"`
}

// AttendanceSummary groups the RSVPs of one meeting by status.
type AttendanceSummary struct {
	MeetingID         uuid.UUID    `json:"event_id"`
	ViewerStatus      RSVPStatus   `json:"viewer_status"`
	AttendingCount    int          `json:"attending_count"`
	MaybeCount        int          `json:"maybe_count"`
	NotAttendingCount int          `json:"not_attending_count"`
	Attending         []Attendance `json:"attending"`
	Maybe             []Attendance `json:"maybe"`
	NotAttending      []Attendance `json:"not_attending"`
}

// Summarize builds the summary for viewer from the raw RSVP rows.
func Summarize(meetingID, viewer uuid.UUID, rows []Attendance) AttendanceSummary {
	sum := AttendanceSummary{
		MeetingID:    meetingID,
		Attending:    []Attendance{},
		Maybe:        []Attendance{},
		NotAttending: []Attendance{},
	}
	for _, a := range rows {
		if a.MemberID == viewer {
			sum.ViewerStatus = a.Status
		}
		switch a.Status {
		case RSVPAttending:
			sum.Attending = append(sum.Attending, a)
		case RSVPMaybe:
			sum.Maybe = append(sum.Maybe, a)
		case RSVPNotAttending:
			sum.NotAttending = append(sum.NotAttending, a)
		}
	}
	sum.AttendingCount = len(sum.Attending)
	sum.MaybeCount = len(sum.Maybe)
	sum.NotAttendingCount = len(sum.NotAttending)
	return sum
}

// MeetingSchedule is the meetings page split around a reference instant.
type MeetingSchedule struct {
	Upcoming []Meeting `json:"upcoming"`
	Past     []Meeting `json:"past"`
}
