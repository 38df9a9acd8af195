package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a meeting row. The table keeps its historical name.
type Event struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title          string    `gorm:"not null"`
	Description    *string   `gorm:"type:text"`
	Date           time.Time `gorm:"not null;index"`
	Type           string    `gorm:"type:varchar(16);not null;default:online"`
	Location       *string
	CreatedBy      *uuid.UUID `gorm:"type:uuid"`
	Creator        *Member    `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL"`
	TargetAudience *string    `gorm:"type:varchar(32)"`
	CreatedAt      time.Time  `gorm:"index"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type MeetingAttendance struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_user"`
	Event     Event     `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	User      Member    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Status    string    `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MeetingAttendance) TableName() string {
	return "meeting_attendance"
}

func (a *MeetingAttendance) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type AttendanceRow struct {
	MeetingAttendance `gorm:"embedded"`
	FullName          string
	AvatarURL         *string
}

type MeetingDAO struct {
	db *gorm.DB
}

func NewMeetingDAO(db *gorm.DB) *MeetingDAO {
	return &MeetingDAO{
		db: db,
	}
}

func (d *MeetingDAO) Insert(ctx context.Context, event Event) (Event, error) {
	if err := d.db.WithContext(ctx).Omit("Creator").Create(&event).Error; err != nil {
		return Event{}, classify(err, nil)
	}

	return event, nil
}

// Update rewrites the editable columns of a meeting. Creator and creation
// time are kept.
func (d *MeetingDAO) Update(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).
		Model(&Event{ID: event.ID}).
		Select("Title", "Description", "Date", "Type", "Location", "TargetAudience").
		Updates(&event)
	if result.Error != nil {
		return Event{}, classify(result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrMeetingNotFound
	}

	return d.FindByID(ctx, event.ID)
}

// Delete removes a meeting together with its RSVPs.
func (d *MeetingDAO) Delete(ctx context.Context, id uuid.UUID) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&MeetingAttendance{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Event{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})

	return classify(err, ErrMeetingNotFound)
}

func (d *MeetingDAO) FindByID(ctx context.Context, id uuid.UUID) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, "id = ?", id)
	if result.Error != nil {
		return Event{}, classify(result.Error, ErrMeetingNotFound)
	}

	return event, nil
}

// List returns every meeting ordered by date, earliest first.
func (d *MeetingDAO) List(ctx context.Context) ([]Event, error) {
	var events []Event

	if err := d.db.WithContext(ctx).Order("date ASC").Find(&events).Error; err != nil {
		return nil, classify(err, nil)
	}

	return events, nil
}

// ListAnnounced returns meetings not yet held that were created after since.
func (d *MeetingDAO) ListAnnounced(ctx context.Context, now, since time.Time) ([]Event, error) {
	var events []Event

	err := d.db.WithContext(ctx).
		Where("date >= ? AND created_at >= ?", now, since).
		Order("date ASC").
		Find(&events).Error
	if err != nil {
		return nil, classify(err, nil)
	}

	return events, nil
}

func (d *MeetingDAO) FindAttendance(ctx context.Context, eventID, memberID uuid.UUID) (MeetingAttendance, error) {
	var a MeetingAttendance

	result := d.db.WithContext(ctx).First(&a, "event_id = ? AND user_id = ?", eventID, memberID)
	if result.Error != nil {
		return MeetingAttendance{}, classify(result.Error, ErrAttendanceNotFound)
	}

	return a, nil
}

// InsertAttendance relies on the (event_id, user_id) unique index.
func (d *MeetingDAO) InsertAttendance(ctx context.Context, a MeetingAttendance) (MeetingAttendance, error) {
	if err := d.db.WithContext(ctx).Omit("Event", "User").Create(&a).Error; err != nil {
		if isUniqueViolation(err) {
			return MeetingAttendance{}, ErrDuplicateRSVP
		}
		return MeetingAttendance{}, classify(err, nil)
	}

	return a, nil
}

func (d *MeetingDAO) UpdateAttendanceStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := d.db.WithContext(ctx).Model(&MeetingAttendance{ID: id}).Update("status", status)
	if result.Error != nil {
		return classify(result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return ErrAttendanceNotFound
	}

	return nil
}

func (d *MeetingDAO) DeleteAttendance(ctx context.Context, id uuid.UUID) error {
	result := d.db.WithContext(ctx).Delete(&MeetingAttendance{}, "id = ?", id)
	if result.Error != nil {
		return classify(result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return ErrAttendanceNotFound
	}

	return nil
}

func (d *MeetingDAO) ListAttendance(ctx context.Context, eventID uuid.UUID) ([]AttendanceRow, error) {
	var rows []AttendanceRow

	err := d.db.WithContext(ctx).
		Table("meeting_attendance").
		Select("meeting_attendance.*, profiles.full_name, profiles.avatar_url").
		Joins("LEFT JOIN profiles ON profiles.id = meeting_attendance.user_id").
		Where("meeting_attendance.event_id = ?", eventID).
		Order("meeting_attendance.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, classify(err, nil)
	}

	return rows, nil
}
