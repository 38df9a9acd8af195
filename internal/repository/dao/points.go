package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsLog is an append-only ledger entry. No update path exists.
type PointsLog struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Member          Member    `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE"`
	TaskDescription string    `gorm:"type:text;not null"`
	ComplexityScore int       `gorm:"not null;check:complexity_score > 0"`
	Date            time.Time `gorm:"not null;index"`
	AdminComment    *string   `gorm:"type:text"`
	CreatedBy       uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
}

func (PointsLog) TableName() string {
	return "points_log"
}

func (p *PointsLog) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type PointsRow struct {
	PointsLog  `gorm:"embedded"`
	MemberName string
}

// PointsTotal is the sum of a member's entries in a window.
type PointsTotal struct {
	MemberID uuid.UUID
	Points   int
	Tasks    int
}

type PointsDAO struct {
	db *gorm.DB
}

func NewPointsDAO(db *gorm.DB) *PointsDAO {
	return &PointsDAO{
		db: db,
	}
}

// Append inserts the entry and bumps the member's running total in the same
// transaction, returning the new total.
func (d *PointsDAO) Append(ctx context.Context, entry PointsLog) (PointsLog, int, error) {
	var total int

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Member{}).
			Where("id = ?", entry.MemberID).
			Update("total_points", gorm.Expr("total_points + ?", entry.ComplexityScore))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Omit("Member").Create(&entry).Error; err != nil {
			return err
		}

		return tx.Model(&Member{}).Select("total_points").Where("id = ?", entry.MemberID).Scan(&total).Error
	})
	if err != nil {
		return PointsLog{}, 0, classify(err, ErrMemberNotFound)
	}

	return entry, total, nil
}

// History returns a member's entries newest first.
func (d *PointsDAO) History(ctx context.Context, memberID uuid.UUID, limit int) ([]PointsLog, error) {
	var entries []PointsLog

	tx := d.db.WithContext(ctx).Where("member_id = ?", memberID)
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	if err := tx.Order("date DESC").Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, classify(err, nil)
	}

	return entries, nil
}

// Recent returns the latest entries across all members.
func (d *PointsDAO) Recent(ctx context.Context, limit int) ([]PointsRow, error) {
	var rows []PointsRow

	tx := d.db.WithContext(ctx).
		Table("points_log").
		Select("points_log.*, profiles.full_name AS member_name").
		Joins("LEFT JOIN profiles ON profiles.id = points_log.member_id")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	if err := tx.Order("points_log.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, classify(err, nil)
	}

	return rows, nil
}

// Totals sums entries dated at or after since, grouped by member.
func (d *PointsDAO) Totals(ctx context.Context, since time.Time) ([]PointsTotal, error) {
	var totals []PointsTotal

	tx := d.db.WithContext(ctx).
		Model(&PointsLog{}).
		Select("member_id, SUM(complexity_score) AS points, COUNT(*) AS tasks")
	if !since.IsZero() {
		tx = tx.Where("date >= ?", since)
	}

	if err := tx.Group("member_id").Scan(&totals).Error; err != nil {
		return nil, classify(err, nil)
	}

	return totals, nil
}

// Sum recomputes a member's total from the ledger.
func (d *PointsDAO) Sum(ctx context.Context, memberID uuid.UUID) (int, error) {
	var sum int

	err := d.db.WithContext(ctx).
		Model(&PointsLog{}).
		Select("COALESCE(SUM(complexity_score), 0)").
		Where("member_id = ?", memberID).
		Scan(&sum).Error
	if err != nil {
		return 0, classify(err, nil)
	}

	return sum, nil
}
