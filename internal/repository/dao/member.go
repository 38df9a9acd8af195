package dao

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Member struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	FullName     string    `gorm:"not null"`
	AvatarURL    *string
	Committee    *string `gorm:"type:varchar(32);index"`
	Status       string  `gorm:"type:varchar(16);not null;default:active"`
	TotalPoints  int     `gorm:"not null;default:0;check:total_points >= 0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Member) TableName() string {
	return "profiles"
}

func (m *Member) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// UserRole holds the single role of a member.
type UserRole struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Role   string    `gorm:"type:varchar(16);not null;default:member"`
	User   Member    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

func (r *UserRole) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type MemberCommittee struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_member_committee"`
	Committee string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_member_committee"`
	Member    Member    `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (MemberCommittee) TableName() string {
	return "member_committees"
}

func (c *MemberCommittee) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type MemberQuery struct {
	Search    string
	Committee *string
	Status    *string
}

// MemberPatch is applied in a single transaction. Nil fields are skipped.
type MemberPatch struct {
	Role           *string
	Committee      *string
	ClearCommittee bool
	Committees     []string
	SetCommittees  bool
	Status         *string
}

type MemberDAO struct {
	db *gorm.DB
}

func NewMemberDAO(db *gorm.DB) *MemberDAO {
	return &MemberDAO{
		db: db,
	}
}

// Insert creates the profile and its role row together.
func (d *MemberDAO) Insert(ctx context.Context, member Member, role string) (Member, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return tx.Create(&UserRole{UserID: member.ID, Role: role}).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return Member{}, ErrMemberEmailExists
		}
		return Member{}, classify(err, nil)
	}

	return member, nil
}

func (d *MemberDAO) FindByID(ctx context.Context, id uuid.UUID) (Member, error) {
	var member Member

	result := d.db.WithContext(ctx).First(&member, "id = ?", id)
	if result.Error != nil {
		return Member{}, classify(result.Error, ErrMemberNotFound)
	}

	return member, nil
}

func (d *MemberDAO) FindByEmail(ctx context.Context, email string) (Member, error) {
	var member Member

	result := d.db.WithContext(ctx).First(&member, "email = ?", strings.ToLower(email))
	if result.Error != nil {
		return Member{}, classify(result.Error, ErrMemberNotFound)
	}

	return member, nil
}

func (d *MemberDAO) FindRole(ctx context.Context, memberID uuid.UUID) (string, error) {
	var role UserRole

	result := d.db.WithContext(ctx).First(&role, "user_id = ?", memberID)
	if result.Error != nil {
		return "", classify(result.Error, ErrRoleNotFound)
	}

	return role.Role, nil
}

func (d *MemberDAO) FindCommittees(ctx context.Context, memberID uuid.UUID) ([]string, error) {
	var committees []string

	result := d.db.WithContext(ctx).
		Model(&MemberCommittee{}).
		Where("member_id = ?", memberID).
		Order("committee ASC").
		Pluck("committee", &committees)
	if result.Error != nil {
		return nil, classify(result.Error, nil)
	}

	return committees, nil
}

func (d *MemberDAO) List(ctx context.Context, q MemberQuery) ([]Member, error) {
	var members []Member

	tx := d.db.WithContext(ctx).Model(&Member{})
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if q.Committee != nil {
		tx = tx.Where("committee = ?", *q.Committee)
	}
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}

	if err := tx.Order("full_name ASC").Find(&members).Error; err != nil {
		return nil, classify(err, nil)
	}

	return members, nil
}

// RolesOf returns the role of each member that has a role row.
func (d *MemberDAO) RolesOf(ctx context.Context, memberIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	roles := make(map[uuid.UUID]string, len(memberIDs))
	if len(memberIDs) == 0 {
		return roles, nil
	}

	var rows []UserRole
	if err := d.db.WithContext(ctx).Where("user_id IN ?", memberIDs).Find(&rows).Error; err != nil {
		return nil, classify(err, nil)
	}
	for _, r := range rows {
		roles[r.UserID] = r.Role
	}

	return roles, nil
}

func (d *MemberDAO) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]any) (Member, error) {
	result := d.db.WithContext(ctx).Model(&Member{ID: id}).Updates(fields)
	if result.Error != nil {
		return Member{}, classify(result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return Member{}, ErrMemberNotFound
	}

	return d.FindByID(ctx, id)
}

// ApplyPatch writes a role, committee and status edit atomically.
func (d *MemberDAO) ApplyPatch(ctx context.Context, id uuid.UUID, patch MemberPatch) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member Member
		if err := tx.First(&member, "id = ?", id).Error; err != nil {
			return err
		}

		if patch.Role != nil {
			role := UserRole{UserID: id, Role: *patch.Role}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"role"}),
			}).Create(&role).Error
			if err != nil {
				return err
			}
		}

		fields := map[string]any{}
		if patch.ClearCommittee {
			fields["committee"] = nil
		} else if patch.Committee != nil {
			fields["committee"] = *patch.Committee
		}
		if patch.Status != nil {
			fields["status"] = *patch.Status
		}
		if len(fields) > 0 {
			if err := tx.Model(&Member{ID: id}).Updates(fields).Error; err != nil {
				return err
			}
		}

		if patch.SetCommittees {
			if err := tx.Where("member_id = ?", id).Delete(&MemberCommittee{}).Error; err != nil {
				return err
			}
			for _, c := range patch.Committees {
				if err := tx.Create(&MemberCommittee{MemberID: id, Committee: c}).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})

	return classify(err, ErrMemberNotFound)
}

// Top returns members ordered by total points, highest first.
func (d *MemberDAO) Top(ctx context.Context, committee *string, limit int) ([]Member, error) {
	var members []Member

	tx := d.db.WithContext(ctx).Where("status <> ?", "banned")
	if committee != nil {
		tx = tx.Where("committee = ?", *committee)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	if err := tx.Order("total_points DESC").Order("full_name ASC").Find(&members).Error; err != nil {
		return nil, classify(err, nil)
	}

	return members, nil
}
