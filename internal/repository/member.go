package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/repository/dao"
)

var (
	ErrMemberEmailExists = dao.ErrMemberEmailExists
	ErrMemberNotFound    = dao.ErrMemberNotFound
)

type MemberDAO interface {
	Insert(ctx context.Context, member dao.Member, role string) (dao.Member, error)
	FindByID(ctx context.Context, id uuid.UUID) (dao.Member, error)
	FindByEmail(ctx context.Context, email string) (dao.Member, error)
	FindRole(ctx context.Context, memberID uuid.UUID) (string, error)
	FindCommittees(ctx context.Context, memberID uuid.UUID) ([]string, error)
	List(ctx context.Context, q dao.MemberQuery) ([]dao.Member, error)
	RolesOf(ctx context.Context, memberIDs []uuid.UUID) (map[uuid.UUID]string, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]any) (dao.Member, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch dao.MemberPatch) error
	Top(ctx context.Context, committee *string, limit int) ([]dao.Member, error)
}

type MemberRepository struct {
	dao MemberDAO
}

func NewMemberRepository(dao MemberDAO) *MemberRepository {
	return &MemberRepository{
		dao: dao,
	}
}

func (r *MemberRepository) Create(ctx context.Context, member domain.Member, role domain.Role) (domain.Member, error) {
	created, err := r.dao.Insert(ctx, dao.Member{
		Email:        strings.ToLower(strings.TrimSpace(member.Email)),
		PasswordHash: member.PasswordHash,
		FullName:     member.FullName,
		AvatarURL:    member.AvatarURL,
		Committee:    committeeToDao(member.Committee),
		Status:       string(member.Status),
	}, string(role))
	if err != nil {
		return domain.Member{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return memberDaoToDomain(created), nil
}

func (r *MemberRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Member, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Member{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return memberDaoToDomain(found), nil
}

func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (domain.Member, error) {
	found, err := r.dao.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return domain.Member{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return memberDaoToDomain(found), nil
}

// FindRole returns the member's role, defaulting to member when no role row
// exists.
func (r *MemberRepository) FindRole(ctx context.Context, memberID uuid.UUID) (domain.Role, error) {
	role, err := r.dao.FindRole(ctx, memberID)
	if err != nil {
		if errors.Is(err, dao.ErrRoleNotFound) {
			return domain.RoleMember, nil
		}
		return "", fmt.Errorf("r.dao.FindRole -> %w", err)
	}

	return roleDaoToDomain(role), nil
}

func (r *MemberRepository) FindProfile(ctx context.Context, id uuid.UUID) (domain.MemberProfile, error) {
	member, err := r.FindByID(ctx, id)
	if err != nil {
		return domain.MemberProfile{}, err
	}

	role, err := r.FindRole(ctx, id)
	if err != nil {
		return domain.MemberProfile{}, err
	}

	committees, err := r.dao.FindCommittees(ctx, id)
	if err != nil {
		return domain.MemberProfile{}, fmt.Errorf("r.dao.FindCommittees -> %w", err)
	}

	return domain.MemberProfile{
		Member:     member,
		Role:       role,
		Committees: committeesDaoToDomain(committees),
	}, nil
}

func (r *MemberRepository) List(ctx context.Context, filter domain.MemberFilter) ([]domain.MemberProfile, error) {
	q := dao.MemberQuery{
		Search:    filter.Search,
		Committee: committeeToDao(filter.Committee),
	}
	if filter.Status != nil {
		status := string(*filter.Status)
		q.Status = &status
	}

	members, err := r.dao.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	ids := make([]uuid.UUID, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	roles, err := r.dao.RolesOf(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.RolesOf -> %w", err)
	}

	profiles := make([]domain.MemberProfile, len(members))
	for i, m := range members {
		profiles[i] = domain.MemberProfile{
			Member: memberDaoToDomain(m),
			Role:   roleDaoToDomain(roles[m.ID]),
		}
	}

	return profiles, nil
}

func (r *MemberRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName *string, avatarURL *string) (domain.Member, error) {
	fields := map[string]any{}
	if fullName != nil {
		fields["full_name"] = *fullName
	}
	if avatarURL != nil {
		fields["avatar_url"] = *avatarURL
	}
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}

	updated, err := r.dao.UpdateProfile(ctx, id, fields)
	if err != nil {
		return domain.Member{}, fmt.Errorf("r.dao.UpdateProfile -> %w", err)
	}

	return memberDaoToDomain(updated), nil
}

func (r *MemberRepository) ApplyUpdate(ctx context.Context, id uuid.UUID, update domain.MemberUpdate) error {
	patch := dao.MemberPatch{
		Committee:      committeeToDao(update.Committee),
		ClearCommittee: update.ClearCommittee,
	}
	if update.Role != nil {
		role := string(*update.Role)
		patch.Role = &role
	}
	if update.Status != nil {
		status := string(*update.Status)
		patch.Status = &status
	}
	if update.Committees != nil {
		patch.SetCommittees = true
		patch.Committees = make([]string, len(update.Committees))
		for i, c := range update.Committees {
			patch.Committees[i] = string(c)
		}
	}

	if err := r.dao.ApplyPatch(ctx, id, patch); err != nil {
		return fmt.Errorf("r.dao.ApplyPatch -> %w", err)
	}

	return nil
}

func (r *MemberRepository) Top(ctx context.Context, committee *domain.Committee, limit int) ([]domain.Member, error) {
	found, err := r.dao.Top(ctx, committeeToDao(committee), limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Top -> %w", err)
	}

	members := make([]domain.Member, len(found))
	for i, m := range found {
		members[i] = memberDaoToDomain(m)
	}

	return members, nil
}

func memberDaoToDomain(m dao.Member) domain.Member {
	return domain.Member{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FullName:     m.FullName,
		AvatarURL:    m.AvatarURL,
		Committee:    committeeToDomain(m.Committee),
		Status:       domain.MemberStatus(m.Status),
		TotalPoints:  m.TotalPoints,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func roleDaoToDomain(role string) domain.Role {
	r := domain.Role(role)
	if !r.Valid() {
		return domain.RoleMember
	}
	return r
}

func committeeToDomain(c *string) *domain.Committee {
	if c == nil {
		return nil
	}
	committee := domain.Committee(*c)
	return &committee
}

func committeeToDao(c *domain.Committee) *string {
	if c == nil {
		return nil
	}
	s := string(*c)
	return &s
}

func committeesDaoToDomain(cs []string) []domain.Committee {
	committees := make([]domain.Committee, len(cs))
	for i, c := range cs {
		committees[i] = domain.Committee(c)
	}
	return committees
}
