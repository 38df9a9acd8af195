package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/domain"
)

type IdentityMemberRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Member, error)
	FindRole(ctx context.Context, memberID uuid.UUID) (domain.Role, error)
}

// IdentityService turns an authenticated member id into a Principal.
type IdentityService struct {
	repo IdentityMemberRepository
}

func NewIdentityService(repo IdentityMemberRepository) *IdentityService {
	return &IdentityService{
		repo: repo,
	}
}

// Resolve returns the anonymous principal for uuid.Nil.
func (s *IdentityService) Resolve(ctx context.Context, memberID uuid.UUID) (domain.Principal, error) {
	if memberID == uuid.Nil {
		return domain.Anonymous(), nil
	}

	member, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if member.Status == domain.StatusBanned {
		return domain.Principal{}, ErrMemberBanned
	}

	role, err := s.repo.FindRole(ctx, memberID)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("s.repo.FindRole -> %w", err)
	}

	return domain.NewPrincipal(member, role), nil
}
