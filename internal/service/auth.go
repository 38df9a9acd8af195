package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/repository"
)

var (
	ErrMemberEmailExists = repository.ErrMemberEmailExists
	ErrMemberNotFound    = repository.ErrMemberNotFound
	ErrWrongPassword     = errors.New("wrong password")
	ErrMemberBanned      = fmt.Errorf("member is banned: %w", domain.ErrPermission)
)

type AuthMemberRepository interface {
	Create(ctx context.Context, member domain.Member, role domain.Role) (domain.Member, error)
	FindByEmail(ctx context.Context, email string) (domain.Member, error)
}

type AuthService struct {
	repo    AuthMemberRepository
	revoked *RevocationList
}

func NewAuthService(repo AuthMemberRepository, revoked *RevocationList) *AuthService {
	return &AuthService{
		repo:    repo,
		revoked: revoked,
	}
}

// SignUp registers an active member with the plain member role.
func (s *AuthService) SignUp(ctx context.Context, member domain.Member, password string) (domain.Member, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return domain.Member{}, err
	}

	member.Email = strings.ToLower(strings.TrimSpace(member.Email))
	member.FullName = strings.TrimSpace(member.FullName)
	member.PasswordHash = hash
	member.Status = domain.StatusActive
	member.TotalPoints = 0

	created, err := s.repo.Create(ctx, member, domain.RoleMember)
	if err != nil {
		return domain.Member{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	zap.L().Info("member signed up", zap.String("member_id", created.ID.String()))

	return created, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (domain.Member, error) {
	member, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return domain.Member{}, ErrMemberNotFound
		}

		return domain.Member{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return domain.Member{}, ErrWrongPassword
	}

	if member.Status == domain.StatusBanned {
		return domain.Member{}, ErrMemberBanned
	}

	return member, nil
}

// SignOut revokes a token id until its expiry.
func (s *AuthService) SignOut(tokenID string, expiresAt time.Time) {
	s.revoked.Revoke(tokenID, expiresAt)
}

func (s *AuthService) IsRevoked(tokenID string) bool {
	return s.revoked.IsRevoked(tokenID)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	return string(hash), nil
}
