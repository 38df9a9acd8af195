package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/repository/dao"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewIdentityService(env.members)

	anon, err := svc.Resolve(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.False(t, anon.Authenticated())

	respo := env.actor(t, domain.RoleRespo, committee(domain.CommitteeMedia))
	p, err := svc.Resolve(ctx, respo.MemberID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRespo, p.Role)
	assert.True(t, p.IsElevated)
	assert.True(t, p.CanAddFeedPost())
	require.NotNil(t, p.Committee)
	assert.Equal(t, domain.CommitteeMedia, *p.Committee)

	embesa := env.actor(t, domain.RoleEmbesa, nil)
	p, err = svc.Resolve(ctx, embesa.MemberID)
	require.NoError(t, err)
	assert.True(t, p.IsElevated)
	assert.False(t, p.CanAddFeedPost())

	_, err = svc.Resolve(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveWithoutRoleRow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewIdentityService(env.members)

	m := env.actor(t, domain.RoleAdmin, nil)
	require.NoError(t, env.db.Where("user_id = ?", m.MemberID).Delete(&dao.UserRole{}).Error)

	p, err := svc.Resolve(ctx, m.MemberID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, p.Role)
	assert.False(t, p.IsElevated)
}

func TestResolveBanned(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewIdentityService(env.members)

	m := env.actor(t, domain.RoleMember, nil)
	banned := domain.StatusBanned
	require.NoError(t, env.members.ApplyUpdate(ctx, m.MemberID, domain.MemberUpdate{Status: &banned}))

	_, err := svc.Resolve(ctx, m.MemberID)
	assert.ErrorIs(t, err, ErrMemberBanned)
	assert.ErrorIs(t, err, domain.ErrPermission)
}
