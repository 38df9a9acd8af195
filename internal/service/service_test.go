package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/basma-club/clubhub/internal/db"
	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/repository"
	"github.com/basma-club/clubhub/internal/repository/dao"
)

// testEnv wires real repositories over an in-memory database.
type testEnv struct {
	db       *gorm.DB
	members  *repository.MemberRepository
	posts    *repository.PostRepository
	meetings *repository.MeetingRepository
	points   *repository.PointsRepository
	images   *fakeImages
	seq      int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.OpenSQLite("")
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &testEnv{
		db:       gdb,
		members:  repository.NewMemberRepository(dao.NewMemberDAO(gdb)),
		posts:    repository.NewPostRepository(dao.NewPostDAO(gdb)),
		meetings: repository.NewMeetingRepository(dao.NewMeetingDAO(gdb)),
		points:   repository.NewPointsRepository(dao.NewPointsDAO(gdb)),
		images:   &fakeImages{},
	}
}

// actor creates a member holding role and returns its principal.
func (e *testEnv) actor(t *testing.T, role domain.Role, committee *domain.Committee) domain.Principal {
	t.Helper()

	e.seq++
	m, err := e.members.Create(context.Background(), domain.Member{
		Email:        fmt.Sprintf("member%d@example.org", e.seq),
		PasswordHash: "hash",
		FullName:     fmt.Sprintf("Member %d", e.seq),
		Committee:    committee,
		Status:       domain.StatusActive,
	}, role)
	require.NoError(t, err)

	return domain.NewPrincipal(m, role)
}

func committee(c domain.Committee) *domain.Committee {
	return &c
}

type fakeImages struct {
	mu      sync.Mutex
	uploads []string
	err     error
}

func (f *fakeImages) UploadImage(_ context.Context, category string, ownerID uuid.UUID, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	path := fmt.Sprintf("%s/%s/%d.png", category, ownerID, len(f.uploads))
	f.uploads = append(f.uploads, path)

	return "https://cdn.example.org/" + path, nil
}
