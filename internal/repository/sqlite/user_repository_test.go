package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tkd-backend/internal/domain"
	"tkd-backend/internal/repository"
)

func newTestRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := &domain.User{
		Email:        "ann@example.com",
		PasswordHash: "$2a$10$fakehash",
		Name:         "Ann",
		Role:         domain.RoleMember,
	}

	id, err := repo.Create(ctx, user)
	require.NoError(t, err)
	require.Positive(t, id)

	byEmail, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.Equal(t, id, byEmail.ID)
	require.Equal(t, "Ann", byEmail.Name)
	require.Equal(t, domain.RoleMember, byEmail.Role)
	require.Equal(t, "$2a$10$fakehash", byEmail.PasswordHash)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, byEmail.Email, byID.Email)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := &domain.User{Email: "dup@example.com", PasswordHash: "h", Name: "First", Role: domain.RoleMember}
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)

	// the unique index, not the pre-check, must reject the second insert
	second := &domain.User{Email: "dup@example.com", PasswordHash: "h2", Name: "Second", Role: domain.RoleAdmin}
	_, err = repo.Create(ctx, second)
	require.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestGet_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.GetByID(ctx, 12345)
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, users)

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := repo.Create(ctx, &domain.User{Email: email, PasswordHash: "h", Name: "N", Role: domain.RoleMember})
		require.NoError(t, err)
	}

	users, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.Equal(t, "a@x.com", users[0].Email)
}
