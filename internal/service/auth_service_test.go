package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tkd-backend/internal/auth"
	"tkd-backend/internal/domain"
	"tkd-backend/internal/repository"
)

type fakeUserRepo struct {
	nextID  int64
	byEmail map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return 0, repository.ErrEmailTaken
	}
	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.byEmail[user.Email] = &stored
	return user.ID, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(f.byEmail))
	for _, user := range f.byEmail {
		users = append(users, *user)
	}
	return users, nil
}

func newTestService() (AuthService, *fakeUserRepo, *auth.Codec) {
	repo := newFakeUserRepo()
	codec := auth.NewCodec("test-secret", 24*time.Hour)
	return NewAuthService(repo, codec), repo, codec
}

func TestRegister(t *testing.T) {
	svc, repo, codec := newTestService()
	ctx := context.Background()

	result, err := svc.Register(ctx, "Ann@Example.com", "secret1", "Ann", "")
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", result.User.Email)
	require.Equal(t, domain.RoleMember, result.User.Role)
	require.Empty(t, result.User.PasswordHash, "public view must not carry the hash")

	// issued token decodes to the stored identity
	claims, err := codec.Verify(result.Token)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, claims.UserID)
	require.Equal(t, "ann@example.com", claims.Email)
	require.Equal(t, domain.RoleMember, claims.Role)

	// the stored record is hashed, never plaintext
	stored := repo.byEmail["ann@example.com"]
	require.NotEqual(t, "secret1", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name, email, password, userName string
		role                            domain.Role
	}{
		{"missing email", "", "pw", "Ann", ""},
		{"missing password", "a@x.com", "", "Ann", ""},
		{"missing name", "a@x.com", "pw", "", ""},
		{"bad role", "a@x.com", "pw", "Ann", "superuser"},
	}

	for _, tc := range cases {
		_, err := svc.Register(ctx, tc.email, tc.password, tc.userName, tc.role)
		require.ErrorIs(t, err, ErrValidation, tc.name)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "secret1", "Ann", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@x.com", "other", "Other", "")
	require.ErrorIs(t, err, ErrDuplicateUser)

	// case-normalized email collides too
	_, err = svc.Register(ctx, "A@X.COM", "other", "Other", "")
	require.ErrorIs(t, err, ErrDuplicateUser)
}

func TestRegister_AdminRole(t *testing.T) {
	svc, _, codec := newTestService()

	result, err := svc.Register(context.Background(), "boss@x.com", "pw", "Boss", domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, result.User.Role)

	claims, err := codec.Verify(result.Token)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "secret1", "Ann", "")
	require.NoError(t, err)

	result, err := svc.Authenticate(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "Ann", result.User.Name)
	require.NotEmpty(t, result.Token)
}

// Unknown email and wrong password must be indistinguishable.
func TestAuthenticate_UniformFailure(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "secret1", "Ann", "")
	require.NoError(t, err)

	_, errUnknown := svc.Authenticate(ctx, "nobody@x.com", "secret1")
	_, errWrongPw := svc.Authenticate(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	require.Equal(t, errUnknown, errWrongPw)
}

func TestAuthenticate_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "", "pw")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Authenticate(ctx, "a@x.com", "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestListUsers_StripsHashes(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw", "Ann", "")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "b@x.com", "pw", "Bob", "")
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, user := range users {
		require.Empty(t, user.PasswordHash)
	}
}
