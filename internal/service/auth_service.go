package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tkd-backend/internal/auth"
	"tkd-backend/internal/domain"
	"tkd-backend/internal/repository"
)

var (
	// ErrValidation marks client-input problems; wrap it with the specific reason.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateUser is returned when registering an email that already has an account.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidCredentials covers both unknown email and wrong password so that
	// login failures cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthResult is what a successful registration or login hands back to the
// transport layer: the stored user (hash stripped) and a freshly issued token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AuthService describes account lifecycle operations.
type AuthService interface {
	Register(ctx context.Context, email, password, name string, role domain.Role) (*AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.Codec
}

func NewAuthService(users repository.UserRepository, tokens *auth.Codec) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, email, password, name string, role domain.Role) (*AuthResult, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be member or admin", ErrValidation)
	}

	// Pre-check is an optimization only; the unique index on email is the
	// actual enforcer and the insert below translates its violation.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateUser
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: sanitizeUser(user), Token: token}, nil
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: sanitizeUser(user), Token: token}, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
