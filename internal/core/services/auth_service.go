package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/api/internal/core/domain"
	"github.com/storefront/api/internal/core/ports"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users    ports.UserRepository
	registry ports.SessionRegistry
	tokens   ports.TokenService
}

func NewAuthService(users ports.UserRepository, registry ports.SessionRegistry, tokens ports.TokenService) ports.AuthService {
	return &AuthService{
		users:    users,
		registry: registry,
		tokens:   tokens,
	}
}

func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput) (*domain.User, ports.TokenPair, error) {
	email := normalizeEmail(input.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ports.TokenPair{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, ports.TokenPair{}, domain.ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ports.TokenPair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, ports.TokenPair{}, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, ports.TokenPair{}, err
	}

	return user.Sanitized(), pair, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, ports.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, ports.TokenPair{}, fmt.Errorf("failed to look up user: %w", err)
	}

	// Unknown email and wrong password yield the same error so the
	// response does not reveal which field was wrong.
	if user == nil {
		return nil, ports.TokenPair{}, domain.ErrInvalidCredentials
	}
	if !user.ComparePassword(password) {
		return nil, ports.TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, ports.TokenPair{}, err
	}

	return user.Sanitized(), pair, nil
}

// Logout drops the caller's registry entry. A missing or malformed
// refresh token is not an error: logout is idempotent and the handler
// clears the cookies regardless.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil
	}

	return s.registry.Delete(ctx, userID)
}

// Refresh mints a new access token for a valid, current refresh token.
// The refresh token itself is not rotated: rotation would require
// rewriting the registry entry and reissuing the refresh cookie, and the
// fixed 7-day window is an accepted trade-off here.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	stored, err := s.registry.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to read session registry: %w", err)
	}

	// The registry holds the only recognized refresh token per user. A
	// missing entry or any byte difference means the presented token was
	// superseded or revoked.
	if stored == "" || stored != refreshToken {
		return "", domain.ErrRefreshTokenMismatch
	}

	return s.tokens.IssueAccessToken(userID)
}

// ChangePassword verifies the current password before persisting a new
// hash. The registry entry is untouched: the caller keeps their session.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID.String())
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	if !user.ComparePassword(currentPassword) {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// issueSession mints the token pair and records the refresh token as the
// user's single valid session. The registry write must succeed before any
// cookie is set; a token without a revocation record would be
// irrevocable for its full lifetime.
func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (ports.TokenPair, error) {
	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	if err := s.registry.Put(ctx, user.ID, pair.RefreshToken, RefreshTokenTTL); err != nil {
		return ports.TokenPair{}, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return pair, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
