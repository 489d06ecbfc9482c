package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/api/internal/core/domain"
)

// TokenPair is the access/refresh token pair minted on signup and login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService mints and verifies signed tokens. Tokens are stateless;
// the SessionRegistry is the authority on which refresh token is current.
type TokenService interface {
	IssuePair(userID uuid.UUID) (TokenPair, error)
	IssueAccessToken(userID uuid.UUID) (string, error)
	VerifyAccessToken(token string) (uuid.UUID, error)
	VerifyRefreshToken(token string) (uuid.UUID, error)
}

// SessionRegistry holds the single valid refresh token per user. Put
// overwrites any previous entry and resets its TTL; Get returns "" when
// no entry exists.
type SessionRegistry interface {
	Put(ctx context.Context, userID uuid.UUID, refreshToken string, ttl time.Duration) error
	Get(ctx context.Context, userID uuid.UUID) (string, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
}
