package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storefront/api/internal/core/domain"
	"github.com/storefront/api/internal/core/ports"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenService signs access and refresh tokens with two independent
// HS256 secrets, so a leaked refresh secret cannot forge access tokens
// and vice versa.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

type TokenServiceOption func(*TokenService)

// WithNowFunc sets the clock used for issuing and verifying tokens
// (primarily for testing expiry behavior).
func WithNowFunc(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(accessSecret, refreshSecret string, options ...TokenServiceOption) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("access and refresh token secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}

	s := &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		now:           time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *TokenService) IssuePair(userID uuid.UUID) (ports.TokenPair, error) {
	accessToken, err := s.sign(userID, s.accessSecret, AccessTokenTTL)
	if err != nil {
		return ports.TokenPair{}, err
	}

	refreshToken, err := s.sign(userID, s.refreshSecret, RefreshTokenTTL)
	if err != nil {
		return ports.TokenPair{}, err
	}

	return ports.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *TokenService) IssueAccessToken(userID uuid.UUID) (string, error) {
	return s.sign(userID, s.accessSecret, AccessTokenTTL)
}

func (s *TokenService) VerifyAccessToken(token string) (uuid.UUID, error) {
	return s.verify(token, s.accessSecret)
}

func (s *TokenService) VerifyRefreshToken(token string) (uuid.UUID, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) sign(userID uuid.UUID, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *TokenService) verify(token string, secret []byte) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, domain.ErrTokenExpired
		}
		return uuid.Nil, domain.ErrTokenInvalid
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, domain.ErrTokenInvalid
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, domain.ErrTokenInvalid
	}

	return userID, nil
}
