package domain

import "errors"

var (
	ErrEmailExists          = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrRefreshTokenMismatch = errors.New("refresh token mismatch")
	ErrInternal             = errors.New("internal server error")
)
