package http

import (
	"net/http"
	"time"

	"github.com/storefront/api/internal/core/services"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// cookieWriter sets and clears the token cookie pair. Both cookies are
// HttpOnly and SameSite=Strict; Secure is enabled in production.
type cookieWriter struct {
	secure bool
}

func (c cookieWriter) setAccessToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(services.AccessTokenTTL / time.Second),
	})
}

func (c cookieWriter) setRefreshToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(services.RefreshTokenTTL / time.Second),
	})
}

func (c cookieWriter) expireTokens(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: accessTokenCookie, MaxAge: -1, Path: "/", HttpOnly: true, Secure: c.secure, SameSite: http.SameSiteStrictMode})
	http.SetCookie(w, &http.Cookie{Name: refreshTokenCookie, MaxAge: -1, Path: "/", HttpOnly: true, Secure: c.secure, SameSite: http.SameSiteStrictMode})
}
