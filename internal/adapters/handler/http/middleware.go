package http

import (
	"context"
	"net/http"

	"github.com/storefront/api/internal/core/domain"
	"github.com/storefront/api/internal/core/ports"
)

type contextKey string

// CurrentUserKey holds the authenticated user (password hash stripped)
// attached by Protect.
const CurrentUserKey contextKey = "currentUser"

type AuthMiddleware struct {
	tokens ports.TokenService
	users  ports.UserService
}

func NewAuthMiddleware(tokens ports.TokenService, users ports.UserService) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
	}
}

// Protect authenticates the request from the access-token cookie and
// attaches the resolved user to the request context. A valid token whose
// user no longer exists is a 404, not a 401: the signature checked out
// but the account vanished after issuance.
func (m *AuthMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(accessTokenCookie)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "no access token provided")
			return
		}

		userID, err := m.tokens.VerifyAccessToken(cookie.Value)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid access token")
			return
		}

		user, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			writeInternalError(w, r, err)
			return
		}
		if user == nil {
			writeMessage(w, http.StatusNotFound, domain.ErrUserNotFound.Error())
			return
		}

		ctx := context.WithValue(r.Context(), CurrentUserKey, user.Sanitized())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly rejects non-admin users. It must be mounted after Protect and
// relies on the user Protect attached; it does not re-verify the token.
func (m *AuthMiddleware) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r.Context())
		if !ok || !user.IsAdmin() {
			writeMessage(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the user attached by Protect, if any.
func CurrentUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(CurrentUserKey).(*domain.User)
	return user, ok
}
