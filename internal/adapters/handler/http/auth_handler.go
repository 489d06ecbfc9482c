package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/storefront/api/internal/core/domain"
	"github.com/storefront/api/internal/core/ports"
)

type AuthHandler struct {
	service ports.AuthService
	cookies cookieWriter
}

func NewAuthHandler(service ports.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookies: cookieWriter{secure: secureCookies},
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r signupRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.New("a valid email is required")
	}
	if len(r.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) validate() error {
	if r.Email == "" || r.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r changePasswordRequest) validate() error {
	if r.CurrentPassword == "" {
		return errors.New("current password is required")
	}
	if len(r.NewPassword) < 6 {
		return errors.New("new password must be at least 6 characters")
	}
	return nil
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	input := ports.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}

	user, pair, err := h.service.Signup(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			writeMessage(w, http.StatusConflict, domain.ErrEmailExists.Error())
			return
		}
		writeInternalError(w, r, err)
		return
	}

	h.cookies.setAccessToken(w, pair.AccessToken)
	h.cookies.setRefreshToken(w, pair.RefreshToken)
	writeJSON(w, http.StatusCreated, userResponse{User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user, pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeMessage(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
			return
		}
		writeInternalError(w, r, err)
		return
	}

	h.cookies.setAccessToken(w, pair.AccessToken)
	h.cookies.setRefreshToken(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// Logout always succeeds and always clears the cookie pair, whether or
// not a registry entry existed for the caller.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.service.Logout(r.Context(), refreshToken); err != nil {
		log.Warn().Err(err).Msg("logout: failed to delete session registry entry")
	}

	h.cookies.expireTokens(w)
	writeMessage(w, http.StatusOK, "logged out successfully")
}

// ChangePassword runs behind the session gate; the target user is the
// one the gate attached, never one named in the request.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeMessage(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
		case errors.Is(err, domain.ErrUserNotFound):
			writeMessage(w, http.StatusNotFound, domain.ErrUserNotFound.Error())
		default:
			writeInternalError(w, r, err)
		}
		return
	}

	writeMessage(w, http.StatusOK, "password updated successfully")
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "no refresh token provided")
		return
	}

	accessToken, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired), errors.Is(err, domain.ErrTokenInvalid):
			writeMessage(w, http.StatusUnauthorized, "invalid refresh token")
		case errors.Is(err, domain.ErrRefreshTokenMismatch):
			writeMessage(w, http.StatusForbidden, "invalid refresh token")
		default:
			writeInternalError(w, r, err)
		}
		return
	}

	h.cookies.setAccessToken(w, accessToken)
	writeJSON(w, http.StatusOK, refreshResponse{AccessToken: accessToken})
}
