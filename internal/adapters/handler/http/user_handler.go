package http

import (
	"net/http"

	"github.com/storefront/api/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// GetProfile echoes the identity the session gate attached. It never
// runs without Protect, so a missing context user is a wiring bug.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing user context")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
