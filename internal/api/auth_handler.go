package api

import (
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	gateway auth.Gateway
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(gateway auth.Gateway) *AuthHandler {
	return &AuthHandler{gateway: gateway}
}

// Login handles POST /auth/login: it verifies the supplied identity token and
// echoes the identity it names.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, auth.ErrMissingToken)
		return
	}

	subject, err := h.gateway.Verify(r.Context(), req.Token)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		UID:   subject.SubjectID,
		Email: subject.Email,
	})
}
