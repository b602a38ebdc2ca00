package handler

import (
	"net/http"

	"github.com/mesterwork/worksite-api/internal/auth"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger *zap.Logger
}

func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// CurrentUserResponse describes the authenticated user and the tenant
// the request operates on
type CurrentUserResponse struct {
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	TenantEmail string `json:"tenantEmail"`
	IsSuperUser bool   `json:"isSuperUser"`
	Overridden  bool   `json:"overridden"`
}

// @Summary Get current user
// @Description Returns the authenticated user and the effective tenant, including whether a super-user tenant override is active.
// @Tags Auth
// @Produce json
// @Success 200 {object} handler.CurrentUserResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	tc, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	respondJSON(w, http.StatusOK, CurrentUserResponse{
		Email:       tc.UserEmail,
		Name:        tc.DisplayName,
		TenantEmail: tc.TenantEmail,
		IsSuperUser: tc.IsSuperUser,
		Overridden:  tc.Overridden,
	})
}
