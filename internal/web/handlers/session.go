package handlers

import (
	"net/http"

	"github.com/blockedby/dosimetria-portal/internal/web/middleware"
)

// SessionHandler describes the signed-in staff member.
type SessionHandler struct {
	matrix ModuleMatrix
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(matrix ModuleMatrix) *SessionHandler {
	return &SessionHandler{matrix: matrix}
}

// Get returns the profile loaded by the role middleware and its modules.
// GET /api/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.ProfileFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "sesión no encontrada")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"profile": profile,
		"modules": h.matrix.Modules(profile.EffectiveRole()),
	})
}
