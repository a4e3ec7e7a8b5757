package handlers

import (
	"net/http"
	"time"

	"github.com/aula-platform/aula/internal/guard"
)

// AdminHandler exposes operational endpoints for administrators
type AdminHandler struct {
	guard *guard.LoginGuard
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(loginGuard *guard.LoginGuard) *AdminHandler {
	return &AdminHandler{guard: loginGuard}
}

// GuardStats returns a snapshot of the login guard's tracking state
func (h *AdminHandler) GuardStats(w http.ResponseWriter, r *http.Request) {
	stats := h.guard.GetStats(time.Now())
	writeJSON(w, http.StatusOK, stats)
}
