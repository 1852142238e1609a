package http

import (
	"encoding/json"
	"net/http"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
)

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	Loading  bool             `json:"loading"`
	Identity *domain.Identity `json:"identity"`
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, meResponse{Loading: h.session.Loading(), Identity: h.session.Identity()})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.NewValidationError("body", "invalid request body"))
		return
	}
	s, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Identity())
}

// Register signs out any current user, creates the account and shows the
// new display name right away instead of waiting for the provider.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.NewValidationError("body", "invalid request body"))
		return
	}
	if err := h.auth.SignOut(r.Context()); err != nil {
		h.logger.Warn("Handler.Register: sign out before register failed", "error", err.Error())
	}
	s, err := h.auth.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id := s.Identity()
	h.session.UpdateIdentityOverride(id)
	writeJSON(w, http.StatusCreated, id)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
