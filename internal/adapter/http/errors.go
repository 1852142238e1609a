package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
)

// errorBody is the transient notification shown to the user.
type errorBody struct {
	Toast  string            `json:"toast"`
	Fields map[string]string `json:"fields,omitempty"`
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrRemoteCall):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toastFor(err error, status int) string {
	switch status {
	case http.StatusBadRequest:
		return "check the highlighted fields"
	case http.StatusUnsupportedMediaType:
		return "only jpeg and png images are accepted"
	case http.StatusNotFound:
		return "not found"
	case http.StatusUnauthorized:
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return "invalid email or password"
		}
		return "sign in to continue"
	case http.StatusForbidden:
		return "you can only manage your own listings"
	case http.StatusBadGateway:
		return "something went wrong, try again"
	default:
		return "unexpected error"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Toast: toastFor(err, status)}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Handler: request failed", "path", r.URL.Path, "status", status, "error", err.Error())
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
