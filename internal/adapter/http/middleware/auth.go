package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
)

// SessionState is the part of the session store the gate needs.
type SessionState interface {
	Loading() bool
	Signed() bool
}

// RequireSession lets a request through only once the session is known and
// signed in.
func RequireSession(s SessionState, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.Loading() {
				log.Debug("RequireSession: session still loading", "path", r.URL.Path)
				deny(w, "checking your session, try again")
				return
			}
			if !s.Signed() {
				log.Warn("RequireSession: unauthenticated request", "path", r.URL.Path)
				deny(w, "sign in to continue")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, toast string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"toast": toast})
}
