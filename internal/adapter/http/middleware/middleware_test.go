package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
	"github.com/Abdurahmanit/webimoveis/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type stubSession struct{ loading, signed bool }

func (s stubSession) Loading() bool { return s.loading }
func (s stubSession) Signed() bool  { return s.signed }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name    string
		session stubSession
		want    int
	}{
		{"loading", stubSession{loading: true, signed: true}, http.StatusUnauthorized},
		{"signed out", stubSession{}, http.StatusUnauthorized},
		{"signed in", stubSession{signed: true}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireSession(tt.session, logger.NewNop())(okHandler())
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/listings", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	m := metrics.NewMetricsManager("test")
	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/api/listings/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/listings/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.APIErrorsTotal.WithLabelValues("/api/listings/{id}", "Not Found")))
}

func TestLoggingAndTracing_PassThrough(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Tracing())
	r.Use(Logging(logger.NewNop()))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
