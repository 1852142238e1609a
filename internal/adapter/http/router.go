package http

import (
	"net/http"

	"github.com/Abdurahmanit/webimoveis/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/webimoveis/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, m *metrics.MetricsManager) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Tracing())
	r.Use(middleware.Logging(h.logger))
	r.Use(middleware.Metrics(m))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/me", h.Me)
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/logout", h.Logout)
		})

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", h.ListListings)
			r.Post("/filter", h.ApplyFilter)
			r.Delete("/filter", h.ClearFilter)
			r.Post("/search", h.Search)
			r.Get("/{id}", h.GetListing)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(middleware.RequireSession(h.session, h.logger))
			r.Get("/listings", h.ListOwned)
			r.Post("/listings", h.CreateListing)
			r.Delete("/listings/{id}", h.DeleteListing)
			r.Get("/images", h.ListImages)
			r.Post("/images", h.UploadImage)
			r.Delete("/images/{name}", h.RemoveImage)
		})
	})
	return r
}
