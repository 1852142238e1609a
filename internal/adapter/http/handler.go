package http

import (
	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/listing/usecase"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
)

// SessionStore is the session state the handlers read and override.
type SessionStore interface {
	Identity() *domain.Identity
	Loading() bool
	Signed() bool
	UpdateIdentityOverride(id *domain.Identity)
}

type Handler struct {
	session        SessionStore
	auth           domain.AuthProvider
	home           *usecase.QueryEngine
	dashboard      *usecase.QueryEngine
	uploads        *usecase.UploadCache
	listings       *usecase.ListingUsecase
	logger         *logger.Logger
	maxUploadBytes int64
}

type Deps struct {
	Session        SessionStore
	Auth           domain.AuthProvider
	Home           *usecase.QueryEngine
	Dashboard      *usecase.QueryEngine
	Uploads        *usecase.UploadCache
	Listings       *usecase.ListingUsecase
	Logger         *logger.Logger
	MaxUploadBytes int64
}

func NewHandler(d Deps) *Handler {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		session:        d.Session,
		auth:           d.Auth,
		home:           d.Home,
		dashboard:      d.Dashboard,
		uploads:        d.Uploads,
		listings:       d.Listings,
		logger:         d.Logger,
		maxUploadBytes: d.MaxUploadBytes,
	}
}
