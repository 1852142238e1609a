package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/webimoveis/internal/config"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
)

// NewServer builds the HTTP server and returns a cleanup that shuts it
// down gracefully within the configured timeout.
func NewServer(cfg config.HTTPConfig, handler http.Handler, appLogger *logger.Logger) (*http.Server, func(ctx context.Context)) {
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	cleanup := func(ctx context.Context) {
		if cfg.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.ShutdownTimeout)
			defer cancel()
		}
		appLogger.Info("HTTP server shutting down", "addr", server.Addr)
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server shutdown failed", "error", err.Error())
			return
		}
		appLogger.Info("HTTP server stopped")
	}
	return server, cleanup
}
