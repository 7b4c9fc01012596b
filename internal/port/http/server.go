package http

import (
	"context"
	"net/http"

	"github.com/reelcart/storefront/internal/app/config"
)

// NewServer builds the http.Server around the router with the configured
// timeouts.
func NewServer(cfg config.HTTPServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// Shutdown drains in-flight requests within the configured grace period.
func Shutdown(ctx context.Context, srv *http.Server, cfg config.HTTPServerConfig) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.TimeoutGraceful)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
