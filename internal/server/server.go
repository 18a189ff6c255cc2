package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/OeunSochetra/storefront-api/internal/auth"
	"github.com/OeunSochetra/storefront-api/internal/config"
	"github.com/OeunSochetra/storefront-api/internal/http/handlers"
	"github.com/OeunSochetra/storefront-api/internal/middleware"
	"github.com/OeunSochetra/storefront-api/internal/service"
	"github.com/OeunSochetra/storefront-api/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, logger *slog.Logger) *Server {
	mux := NewMux(cfg, store, logger)
	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewMux builds the route table without the outer middleware chain. Tests
// use it to serve requests through httptest.
func NewMux(cfg config.Config, store storage.Store, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	authSvc := service.NewAuthService(store, hasher, tokens, logger)

	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(authSvc, tokens, logger).Register(mux)
	handlers.NewProductHandler(store, logger).Register(mux)
	handlers.NewBookHandler(store, logger).Register(mux)

	return mux
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
