package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/alvinobieroh/devlinks-api/internal/auth"
	"github.com/alvinobieroh/devlinks-api/internal/config"
	"github.com/alvinobieroh/devlinks-api/internal/email"
	"github.com/alvinobieroh/devlinks-api/internal/http/handlers"
	"github.com/alvinobieroh/devlinks-api/internal/http/respond"
	"github.com/alvinobieroh/devlinks-api/internal/middleware"
	"github.com/alvinobieroh/devlinks-api/internal/service"
	"github.com/alvinobieroh/devlinks-api/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// Stores bundles the persistence dependencies the router needs.
type Stores struct {
	Users storage.UserStore
	Links storage.LinkStore
}

// New wires middleware, services, and routes, and returns a ready server.
func New(cfg config.Config, log zerolog.Logger, stores Stores, mailer email.Sender) *Server {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)
	resp := respond.New(log, !cfg.IsProduction())
	validate := validator.New(validator.WithRequiredStructEnabled())

	authSvc := service.NewAuthService(stores.Users, tokens, mailer, log,
		cfg.AppBaseURL, cfg.VerifyTokenTTL, cfg.ResetTokenTTL)

	authHandler := handlers.NewAuthHandler(authSvc, resp, validate, cfg.SessionTTL, cfg.IsProduction())
	linksHandler := handlers.NewLinksHandler(stores.Links, stores.Users, resp, validate)
	profileHandler := handlers.NewProfileHandler(stores.Users, resp, validate)
	health := handlers.NewHealthHandler(time.Now(), resp)

	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimid.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	health.Register(r)
	r.Route("/devlinks-api/v1/users", func(r chi.Router) {
		authHandler.Register(r)
		linksHandler.RegisterPublic(r)
		profileHandler.RegisterPublic(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens, stores.Users, resp))
			linksHandler.Register(r)
			profileHandler.Register(r)
		})
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
