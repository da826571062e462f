// Package server wires the catalog application together and runs the HTTP
// server.
//
// This is the composition root: the database, session manager, provider
// registry, services and handlers are all constructed here and connected to
// their routes. main.go only reads configuration and calls New/Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/movie-catalog/internal/handler"
	"github.com/sakif/movie-catalog/internal/middleware"
	"github.com/sakif/movie-catalog/internal/provider"
	sqliteRepo "github.com/sakif/movie-catalog/internal/repository/sqlite"
	"github.com/sakif/movie-catalog/internal/service"
	"github.com/sakif/movie-catalog/internal/session"
)

// Config holds server configuration.
type Config struct {
	Port   int
	DBPath string

	GoogleClientID     string
	GoogleClientSecret string
	FacebookAppID      string
	FacebookAppSecret  string
}

// Server owns the router and the resources that need orderly teardown: the
// database connection and the rate limiter's background goroutine.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	limiter *middleware.RateLimiter
}

// New assembles the full dependency chain:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// Providers without credentials are simply not registered; their callback
// endpoints then reject with a validation error instead of the server
// refusing to start.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		limiter: middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig()),
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		s.limiter.Stop()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Provider registry ===
	providers := provider.Registry{}
	if s.config.GoogleClientID != "" && s.config.GoogleClientSecret != "" {
		g := provider.NewGoogle(s.config.GoogleClientID, s.config.GoogleClientSecret)
		providers[g.Name()] = g
	} else {
		s.logger.Warn("Google credentials missing, Google sign-in disabled")
	}
	if s.config.FacebookAppID != "" && s.config.FacebookAppSecret != "" {
		f := provider.NewFacebook(s.config.FacebookAppID, s.config.FacebookAppSecret)
		providers[f.Name()] = f
	} else {
		s.logger.Warn("Facebook credentials missing, Facebook sign-in disabled")
	}

	// === Services ===
	sessions := session.NewManager()
	signinService := service.NewSignInService(providers, s.db.Users(), s.logger)
	catalogService := service.NewCatalogService(s.db.Genres(), s.db.Movies(), s.logger)

	// === Handlers ===
	rn, err := handler.NewRenderer(s.logger)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}
	authHandler := handler.NewAuthHandler(signinService, sessions, rn,
		s.config.GoogleClientID, s.config.FacebookAppID, s.logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, s.db.Users(), sessions, rn, s.logger)
	apiHandler := handler.NewAPIHandler(catalogService)

	// === Sign-in routes ===
	// The callback endpoints trigger outbound provider calls, so they sit
	// behind the per-client rate limiter.
	s.router.Get("/login", authHandler.HandleLogin)
	s.router.Get("/disconnect", authHandler.HandleDisconnect)
	s.router.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.logger))
		r.Post("/gconnect", authHandler.HandleGoogleConnect)
		r.Post("/fbconnect", authHandler.HandleFacebookConnect)
	})

	// === JSON mirror ===
	s.router.Get("/catalog.json", apiHandler.HandleCatalogJSON)
	s.router.Get("/catalog/{genreID}/movies.json", apiHandler.HandleGenreMoviesJSON)
	s.router.Get("/catalog/{movieID}.json", apiHandler.HandleMovieJSON)

	// === Catalog pages ===
	// Form pages answer GET with the form and POST with the submit.
	s.router.Get("/", catalogHandler.HandleHome)
	s.router.Get("/catalog/", catalogHandler.HandleHome)
	s.router.Get("/catalog/new/", catalogHandler.HandleNewGenre)
	s.router.Post("/catalog/new/", catalogHandler.HandleNewGenre)
	s.router.Get("/catalog/{genreID}/movies/", catalogHandler.HandleGenre)
	s.router.Get("/catalog/{genreID}/edit/", catalogHandler.HandleEditGenre)
	s.router.Post("/catalog/{genreID}/edit/", catalogHandler.HandleEditGenre)
	s.router.Get("/catalog/{genreID}/delete/", catalogHandler.HandleDeleteGenre)
	s.router.Post("/catalog/{genreID}/delete/", catalogHandler.HandleDeleteGenre)
	s.router.Get("/catalog/{genreID}/new/", catalogHandler.HandleNewMovie)
	s.router.Post("/catalog/{genreID}/new/", catalogHandler.HandleNewMovie)
	s.router.Get("/catalog/{genreID}/{movieID}/", catalogHandler.HandleMovie)
	s.router.Get("/catalog/{genreID}/{movieID}/edit/", catalogHandler.HandleEditMovie)
	s.router.Post("/catalog/{genreID}/{movieID}/edit/", catalogHandler.HandleEditMovie)
	s.router.Get("/catalog/{genreID}/{movieID}/delete/", catalogHandler.HandleDeleteMovie)
	s.router.Post("/catalog/{genreID}/{movieID}/delete/", catalogHandler.HandleDeleteMovie)

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s
// limit), stop the rate limiter sweep, close the database.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.limiter.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
