package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yeymeap/MovieRate/internal/auth"
	"github.com/yeymeap/MovieRate/internal/config"
	"github.com/yeymeap/MovieRate/internal/membership"
	"github.com/yeymeap/MovieRate/internal/metrics"
	"github.com/yeymeap/MovieRate/internal/reconcile"
	"github.com/yeymeap/MovieRate/internal/repository"
	"github.com/yeymeap/MovieRate/internal/store"
	"github.com/yeymeap/MovieRate/internal/tmdb"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg     config.Config
	store   *store.Store
	repo    *repository.Repository
	gateway tmdb.Client
	engine  *reconcile.Engine
	members *membership.Manager
	tokens  *auth.JWTManager
	logger  *slog.Logger
	router  chi.Router
	httpSrv *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, gateway tmdb.Client, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		store:   st,
		repo:    repo,
		gateway: gateway,
		engine:  reconcile.NewEngine(repo.Movies, repo.Overlay, logger),
		members: membership.NewManager(repo.Lists, repo.Profiles, logger),
		tokens:  auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour),
		logger:  logger,
		router:  r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get("/search", s.handleSearch)

		r.Route("/lists", func(r chi.Router) {
			r.Get("/", s.handleListLists)
			r.Post("/", s.handleCreateList)
			r.Route("/{listID}", func(r chi.Router) {
				r.Delete("/", s.handleDeleteList)
				r.Get("/movies", s.handleListMovies)
				r.Post("/movies", s.handleAddMovie)
				r.Route("/members", func(r chi.Router) {
					r.Get("/", s.handleListMembers)
					r.Post("/", s.handleShareList)
					r.Delete("/{userID}", s.handleRemoveMember)
				})
			})
		})

		r.Route("/movies/{movieID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteMovie)
			r.Put("/rating", s.handleUpdateRating)
			r.Put("/status", s.handleUpdateStatus)
		})
	})
}

// Start boots the HTTP server asynchronously.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
