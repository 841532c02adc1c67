// Package api provides the HTTP API server and handlers for the appraisal server.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mbjewelry/appraisal-server/internal/ratelimit"
	"github.com/mbjewelry/appraisal-server/internal/service"
	"github.com/mbjewelry/appraisal-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store              store.Store
	authService        *service.AuthService
	valuationService   *service.ValuationService
	calculationService *service.CalculationService
	loginLimiter       *ratelimit.KeyedRateLimiter
	corsOrigins        []string
	router             *chi.Mux
	logger             *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store store.Store, authService *service.AuthService, valuationService *service.ValuationService, calculationService *service.CalculationService, loginLimiter *ratelimit.KeyedRateLimiter, corsOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		store:              store,
		authService:        authService,
		valuationService:   valuationService,
		calculationService: calculationService,
		loginLimiter:       loginLimiter,
		corsOrigins:        corsOrigins,
		router:             chi.NewRouter(),
		logger:             logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints. Login is rate limited per client IP.
		r.Route("/auth", func(r chi.Router) {
			r.With(s.loginRateLimit).Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
			r.With(s.requireAuth).Get("/me", s.handleGetCurrentUser)
		})

		// Everything else requires a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			// Stateless valuation.
			r.Post("/calculate", s.handleCalculate)
			r.Post("/check-weights", s.handleCheckWeights)

			// Persisted calculations.
			r.Route("/calculations", func(r chi.Router) {
				r.Post("/", s.handleSaveCalculation)
				r.Get("/", s.handleListCalculations)
				r.Get("/stats", s.handleStats)
				r.Get("/{id}", s.handleGetCalculation)
				r.Delete("/{id}", s.handleDeleteCalculation)
				r.Patch("/{id}/items/{itemID}", s.handleUpdateCalculationItem)
				r.Get("/{id}/box-groups", s.handleCalculationBoxGroups)
			})

			// Cross-calculation box history.
			r.Get("/box-groups", s.handleBoxGroups)

			// User administration.
			r.With(s.requireAdmin).Get("/users", s.handleListUsers)
		})
	})
}
