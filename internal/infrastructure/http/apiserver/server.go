// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/alchemorsel/patisserie/internal/infrastructure/config"
	"github.com/alchemorsel/patisserie/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/patisserie/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/patisserie/internal/infrastructure/monitoring"
	"github.com/alchemorsel/patisserie/internal/ports/inbound"
	"github.com/alchemorsel/patisserie/pkg/healthcheck"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Server is the JSON API HTTP server
type Server struct {
	config          *config.Config
	logger          *zap.Logger
	server          *http.Server
	router          *chi.Mux
	recipeService   inbound.RecipeService
	analysisService inbound.AnalysisService
	health          *healthcheck.HealthCheck
	metrics         *monitoring.MetricsCollector
	tracer          trace.Tracer
	openAPIHandler  *OpenAPIHandler
}

// NewServer creates a new API server. metrics and tracer may be nil.
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	recipeService inbound.RecipeService,
	analysisService inbound.AnalysisService,
	health *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
	tracer trace.Tracer,
) (*Server, error) {
	openAPI, err := NewOpenAPIHandler(log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:          cfg,
		logger:          log,
		recipeService:   recipeService,
		analysisService: analysisService,
		health:          health,
		metrics:         metrics,
		tracer:          tracer,
		openAPIHandler:  openAPI,
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.Port)),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// HTTP/2 is negotiated when the server runs behind TLS
	if err := http2.ConfigureServer(s.server, &http2.Server{IdleTimeout: cfg.Server.IdleTimeout}); err != nil {
		log.Warn("Failed to configure HTTP/2", zap.Error(err))
	}

	return s, nil
}

// setupRoutes configures the router
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()
	mw := middleware.New(s.config, s.logger, s.tracer)

	r.Use(mw.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(mw.Tracing)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware)
	}
	r.Use(mw.Security)
	r.Use(mw.CORS)
	if s.config.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
	}

	if s.health != nil {
		r.Get("/health", s.health.Handler())
	}
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Method(http.MethodGet, s.config.Monitoring.MetricsPath, s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit)
		r.Use(mw.Compress(s.config.Server.CompressionLevel))
		s.setupAPIV1Routes(r)
	})

	return r
}

// setupAPIV1Routes configures API v1 endpoints
func (s *Server) setupAPIV1Routes(r chi.Router) {
	h := handlers.NewAPIHandlers(s.recipeService, s.analysisService, s.logger)

	r.Get("/openapi.yaml", s.openAPIHandler.ServeOpenAPISpec)
	r.Get("/openapi.json", s.openAPIHandler.ServeOpenAPIJSON)

	r.Get("/ingredients", h.ListIngredients)
	r.Get("/categories", h.ListCategories)
	r.Post("/analysis", h.AnalyzeDraft)

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", h.ListRecipes)
		r.Post("/", h.CreateRecipe)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetRecipe)
			r.Put("/", h.UpdateRecipe)
			r.Delete("/", h.DeleteRecipe)
			r.Post("/duplicate", h.DuplicateRecipe)
			r.Post("/scale", h.ScaleRecipe)
			r.Get("/analysis", h.AnalyzeRecipe)
			r.Get("/export.csv", h.ExportCSV)
			r.Post("/export", h.PublishCSV)
		})
	})
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start listens and serves until Shutdown
func (s *Server) Start() error {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
