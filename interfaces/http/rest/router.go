package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	querybus "mediagraph/application/queries/bus"
	"mediagraph/application/services"
	"mediagraph/interfaces/http/rest/handlers"
	"mediagraph/interfaces/http/rest/middleware"
	"mediagraph/pkg/common"
	appErrors "mediagraph/pkg/errors"
	"mediagraph/pkg/observability"
)

// ReadinessCheck reports whether the store can serve requests
type ReadinessCheck func(ctx context.Context) error

// Options configures the router
type Options struct {
	CORSOrigins []string
	EnableCORS  bool
	Debug       bool
	Ready       ReadinessCheck
}

// Router creates and configures the HTTP router
type Router struct {
	service  *services.GraphService
	queryBus *querybus.QueryBus
	metrics  *observability.Collector
	opts     Options
	logger   *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	service *services.GraphService,
	queryBus *querybus.QueryBus,
	metrics *observability.Collector,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		service:  service,
		queryBus: queryBus,
		metrics:  metrics,
		opts:     opts,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorHandler := appErrors.NewErrorHandler(rt.logger, rt.opts.Debug)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Recover)
	router.Use(middleware.Logger(rt.logger, rt.metrics))

	if rt.opts.EnableCORS {
		origins := rt.opts.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	router.NotFound(errorHandler.NotFound)
	router.MethodNotAllowed(errorHandler.MethodNotAllowed)

	graphHandler := handlers.NewGraphHandler(rt.service, rt.queryBus, errorHandler, rt.logger)

	router.Get("/graphs", graphHandler.ListGraphs)
	router.Route("/graph", func(r chi.Router) {
		r.Post("/create", graphHandler.CreateGraph)
		r.Get("/{graphID}", graphHandler.GetGraph)
		r.Put("/{graphID}", graphHandler.ReplaceGraph)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.opts.Ready != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := rt.opts.Ready(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			common.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
