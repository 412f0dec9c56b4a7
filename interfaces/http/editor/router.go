// Package editor hosts editing sessions over HTTP. Each graph being edited
// gets one session; render events arrive as requests and scenes leave as
// server-sent events.
package editor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mediagraph/interfaces/http/rest/middleware"
	"mediagraph/pkg/common"
	appErrors "mediagraph/pkg/errors"
	"mediagraph/pkg/observability"
)

// RouterOptions configures the editor router
type RouterOptions struct {
	CORSOrigins []string
	EnableCORS  bool
	Debug       bool
}

// NewRouter builds the session routes
func NewRouter(manager *Manager, metrics *observability.Collector, opts RouterOptions, logger *zap.Logger) http.Handler {
	router := chi.NewRouter()
	errorHandler := appErrors.NewErrorHandler(logger, opts.Debug)

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Recover)
	router.Use(middleware.Logger(logger, metrics))

	if opts.EnableCORS {
		origins := opts.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		common.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"sessions": manager.Count(),
		})
	})
	if metrics != nil {
		router.Handle("/metrics", metrics.Handler())
	}

	router.NotFound(errorHandler.NotFound)
	router.MethodNotAllowed(errorHandler.MethodNotAllowed)

	h := NewSessionHandler(manager, errorHandler, logger)
	router.Route("/sessions/{graphID}", func(r chi.Router) {
		r.Get("/scene", h.Scene)
		r.Get("/events", h.Events)
		r.Get("/status", h.Status)
		r.Post("/nodes/media", h.AddMedia)
		r.Post("/nodes/zone", h.AddZone)
		r.Delete("/nodes/{nodeID}", h.RemoveNode)
		r.Delete("/edges/{edgeID}", h.RemoveEdge)
		r.Post("/move", h.Move)
		r.Post("/connect", h.Connect)
		r.Post("/select", h.Select)
		r.Post("/deselect", h.Deselect)
		r.Delete("/", h.CloseSession)
	})

	return router
}
