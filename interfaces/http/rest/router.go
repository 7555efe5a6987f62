package rest

import (
	"net/http"

	"loangraph/infrastructure/config"
	"loangraph/interfaces/http/rest/handlers"
	"loangraph/interfaces/http/rest/middleware"
	"loangraph/pkg/common"
	"loangraph/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	distributions *handlers.DistributionHandler
	metrics       *observability.Collector
	config        *config.Config
	logger        *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	distributions *handlers.DistributionHandler,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		distributions: distributions,
		metrics:       metrics,
		config:        cfg,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.metricsEnabled() {
		router.Use(middleware.Metrics(rt.metrics))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.config.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", handlers.SourceNameHeader},
		ExposedHeaders: []string{"X-Request-ID", "X-Run-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metricsEnabled() {
		router.Method(http.MethodGet, rt.config.Metrics.Path, rt.metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/distributions", func(r chi.Router) {
			r.Post("/", rt.distributions.Analyze)
			r.Post("/plot", rt.distributions.Plot)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, http.StatusNotFound, common.StandardErrorCodes.NotFound, "route not found")
	})

	return router
}

func (rt *Router) metricsEnabled() bool {
	return rt.metrics != nil && rt.config.Metrics.Enabled
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck handles readiness check requests. The service has no
// external dependencies, so it is ready once it is serving.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"status":      "ready",
		"environment": string(rt.config.Environment),
	})
}
