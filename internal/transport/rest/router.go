package rest

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/budget-ledger/api"
	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/frahmantamala/budget-ledger/internal/transport"
	"github.com/frahmantamala/budget-ledger/internal/transport/middleware"
	"github.com/frahmantamala/budget-ledger/internal/transport/swagger"
	"github.com/frahmantamala/budget-ledger/pkg/metrics"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
)

const APIPrefix = "/api/v1"

// Routes bundles everything RegisterAllRoutes mounts. OpenAPI is optional;
// when nil requests are not validated against the document.
type Routes struct {
	Server  internal.ServerConfig
	Metrics internal.MetricsConfig
	OpenAPI *openapi3.T
	Health  map[string]Pinger
	Ledger  *ledger.Handler
	Budget  *budget.Handler
}

func RegisterAllRoutes(router *chi.Mux, routes Routes, logger *slog.Logger) error {
	healthHandler := NewHealthHandler(routes.Health)
	base := transport.NewBaseHandler(logger)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORS(routes.Server.Origins()))
	if routes.Metrics.Enabled {
		router.Use(metrics.Instrument)
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		base.WriteError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		base.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// OpenAPI document at root, outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(api.OpenAPI)
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	if routes.Metrics.Enabled {
		router.Handle(routes.Metrics.Path, metrics.Handler())
	}

	var validator func(http.Handler) http.Handler
	if routes.OpenAPI != nil {
		var err error
		validator, err = middleware.OpenAPIValidator(routes.OpenAPI, APIPrefix, logger)
		if err != nil {
			return fmt.Errorf("failed to build request validator: %w", err)
		}
	}

	// Mount API under /api/v1 to match the OpenAPI server url
	router.Route(APIPrefix, func(r chi.Router) {
		if validator != nil {
			r.Use(validator)
		}

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if routes.Ledger != nil {
			routes.Ledger.Routes(r)
		}
		if routes.Budget != nil {
			routes.Budget.Routes(r)
		}
	})

	return nil
}
