// Package httpapi composes the root router: shared middleware, the entity
// family routes, the tool endpoint and the operational endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"intentions/internal/platform/config"
	"intentions/internal/platform/metrics"
	"intentions/internal/platform/middleware"
	"intentions/pkg/platform/httputil"
)

// Registrar mounts a family's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck probes a dependency.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators of the root router. MCP may be nil when the
// tool endpoint is disabled.
type Deps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Families []Registrar
	MCP      http.Handler
	Auth     config.MCP
	Checks   map[string]HealthCheck
}

// NewRouter builds the root handler.
//
// /healthz and /metrics are always open. Family routes and /mcp require the
// bearer API key when one is configured; /mcp additionally checks Origin.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))

	r.Get("/healthz", health(d.Checks))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAPIKey(d.Auth.APIKey, d.Logger))
		for _, f := range d.Families {
			f.Register(r)
		}
		if d.MCP != nil {
			r.With(middleware.RequireOrigin(d.Auth.AllowedOrigins, d.Logger)).Handle("/mcp", d.MCP)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func health(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
