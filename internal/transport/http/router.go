// Package httptransport assembles the public and admin routes behind the
// shared middleware chain.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dErrors "instructorhub/pkg/domain-errors"
	"instructorhub/pkg/platform/httputil"
	"instructorhub/pkg/platform/middleware/admin"
	authmw "instructorhub/pkg/platform/middleware/auth"
	"instructorhub/pkg/platform/middleware/cors"
	"instructorhub/pkg/platform/middleware/metadata"
	request "instructorhub/pkg/platform/middleware/request"
	"instructorhub/pkg/platform/middleware/requesttime"
)

// Routes is implemented by every feature handler.
type Routes interface {
	Register(r chi.Router)
}

// AdminRoutes is implemented by handlers that also expose operator routes.
type AdminRoutes interface {
	RegisterAdmin(r chi.Router)
}

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Config struct {
	AdminToken string
	Logger     *slog.Logger
	// Observer receives request latency; *metrics.Metrics satisfies it.
	Observer request.RequestObserver
	// Gatherer backs GET /metrics when set.
	Gatherer prometheus.Gatherer
	Health   []HealthCheck
	// RateLimit wraps the public feature routes when set. Health, metrics and
	// admin routes are not limited.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter mounts handlers on a chi router. Handlers that implement
// AdminRoutes get their operator routes mounted behind the admin token.
func NewRouter(cfg Config, handlers ...Routes) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(request.Logger(logger, cfg.Observer))
	r.Use(cors.AllowAll)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(authmw.CaptureBearer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
	})

	r.Get("/health", healthHandler(cfg.Health))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit)
		}
		for _, h := range handlers {
			h.Register(r)
		}
	})
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.AdminToken, logger))
		for _, h := range handlers {
			if a, ok := h.(AdminRoutes); ok {
				a.RegisterAdmin(r)
			}
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				resp.Checks[c.Name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.Name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
