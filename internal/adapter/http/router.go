package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/eurolife-dashboard/internal/dashboard"
	"github.com/couchcryptid/eurolife-dashboard/internal/explorer"
	"github.com/couchcryptid/eurolife-dashboard/internal/observability"
)

const maxUploadBytes = 8 << 20

// Handler serves the dashboard and explorer API.
type Handler struct {
	ctrl    *dashboard.Controller
	tables  *explorer.Store
	ready   ReadinessChecker
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewHandler creates a Handler. ready gates /readyz.
func NewHandler(ctrl *dashboard.Controller, tables *explorer.Store, ready ReadinessChecker, logger *slog.Logger, metrics *observability.Metrics) *Handler {
	return &Handler{
		ctrl:    ctrl,
		tables:  tables,
		ready:   ready,
		logger:  logger,
		metrics: metrics,
	}
}

// Routes builds the chi router with health, metrics and API routes.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(h.ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.Timeout(2*time.Minute)).Post("/reload", h.handleReload)
		r.Get("/years", h.handleYears)
		r.Get("/observations", h.handleObservations)
		r.Get("/countries/{country}", h.handleCountry)
		r.Get("/resolve/{code}", h.handleResolve)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetSession)
				r.Put("/year", h.handleSetYear)
				r.Post("/selection", h.handleToggleCountry)
				r.Delete("/selection", h.handleClearSelection)
				r.Delete("/selection/{country}", h.handleRemoveCountry)
				r.Get("/scatter", h.handleScatter)
				r.Get("/scatter.png", h.handleScatterPNG)
				r.Get("/radar", h.handleRadar)
				r.Get("/map", h.handleMap)
				r.Get("/trends", h.handleTrends)
				r.Get("/trends.png", h.handleTrendsPNG)
			})
		})

		r.Route("/explorer/tables", func(r chi.Router) {
			r.Post("/", h.handleUploadTable)
			r.Get("/{id}/view", h.handleTableView)
			r.Post("/{id}/selection", h.handleToggleRow)
			r.Delete("/{id}/selection", h.handleClearRows)
		})
	})
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.DebugContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
