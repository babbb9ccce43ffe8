package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"social-analytics/utils"
)

// NewRouter mounts the handler's routes. gatherer backs GET /metrics.
func NewRouter(h *Handler, gatherer prometheus.Gatherer, logger *utils.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/imports", h.Import)
		r.Post("/imports/upload", h.Upload)
		r.Post("/posts", h.Posts)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/dataset", h.Dataset)
		r.Delete("/dataset", h.ClearDataset)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

// requestLogger logs one line per request, at warn for 4xx and error for 5xx.
func requestLogger(logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			reqID := chimiddleware.GetReqID(r.Context())
			ms := float64(time.Since(start).Microseconds()) / 1000

			switch {
			case status >= 500:
				logger.Error("[http] %s %s %d %.1fms id=%s", r.Method, r.URL.Path, status, ms, reqID)
			case status >= 400:
				logger.Warn("[http] %s %s %d %.1fms id=%s", r.Method, r.URL.Path, status, ms, reqID)
			default:
				logger.Debug("[http] %s %s %d %.1fms id=%s", r.Method, r.URL.Path, status, ms, reqID)
			}
		})
	}
}
