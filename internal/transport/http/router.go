package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the API surface onto a chi mux with the standard
// middleware chain.
func NewRouter(h *Handler, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery(log))
	r.Use(RequestID)
	r.Use(Logger(log))

	r.Get("/healthz", h.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/verify", h.handleVerify)
		r.Get("/verify/result", h.handleResult)
		r.Post("/verify/reset", h.handleReset)

		r.Post("/cose", h.handleCOSE)

		r.Route("/everify", func(r chi.Router) {
			r.Post("/check", h.handleEVerifyCheck)
			r.Get("/egov-ph", h.handleEGovProfile)
		})

		r.Post("/stat", h.handleStat)
		r.Get("/stat/recent", h.handleRecentScans)
	})

	return r
}
