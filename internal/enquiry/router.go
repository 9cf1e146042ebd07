package enquiry

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/groupenquiry/internal/middleware"
	"github.com/yanizio/groupenquiry/internal/requestinfo"
)

// RouterOptions tunes NewRouter.
type RouterOptions struct {
	ForceHTTPS bool
	Geo        *requestinfo.GeoDB // optional country lookup
}

// NewRouter assembles the full HTTP tree: middleware, /api, /metrics, and
// /healthz.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recover)
	r.Use(middleware.Logger)
	r.Use(middleware.Security)
	r.Use(requestinfo.EnrichWith(opts.Geo))

	r.Mount("/api", h.Routes())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return middleware.ForceHTTPS(opts.ForceHTTPS, r)
}
