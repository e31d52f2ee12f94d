// Package api exposes the presence service over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/sells-group/retail-presence/internal/imageref"
	"github.com/sells-group/retail-presence/internal/presence"
)

// Config configures the router.
type Config struct {
	APIPrefix   string
	CORSOrigins []string
	// RateLimitRPM is the per-client request budget per minute; 0 disables it.
	RateLimitRPM int
	// ReloadPerMinute bounds snapshot reloads triggered over HTTP.
	ReloadPerMinute int
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{
		APIPrefix:       "/api",
		CORSOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		RateLimitRPM:    600,
		ReloadPerMinute: 2,
	}
}

// Handler serves the API endpoints.
type Handler struct {
	svc      *presence.Service
	snaps    presence.Snapshots
	reloader Reloader
	images   *imageref.Resolver
	reloads  *rate.Limiter
}

// NewHandler creates a Handler. reloader may be nil, which disables the
// reload endpoint.
func NewHandler(cfg Config, svc *presence.Service, snaps presence.Snapshots, reloader Reloader, images *imageref.Resolver) *Handler {
	perMinute := cfg.ReloadPerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	if images == nil {
		images = imageref.NewResolver(imageref.Config{})
	}
	return &Handler{
		svc:      svc,
		snaps:    snaps,
		reloader: reloader,
		images:   images,
		reloads:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

// NewRouter wires the middleware stack and routes.
func NewRouter(cfg Config, h *Handler) http.Handler {
	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	}))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route(prefix, func(r chi.Router) {
		if cfg.RateLimitRPM > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRPM, time.Minute))
		}
		r.Use(PrometheusMetrics)

		r.Get("/boards", h.Boards)
		r.Get("/posm/general", h.PosmGeneral)
		r.Get("/posm/comparison", h.Comparison)
		r.Get("/posm/retailers-by-change", h.RetailersByChange)
		r.Get("/posm/available-batches/{profileId}", h.AvailableBatches)
		r.Get("/retailers", h.Retailers)
		r.Get("/options/provinces", h.ProvinceOptions)
		r.Get("/options/districts", h.DistrictOptions)
		r.Get("/options/ds-divisions", h.DivisionOptions)
		r.Get("/geo/districts", h.GeoDistricts)
		r.Get("/image-info/{id}", h.ImageInfo)
		r.Get("/image-s3-url", h.ImageS3URL)
		r.Get("/export", h.Export)
		r.Post("/admin/reload", h.Reload)
	})

	return r
}
