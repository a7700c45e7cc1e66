// Package website serves the page shell for every client route, the built
// assets, and the JSON API behind a single chi router.
package website

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"filippo.io/csrf"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/tutorcontrol/internal/assets"
	"github.com/wolfeidau/tutorcontrol/internal/devreload"
	httpmiddleware "github.com/wolfeidau/tutorcontrol/internal/http"
	"github.com/wolfeidau/tutorcontrol/internal/routes"
	"github.com/wolfeidau/tutorcontrol/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultTitle prefixes every page title.
const DefaultTitle = "Tutor Control"

// Config wires the website together.
type Config struct {
	Pipeline *assets.Pipeline
	Table    routes.Table
	// API is mounted under /api with CORS.
	API         http.Handler
	CORSOrigins []string
	// Reload enables the live reload endpoint and client.
	Reload  *devreload.Hub
	Metrics *httpmiddleware.Metrics
	Logger  zerolog.Logger
	// CompressMinSize is the smallest response gzip applies to (default 1024).
	CompressMinSize int
}

// Site is the HTTP front of the application.
type Site struct {
	cfg Config
}

// New creates the site.
func New(cfg Config) *Site {
	if cfg.Table == nil {
		cfg.Table = routes.Default()
	}
	if cfg.CompressMinSize == 0 {
		cfg.CompressMinSize = 1024
	}
	return &Site{cfg: cfg}
}

// PageContext is embedded as JSON into every rendered page.
type PageContext struct {
	Path      string        `json:"path"`
	Component string        `json:"component"`
	Params    routes.Params `json:"params"`
	Props     routes.Props  `json:"props"`
}

// Handler builds the complete router.
func (s *Site) Handler() (http.Handler, error) {
	compress, err := httpmiddleware.CompressMiddleware(s.cfg.CompressMinSize)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(httpmiddleware.RequestIDMiddleware())
	r.Use(httpmiddleware.ClientIPMiddleware())
	r.Use(httpmiddleware.RequestLogger(s.cfg.Logger))
	if s.cfg.Metrics != nil {
		r.Use(s.cfg.Metrics.Middleware)
		r.Handle("/metrics", s.cfg.Metrics.Handler())
	}

	if s.cfg.Reload != nil {
		// websocket upgrades must bypass compression
		r.Handle(devreload.Path, s.cfg.Reload)
	}

	assetsDir := s.cfg.Pipeline.Config().AssetsPath()
	r.Handle("/assets/*", compress(immutable(http.StripPrefix("/assets/", http.FileServer(http.Dir(assetsDir))))))

	if s.cfg.API != nil {
		api, err := protectAPI(s.cfg.CORSOrigins, s.cfg.API)
		if err != nil {
			return nil, err
		}
		r.Mount("/api", compress(api))
	}

	pages := r.With(compress)
	for _, route := range s.cfg.Table {
		pages.Get(route.ChiPattern(), s.page)
		pages.Head(route.ChiPattern(), s.page)
	}
	// paths chi cannot place still go through the ordered table
	r.NotFound(compress(http.HandlerFunc(s.page)).ServeHTTP)

	return r, nil
}

// page resolves the request against the ordered table and renders the shell.
func (s *Site) page(w http.ResponseWriter, r *http.Request) {
	m, ok := s.cfg.Table.Match(r.URL.EscapedPath())
	if !ok {
		s.notFound(w, r)
		return
	}

	s.render(w, r, http.StatusOK, PageContext{
		Path:      r.URL.Path,
		Component: m.Component(),
		Params:    m.Params,
		Props:     m.Props,
	})
}

func (s *Site) notFound(w http.ResponseWriter, r *http.Request) {
	telemetry.GetMetrics().PageNotFoundTotal.Add(r.Context(), 1)
	s.render(w, r, http.StatusNotFound, PageContext{
		Path:      r.URL.Path,
		Component: routes.NotFound,
		Params:    routes.Params{},
	})
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, pc PageContext) {
	started := time.Now()

	data := assets.PageData{
		Title:     DefaultTitle + " | " + pc.Component,
		Component: pc.Component,
		Context:   pc,
	}
	if s.cfg.Reload != nil {
		data.ReloadPath = devreload.Path
	}

	var buf bytes.Buffer
	if err := s.cfg.Pipeline.Render(&buf, r.URL.EscapedPath(), data); err != nil {
		logger := zerolog.Ctx(r.Context())
		if errors.Is(err, assets.ErrNotBuilt) {
			logger.Warn().Msg("Page requested before assets were built")
			http.Error(w, "assets are still building, retry shortly", http.StatusServiceUnavailable)
			return
		}
		logger.Error().Err(err).Str("component", pc.Component).Msg("Failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)

	m := telemetry.GetMetrics()
	attrs := metric.WithAttributes(attribute.String("component", pc.Component))
	m.PageRendersTotal.Add(r.Context(), 1, attrs)
	m.PageRenderDuration.Record(r.Context(), float64(time.Since(started).Microseconds())/1000, attrs)
}

// immutable marks hashed bundle outputs as cacheable forever.
func immutable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		next.ServeHTTP(w, r)
	})
}

// protectAPI rejects cross-origin writes except from the allowed origins,
// which also receive CORS headers.
func protectAPI(allowedOrigins []string, h http.Handler) (http.Handler, error) {
	protection := csrf.New()
	for _, origin := range allowedOrigins {
		if origin == "*" {
			continue
		}
		if err := protection.AddTrustedOrigin(origin); err != nil {
			return nil, fmt.Errorf("invalid CORS origin %q: %w", origin, err)
		}
	}
	return withCORS(allowedOrigins, protection.Handler(h)), nil
}

func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", httpmiddleware.RequestIDHeader},
		ExposedHeaders: []string{httpmiddleware.RequestIDHeader},
	})
	return middleware.Handler(h)
}
