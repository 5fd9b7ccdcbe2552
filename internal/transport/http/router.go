package http

import (
	"net/http"
	"strings"

	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/telemetry"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/transport/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var spanNames = map[string]string{
	"GET /health":           "health",
	"GET /metrics":          "metrics",
	"GET /{$}":              "index",
	"POST /api/shorten":     "links.create",
	"GET /api/links/{slug}": "links.get",
	"GET /{slug}":           "links.redirect",
}

type RouterOptions struct {
	EnableCORS    bool
	EnableLogging bool
	EnableMetrics bool
}

func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		EnableCORS:    true,
		EnableLogging: true,
		EnableMetrics: true,
	}
}

func NewRouter(cfg *config.Config, svc *links.Service, resolver *links.Resolver) http.Handler {
	return NewRouterWithOptions(cfg, svc, resolver, DefaultRouterOptions())
}

func NewRouterWithOptions(cfg *config.Config, svc *links.Service, resolver *links.Resolver, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler(cfg.App.Name, cfg.App.Version)
	linksHandler := NewLinksHandler(cfg, svc, resolver)

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", healthHandler.Metrics())
	mux.HandleFunc("GET /{$}", healthHandler.Index)

	mux.HandleFunc("POST /api/shorten", linksHandler.Create)
	mux.HandleFunc("GET /api/links/{slug}", linksHandler.Get)
	mux.HandleFunc("GET /{slug}", linksHandler.Redirect)

	var chain []func(http.Handler) http.Handler
	if opts.EnableMetrics {
		chain = append(chain, middleware.MetricsMiddleware)
	}
	if opts.EnableLogging {
		chain = append(chain, middleware.LoggingMiddleware)
	}
	if opts.EnableCORS {
		chain = append(chain, middleware.CORS(cfg.Server.CORSOrigins))
	}
	chain = append(chain, middleware.RecoveryMiddleware)
	innerHandler := middleware.Chain(mux, chain...)

	otelOptions := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			key := r.Method + " " + r.Pattern
			if name, ok := spanNames[key]; ok {
				return name
			}
			if r.Pattern != "" {
				return r.Pattern
			}
			path := strings.TrimSpace(r.URL.Path)
			if path == "" {
				path = "/"
			}
			return path
		}),
	}

	if telemetry.TracerProvider != nil {
		otelOptions = append(otelOptions, otelhttp.WithTracerProvider(telemetry.TracerProvider))
	}

	return otelhttp.NewHandler(innerHandler, cfg.App.Name, otelOptions...)
}
