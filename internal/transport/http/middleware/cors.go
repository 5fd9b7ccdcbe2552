package middleware

import (
	"net/http"

	"github.com/IgorGrieder/shortlink/pkg/httputils"
	"github.com/rs/cors"
)

// CORS builds the CORS middleware with rs/cors. An empty allowlist accepts
// any origin, which is what the public shorten endpoint needs by default.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
			http.MethodHead,
		},
		AllowedHeaders: []string{
			"Content-Type",
			"Accept",
			"Origin",
			"X-Requested-With",
			httputils.CorrelationIDHeader,
			// OpenTelemetry headers
			"traceparent",
			"tracestate",
			"baggage",
		},
		ExposedHeaders: []string{httputils.CorrelationIDHeader, "Location"},
	}

	if len(allowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowedOrigins = allowedOrigins
		opts.AllowCredentials = true
	}

	return cors.New(opts).Handler
}
