package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{"redirect pattern", "GET /{slug}", "/{slug}"},
		{"link info pattern", "GET /api/links/{slug}", "/api/links/{slug}"},
		{"pattern without method", "/health", "/health"},
		{"no match", "", unmatchedRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := routeLabel(tt.pattern); got != tt.want {
				t.Errorf("routeLabel(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://example.com")
		w.WriteHeader(http.StatusMovedPermanently)
	})
	h := MetricsMiddleware(mux)

	requests := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/{slug}", "301"))
	redirects := testutil.ToFloat64(redirectsTotal.WithLabelValues("301"))
	unmatched := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404"))

	for _, path := range []string{"/abc", "/xyz123"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a/b/c", nil))

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/{slug}", "301")) - requests; got != 2 {
		t.Errorf("slug route requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(redirectsTotal.WithLabelValues("301")) - redirects; got != 2 {
		t.Errorf("redirects = %v, want 2", got)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")) - unmatched; got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}
