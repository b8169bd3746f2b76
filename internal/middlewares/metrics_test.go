package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"batch-release/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/v1/documents/{handle}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	r.Get("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	tests := []struct {
		name   string
		path   string
		route  string
		status string
	}{
		{name: "route pattern replaces handle", path: "/api/v1/documents/abc123", route: "/api/v1/documents/{handle}", status: "403"},
		{name: "implicit ok", path: "/api/v1/health", route: "/api/v1/health", status: "200"},
		{name: "unrouted path is bucketed", path: "/api/v1/print/secret-token", route: unmatchedRoute, status: "404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, tt.route, tt.status)
			before := testutil.ToFloat64(counter)

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}
