package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"batch-release/internal/config"
	"batch-release/internal/middlewares"
	"batch-release/internal/testutil"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppContextMiddleware_ScopesLogger(t *testing.T) {
	logger, logs := testutil.NewTestLogger()
	base := &middlewares.AppContext{Config: &config.Config{}, Logger: logger}

	var got *middlewares.AppContext
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middlewares.GetAppContext(r)
		got.Logger.Info("viewer opened")
	})

	chain := middleware.RequestID(
		middlewares.ClientIP([]netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")})(
			middlewares.AppContextMiddleware(base)(final)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewers", nil)
	req.RemoteAddr = "10.0.0.2:9000"
	req.Header.Set("X-Forwarded-For", "198.51.100.20")
	chain.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.NotSame(t, base, got)
	assert.Same(t, base.Config, got.Config)

	record, ok := logs.Find("viewer opened")
	require.True(t, ok)
	assert.Equal(t, "198.51.100.20", record.Attrs["client_ip"])
	assert.NotEmpty(t, record.Attrs["request_id"])
}

func TestHandlerFunc_MissingContext(t *testing.T) {
	called := false
	h := (&middlewares.AppContext{}).HandlerFunc(func(*middlewares.AppContext) { called = true })

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
