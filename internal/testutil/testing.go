package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"batch-release/internal/config"
	"batch-release/internal/middlewares"
	"batch-release/internal/mocks"
	"batch-release/internal/models"
	"batch-release/internal/release"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// TestContext is a handler under test: an AppContext wired to mocks, the
// request it serves, and a recorder for what it writes.
type TestContext struct {
	AppContext       *middlewares.AppContext
	Request          *http.Request
	Response         *httptest.ResponseRecorder
	MockController   *gomock.Controller
	MockCache        *mocks.MockCacheProvider
	MockSession      *mocks.MockSessionProvider
	MockOidcProvider *mocks.MockOIDCProvider
	MockRecords      *mocks.MockRecordProvider
	LogHandler       *TestLogHandler
}

// NewTestContext builds a context with no request; set one with WithRequest.
func NewTestContext(t *testing.T) *TestContext {
	return newTestContext(t, nil)
}

func NewTestContextWithURL(t *testing.T, method, url string) *TestContext {
	return newTestContext(t, httptest.NewRequest(method, url, nil))
}

func newTestContext(t *testing.T, req *http.Request) *TestContext {
	ctrl := gomock.NewController(t)
	logger, logs := NewTestLogger()

	tc := &TestContext{
		Request:          req,
		Response:         httptest.NewRecorder(),
		MockController:   ctrl,
		MockCache:        mocks.NewMockCacheProvider(ctrl),
		MockSession:      mocks.NewMockSessionProvider(ctrl),
		MockOidcProvider: mocks.NewMockOIDCProvider(ctrl),
		MockRecords:      mocks.NewMockRecordProvider(ctrl),
		LogHandler:       logs,
	}

	base := context.Background()
	if req != nil {
		base = req.Context()
	}

	tc.AppContext = &middlewares.AppContext{
		Context:        base,
		Config:         &config.Config{},
		Logger:         logger,
		SessionManager: tc.MockSession,
		OIDCProvider:   tc.MockOidcProvider,
		Cache:          tc.MockCache,
		Records:        tc.MockRecords,
		Request:        req,
		Response:       tc.Response,
	}
	return tc
}

func (tc *TestContext) Finish() {
	tc.MockController.Finish()
}

func (tc *TestContext) CallHandler(handler middlewares.AppHandler) {
	handler(tc.AppContext)
}

func (tc *TestContext) WithConfig(cfg *config.Config) *TestContext {
	tc.AppContext.Config = cfg
	return tc
}

func (tc *TestContext) WithRequest(req *http.Request) *TestContext {
	tc.Request = req
	tc.AppContext.Request = req
	tc.AppContext.Context = req.Context()
	return tc
}

func (tc *TestContext) WithQueryParam(key, value string) *TestContext {
	q := tc.Request.URL.Query()
	q.Add(key, value)
	tc.Request.URL.RawQuery = q.Encode()
	return tc
}

func (tc *TestContext) WithHeader(key, value string) *TestContext {
	tc.Request.Header.Set(key, value)
	return tc
}

// WithJSONBody replaces the request body with v encoded as JSON.
func (tc *TestContext) WithJSONBody(t *testing.T, v any) *TestContext {
	body, err := json.Marshal(v)
	require.NoError(t, err)
	tc.Request.Body = io.NopCloser(bytes.NewReader(body))
	tc.Request.ContentLength = int64(len(body))
	tc.Request.Header.Set("Content-Type", "application/json")
	return tc
}

// WithURLParam sets a chi route parameter as if the router had matched it.
func (tc *TestContext) WithURLParam(key, value string) *TestContext {
	rctx := chi.RouteContext(tc.Request.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		tc.WithRequest(tc.Request.WithContext(context.WithValue(tc.Request.Context(), chi.RouteCtxKey, rctx)))
	}
	rctx.URLParams.Add(key, value)
	return tc
}

func (tc *TestContext) WithPrincipal(user *models.User) *TestContext {
	tc.AppContext.SetPrincipal(user)
	return tc
}

func (tc *TestContext) WithViewers(registry *release.Registry) *TestContext {
	tc.AppContext.Viewers = registry
	return tc
}

func (tc *TestContext) GetResponseBody() string {
	return tc.Response.Body.String()
}

// GetJSONResponse decodes the response body as a JSON object.
func (tc *TestContext) GetJSONResponse(t *testing.T) map[string]any {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.Unmarshal(tc.Response.Body.Bytes(), &response), "response body: %s", tc.Response.Body.String())
	return response
}

func (tc *TestContext) AssertStatus(t *testing.T, expected int) {
	t.Helper()
	assert.Equal(t, expected, tc.Response.Code, "response body: %s", tc.Response.Body.String())
}

func (tc *TestContext) AssertContentType(t *testing.T, expected string) {
	t.Helper()
	assert.Equal(t, expected, tc.Response.Header().Get("Content-Type"))
}

func (tc *TestContext) AssertLocationHeader(t *testing.T, expected string) {
	t.Helper()
	assert.Equal(t, expected, tc.Response.Header().Get("Location"))
}

// AssertJSONField compares one top-level field as decoded by encoding/json,
// so numbers arrive as float64.
func (tc *TestContext) AssertJSONField(t *testing.T, field string, expected any) {
	t.Helper()
	response := tc.GetJSONResponse(t)
	if assert.Contains(t, response, field) {
		assert.Equal(t, expected, response[field], "field %s", field)
	}
}

// AssertUser checks that the object at field carries every non-empty field of
// expected.
func (tc *TestContext) AssertUser(t *testing.T, field string, expected *models.User) {
	t.Helper()
	raw, err := json.Marshal(expected)
	require.NoError(t, err)
	var want map[string]any
	require.NoError(t, json.Unmarshal(raw, &want))
	for k, v := range want {
		if v == "" || v == nil {
			delete(want, k)
		}
	}

	got, ok := tc.GetJSONResponse(t)[field].(map[string]any)
	require.True(t, ok, "field %s is not an object", field)
	assert.Subset(t, got, want)
}

// AssertLogsContainMessage checks for a record at level whose message
// contains message.
func (tc *TestContext) AssertLogsContainMessage(t *testing.T, level slog.Level, message string) {
	t.Helper()
	for _, record := range tc.LogHandler.GetRecordsByLevel(level) {
		if strings.Contains(record.Message, message) {
			return
		}
	}
	t.Errorf("expected a %v log entry containing %q", level, message)
}
