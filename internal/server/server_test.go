package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"batch-release/internal/config"
	"batch-release/internal/data"
	"batch-release/internal/metrics"
	"batch-release/internal/middlewares"
	"batch-release/internal/mocks"
	"batch-release/internal/models"
	"batch-release/internal/records"
	"batch-release/internal/release"
	"batch-release/internal/templates"
	"batch-release/internal/viewer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewLogHandler(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantDebug bool
		wantJSON  bool
		wantStack bool
	}{
		{name: "default text at info", cfg: config.LogConfig{}},
		{name: "json", cfg: config.LogConfig{Level: "warn", Format: "json"}, wantJSON: true},
		{name: "debug adds stacks", cfg: config.LogConfig{Level: "debug"}, wantDebug: true, wantStack: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(newLogHandler(tt.cfg, &buf))

			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))

			logger.Error("render failed", "viewer_id", "v1")
			out := buf.String()
			assert.Contains(t, out, "render failed")
			assert.Equal(t, tt.wantJSON, json.Valid(bytes.TrimSpace(buf.Bytes())))
			assert.Equal(t, tt.wantStack, strings.Contains(out, "stack"))
		})
	}
}

func TestSetupRenderers(t *testing.T) {
	client := records.NewClient(context.Background(), config.RecordsConfig{BaseURL: "http://tracking.invalid"}, data.NewMemCache(&config.Config{}, slog.Default()), slog.Default())
	store := templates.NewFileStore(t.TempDir()+"/certificate.pdf", slog.Default())

	t.Run("template mode", func(t *testing.T) {
		factory, mode, err := setupRenderers(&config.Config{Render: config.RenderConfig{Mode: config.RenderModeTemplate, TimeZone: "Asia/Kolkata"}}, client, store)
		require.NoError(t, err)
		assert.Equal(t, metrics.RenderModeTemplate, mode)
		assert.IsType(t, &release.TemplateRenderers{}, factory)
	})

	t.Run("remote mode", func(t *testing.T) {
		factory, mode, err := setupRenderers(&config.Config{Render: config.RenderConfig{Mode: config.RenderModeRemote}}, client, store)
		require.NoError(t, err)
		assert.Equal(t, metrics.RenderModeRemote, mode)

		renderer, err := factory.Prepare(context.Background(), models.CertificateRecord{BatchNumber: "B-1"})
		require.NoError(t, err)
		assert.IsType(t, &records.BatchRenderer{}, renderer)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, _, err := setupRenderers(&config.Config{Render: config.RenderConfig{Mode: "fax"}}, client, store)
		assert.Error(t, err)
	})
}

func TestTicketPrinter(t *testing.T) {
	store := viewer.NewStore(nil)
	tickets := viewer.NewPrintTickets(store, data.NewMemCache(&config.Config{}, slog.Default()), time.Minute, slog.Default())
	printer := &ticketPrinter{tickets: tickets}

	handle := store.Publish([]byte("%PDF-1.7"))
	ticket, err := printer.Print(context.Background(), handle)
	require.NoError(t, err)
	assert.NotEmpty(t, ticket)

	_, err = printer.Print(context.Background(), "missing")
	assert.ErrorIs(t, err, release.ErrPrintBlocked)
}

func newRouterContext(t *testing.T, oidcDisabled bool) (*middlewares.AppContext, *mocks.MockSessionProvider) {
	ctrl := gomock.NewController(t)
	session := mocks.NewMockSessionProvider(ctrl)
	session.EXPECT().LoadAndSave(gomock.Any()).DoAndReturn(func(next http.Handler) http.Handler { return next })

	cfg := &config.Config{
		OIDC: config.OIDCConfig{Disabled: oidcDisabled},
		CORS: config.DefaultCORSConfig,
	}
	appCtx := middlewares.NewAppContext(context.Background(), cfg, slog.Default(), data.NewMemCache(cfg, slog.Default()), session, mocks.NewMockOIDCProvider(ctrl))
	appCtx.Viewers = release.NewRegistry(release.Deps{})
	return appCtx, session
}

func TestRouter_Health(t *testing.T) {
	appCtx, _ := newRouterContext(t, true)
	router := setupRouter(appCtx)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_ViewersRequireAuth(t *testing.T) {
	appCtx, session := newRouterContext(t, false)
	session.EXPECT().GetAuthenticatedUser(gomock.Any()).Return(nil, false)
	router := setupRouter(appCtx)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/viewers/abc", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_UnknownViewer(t *testing.T) {
	appCtx, session := newRouterContext(t, true)
	session.EXPECT().ViewerOwner(gomock.Any()).Return("session:abc").AnyTimes()
	router := setupRouter(appCtx)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/viewers/abc", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), release.ErrViewerNotFound.Error())
}

func TestRouter_UnknownAPIPath(t *testing.T) {
	appCtx, _ := newRouterContext(t, true)
	router := setupRouter(appCtx)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v2/nothing", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
