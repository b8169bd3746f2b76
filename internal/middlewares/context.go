package middlewares

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"batch-release/internal/config"
	"batch-release/internal/data"
	"batch-release/internal/models"
	"batch-release/internal/release"
	"batch-release/internal/templates"
	"batch-release/internal/utils"

	"github.com/go-chi/chi/v5/middleware"
)

type AppContext struct {
	context.Context
	Config         *config.Config
	Logger         *slog.Logger
	SessionManager SessionProvider
	OIDCProvider   OIDCProvider
	Cache          data.CacheProvider
	Viewers        *release.Registry
	Records        RecordProvider
	Templates      templates.Store
	Documents      DocumentProvider
	DocumentURLs   URLSigner
	PrintTickets   PrintTicketProvider

	Request   *http.Request
	Response  http.ResponseWriter
	principal *models.User
	// authDone is set once the request's credentials have been checked.
	authDone bool
}

type contextKey string

const appContextKey contextKey = "appContext"

func AppContextMiddleware(baseCtx *AppContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := baseCtx.Logger
			if logger != nil {
				logger = logger.With("request_id", middleware.GetReqID(r.Context()), "client_ip", RemoteIP(r))
			}

			requestCtx := &AppContext{
				Context:        r.Context(),
				Config:         baseCtx.Config,
				Logger:         logger,
				SessionManager: baseCtx.SessionManager,
				OIDCProvider:   baseCtx.OIDCProvider,
				Cache:          baseCtx.Cache,
				Viewers:        baseCtx.Viewers,
				Records:        baseCtx.Records,
				Templates:      baseCtx.Templates,
				Documents:      baseCtx.Documents,
				DocumentURLs:   baseCtx.DocumentURLs,
				PrintTickets:   baseCtx.PrintTickets,
				Request:        r,
				Response:       w,
			}

			ctx := context.WithValue(r.Context(), appContextKey, requestCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type AppHandler func(*AppContext)

// HandlerFunc converts AppHandler to a http.HandlerFunc
func (ctx *AppContext) HandlerFunc(h AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		h(appCtx)
	}
}

func (ctx *AppContext) Redirect(url string, status int) {
	http.Redirect(ctx.Response, ctx.Request, url, status)
}

// SetPrincipal records the authenticated user for the rest of the request.
func (ctx *AppContext) SetPrincipal(user *models.User) {
	ctx.principal = user
}

func (ctx *AppContext) GetPrincipal() *models.User {
	return ctx.principal
}

func NewAppContext(ctx context.Context, cfg *config.Config, logger *slog.Logger, cache data.CacheProvider, sessionManager SessionProvider, oidcProvider OIDCProvider) *AppContext {
	return &AppContext{
		Context:        ctx,
		Config:         cfg,
		Logger:         logger,
		SessionManager: sessionManager,
		OIDCProvider:   oidcProvider,
		Cache:          cache,
	}
}

func GetAppContext(r *http.Request) *AppContext {
	if ctx, ok := r.Context().Value(appContextKey).(*AppContext); ok {
		return ctx
	}

	return nil
}

func (ctx *AppContext) WriteJSON(status int, data interface{}) {
	ctx.Response.Header().Set("Content-Type", "application/json")
	ctx.Response.WriteHeader(status)
	if err := json.NewEncoder(ctx.Response).Encode(data); err != nil {
		ctx.Logger.Error("failed to marshal json", "error", err)
	}
}

// WritePDF serves doc inline so the browser's viewer renders it.
func (ctx *AppContext) WritePDF(doc []byte) {
	h := ctx.Response.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", "inline")
	utils.SetNoStore(h)
	ctx.Response.WriteHeader(http.StatusOK)
	if _, err := ctx.Response.Write(doc); err != nil {
		ctx.Logger.Error("failed to write document", "error", err)
	}
}

func (ctx *AppContext) SetJSONError(status int, message string) {
	ctx.WriteJSON(status, map[string]string{
		"error": message,
	})
}

func (ctx *AppContext) SetJSONStatus(status int, message string) {
	ctx.WriteJSON(status, map[string]string{
		"status": message,
	})
}
