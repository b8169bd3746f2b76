package server

import (
	"net/http"
	"strings"
	"time"

	"batch-release/internal/handlers"
	"batch-release/internal/middlewares"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupRouter(ctx *middlewares.AppContext) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middlewares.ClientIP(ctx.Config.Server.TrustedProxyPrefixes()))
	r.Use(middleware.Recoverer)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(ctx.SessionManager.LoadAndSave)

	r.Use(middlewares.AppContextMiddleware(ctx))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ctx.Config.CORS.AllowedOrigins,
		AllowedMethods:   ctx.Config.CORS.AllowedMethods,
		AllowedHeaders:   ctx.Config.CORS.AllowedHeaders,
		ExposedHeaders:   ctx.Config.CORS.ExposedHeaders,
		AllowCredentials: ctx.Config.CORS.AllowCredentials,
		MaxAge:           ctx.Config.CORS.MaxAgeSeconds,
	}))

	r.Use(middleware.Compress(5))

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir("web/dist/assets"))))
	r.Handle("/favicon.ico", http.FileServer(http.Dir("web/dist")))

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, "web/dist/index.html")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewares.OptionalAuth)

		r.Get("/health", ctx.HandlerFunc(handlers.HandlerHealth))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/status", ctx.HandlerFunc(handlers.GETAuthStatusHandler))
			r.Get("/login", ctx.HandlerFunc(handlers.GETLoginHandler))
			r.Get("/callback", ctx.HandlerFunc(handlers.GETCallbackHandler))
			r.Post("/logout", ctx.HandlerFunc(handlers.POSTLogoutHandler))
		})

		// Embedded viewers and print windows cannot attach credentials; the
		// token in the URL is the authorization.
		r.Get("/documents/{handle}", ctx.HandlerFunc(handlers.GETDocumentHandler))
		r.Get("/print/{token}", ctx.HandlerFunc(handlers.GETPrintHandler))

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireAuth)

			r.Get("/records", ctx.HandlerFunc(handlers.GETRecordsHandler))
			r.Post("/templates", ctx.HandlerFunc(handlers.POSTTemplateHandler))

			r.Route("/viewers", func(r chi.Router) {
				r.Post("/", ctx.HandlerFunc(handlers.POSTViewerHandler))
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", ctx.HandlerFunc(handlers.GETViewerHandler))
					r.Delete("/", ctx.HandlerFunc(handlers.DELETEViewerHandler))
					r.Put("/exception", ctx.HandlerFunc(handlers.PUTViewerExceptionHandler))
					r.Post("/sign", ctx.HandlerFunc(handlers.POSTViewerSignHandler))
					r.Post("/print", ctx.HandlerFunc(handlers.POSTViewerPrintHandler))
				})
			})
		})
	})

	return r
}

func setupDebugRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/debug", middleware.Profiler())

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
