package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"batch-release/internal/assembly"
	"batch-release/internal/auth"
	"batch-release/internal/config"
	"batch-release/internal/data"
	"batch-release/internal/fieldmap"
	"batch-release/internal/jobs"
	"batch-release/internal/metrics"
	"batch-release/internal/middlewares"
	"batch-release/internal/models"
	"batch-release/internal/records"
	"batch-release/internal/region"
	"batch-release/internal/release"
	"batch-release/internal/templates"
	"batch-release/internal/version"
	"batch-release/internal/viewer"
)

type Server struct {
	cfg         *config.Config
	logger      *slog.Logger
	appCtx      *middlewares.AppContext
	httpServer  *http.Server
	debugServer *http.Server
	viewers     *release.Registry
	jobManager  *jobs.JobManager
	cancel      context.CancelFunc
}

func New(cfg *config.Config) (*Server, error) {
	logger := setupLogger(cfg)
	logger.Info("starting batch-release", "version", version.Get().String())

	ctx, cancel := context.WithCancel(context.Background())

	sessionManager, err := auth.NewSessionManager(ctx, logger, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	var oidcProvider middlewares.OIDCProvider
	if cfg.OIDC.Disabled {
		logger.Warn("OIDC is disabled, the API is open and certificates cannot be signed")
	} else {
		oidcProvider, err = auth.NewRealOIDCProvider(ctx, cfg.OIDC)
		if err != nil {
			cancel()
			return nil, err
		}
	}

	cache, err := data.NewCacheProvider(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to set up cache provider: %w", err)
	}

	recordsClient := records.NewClient(ctx, cfg.Records, cache, logger)

	templateStore, err := templates.NewStore(ctx, cfg.Template, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to set up template store: %w", err)
	}

	renderers, mode, err := setupRenderers(cfg, recordsClient, templateStore)
	if err != nil {
		cancel()
		return nil, err
	}

	documents := viewer.NewStore(logger)
	tickets := viewer.NewPrintTickets(documents, cache, cfg.Viewer.PrintTokenTTL, logger)

	registry := release.NewRegistry(release.Deps{
		Renderers:     renderers,
		Regions:       setupResolver(cfg, cache, logger),
		Printer:       &ticketPrinter{tickets: tickets},
		Publishers:    func() release.DocumentPublisher { return viewer.NewSlot(documents) },
		Logger:        logger,
		RenderMode:    mode,
		RenderTimeout: cfg.Render.Timeout,
	})

	appCtx := middlewares.NewAppContext(ctx, cfg, logger, cache, sessionManager, oidcProvider)
	appCtx.Viewers = registry
	appCtx.Records = recordsClient
	appCtx.Templates = templateStore
	appCtx.Documents = documents
	appCtx.DocumentURLs = viewer.NewURLSigner(cfg.Viewer.URLSigningKey, cfg.Viewer.DocumentURLTTL)
	appCtx.PrintTickets = tickets

	jobManager := jobs.NewJobManager(logger)
	jobManager.Register(jobs.NewViewerSweepJob(registry, cfg.Viewer.IdleTimeout, cfg.Viewer.SweepInterval, logger))
	if memCache, ok := cache.(*data.MemCache); ok {
		jobManager.Register(jobs.NewCachePruneJob(memCache, cfg.Viewer.SweepInterval, logger))
	}

	if err := metrics.RegisterBuildInfo(version.Get()); err != nil {
		logger.Warn("failed to register build info metric", "error", err)
	}

	router := setupRouter(appCtx)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	var debugServer *http.Server
	if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
		debugRouter := setupDebugRouter()
		debugServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Debug.Host, cfg.Server.Debug.Port),
			Handler: debugRouter,
		}
	}

	return &Server{
		cfg:         cfg,
		logger:      logger,
		appCtx:      appCtx,
		httpServer:  server,
		debugServer: debugServer,
		viewers:     registry,
		jobManager:  jobManager,
		cancel:      cancel,
	}, nil
}

func (s *Server) Start() error {
	if err := s.jobManager.Start(s.appCtx); err != nil {
		return fmt.Errorf("failed to start jobs: %w", err)
	}

	go func() {
		s.logger.Info("Server Started", "port", s.cfg.Server.Port, "render_mode", s.cfg.Render.Mode)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed to start", "error", err)
			s.cancel()
		}
	}()

	if s.debugServer != nil {
		go func() {
			s.logger.Info("Metrics server starting", "address", s.debugServer.Addr)
			if err := s.debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Metrics server failed to start", "error", err)
				s.cancel()
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		s.logger.Info("Shutdown signal received")
	case <-s.appCtx.Done():
		s.logger.Info("Context canceled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info("Shutting Down Server")

	s.jobManager.Shutdown(shutdownCtx)

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	if s.debugServer != nil {
		if err := s.debugServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Debug server forced to shutdown", "error", err)
		}
	}

	s.viewers.CloseAll()
	s.cancel()

	s.logger.Info("Server Exited")
	return nil
}

// setupRenderers picks how certificates are produced: filled in locally from
// the template, or rendered by the tracking service.
func setupRenderers(cfg *config.Config, recordsClient *records.Client, templateStore templates.Store) (release.RendererFactory, string, error) {
	switch cfg.Render.Mode {
	case config.RenderModeRemote:
		return release.RendererFactoryFunc(func(ctx context.Context, record models.CertificateRecord) (release.Renderer, error) {
			return recordsClient.ForBatch(record.BatchNumber), nil
		}), metrics.RenderModeRemote, nil
	case config.RenderModeTemplate, "":
		return release.NewTemplateRenderers(assembly.NewEngine(), templateStore, fieldmap.Default(), cfg.Location()), metrics.RenderModeTemplate, nil
	default:
		return nil, "", fmt.Errorf("unknown render mode: %s", cfg.Render.Mode)
	}
}

func setupResolver(cfg *config.Config, cache data.CacheProvider, logger *slog.Logger) *region.Resolver {
	var geocoder region.Geocoder
	if cfg.Geocoder.Enabled {
		geocoder = region.NewNominatimGeocoder(cfg.Geocoder, cache, logger)
	}
	return region.NewResolver(geocoder, cfg.Geocoder.Timeout, logger)
}

// ticketPrinter hands live documents to the print window through one-time
// tickets.
type ticketPrinter struct {
	tickets *viewer.PrintTickets
}

func (p *ticketPrinter) Print(ctx context.Context, handle string) (string, error) {
	ticket, err := p.tickets.Issue(ctx, handle)
	if err != nil {
		return "", fmt.Errorf("%w: %v", release.ErrPrintBlocked, err)
	}
	return ticket, nil
}
