package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	designerapp "github.com/fulluproar/backoffice/internal/application/designer"
	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/infrastructure/cache"
	"github.com/fulluproar/backoffice/internal/infrastructure/config"
	"github.com/fulluproar/backoffice/internal/infrastructure/event"
	"github.com/fulluproar/backoffice/internal/infrastructure/fonts"
	"github.com/fulluproar/backoffice/internal/infrastructure/logger"
	"github.com/fulluproar/backoffice/internal/infrastructure/persistence"
	"github.com/fulluproar/backoffice/internal/infrastructure/render"
	"github.com/fulluproar/backoffice/internal/infrastructure/scheduler"
	"github.com/fulluproar/backoffice/internal/infrastructure/storage"
	"github.com/fulluproar/backoffice/internal/infrastructure/telemetry"
	"github.com/fulluproar/backoffice/internal/interfaces/http/handler"
	"github.com/fulluproar/backoffice/internal/interfaces/http/middleware"
	"github.com/fulluproar/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// templateStore is a template repository with its lifecycle hooks
type templateStore struct {
	repo  designer.TemplateRepository
	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Fields: map[string]string{
			"service": cfg.Telemetry.ServiceName,
			"env":     cfg.App.Env,
		},
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Logs are bridged to the collector once the logger provider is up
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log, err := telemetry.NewBridgedLogger(logCfg, loggerProvider, cfg.Telemetry.ServiceName)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
		shutdown(loggerProvider.Shutdown, bootLog, "log exporter")
	}()

	log.Info("Starting card designer",
		zap.String("app", cfg.App.Name),
		zap.String("version", version),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer shutdown(tracerProvider.Shutdown, log, "tracer")

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}
	defer shutdown(meterProvider.Shutdown, log, "meter")

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileAlloc:    true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	designerMetrics, err := telemetry.NewDesignerMetrics(meterProvider.Meter("card-designer"))
	if err != nil {
		log.Fatal("Failed to create designer metrics", zap.Error(err))
	}

	// Template store
	store, err := openTemplateStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open template store", zap.Error(err))
	}
	defer shutdown(store.close, log, "template store")

	// Asset storage
	assets, err := storage.NewAssetStore(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize asset storage", zap.Error(err))
	}

	// Fonts
	fontCache, err := cache.NewFontCacheFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize font cache", zap.Error(err))
	}
	defer func() {
		if err := fontCache.Close(); err != nil {
			log.Error("Error closing font cache", zap.Error(err))
		}
	}()

	registry, err := fonts.NewRegistry(
		fonts.WithFetcher(fonts.NewFetcher(cfg.Fonts.SourceURL, cfg.Fonts.UserAgent, cfg.Fonts.FetchTimeout)),
		fonts.WithCache(fontCache, cfg.Fonts.CacheTTL),
		fonts.WithFailureTTL(cfg.Fonts.FailureTTL),
		fonts.WithMaxRemoteFamilies(cfg.Fonts.MaxRemoteFamilies),
		fonts.WithLogger(log),
		fonts.WithMetrics(designerMetrics),
	)
	if err != nil {
		log.Fatal("Failed to initialize font registry", zap.Error(err))
	}
	defer registry.Close()

	if cfg.Fonts.LocalDir != "" {
		watcher := fonts.NewLocalDirWatcher(cfg.Fonts.LocalDir, registry, log)
		if err := watcher.Start(ctx); err != nil {
			log.Fatal("Failed to watch local font directory", zap.Error(err))
		}
		defer func() {
			if err := watcher.Close(); err != nil {
				log.Error("Error closing font watcher", zap.Error(err))
			}
		}()
		log.Info("Watching local font directory", zap.String("dir", cfg.Fonts.LocalDir))
	}

	// Rendering
	raster := render.NewRasterRenderer(assets, registry,
		render.WithRasterLogger(log),
		render.WithMaxMultiplier(cfg.Designer.MaxExportMultiplier),
		render.WithMaxImagePixels(cfg.Designer.MaxImagePixels),
	)
	var pdf designerapp.PDFRenderer
	if cfg.PDF.Enabled {
		pdfRenderer := render.NewPDFRenderer(render.PDFConfig{
			Timeout:   cfg.PDF.Timeout,
			RemoteURL: cfg.PDF.RemoteURL,
			NoSandbox: cfg.PDF.NoSandbox,
			Logger:    log,
		})
		defer func() {
			if err := pdfRenderer.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		pdf = pdfRenderer
		log.Info("PDF export enabled", zap.Bool("remote_browser", cfg.PDF.RemoteURL != ""))
	}

	// Events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewActivityLogHandler(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer shutdown(eventBus.Stop, log, "event bus")

	// Designer
	var fetchOpts []storage.RemoteFetcherOption
	if cfg.Designer.RemoteAllowPrivate {
		fetchOpts = append(fetchOpts, storage.AllowPrivateNetworks())
	}
	remoteFetcher := storage.NewRemoteFetcher(cfg.Designer.RemoteFetchTimeout, cfg.Designer.MaxUploadBytes, fetchOpts...)

	designerService := designerapp.NewDesignerService(designerapp.ServiceConfig{
		DefaultDimension:  designer.DimensionPreset(cfg.Designer.DefaultDimension),
		ExportMultiplier:  cfg.Designer.ExportMultiplier,
		MaxImagePixels:    cfg.Designer.MaxImagePixels,
		DownloadURLExpiry: cfg.Storage.PresignExpiration,
	}, designerapp.Dependencies{
		Sessions:  designerapp.NewSessionManager(registry, designerapp.WithSessionMetrics(designerMetrics)),
		Templates: store.repo,
		Assets:    assets,
		Fonts:     registry,
		Raster:    raster,
		PDF:       pdf,
		Remote:    remoteFetcher,
		Events:    eventBus,
		Trust:     render.NewHostPolicy(cfg.Designer.TrustedImageHosts),
		AssetKey:  storage.AssetKey,
		Metrics:   designerMetrics,
		Logger:    log,
	})

	reaper, err := scheduler.NewSessionReaper(scheduler.SessionReaperConfig{
		Schedule:   cfg.Designer.SessionReapSchedule,
		TTL:        cfg.Designer.SessionTTL,
		RunTimeout: 30 * time.Second,
	}, designerService, log)
	if err != nil {
		log.Fatal("Invalid session reaper configuration", zap.Error(err))
	}
	if err := reaper.Start(ctx); err != nil {
		log.Fatal("Failed to start session reaper", zap.Error(err))
	}
	defer shutdown(reaper.Stop, log, "session reaper")
	log.Info("Session reaper started",
		zap.String("schedule", cfg.Designer.SessionReapSchedule),
		zap.Duration("ttl", cfg.Designer.SessionTTL),
		zap.Time("next_run", reaper.Next()),
	)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up request validation", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request id first so every later layer can log it,
	// recovery before anything that may panic, tracing before the injector
	// that decorates its span.
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.UploadBodyLimit(cfg.HTTP.MaxBodySize, cfg.Designer.MaxUploadBytes),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		}),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			Enabled:       meterProvider.IsEnabled(),
			Logger:        log,
		}),
		middleware.ProfilingWithConfig(middleware.ProfilingConfig{
			Enabled:   profiler.IsEnabled(),
			SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
		}),
	)
	if cfg.HTTP.WriteTimeout > 0 {
		engine.Use(middleware.Timeout(cfg.HTTP.WriteTimeout))
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version).
		AddCheck("template_store", store.ping).
		AddCheck("font_cache", func(ctx context.Context) error { return cache.Ping(ctx, fontCache) }).
		AddCheck("event_bus", func(context.Context) error {
			if !eventBus.Running() {
				return errors.New("event bus is stopped")
			}
			return nil
		})
	systemHandler.RegisterRoutes(engine)

	var renderGuards []gin.HandlerFunc
	if cfg.Designer.RenderRateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.Designer.RenderRateLimit, cfg.Designer.RenderRateWindow)
		defer limiter.Stop()
		renderGuards = append(renderGuards, middleware.RateLimitByKey(limiter, middleware.SessionKey))
	}

	designerHandler := handler.NewDesignerHandler(designerService)
	if cfg.Fonts.LoadRateLimit > 0 {
		fontLimiter := middleware.NewRateLimiter(cfg.Fonts.LoadRateLimit, cfg.Fonts.LoadRateWindow)
		defer fontLimiter.Stop()
		designerHandler.WithFontLoadGuards(middleware.RateLimit(fontLimiter))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(designerHandler.RouteGroup(renderGuards...))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully", zap.Int("open_sessions", designerService.Sessions().Len()))
}

// openTemplateStore connects the configured template repository
func openTemplateStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*templateStore, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		repo, err := persistence.NewMongoTemplateRepository(ctx, &cfg.Mongo, log)
		if err != nil {
			return nil, err
		}
		return &templateStore{repo: repo, ping: repo.Ping, close: repo.Close}, nil

	case config.DriverMemory:
		log.Warn("Using in-memory template store; templates are lost on restart")
		return &templateStore{
			repo:  persistence.NewMemoryTemplateRepository(),
			ping:  func(context.Context) error { return nil },
			close: func(context.Context) error { return nil },
		}, nil
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracingCfg := telemetry.DefaultDBTracingConfig()
		tracingCfg.Enabled = true
		if cfg.Database.Driver == config.DriverPostgres {
			tracingCfg.DBSystem = "postgresql"
		} else {
			tracingCfg.DBSystem = "sqlite"
		}
		if err := telemetry.NewDBTracingPlugin(tracingCfg, log).RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}
	return &templateStore{
		repo:  persistence.NewGormCardTemplateRepository(db.DB),
		ping:  func(context.Context) error { return db.Ping() },
		close: func(context.Context) error { return db.Close() },
	}, nil
}

// shutdown runs a stop function with a bounded context
func shutdown(stop func(ctx context.Context) error, log *zap.Logger, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := stop(ctx); err != nil {
		log.Error("Error stopping "+name, zap.Error(err))
	}
}
