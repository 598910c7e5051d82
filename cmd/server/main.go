package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	eligibilityapp "github.com/dropship/backend/internal/application/eligibility"
	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/dropship/backend/internal/infrastructure/auth"
	"github.com/dropship/backend/internal/infrastructure/cache"
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/dropship/backend/internal/infrastructure/persistence"
	"github.com/dropship/backend/internal/infrastructure/reference"
	"github.com/dropship/backend/internal/infrastructure/scheduler"
	"github.com/dropship/backend/internal/infrastructure/telemetry"
	"github.com/dropship/backend/internal/interfaces/http/handler"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
	"github.com/dropship/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	baseCore, err := logger.NewCore(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := zap.New(baseCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// OpenTelemetry log export replaces the plain logger once the provider exists
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log = telemetry.NewBridgedLogger(baseCore, telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		LoggerProvider: loggerProvider,
		Level:          logger.ParseLevel(cfg.Log.Level),
	}))
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting dropship eligibility service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Profiling.ApplicationName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
		ProfileCPU:        true,
		ProfileAllocSpace: true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if cfg.Profiling.Enabled && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	var dbTracing *telemetry.DBTracingPlugin
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracingCfg := telemetry.DefaultDBTracingConfig()
		tracingCfg.Enabled = true
		tracingCfg.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		tracingCfg.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		if cfg.Database.Driver == "sqlite" {
			tracingCfg.DBSystem = "sqlite"
		}
		dbTracing = telemetry.NewDBTracingPlugin(tracingCfg, log)
	}

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:        log,
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		Tracing:       dbTracing,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	ruleRepo := persistence.NewGormRuleRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)

	if cfg.Compliance.SeedDefaults {
		if _, err := persistence.SeedComplianceRules(ctx, ruleRepo, log); err != nil {
			log.Fatal("Failed to seed compliance rules", zap.Error(err))
		}
	}

	store, err := buildSnapshotStore(ctx, cfg, ruleRepo)
	if err != nil {
		log.Fatal("Failed to build the initial snapshot", zap.Error(err))
	}
	log.Info("Reference snapshot loaded", zap.Uint64("version", store.Current().Version))

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var notifier eligibility.RuleChangeNotifier
	var revoker auth.TokenRevoker
	if redisClient != nil {
		notifier = cache.NewRedisRuleChangeNotifierWithClient(redisClient,
			cache.WithChannel(cfg.Redis.Channel),
			cache.WithLogger(log),
		)
		revoker = auth.NewRedisTokenRevoker(redisClient)
	} else {
		notifier = cache.NewInMemoryRuleChangeNotifier(log)
		revoker = auth.NewInMemoryTokenRevoker()
	}

	opts := []eligibilityapp.Option{
		eligibilityapp.WithNotifier(notifier),
		eligibilityapp.WithBatchLimits(cfg.Evaluation.BatchConcurrency, cfg.Evaluation.MaxBatchSize),
	}
	if m, err := eligibility.ParseMarketplace(cfg.Pricing.DefaultMarketplace); err == nil {
		opts = append(opts, eligibilityapp.WithDefaultMarketplace(m))
	}
	if hostname, err := os.Hostname(); err == nil {
		opts = append(opts, eligibilityapp.WithInstanceID(hostname+"-"+store.Current().CreatedAt.Format("150405.000")))
	}
	if meterProvider.IsEnabled() {
		metrics, err := telemetry.NewEligibilityMetrics(telemetry.EligibilityMetricsConfig{
			Meter:  meterProvider.Meter("dropship/eligibility"),
			Logger: log,
		})
		if err != nil {
			log.Fatal("Failed to create eligibility metrics", zap.Error(err))
		}
		opts = append(opts, eligibilityapp.WithMetrics(metrics))
	}

	eligibilityService := eligibilityapp.NewService(store, ruleRepo, productRepo, log, opts...)
	productService := eligibilityapp.NewProductService(productRepo, valueobject.Currency(cfg.Pricing.SourceCurrency), log)

	listenCtx, stopListening := context.WithCancel(ctx)
	listenDone := make(chan struct{})
	go func() {
		defer close(listenDone)
		if err := eligibilityService.ListenForRuleChanges(listenCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Rule change listener stopped", zap.Error(err))
		}
	}()

	var refresher *scheduler.RuleRefresher
	if cfg.Scheduler.Enabled {
		refresherCfg := scheduler.DefaultRuleRefresherConfig()
		refresherCfg.Spec = cfg.Scheduler.RuleRefreshSpec
		refresher = scheduler.NewRuleRefresher(refresherCfg, eligibilityService.RefreshRules, log)
		if err := refresher.Start(ctx); err != nil {
			log.Fatal("Failed to start rule refresher", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	healthChecks := []handler.HealthCheck{{
		Name:  "database",
		Check: func(context.Context) error { return db.Ping() },
	}}
	if redisClient != nil {
		healthChecks = append(healthChecks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Logger:           log,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   tracerProvider.IsEnabled(),
		ProfilingEnabled: profiler.IsEnabled(),
		CORS:             corsCfg,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		Metrics:          middleware.NewHTTPMetrics("dropship"),
		LoginAttempts:    10,
	}, router.Handlers{
		Eligibility: handler.NewEligibilityHandler(eligibilityService),
		Rules:       handler.NewRulesHandler(eligibilityService),
		Products:    handler.NewProductHandler(productService),
		System:      handler.NewSystemHandler(eligibilityService, version, healthChecks...),
		Auth:        handler.NewAuthHandler(auth.NewCredentials(cfg.Admin.Username, cfg.Admin.PasswordHash), jwtService, revoker),
		AdminAuth: middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			JWTService:   jwtService,
			Revoker:      revoker,
			RequireAdmin: true,
			Logger:       log,
		}),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if refresher != nil {
		if err := refresher.Stop(shutdownCtx); err != nil {
			log.Warn("Rule refresher did not stop cleanly", zap.Error(err))
		}
	}
	stopListening()
	if err := notifier.Close(); err != nil {
		log.Warn("Error closing rule change notifier", zap.Error(err))
	}
	<-listenDone
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("Error closing Redis client", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}

	shutdownTelemetry(shutdownCtx, log, tracerProvider, meterProvider, loggerProvider, profiler)
	log.Info("Server exited gracefully")
}

// buildSnapshotStore loads the reference tables and the stored rules into
// the first snapshot
func buildSnapshotStore(ctx context.Context, cfg *config.Config, rules eligibility.RuleRepository) (*eligibility.SnapshotStore, error) {
	tables, err := reference.Load(cfg)
	if err != nil {
		return nil, err
	}
	ruleSet, err := eligibility.LoadRuleSet(ctx, rules)
	if err != nil {
		return nil, err
	}
	snap, err := tables.Snapshot(ruleSet)
	if err != nil {
		return nil, err
	}
	return eligibility.NewSnapshotStore(snap), nil
}

func shutdownTelemetry(
	ctx context.Context,
	log *zap.Logger,
	tp *telemetry.TracerProvider,
	mp *telemetry.MeterProvider,
	lp *telemetry.LoggerProvider,
	profiler *telemetry.Profiler,
) {
	if err := tp.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	// last, so the lines above still reach the collector
	if err := lp.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down logger provider", zap.Error(err))
	}
}
