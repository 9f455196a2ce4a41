package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	customerapp "github.com/crm/backend/internal/application/customer"
	identityapp "github.com/crm/backend/internal/application/identity"
	orderapp "github.com/crm/backend/internal/application/order"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/migration"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/ratelimit"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/router"
	"github.com/crm/backend/migrations"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const slowQueryThreshold = 200 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting CRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer shutdownTracer(tracerProvider, log)

	profiler, err := telemetry.NewProfiler(cfg.Profiling, cfg.Telemetry.ServiceName, log)
	if err != nil {
		return fmt.Errorf("failed to start profiler: %w", err)
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Failed to stop profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("failed to initialize OTEL logs: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = logProvider.Shutdown(shutdownCtx)
	}()
	log = logProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = tracerProvider.IsEnabled() && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.App.IsDevelopment()
	dbTracing.Provider = tracerProvider.Provider()
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		return fmt.Errorf("failed to register database tracing: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := migrateUp(db, log); err != nil {
			return err
		}
	}

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.NewMetrics("crm")
		sqlDB, err := db.SQLDB()
		if err != nil {
			return err
		}
		if err := metrics.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
			return fmt.Errorf("failed to register database metrics: %w", err)
		}
	}

	limiters := ratelimit.NewFactory(cfg.HTTP.RateLimitStore, cfg.Redis,
		ratelimit.WithLogger(log),
		ratelimit.WithInMemoryFallback(!cfg.App.IsProduction()),
	)
	defer func() {
		if err := limiters.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()

	var apiLimiter, authLimiter ratelimit.Store
	if cfg.HTTP.RateLimitEnabled {
		apiLimiter, err = limiters.Create(ctx, "api", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		if err != nil {
			return err
		}
		defer apiLimiter.Close()
		authLimiter, err = limiters.Create(ctx, "auth", cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		if err != nil {
			return err
		}
		defer authLimiter.Close()
	}

	revocations := newRevocationList(ctx, limiters, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	userRepo := persistence.NewGormUserRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	authService := identityapp.NewAuthService(userRepo, jwtService, revocations, log)
	customerService := customerapp.NewService(customerRepo, orderRepo, log)
	orderService := orderapp.NewService(orderRepo, customerRepo, log)

	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := router.NewEngine(router.Dependencies{
		Logger:      log,
		Development: cfg.App.IsDevelopment(),
		HTTP:        cfg.HTTP,
		ServiceName: cfg.Telemetry.ServiceName,
		// nil when tracing is off, which keeps otelgin out of the chain
		TracerProvider: tracerProvider.Provider(),
		Metrics:        metrics,
		MetricsPath:    cfg.Metrics.Path,
		JWTService:     jwtService,
		Revocations:    revocations,
		APILimiter:     apiLimiter,
		AuthLimiter:    authLimiter,
		Auth:           handler.NewAuthHandler(authService),
		Customers:      handler.NewCustomerHandler(customerService),
		Orders:         handler.NewOrderHandler(orderService),
		Health:         handler.NewHealthHandler(db, cfg.App.Env, log),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	stop()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func migrateUp(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.SQLDB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared *sql.DB as well
	return m.Up()
}

// newRevocationList shares the rate limiter's Redis connection when Redis is
// configured so logouts hold across instances.
func newRevocationList(ctx context.Context, limiters *ratelimit.Factory, log *zap.Logger) auth.RevocationList {
	if limiters.Kind() == ratelimit.KindRedis {
		client, err := limiters.RedisClient(ctx)
		if err == nil {
			log.Info("Using Redis token revocation list")
			return auth.NewRedisRevocationList(client)
		}
		log.Warn("Redis unavailable, revoked tokens are tracked in memory", zap.Error(err))
	}
	return auth.NewMemoryRevocationList()
}

func shutdownTracer(tp *telemetry.TracerProvider, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("Failed to shut down tracer provider", zap.Error(err))
	}
}
