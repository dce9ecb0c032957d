package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/autoparts/storefront/internal/application/account"
	"github.com/autoparts/storefront/internal/application/admin"
	catalogapp "github.com/autoparts/storefront/internal/application/catalog"
	checkoutapp "github.com/autoparts/storefront/internal/application/checkout"
	"github.com/autoparts/storefront/internal/application/clientstore"
	identityapp "github.com/autoparts/storefront/internal/application/identity"
	"github.com/autoparts/storefront/internal/domain/cart"
	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/autoparts/storefront/internal/infrastructure/backend"
	"github.com/autoparts/storefront/internal/infrastructure/cache"
	"github.com/autoparts/storefront/internal/infrastructure/config"
	"github.com/autoparts/storefront/internal/infrastructure/event"
	"github.com/autoparts/storefront/internal/infrastructure/logger"
	"github.com/autoparts/storefront/internal/infrastructure/scheduler"
	"github.com/autoparts/storefront/internal/infrastructure/store"
	"github.com/autoparts/storefront/internal/infrastructure/telemetry"
	"github.com/autoparts/storefront/internal/interfaces/http/handler"
	"github.com/autoparts/storefront/internal/interfaces/http/middleware"
	"github.com/autoparts/storefront/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Storefront API
//	@version		1.0
//	@description	Auto-parts storefront and back-office, in front of the catalog/commerce backend.

//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry: traces, then the zap to OTLP logs bridge
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, cfg.Telemetry.ServiceName, zapcore.InfoLevel)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down log export", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracing", zap.Error(err))
		}
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.String("backend", cfg.Backend.BaseURL()),
	)

	metrics := telemetry.NewMetrics()

	// Redis is shared by the profile store and the query cache
	var redisClient *redis.Client
	if cfg.Store.Driver == store.DriverRedis || cfg.Cache.Driver == cache.DriverRedis {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		switch {
		case err != nil && cfg.Store.Driver == store.DriverRedis:
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		case err != nil:
			log.Warn("Redis unavailable, query cache falls back to memory", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
			redisClient = nil
		default:
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
			defer func() {
				if err := redisClient.Close(); err != nil {
					log.Error("Error closing Redis", zap.Error(err))
				}
			}()
		}
	}

	storeDeps := store.Deps{
		GormLogger: logger.NewGormLogger(log, logger.ParseGormLevel(cfg.Log.Level), 200*time.Millisecond),
		Tracing:    tracerProvider.IsEnabled(),
		Logger:     log,
	}
	if redisClient != nil {
		storeDeps.Redis = redisClient
	}
	profileStore, err := store.New(ctx, cfg.Store, storeDeps)
	if err != nil {
		log.Fatal("Failed to open profile store", zap.Error(err))
	}
	defer func() {
		if err := profileStore.Close(); err != nil {
			log.Error("Error closing profile store", zap.Error(err))
		}
	}()

	queryCache := cache.New(cfg.Cache, redisClient, metrics, log)
	queryCache.Listen(ctx)
	defer func() {
		if err := queryCache.Close(); err != nil {
			log.Error("Error closing query cache", zap.Error(err))
		}
	}()

	pricer, err := cart.NewPricer(decimal.NewFromFloat(cfg.Pricing.TaxRate))
	if err != nil {
		log.Fatal("Invalid pricing configuration", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)
	sessions := clientstore.NewService(profileStore, eventBus, pricer, cfg.Store.TTL, log)
	sessionEnded := clientstore.NewSessionEndedHandler(sessions, log)
	eventBus.Subscribe(sessionEnded)
	log.Info("Event handlers registered", zap.Strings("session_ended_events", sessionEnded.EventTypes()))

	// a 401 on a signed-in call ends the session
	backendClient := backend.NewClient(cfg.Backend,
		backend.WithMetrics(metrics),
		backend.WithLogger(log),
		backend.WithUnauthorizedHandler(sessions.EndUnauthorized),
	)

	catalogService := catalogapp.NewService(
		backendClient,
		queryCache,
		catalogapp.NewDebouncer(cfg.Catalog.SearchDebounce),
		catalogapp.Config{PageSize: cfg.Catalog.PageSize, MinStock: cfg.Catalog.MinStock},
		metrics,
		log,
	)
	authService := identityapp.NewAuthService(backendClient, sessions, log)
	checkoutService := checkoutapp.NewService(backendClient, sessions, queryCache, cfg.Checkout.PublicOrigin, metrics, log)
	accountService := account.NewService(backendClient, queryCache, log)
	adminService := admin.NewService(backendClient, queryCache, log)

	jobs := scheduler.NewScheduler(log)
	if purger, ok := profileStore.(expiredPurger); ok {
		if err := jobs.Add(purgeJob(purger, cfg.Store.PurgeInterval, log)); err != nil {
			log.Fatal("Failed to schedule profile purge", zap.Error(err))
		}
	}
	if err := jobs.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := jobs.Stop(stopCtx); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitBurst)
		defer rateLimiter.Close()
	}

	engine := router.NewEngine(router.Deps{
		Config:      cfg,
		Logger:      log,
		Metrics:     metrics,
		Sessions:    sessions,
		RateLimiter: rateLimiter,
	}, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Cart:     handler.NewCartHandler(sessions, catalogService),
		Catalog:  handler.NewCatalogHandler(catalogService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Account:  handler.NewAccountHandler(accountService),
		Admin:    handler.NewAdminHandler(adminService, catalogService),
		System:   handler.NewSystemHandler(cfg.App.Name, version, healthChecks(profileStore, redisClient)),
	})

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

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

type pinger interface {
	Ping(ctx context.Context) error
}

type expiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// healthChecks lists the dependencies the readiness probe verifies
func healthChecks(profileStore profile.Store, redisClient *redis.Client) map[string]handler.HealthCheck {
	checks := make(map[string]handler.HealthCheck)
	if p, ok := profileStore.(pinger); ok {
		checks["store"] = p.Ping
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

// purgeJob drops expired profile documents from stores that do not expire
// them on their own
func purgeJob(purger expiredPurger, every time.Duration, log *zap.Logger) scheduler.Job {
	return scheduler.Job{
		Name:     "purge-expired-profiles",
		Interval: every,
		Timeout:  time.Minute,
		Run: func(ctx context.Context) error {
			n, err := purger.PurgeExpired(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info("Purged expired profile documents", zap.Int64("count", n))
			}
			return nil
		},
	}
}
