package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	catalogapp "github.com/opsync/backend/internal/application/catalog"
	identityapp "github.com/opsync/backend/internal/application/identity"
	partnerapp "github.com/opsync/backend/internal/application/partner"
	purchasingapp "github.com/opsync/backend/internal/application/purchasing"
	salesapp "github.com/opsync/backend/internal/application/sales"
	"github.com/opsync/backend/internal/infrastructure/auth"
	"github.com/opsync/backend/internal/infrastructure/config"
	"github.com/opsync/backend/internal/infrastructure/logger"
	"github.com/opsync/backend/internal/infrastructure/persistence"
	"github.com/opsync/backend/internal/infrastructure/telemetry"
	"github.com/opsync/backend/internal/interfaces/http/handler"
	"github.com/opsync/backend/internal/interfaces/http/middleware"
	"github.com/opsync/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting OpSync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing (no-op provider when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected")

	// Token blacklist: Redis when reachable, in-memory otherwise. The
	// in-memory fallback only invalidates tokens on this instance.
	var blacklist auth.TokenBlacklist
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		defer func() {
			_ = redisClient.Close()
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}
	cancelPing()

	// Repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	sequences := persistence.NewPostgresSequenceAllocator(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	passwords := auth.NewPasswordService()
	invoiceService := salesapp.NewInvoiceService(invoiceRepo, paymentRepo, customerRepo, itemRepo, sequences)
	orderService := purchasingapp.NewOrderService(orderRepo, supplierRepo, sequences)
	itemService := catalogapp.NewItemService(itemRepo, invoiceRepo)
	customerService := partnerapp.NewCustomerService(customerRepo, invoiceRepo)
	supplierService := partnerapp.NewSupplierService(supplierRepo, orderRepo)
	authService := identityapp.NewAuthService(userRepo, passwords, jwtService, blacklist)
	userService := identityapp.NewUserService(userRepo, passwords, jwtService, blacklist)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log

	r := router.New(engine, router.WithAPIVersion("v1")).
		Use(
			middleware.RequestID(),
			logger.Recovery(log),
			logger.GinMiddleware(log),
			otelgin.Middleware(cfg.Telemetry.ServiceName),
			middleware.CORSWithConfig(corsConfig),
		)

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		r.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	r.Use(middleware.JWTAuth(jwtConfig))

	authHandler := handler.NewAuthHandler(authService)
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authHandler.SetLoginRateLimit(middleware.RateLimit(authLimiter))
	}

	r.Register(
		handler.NewHealthHandler(db),
		authHandler,
		handler.NewUserHandler(userService),
		handler.NewItemHandler(itemService),
		handler.NewCustomerHandler(customerService),
		handler.NewSupplierHandler(supplierService),
		handler.NewInvoiceHandler(invoiceService),
		handler.NewPurchaseOrderHandler(orderService),
	)
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
