package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/dto"
	"github.com/SscSPs/estate_ledger/internal/handlers"
	"github.com/SscSPs/estate_ledger/internal/middleware"
	"github.com/SscSPs/estate_ledger/internal/platform/bootstrap"
	"github.com/SscSPs/estate_ledger/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

//go:generate swag init -g cmd/estate_ledger/main.go -o cmd/docs -d ../../

// @title Estate Ledger API
// @version 1.0
// @description Double-entry ledger, resident billing and bank reconciliation for estate management.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize ledger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.SeedChartFile(ctx, logger); err != nil {
		logger.Error("Failed to seed chart of accounts", slog.String("error", err.Error()))
		os.Exit(1)
	}
	checkRequiredAccounts(ctx, app, logger)

	dto.RegisterValidators()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rateLimiter, err := newRateLimiter(cfg, app.Redis)
	if err != nil {
		logger.Error("Failed to configure rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, app.Services, middleware.RateLimit(rateLimiter))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// checkRequiredAccounts reports missing system accounts loudly. The server keeps running so that an
// operator can seed the chart through the API; posting endpoints answer 503 until then.
func checkRequiredAccounts(ctx context.Context, app *bootstrap.App, logger *slog.Logger) {
	err := app.Services.Account.EnsureRequiredAccounts(ctx)
	if err == nil {
		return
	}
	var cfgErr *apperrors.ConfigurationError
	if errors.As(err, &cfgErr) {
		logger.Error("Required system accounts are not provisioned", slog.Any("missing", cfgErr.Missing))
		return
	}
	logger.Error("Failed to check required system accounts", slog.String("error", err.Error()))
}

// newRateLimiter shares counters through redis when it is configured, otherwise per process.
func newRateLimiter(cfg *config.Config, rdb *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	if rdb == nil {
		return limiter.New(memorystore.NewStore(), rate), nil
	}
	store, err := redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "estate_ledger_limiter"})
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}
