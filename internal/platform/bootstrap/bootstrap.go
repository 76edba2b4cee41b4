// Package bootstrap assembles the ledger from configuration. The HTTP server and the operator CLI
// share it so both run against identical storage, locking and event wiring.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/core/services"
	"github.com/SscSPs/estate_ledger/internal/platform/config"
	"github.com/SscSPs/estate_ledger/internal/platform/events"
	"github.com/SscSPs/estate_ledger/internal/platform/lock"
	"github.com/SscSPs/estate_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/estate_ledger/internal/repositories/memory"
	"github.com/SscSPs/estate_ledger/pkg/database"
	"github.com/redis/go-redis/v9"
)

// App is a fully wired ledger.
type App struct {
	Config   *config.Config
	Services *portssvc.ServiceContainer
	// Redis is nil when REDIS_ADDRESS is not configured.
	Redis *redis.Client

	closers []func()
}

// New connects storage, runs migrations, picks the lock and event backends and builds the services.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg}

	repos, err := app.openStorage(ctx, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	var locker portssvc.BatchLocker = lock.NewLocalLocker()
	if cfg.RedisAddress != "" {
		redisLocker, rdb, err := lock.ConnectRedis(ctx, cfg.RedisAddress)
		if err != nil {
			app.Close()
			return nil, err
		}
		locker = redisLocker
		app.Redis = rdb
		app.closers = append(app.closers, func() { _ = rdb.Close() })
	}

	var publisher portssvc.EventPublisher = events.NewLogPublisher(logger)
	if cfg.PubSubProjectID != "" {
		pub, err := events.NewPubSubPublisher(ctx, cfg.PubSubProjectID, cfg.PubSubTopic)
		if err != nil {
			app.Close()
			return nil, err
		}
		publisher = pub
		app.closers = append(app.closers, func() {
			if err := pub.Close(); err != nil {
				logger.Error("Failed to close pubsub publisher", slog.String("error", err.Error()))
			}
		})
		logger.Info("Publishing ledger events to pubsub", slog.String("topic", cfg.PubSubTopic))
	}

	app.Services = services.NewServiceContainer(cfg, repos, publisher, locker)
	return app, nil
}

func (a *App) openStorage(ctx context.Context, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	if a.Config.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage; ledger data is lost on exit")
		return memory.NewStore().Provider(), nil
	}

	if err := database.RunMigrations(a.Config.DatabaseURL, a.Config.MigrationsPath, logger); err != nil {
		return portsrepo.RepositoryProvider{}, err
	}
	pool, err := database.NewPgxPool(ctx, a.Config.DatabaseURL, a.Config.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	a.closers = append(a.closers, func() { database.ClosePgxPool(pool) })
	return pgsql.NewRepositoryProvider(pool), nil
}

// SeedChartFile upserts the configured chart of accounts file, if any.
func (a *App) SeedChartFile(ctx context.Context, logger *slog.Logger) error {
	if a.Config.ChartOfAccountsFile == "" {
		return nil
	}
	doc, err := os.ReadFile(a.Config.ChartOfAccountsFile)
	if err != nil {
		return fmt.Errorf("read chart of accounts %s: %w", a.Config.ChartOfAccountsFile, err)
	}
	created, updated, err := a.Services.Account.SeedChartOfAccounts(ctx, doc, domain.SystemActor)
	if err != nil {
		return err
	}
	logger.Info("Chart of accounts seeded",
		slog.String("file", a.Config.ChartOfAccountsFile),
		slog.Int("created", created),
		slog.Int("updated", updated),
	)
	return nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
