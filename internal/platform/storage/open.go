// Package storage selects and opens the repository backend named by the config.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_ledger/internal/platform/config"
	"github.com/SscSPs/erp_ledger/internal/repositories/database/memory"
	"github.com/SscSPs/erp_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/erp_ledger/pkg/database"
)

// Open returns the repositories for cfg.StoreDriver and a func releasing them.
// With postgres, pending migrations are applied first when migrate is set.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store; data is lost on exit")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	if migrate {
		if err := Migrate(cfg, logger); err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("initialize database pool: %w", err)
	}
	logger.Info("Database connection pool established")

	return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil
}

// Migrate applies pending schema migrations. It is a no-op for the memory store.
func Migrate(cfg *config.Config, logger *slog.Logger) error {
	if cfg.StoreDriver == config.StoreDriverMemory {
		return nil
	}
	logger.Info("Running database migrations", slog.String("source", cfg.MigrationsPath))
	applied, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
	if err != nil {
		return err
	}
	if applied {
		logger.Info("Database migrations applied successfully")
	} else {
		logger.Info("No new migrations to apply")
	}
	return nil
}
