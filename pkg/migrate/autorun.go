package migrate

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// ShouldAutoRun reports whether the API applies migrations on boot. The flag
// is honoured in dev and whenever the embedded sqlite engine is in use.
func ShouldAutoRun(cfg *config.Config) bool {
	if cfg == nil || !cfg.FeatureFlags.AutoMigrate {
		return false
	}
	return cfg.App.IsDev() || cfg.DB.IsSQLite()
}

// AutoRun applies pending migrations from dir when ShouldAutoRun allows it and
// logs the schema version before and after.
func AutoRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client, dir string) error {
	if !ShouldAutoRun(cfg) {
		return nil
	}
	if dir == "" {
		dir = DefaultDir
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	dialect := Dialect(cfg.DB)
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": dir, "dialect": dialect})

	if err := setDialect(dialect); err != nil {
		return err
	}
	before, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	if err := Run(ctx, sqlDB, dialect, dir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	after, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"from_version": before, "to_version": after}), "migrations.applied")
	return nil
}
