package migrate

import (
	"context"
	"fmt"

	"github.com/gaprints/prints-backend/pkg/config"
	"github.com/gaprints/prints-backend/pkg/db"
	"github.com/gaprints/prints-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations on boot when running in dev with
// PRINTS_AUTO_MIGRATE set. Prod schema changes go through cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	return autoRun(ctx, logg, client, DefaultDir)
}

func autoRun(ctx context.Context, logg *logger.Logger, client *db.Client, dir string) error {
	if err := ValidateDir(dir); err != nil {
		return fmt.Errorf("refusing dev auto-migrate: %w", err)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	dialect := client.Dialect()

	before, err := Version(ctx, sqlDB, dialect)
	if err != nil {
		return err
	}
	if err := Run(ctx, sqlDB, dialect, dir, "up"); err != nil {
		return fmt.Errorf("dev auto-migrate: %w", err)
	}
	after, err := Version(ctx, sqlDB, dialect)
	if err != nil {
		return err
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"dialect":      dialect,
			"from_version": before,
			"to_version":   after,
		})
		if before == after {
			logg.Debug(ctx, "migrate.autorun.current")
		} else {
			logg.Info(ctx, "migrate.autorun.applied")
		}
	}
	return nil
}
