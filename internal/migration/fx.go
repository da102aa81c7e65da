package migration

import (
	"context"
	"fmt"

	annotationdomain "github.com/railzwaylabs/directdebit/internal/annotation/domain"
	"github.com/railzwaylabs/directdebit/internal/config"
	providerdomain "github.com/railzwaylabs/directdebit/internal/providers/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module verifies the schema on startup. Sqlite databases are migrated in
// place since they only back development and test runs.
var Module = fx.Module("migrations",
	fx.Invoke(func(lc fx.Lifecycle, conn *gorm.DB, cfg config.Config, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if cfg.DB.Driver == "sqlite" {
					return AutoMigrate(conn)
				}
				if err := CheckSchema(ctx, conn); err != nil {
					return err
				}
				log.Named("migration").Info("schema verified")
				return nil
			},
		})
	}),
)

// Migrate brings the configured database up to the embedded schema.
func Migrate(ctx context.Context, conn *gorm.DB, driver string) (Manifest, error) {
	if driver == "sqlite" {
		if err := AutoMigrate(conn); err != nil {
			return Manifest{}, err
		}
		return LoadManifest()
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return Manifest{}, err
	}
	return RunMigrations(ctx, sqlDB)
}

func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&annotationdomain.Annotation{}, &providerdomain.ProviderConfig{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
