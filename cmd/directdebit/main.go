package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/directdebit/internal/annotation"
	"github.com/railzwaylabs/directdebit/internal/clock"
	"github.com/railzwaylabs/directdebit/internal/config"
	"github.com/railzwaylabs/directdebit/internal/migration"
	"github.com/railzwaylabs/directdebit/internal/observability"
	"github.com/railzwaylabs/directdebit/internal/payment"
	paymentdomain "github.com/railzwaylabs/directdebit/internal/payment/domain"
	"github.com/railzwaylabs/directdebit/internal/providers"
	providerdomain "github.com/railzwaylabs/directdebit/internal/providers/payment/domain"
	"github.com/railzwaylabs/directdebit/internal/redis"
	"github.com/railzwaylabs/directdebit/internal/security/vault"
	"github.com/railzwaylabs/directdebit/internal/server"
	"github.com/railzwaylabs/directdebit/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "directdebit",
		Short:   "Direct-debit payment adapter",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newProviderCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newProviderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Manage tenant gateway credentials",
	}

	var (
		orgID       string
		accessToken string
		environment string
		baseURL     string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Store the GoCardless credentials of a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := snowflake.ParseString(strings.TrimSpace(orgID))
			if err != nil || id <= 0 {
				return errors.New("--org must be a numeric organization id")
			}
			cfg := map[string]any{
				"access_token": accessToken,
				"environment":  environment,
			}
			if baseURL != "" {
				cfg["base_url"] = baseURL
			}
			return runProviderSet(id, cfg)
		},
	}
	set.Flags().StringVar(&orgID, "org", "", "organization id")
	set.Flags().StringVar(&accessToken, "access-token", "", "GoCardless access token")
	set.Flags().StringVar(&environment, "environment", "sandbox", "sandbox or live")
	set.Flags().StringVar(&baseURL, "base-url", "", "override the API base URL")
	_ = set.MarkFlagRequired("org")
	_ = set.MarkFlagRequired("access-token")

	cmd.AddCommand(set)
	return cmd
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		fx.Invoke(func(lc fx.Lifecycle, conn *gorm.DB, cfg config.Config, log *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					manifest, err := migration.Migrate(ctx, conn, cfg.DB.Driver)
					if err != nil {
						return err
					}
					log.Named("migration").Info("schema migrated", zap.String("version", manifest.VersionString()))
					return nil
				},
			})
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		redis.Module,
		vault.Module,
		annotation.Module,
		providers.Module,
		payment.Module,
		server.Module,
	)
	app.Run()
}

func runProviderSet(orgID snowflake.ID, cfg map[string]any) error {
	var svc providerdomain.Service
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		vault.Module,
		providers.Module,
		fx.Provide(payment.NewRegistry),
		fx.Populate(&svc),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = app.Stop(context.Background()) }()

	if err := svc.UpsertProviderConfig(ctx, orgID, paymentdomain.ProviderGoCardless, cfg); err != nil {
		return fmt.Errorf("store provider config: %w", err)
	}
	fmt.Fprintf(os.Stdout, "stored %s config for org %s\n", paymentdomain.ProviderGoCardless, orgID)
	return nil
}

func registerSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
