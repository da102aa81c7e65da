package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// RunMigrations applies the embedded postgres migrations under an advisory
// lock and records the resulting schema state.
func RunMigrations(ctx context.Context, db *sql.DB) (Manifest, error) {
	if db == nil {
		return Manifest{}, errors.New("migration database handle is required")
	}
	manifest, err := LoadManifest()
	if err != nil {
		return Manifest{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	err = withAdvisoryLock(ctx, db, func(ctx context.Context) error {
		migrator, err := newMigrator(db)
		if err != nil {
			return err
		}
		if _, err := ensureNotDirty(migrator); err != nil {
			return err
		}
		if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("apply migrations: %w", err)
		}
		current, err := ensureNotDirty(migrator)
		if err != nil {
			return err
		}
		if current != manifest.Version {
			return fmt.Errorf("schema version mismatch after migrate: got %d want %d", current, manifest.Version)
		}
		return recordSchemaState(ctx, db, manifest)
	})
	if err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return migrator, nil
}

func ensureNotDirty(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database migrations are dirty at version %d", version)
	}
	return version, nil
}

func recordSchemaState(ctx context.Context, db *sql.DB, manifest Manifest) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO schema_state (id, schema_version, checksum, activated_at)
		VALUES (TRUE, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET schema_version = EXCLUDED.schema_version,
		    checksum = EXCLUDED.checksum,
		    activated_at = EXCLUDED.activated_at
	`, manifest.VersionString(), manifest.Checksum, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record schema state: %w", err)
	}
	return nil
}
