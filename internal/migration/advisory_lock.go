package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Shared by every migrator process pointed at the same database.
const advisoryLockKey int64 = 4_112_902_377

var ErrLockHeld = errors.New("another migration process holds the advisory lock")

func withAdvisoryLock(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	var locked bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", advisoryLockKey).Scan(&locked); err != nil {
		return fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !locked {
		return ErrLockHeld
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", advisoryLockKey)
	}()

	return fn(ctx)
}
