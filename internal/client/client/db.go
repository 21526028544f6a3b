package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rmcatalog/internal/client/migrations"
	"github.com/dmitrijs2005/rmcatalog/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// RunMigrations applies the embedded goose migrations. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// busyTimeout makes a connection wait for a lock held by another process
// (serve and one-shot commands can share a file) instead of failing at once.
const busyTimeout = "_pragma=busy_timeout(5000)"

// InitDatabase opens (creating if needed) the SQLite database at dsn and
// brings its schema up to date. SQLite allows a single writer, so the pool
// is limited to one connection.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	path, _, _ := strings.Cut(dsn, "?")
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", withBusyTimeout(dsn))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func withBusyTimeout(dsn string) string {
	if strings.Contains(dsn, "busy_timeout") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + busyTimeout
	}
	return dsn + "?" + busyTimeout
}
