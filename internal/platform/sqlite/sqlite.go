// Package sqlite opens embedded SQLite databases with the pragmas every store
// in this repo expects.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"civicfund/internal/platform/migrate"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the database at path and applies the
// migrations found under root in migrationFS.
func Open(ctx context.Context, path string, migrationFS fs.FS, root string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under WAL.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if migrationFS != nil {
		if err := migrate.Apply(ctx, db, migrate.SQLite, migrationFS, root); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}
