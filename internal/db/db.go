package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = "app.db"

// connParams are applied to every pooled connection, not only the first one.
var connParams = []string{"_foreign_keys=on", "_busy_timeout=5000"}

// Open opens (or creates) a SQLite database and brings its schema up to date
// with Migrate.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultPath
	}
	d, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	// journal_mode may not be supported in some contexts (e.g., in-memory). Ignore errors.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := Migrate(ctx, d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// DSN appends the per-connection pragmas to path unless the caller already set them.
func DSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	var extra []string
	for _, p := range connParams {
		key := p[:strings.Index(p, "=")]
		if !strings.Contains(path, key+"=") {
			extra = append(extra, p)
		}
	}
	if len(extra) == 0 {
		return path
	}
	return path + sep + strings.Join(extra, "&")
}
