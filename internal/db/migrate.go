package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Schema changes live in migrations/ as NNNN_name.up.sql with an optional
// NNNN_name.down.sql. A script starting with "-- NO_TX" runs outside a transaction.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

var migrationName = regexp.MustCompile(`^(\d{4})_(.+)\.(up|down)\.sql$`)

type migration struct {
	version int
	name    string
	up      string
	down    string
}

// loadMigrations reads every script in fsys/migrations, ordered by version.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	files, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	byVersion := map[int]*migration{}
	for _, f := range files {
		parts := migrationName.FindStringSubmatch(f.Name())
		if f.IsDir() || parts == nil {
			continue
		}
		version, _ := strconv.Atoi(parts[1])
		body, err := fs.ReadFile(fsys, "migrations/"+f.Name())
		if err != nil {
			return nil, err
		}
		m := byVersion[version]
		if m == nil {
			m = &migration{version: version, name: parts[2]}
			byVersion[version] = m
		}
		if parts[3] == "up" {
			m.up = string(body)
		} else {
			m.down = string(body)
		}
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if strings.TrimSpace(m.up) == "" {
			return nil, fmt.Errorf("migration %04d_%s has no up script", m.version, m.name)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// Migrate applies, in order, every embedded migration not yet recorded in
// schema_migrations.
func Migrate(ctx context.Context, d *sql.DB) error {
	migs, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}
	return migrate(ctx, d, migs)
}

func migrate(ctx context.Context, d *sql.DB, migs []migration) error {
	applied, err := appliedVersions(ctx, d)
	if err != nil {
		return err
	}
	for _, m := range migs {
		if applied[m.version] {
			continue
		}
		err := runScript(ctx, d, m.up, `INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name)
		if err != nil {
			return fmt.Errorf("migration %04d_%s: %w", m.version, m.name, err)
		}
	}
	return nil
}

// RollbackLast reverts the most recently applied migration. It is a no-op on
// a database with nothing applied.
func RollbackLast(d *sql.DB) error {
	if d == nil {
		return errors.New("nil db")
	}
	ctx := context.Background()
	version, err := SchemaVersion(ctx, d)
	if err != nil || version == 0 {
		return err
	}
	migs, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}
	for _, m := range migs {
		if m.version != version {
			continue
		}
		if strings.TrimSpace(m.down) == "" {
			break
		}
		if err := runScript(ctx, d, m.down, `DELETE FROM schema_migrations WHERE version = ?`, version); err != nil {
			return fmt.Errorf("rollback %04d_%s: %w", m.version, m.name, err)
		}
		return nil
	}
	return fmt.Errorf("no down migration for version %04d", version)
}

// SchemaVersion returns the highest applied migration version, 0 when none.
func SchemaVersion(ctx context.Context, d *sql.DB) (int, error) {
	if err := ensureMigrationsTable(ctx, d); err != nil {
		return 0, err
	}
	var v sql.NullInt64
	if err := d.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// runScript executes script and the bookkeeping statement together, inside
// one transaction unless the script opts out.
func runScript(ctx context.Context, d *sql.DB, script, record string, args ...any) error {
	if strings.HasPrefix(strings.TrimSpace(script), "-- NO_TX") {
		if _, err := d.ExecContext(ctx, script); err != nil {
			return err
		}
		_, err := d.ExecContext(ctx, record, args...)
		return err
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return err
	}
	return tx.Commit()
}

func ensureMigrationsTable(ctx context.Context, d *sql.DB) error {
	_, err := d.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		applied_at TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
	)`)
	return err
}

func appliedVersions(ctx context.Context, d *sql.DB) (map[int]bool, error) {
	if err := ensureMigrationsTable(ctx, d); err != nil {
		return nil, err
	}
	rows, err := d.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	got := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		got[v] = true
	}
	return got, rows.Err()
}
