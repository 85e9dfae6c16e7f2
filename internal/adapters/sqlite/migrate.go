package sqlite

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/mminer237/efw2-maker/db/migrations"
)

// Migrate applies the embedded dbmate migrations that are not yet recorded
// in schema_migrations. It uses the same bookkeeping table as dbmate, so the
// two can be mixed freely.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(128) PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		version, _, _ := strings.Cut(name, "_")

		var n int
		if err := r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM schema_migrations WHERE version=?`, version).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			continue
		}

		body, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return err
		}
		up := upSection(string(body))

		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// upSection returns the statements between "-- migrate:up" and "-- migrate:down".
func upSection(body string) string {
	_, after, found := strings.Cut(body, "-- migrate:up")
	if !found {
		after = body
	}
	up, _, _ := strings.Cut(after, "-- migrate:down")
	return up
}
