package editlog

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migration is one numbered schema step. Files are named NNN_description.sql
// and the applied level is kept in SQLite's user_version.
type migration struct {
	level int
	name  string
	sql   string
}

func loadMigrations() ([]migration, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	out := make([]migration, 0, len(names))
	for _, name := range names {
		base := path.Base(name)
		prefix, _, _ := strings.Cut(base, "_")
		level, err := strconv.Atoi(prefix)
		if err != nil || level <= 0 {
			return nil, fmt.Errorf("migration %s: name must start with a positive number", base)
		}
		data, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", base, err)
		}
		out = append(out, migration{level: level, name: base, sql: string(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].level < out[j].level })
	for i := 1; i < len(out); i++ {
		if out[i].level == out[i-1].level {
			return nil, fmt.Errorf("migrations %s and %s share level %d", out[i-1].name, out[i].name, out[i].level)
		}
	}
	return out, nil
}

// migrate applies every migration above the database's user_version in one
// transaction.
func (s *Store) migrate(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema level: %w", err)
	}
	applied := current
	for _, m := range migrations {
		if m.level <= current {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		applied = m.level
	}
	if applied == current {
		return nil
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", applied)); err != nil {
		return fmt.Errorf("record schema level: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	s.logger.Debug("edit log schema migrated", "from", current, "to", applied)
	return nil
}
