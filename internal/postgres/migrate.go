package postgres

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/samber/lo"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const createVersionTable = `create table if not exists public.marketplace_schema_migrations (
    version    integer primary key,
    name       text not null,
    applied_at timestamptz not null default now()
)`

// Migration is one numbered SQL file
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// LoadMigrations returns the embedded migrations ordered by version
func LoadMigrations() ([]Migration, error) {
	return loadMigrations(migrationFiles, "migrations")
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".sql")
		prefix, _, _ := strings.Cut(name, "_")
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHintf("Migration %s must start with a numeric version", entry.Name()).
				Mark(ierr.ErrValidation)
		}

		body, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
		}

		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(body)})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })

	dupes := lo.FindDuplicatesBy(migrations, func(m Migration) int { return m.Version })
	if len(dupes) > 0 {
		return nil, ierr.NewErrorf("duplicate migration version %d", dupes[0].Version).
			WithHint("Migration versions must be unique").
			Mark(ierr.ErrValidation)
	}

	return migrations, nil
}

// Pending filters out the versions already applied
func Pending(all []Migration, applied []int) []Migration {
	return lo.Filter(all, func(m Migration, _ int) bool {
		return !lo.Contains(applied, m.Version)
	})
}

// Migrator applies embedded migrations, each in its own transaction
type Migrator struct {
	db *DB
}

func NewMigrator(db *DB) *Migrator {
	return &Migrator{db: db}
}

// WriteTo prints the pending migrations without executing them
func (m *Migrator) WriteTo(ctx context.Context, w io.Writer) error {
	pending, err := m.pending(ctx)
	if err != nil {
		return err
	}
	for _, mig := range pending {
		if _, err := fmt.Fprintf(w, "-- %s\n%s\n", mig.Name, mig.SQL); err != nil {
			return err
		}
	}
	return nil
}

// Up applies every pending migration and returns how many ran
func (m *Migrator) Up(ctx context.Context) (int, error) {
	pending, err := m.pending(ctx)
	if err != nil {
		return 0, err
	}

	for _, mig := range pending {
		if err := m.apply(ctx, mig); err != nil {
			return 0, err
		}
		m.db.logger.Infow("applied migration", "version", mig.Version, "name", mig.Name)
	}
	return len(pending), nil
}

func (m *Migrator) pending(ctx context.Context) ([]Migration, error) {
	all, err := LoadMigrations()
	if err != nil {
		return nil, err
	}

	if _, err := m.db.ExecContext(ctx, createVersionTable); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not create the migrations table").
			Mark(ierr.ErrDatabase)
	}

	var applied []int
	if err := m.db.SelectContext(ctx, &applied, `select version from public.marketplace_schema_migrations`); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	return Pending(all, applied), nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		_ = tx.Rollback()
		return ierr.WithError(err).
			WithHintf("Migration %s failed", mig.Name).
			WithReportableDetails(map[string]any{"version": mig.Version}).
			Mark(ierr.ErrDatabase)
	}

	if _, err := tx.ExecContext(ctx,
		`insert into public.marketplace_schema_migrations (version, name) values ($1, $2)`,
		mig.Version, mig.Name); err != nil {
		_ = tx.Rollback()
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	if err := tx.Commit(); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return nil
}
