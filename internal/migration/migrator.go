package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"auction-house/utils"
)

//go:embed sql/postgres/*.sql sql/sqlite/*.sql
var migrations embed.FS

// goose keeps its dialect and base FS in package state
var gooseMu sync.Mutex

// Migrator wraps goose operations.
type Migrator struct {
	db      *bun.DB
	dialect string
	dir     string
}

// New constructs a goose-backed migrator for the given storage driver.
func New(driver string, db *bun.DB) (*Migrator, error) {
	dialect, dir, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, dialect: dialect, dir: dir}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	err := m.run(func() error {
		return goose.UpContext(ctx, m.db.DB, m.dir)
	})
	if err != nil {
		if isNoMigrationErr(err) {
			utils.Info("no migrations to apply", nil)
			return nil
		}
		return err
	}

	utils.Info("migrations applied", map[string]any{"dialect": m.dialect})
	return nil
}

// Down rolls back migrations. Steps <=0 defaults to 1; all=true rolls everything back.
func (m *Migrator) Down(ctx context.Context, steps int, all bool) error {
	if all {
		err := m.run(func() error {
			return goose.DownToContext(ctx, m.db.DB, m.dir, 0)
		})
		if err != nil {
			if isNoMigrationErr(err) {
				utils.Info("no migrations to rollback", nil)
				return nil
			}
			return err
		}
		utils.Info("migrations rolled back", map[string]any{"mode": "all"})
		return nil
	}

	if steps <= 0 {
		steps = 1
	}

	for i := 0; i < steps; i++ {
		err := m.run(func() error {
			return goose.DownContext(ctx, m.db.DB, m.dir)
		})
		if err != nil {
			if isNoMigrationErr(err) {
				utils.Info("no migrations to rollback", nil)
				return nil
			}
			return err
		}
	}

	utils.Info("migrations rolled back", map[string]any{"steps": steps})
	return nil
}

// Version reports the currently applied schema version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	var version int64
	err := m.run(func() error {
		v, err := goose.GetDBVersionContext(ctx, m.db.DB)
		version = v
		return err
	})
	return version, err
}

func (m *Migrator) run(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(log.StandardLogger())
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	return fn()
}

func gooseDialect(driver string) (string, string, error) {
	switch driver {
	case "postgres", "pg":
		return "postgres", "sql/postgres", nil
	case "sqlite", "sqlite3":
		return "sqlite3", "sql/sqlite", nil
	default:
		return "", "", fmt.Errorf("unsupported goose dialect for driver %s", driver)
	}
}

func isNoMigrationErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, goose.ErrNoNextVersion) || errors.Is(err, goose.ErrNoMigrationFiles) {
		return true
	}

	return strings.Contains(err.Error(), "no migrations")
}
