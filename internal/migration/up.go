// Package migration applies the embedded MariaDB schema with golang-migrate.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func openSource() (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	return src, nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := openSource()
	if err != nil {
		return nil, err
	}
	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return nil, fmt.Errorf("mysql migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration. When a previous run left the
// schema dirty, it forces the version back one step and retries once.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	err = up(m)
	var dirty migrate.ErrDirty
	if !errors.As(err, &dirty) {
		return err
	}

	prev, err := versionBefore(uint(dirty.Version))
	if err != nil {
		return err
	}
	logger.Warnf(context.Background(), "⚠️  Schema dirty at version %d, forcing back to %d", dirty.Version, prev)
	if err := m.Force(prev); err != nil {
		return fmt.Errorf("force version %d: %w", prev, err)
	}
	if err := up(m); err != nil {
		return fmt.Errorf("after forcing version %d: %w", prev, err)
	}
	return nil
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(db *sql.DB, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("migration down: steps must be positive, got %d", steps)
	}
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down: %w", err)
	}
	return nil
}

// Status reports the applied schema version. version is 0 on an empty database.
func Status(db *sql.DB) (version uint, dirty bool, err error) {
	m, err := newMigrate(db)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// versionBefore returns the embedded migration preceding v. Forcing to it
// re-runs v on the next Up.
func versionBefore(v uint) (int, error) {
	src, err := openSource()
	if err != nil {
		return 0, err
	}
	defer func() { _ = src.Close() }()

	prev, err := src.Prev(v)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("no migration before version %d, fix the schema by hand", v)
	}
	if err != nil {
		return 0, fmt.Errorf("look up version before %d: %w", v, err)
	}
	return int(prev), nil
}

// embeddedVersions lists the versions shipped in the binary, ascending.
func embeddedVersions() ([]uint, error) {
	src, err := openSource()
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	v, err := src.First()
	if err != nil {
		return nil, err
	}
	versions := []uint{v}
	for {
		v, err = src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return versions, nil
		}
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
}
