package database

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"

	"github.com/mbolis/survey-studio/log"
)

//go:embed migrations
var schema embed.FS

// migrateDB brings the schema to the latest embedded version. A dirty schema,
// left by a migration that failed halfway, is refused.
func migrateDB(db *sql.DB) error {
	src, err := iofs.New(schema, "migrations")
	if err != nil {
		return errors.Wrap(err, "migration source")
	}
	dst, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return errors.Wrap(err, "migration target")
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", dst)
	if err != nil {
		return errors.Wrap(err, "migrator")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}

	version, dirty, err := m.Version()
	if err != nil {
		return errors.Wrap(err, "schema version")
	}
	if dirty {
		return errors.Errorf("schema version %d is dirty", version)
	}
	log.Debugf("database schema at version %d", version)
	return nil
}
