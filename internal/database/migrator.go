package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// migrationsTable names the version bookkeeping table.
const migrationsTable = "schema_migrations"

// Migrator applies the versioned SQL migrations that define the journal
// store schema, driving golang-migrate over a database/sql handle borrowed
// from the pgx pool.
type Migrator struct {
	migrate *migrate.Migrate
	stdDB   *sql.DB // pool-backed handle, closed with the migrator
	logger  zerolog.Logger
}

// NewMigrator builds a Migrator reading migration files from dir.
func NewMigrator(db *DB, dir string, logger zerolog.Logger) (*Migrator, error) {
	switch {
	case db == nil:
		return nil, errors.New("migrator: database is required")
	case db.pool == nil:
		return nil, errors.New("migrator: database pool not initialized")
	case dir == "":
		return nil, errors.New("migrator: migrations directory is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migrator: migrations directory: %w", err)
	}

	stdDB := stdlib.OpenDBFromPool(db.pool)

	driver, err := postgres.WithInstance(stdDB, &postgres.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		stdDB.Close()
		return nil, fmt.Errorf("postgres migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		stdDB.Close()
		return nil, fmt.Errorf("opening migration source: %w", err)
	}

	return &Migrator{
		migrate: m,
		stdDB:   stdDB,
		logger:  logger.With().Str("component", "migrator").Logger(),
	}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Msg("schema already up to date")
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}
	m.logger.Info().Msg("schema migrated")
	return nil
}

// Down reverts every applied migration.
func (m *Migrator) Down() error {
	m.logger.Warn().Msg("reverting all migrations")
	if err := m.migrate.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Msg("nothing to revert")
			return nil
		}
		return fmt.Errorf("reverting migrations: %w", err)
	}
	return nil
}

// Steps applies n migrations forward, or reverts -n backward.
func (m *Migrator) Steps(n int) error {
	if err := m.migrate.Steps(n); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Msg("schema already up to date")
			return nil
		}
		// Stepping past the newest migration surfaces as a missing file.
		if errors.Is(err, os.ErrNotExist) {
			m.logger.Info().Int("steps", n).Msg("ran out of migrations before completing the requested steps")
			return nil
		}
		return fmt.Errorf("stepping migrations: %w", err)
	}
	m.logger.Info().Int("steps", n).Msg("migration steps applied")
	return nil
}

// Version reports the current schema version and whether the last run left
// it dirty.
func (m *Migrator) Version() (uint, bool, error) {
	return m.migrate.Version()
}

// Force overwrites the recorded version without running any migration,
// clearing a dirty state after a failed run.
func (m *Migrator) Force(version int) error {
	m.logger.Warn().Int("version", version).Msg("forcing schema version")
	return m.migrate.Force(version)
}

// Close releases the migration source and the borrowed database handle.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	var stdErr error
	if m.stdDB != nil {
		stdErr = m.stdDB.Close()
	}
	return errors.Join(sourceErr, dbErr, stdErr)
}
