package postgres

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// LogWriter receives migration progress.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationResult reports what Migrate did.
type MigrationResult struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	Applied bool `json:"applied"`
}

// Migrate applies every pending schema migration to the database at dsn.
func Migrate(dsn string, logger LogWriter) (*MigrationResult, error) {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, err
	}

	runner, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		srcErr, dbErr := runner.Close()
		if srcErr != nil {
			logger.Error("migration source close: %v", srcErr)
		}
		if dbErr != nil {
			logger.Error("migration db close: %v", dbErr)
		}
	}()

	applied := true
	if err := runner.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return nil, err
		}
		applied = false
	}

	version, dirty, err := runner.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, err
	}
	if applied {
		logger.Debug("database migrated to version %d", version)
	} else {
		logger.Debug("database schema up to date at version %d", version)
	}
	return &MigrationResult{Version: version, Dirty: dirty, Applied: applied}, nil
}
