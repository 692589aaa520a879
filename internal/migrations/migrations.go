// Package migrations bundles the schema of every SQL backend and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"taskManager/internal/logger"
	"taskManager/internal/repository"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed postgres/*.sql sqlite/*.sql mysql/*.sql
var files embed.FS

var ErrNoSchema = errors.New("repository type has no schema")

func Up(repoType repository.Type, dsn string) error {
	logger.Info("Migrations: applying", zap.String("repository", string(repoType)))

	m, err := newMigrate(repoType, dsn)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Migrations: apply failed", err)
		return fmt.Errorf("applying migrations: %w", err)
	}
	logVersion(m)
	return nil
}

func Down(repoType repository.Type, dsn string) error {
	logger.Info("Migrations: rolling back", zap.String("repository", string(repoType)))

	m, err := newMigrate(repoType, dsn)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Migrations: rollback failed", err)
		return fmt.Errorf("rolling back migrations: %w", err)
	}
	logger.Info("Migrations: rolled back")
	return nil
}

func newMigrate(repoType repository.Type, dsn string) (*migrate.Migrate, error) {
	databaseURL, err := DatabaseURL(repoType, dsn)
	if err != nil {
		return nil, err
	}
	source, err := iofs.New(files, string(repoType))
	if err != nil {
		return nil, fmt.Errorf("opening embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("preparing migrations: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Warn("Migrations: closing source", zap.Error(sourceErr))
	}
	if dbErr != nil {
		logger.Warn("Migrations: closing database", zap.Error(dbErr))
	}
}

func logVersion(m *migrate.Migrate) {
	version, dirty, err := m.Version()
	if err != nil {
		logger.Warn("Migrations: reading version", zap.Error(err))
		return
	}
	logger.Info("Migrations: schema is up to date",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
}

// DatabaseURL turns a store DSN into the URL golang-migrate expects for that backend.
func DatabaseURL(repoType repository.Type, dsn string) (string, error) {
	switch repoType {
	case repository.TypePostgres:
		for _, scheme := range []string{"postgres://", "postgresql://"} {
			if strings.HasPrefix(dsn, scheme) {
				return "pgx5://" + strings.TrimPrefix(dsn, scheme), nil
			}
		}
		return "", fmt.Errorf("postgres dsn must be a postgres:// url: %q", dsn)
	case repository.TypeSQLite:
		return "sqlite://" + strings.TrimPrefix(dsn, "file:"), nil
	case repository.TypeMySQL:
		if !strings.Contains(dsn, "multiStatements=") {
			if strings.Contains(dsn, "?") {
				dsn += "&multiStatements=true"
			} else {
				dsn += "?multiStatements=true"
			}
		}
		return "mysql://" + dsn, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoSchema, repoType)
}
