package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/yigit/visitportal/internal/pkg/logger"
)

//go:embed sql/*.sql
var files embed.FS

// Migrator applies the portal's schema migrations
type Migrator struct {
	dsn string
}

// NewMigrator creates a new migrator for the given postgres DSN
func NewMigrator(dsn string) *Migrator {
	return &Migrator{dsn: dsn}
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	source, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	mg, err := migrate.NewWithSourceInstance("iofs", source, m.dsn)
	if err != nil {
		return nil, fmt.Errorf("migration init: %w", err)
	}
	return mg, nil
}

// Up applies all pending migrations
func (m *Migrator) Up() error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration version: %w", err)
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Migrations applied")
	return nil
}

// Down rolls back every migration
func (m *Migrator) Down() error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down: %w", err)
	}
	logger.Info().Msg("Migrations rolled back")
	return nil
}
