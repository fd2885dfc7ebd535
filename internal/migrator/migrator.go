// Package migrator applies the portal schema using golang-migrate.
package migrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/blockedby/dosimetria-portal/internal/logger"
)

// Migrator manages database migrations.
type Migrator struct {
	migrationsFS fs.FS
	log          *logger.Logger
}

// NewWithFS creates a new Migrator with the given filesystem.
// The fs should contain .sql migration files.
func NewWithFS(migrationsFS fs.FS) (*Migrator, error) {
	if migrationsFS == nil {
		return nil, errors.New("migrationsFS cannot be nil")
	}

	return &Migrator{
		migrationsFS: migrationsFS,
		log:          logger.Get().Component("migrator"),
	}, nil
}

// Up runs all pending migrations. Migrations must run on the service-role DSN,
// since they create row level security policies.
func (m *Migrator) Up(_ context.Context, databaseURL string) error {
	inst, err := m.open(databaseURL)
	if err != nil {
		return err
	}
	defer inst.Close()

	if err := inst.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Debug().Msg("schema up to date")
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	if version, dirty, err := inst.Version(); err == nil {
		m.log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
	}

	return nil
}

// Version returns the current migration version and dirty state.
func (m *Migrator) Version(_ context.Context, databaseURL string) (version uint, dirty bool, err error) {
	inst, err := m.open(databaseURL)
	if err != nil {
		return 0, false, err
	}
	defer inst.Close()

	version, dirty, err = inst.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get version: %w", err)
	}

	return version, dirty, nil
}

func (m *Migrator) open(databaseURL string) (*migrate.Migrate, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL cannot be empty")
	}

	sourceDriver, err := iofs.New(m.migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	inst, err := migrate.NewWithSourceInstance("iofs", sourceDriver, convertToPgx5URL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	return inst, nil
}

// convertToPgx5URL rewrites postgres:// DSNs to the scheme registered by the
// pgx/v5 migrate driver.
func convertToPgx5URL(databaseURL string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
