package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator applies the template store schema with golang-migrate
type Migrator struct {
	migrate *migrate.Migrate
	dir     string
	logger  *zap.Logger
}

// New creates a Migrator for the postgres database behind db
func New(db *sql.DB, migrationsDir string, logger *zap.Logger) (*Migrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &zapMigrateLogger{logger: logger.Named("migrate")}

	return &Migrator{migrate: m, dir: migrationsDir, logger: logger}, nil
}

// zapMigrateLogger routes golang-migrate's own progress lines to zap
type zapMigrateLogger struct {
	logger *zap.Logger
}

func (l *zapMigrateLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *zapMigrateLogger) Verbose() bool {
	return l.logger.Core().Enabled(zap.DebugLevel)
}

// withContext runs fn and asks golang-migrate to stop after the current
// migration once ctx is done
func (m *Migrator) withContext(ctx context.Context, fn func() error) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			select {
			case m.migrate.GracefulStop <- true:
			default:
			}
		case <-done:
		}
	}()

	err := fn()
	if ctxErr := ctx.Err(); ctxErr != nil && err == nil {
		return fmt.Errorf("migration interrupted: %w", ctxErr)
	}
	return err
}

// Up applies every pending migration
func (m *Migrator) Up(ctx context.Context) error {
	m.logger.Info("Applying pending migrations")
	err := m.withContext(ctx, m.migrate.Up)
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("Schema is up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return m.logVersion("Migrations applied")
}

// Down rolls back every migration
func (m *Migrator) Down(ctx context.Context) error {
	m.logger.Info("Rolling back all migrations")
	err := m.withContext(ctx, m.migrate.Down)
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("Nothing to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	}
	m.logger.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations; a negative n rolls back
func (m *Migrator) Steps(ctx context.Context, n int) error {
	m.logger.Info("Running migration steps", zap.Int("steps", n))
	err := m.withContext(ctx, func() error { return m.migrate.Steps(n) })
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("No migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration steps failed: %w", err)
	}
	return m.logVersion("Migration steps completed")
}

// GoTo migrates up or down to version
func (m *Migrator) GoTo(ctx context.Context, version uint) error {
	m.logger.Info("Migrating to version", zap.Uint("target_version", version))
	err := m.withContext(ctx, func() error { return m.migrate.Migrate(version) })
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("Already at target version")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}
	return m.logVersion("Migration to version completed")
}

func (m *Migrator) logVersion(msg string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Version returns the applied version; zero when nothing has been applied
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Status is the applied version together with the migrations on disk
type Status struct {
	Version uint
	Dirty   bool
	Applied []MigrationFile
	Pending []MigrationFile
}

// Status compares the database version with the migrations directory
func (m *Migrator) Status() (*Status, error) {
	version, dirty, err := m.Version()
	if err != nil {
		return nil, err
	}
	files, err := ListMigrations(m.dir)
	if err != nil {
		return nil, err
	}
	return splitByVersion(files, version, dirty), nil
}

func splitByVersion(files []MigrationFile, version uint, dirty bool) *Status {
	st := &Status{Version: version, Dirty: dirty}
	for _, f := range files {
		if f.Number() <= uint64(version) {
			st.Applied = append(st.Applied, f)
		} else {
			st.Pending = append(st.Pending, f)
		}
	}
	return st
}

// Force records version as applied and clean without running anything.
// It is the way out of a dirty state after a failed migration.
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every object in the database, saved templates included
func (m *Migrator) Drop() error {
	m.logger.Warn("Dropping database, all templates will be lost")
	if err := m.migrate.Drop(); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}
	m.logger.Info("Database dropped")
	return nil
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close database: %w", dbErr)
	}
	return nil
}
