// Package db provides PostgreSQL connectivity and schema migrations for the cookbook service.
// It builds the two pgx pools described in config.DatabasePools, enables the extensions the
// search queries depend on, and drives golang-migrate over the SQL files in ./migrations.
package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	// file source driver for migrate.New("file://...")
	_ "github.com/golang-migrate/migrate/v4/source/file"
	// postgres database driver for golang-migrate; it talks through lib/pq
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/config"
)

// NewDBPools establishes the application pool and the import pool.
// The import pool is used by the migrate and import-dataset commands so that bulk work
// never starves request handlers of connections.
func NewDBPools(ctx context.Context, cfg *config.DatabasePools) (*pgxpool.Pool, *pgxpool.Pool, error) {
	appPool, err := NewPool(ctx, cfg.AppPool)
	if err != nil {
		return nil, nil, apperror.NewDatabaseError("failed to create application pool", err)
	}

	importPool, err := NewPool(ctx, cfg.ImportPool)
	if err != nil {
		appPool.Close()
		return nil, nil, apperror.NewDatabaseError("failed to create import pool", err)
	}

	return appPool, importPool, nil
}

// NewPool creates and pings a single pgxpool.
func NewPool(ctx context.Context, cfg *config.PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}

	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	createCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(createCtx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", cfg.DBName), err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s", cfg.DBName), err)
	}

	return pool, nil
}

// DSN renders a postgres:// URL for cfg. Credentials are escaped so passwords may contain any character.
func DSN(cfg *config.PoolConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// EnableExtensions enables the PostgreSQL extensions used by the schema.
// pg_trgm backs the case-insensitive name search on foods and recipes.
func EnableExtensions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, ext := range []string{"pg_trgm"} {
		execCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := pool.Exec(execCtx, fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s", ext))
		cancel()
		if err != nil {
			return apperror.NewDatabaseError(fmt.Sprintf("failed to create extension %s", ext), err)
		}
	}
	return nil
}

func newMigrator(cfg *config.PoolConfig, migrationsPath string) (*migrate.Migrate, error) {
	m, err := migrate.New("file://"+migrationsPath, DSN(cfg))
	if err != nil {
		return nil, apperror.NewMigrationError("failed to create migrator", err)
	}
	return m, nil
}

func closeMigrator(m *migrate.Migrate) error {
	srcErr, dbErr := m.Close()
	return errors.Join(srcErr, dbErr)
}

// RunMigrations applies every pending up migration. No pending migrations is not an error.
func RunMigrations(cfg *config.PoolConfig, migrationsPath string) (err error) {
	m, err := newMigrator(cfg, migrationsPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeMigrator(m); closeErr != nil && err == nil {
			err = apperror.NewMigrationError("failed to close migrator", closeErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewMigrationError("failed to run migrations", err)
	}
	return nil
}

// RollbackMigrations reverts the given number of migrations.
func RollbackMigrations(cfg *config.PoolConfig, migrationsPath string, steps int) (err error) {
	if steps <= 0 {
		return apperror.NewBadRequestError("rollback steps must be positive", nil)
	}
	m, err := newMigrator(cfg, migrationsPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeMigrator(m); closeErr != nil && err == nil {
			err = apperror.NewMigrationError("failed to close migrator", closeErr)
		}
	}()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewMigrationError("failed to roll back migrations", err)
	}
	return nil
}

// MigrationVersion reports the current schema version and whether the last migration left it dirty.
func MigrationVersion(cfg *config.PoolConfig, migrationsPath string) (uint, bool, error) {
	m, err := newMigrator(cfg, migrationsPath)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(m)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, apperror.NewMigrationError("failed to read migration version", err)
	}
	return version, dirty, nil
}
