package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/traitscore/internal/infrastructure/config"
)

// NewDriver opens the configured database and wraps it in an ent SQL driver.
// PostgreSQL goes through a pgx pool; SQLite uses go-sqlite3.
func NewDriver(cfg *config.Config, logger logrus.FieldLogger) (dialect.Driver, func(), error) {
	driver, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database driver: %w", err)
	}

	switch driver {
	case "postgres":
		return newPostgresDriver(cfg, logger)
	case "sqlite3":
		dsn, err := cfg.DatabaseURL()
		if err != nil {
			return nil, nil, fmt.Errorf("determine database dsn: %w", err)
		}
		return OpenSQLite(dsn, cfg.Database.LogSQL, logger)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func newPostgresDriver(cfg *config.Config, logger logrus.FieldLogger) (dialect.Driver, func(), error) {
	pool, closePool, err := NewConnection(cfg, logger)
	if err != nil {
		if closePool != nil {
			closePool()
		}
		return nil, nil, err
	}
	rawDB := stdlib.OpenDBFromPool(pool)

	drv := entsql.OpenDB(dialect.Postgres, rawDB)
	return drv, func() {
		_ = drv.Close()
		closePool()
	}, nil
}

// OpenSQLite opens a SQLite database with foreign keys enabled.
func OpenSQLite(dsn string, logSQL bool, logger logrus.FieldLogger) (dialect.Driver, func(), error) {
	rawDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite db: %w", err)
	}
	rawDB.SetMaxOpenConns(1)
	rawDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := rawDB.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}

	var drv dialect.Driver = entsql.OpenDB(dialect.SQLite, rawDB)
	if logSQL {
		sqlLogger := logger.WithField("component", "sqlite")
		drv = dialect.Debug(drv, func(args ...any) { sqlLogger.Debug(args...) })
	}
	return drv, func() {
		_ = drv.Close()
	}, nil
}
