package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

const pingTimeout = 5 * time.Second

// Database holds the MariaDB connection pool.
type Database struct {
	*sql.DB
}

// Option tweaks the parsed DSN before the pool is opened.
type Option func(*mysql.Config)

// WithMultiStatements allows several statements per query. Migration files need it.
func WithMultiStatements() Option {
	return func(c *mysql.Config) { c.MultiStatements = true }
}

// BuildDSN parses dsn and forces the settings the repositories rely on:
// DATETIME columns scan into time.Time, in UTC.
func BuildDSN(dsn string, opts ...Option) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse MARIADB_DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	for _, o := range opts {
		o(cfg)
	}
	return cfg.FormatDSN(), nil
}

// New creates, configures, and verifies a MariaDB connection pool.
// It returns an error if the DSN is invalid or pinging the database fails.
func New(dsn string, maxOpen, maxIdle int, connMaxLifetime time.Duration, opts ...Option) (*Database, error) {
	full, err := BuildDSN(dsn, opts...)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", full)
	if err != nil {
		return nil, err
	}

	// configure pooling
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		// the ping error matters more than a close failure
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Database{db}, nil
}
