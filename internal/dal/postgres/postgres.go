package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

// Client represents a Postgres client.
type Client struct {
	pool *pgxpool.Pool
	db   *sqlx.DB
}

// DB returns the pool wrapped for sqlx.
func (p *Client) DB() *sqlx.DB {
	return p.db
}

// Close closes the database connection for graceful shutdown.
func (p *Client) Close() error {
	err := p.db.Close()
	p.pool.Close()

	return err
}

// MustNewClient connects to the storefront database at url and applies the
// migrations under migrationsPath. An empty path skips migrations, which is
// how the server runs against the production storefront schema.
func MustNewClient(url, migrationsPath string) *Client {
	if url == "" {
		panic("postgres: DATABASE_URL is not set")
	}

	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		panic(fmt.Sprintf("postgres: failed to parse DATABASE_URL: %v", err))
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		panic(err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		panic(err)
	}

	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")

	if migrationsPath != "" {
		if err := goose.SetDialect("postgres"); err != nil {
			panic(err)
		}

		if err := goose.Up(db.DB, migrationsPath); err != nil &&
			!errors.Is(err, goose.ErrNoNextVersion) {
			panic(err)
		}
	}

	slog.Info("Postgres connected", "migrations", migrationsPath != "")

	return &Client{
		pool: pool,
		db:   db,
	}
}
