package db

import (
	"context"
	"embed"
	"fmt"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// DatabaseConnection wraps the pgx pool with query and migration helpers.
type DatabaseConnection struct {
	*pgxpool.Pool
}

// NewDatabaseConnection verifies the pool is reachable. The pool is opened
// with its own retry loop, so a failed ping here is terminal.
func NewDatabaseConnection(ctx context.Context, pool *pgxpool.Pool) (*DatabaseConnection, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("could not ping the database: %w", err)
	}
	return &DatabaseConnection{pool}, nil
}

// Close closes the database connection
func (db *DatabaseConnection) Close() {
	db.Pool.Close()
}

func (db *DatabaseConnection) Queries(ctx context.Context) *Queries {
	return New(db)
}

func (db *DatabaseConnection) NewWithTX(ctx context.Context) (*Queries, pgx.Tx, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return New(tx), tx, nil
}

//go:embed sql/migrations/*.sql
var embedMigrations embed.FS

// Migrate runs the goose migrations. GOOSE_UP_TO and GOOSE_DOWN_TO pin the
// target version; without them the schema migrates to the latest version.
func (db *DatabaseConnection) Migrate(ctx context.Context) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	stdDb := stdlib.OpenDBFromPool(db.Pool)
	defer stdDb.Close()

	if down, ok := os.LookupEnv("GOOSE_DOWN_TO"); ok {
		target, err := strconv.ParseInt(down, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse GOOSE_DOWN_TO version: %w", err)
		}
		return goose.DownToContext(ctx, stdDb, "sql/migrations", target)
	}

	target := goose.MaxVersion
	if up, ok := os.LookupEnv("GOOSE_UP_TO"); ok {
		parsed, err := strconv.ParseInt(up, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse GOOSE_UP_TO version: %w", err)
		}
		target = parsed
	}

	return goose.UpToContext(ctx, stdDb, "sql/migrations", target)
}
