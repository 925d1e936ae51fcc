package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saharsh4u/startupmanch/internal/config"
)

var (
	dbOpenBackoffBase  = 1 * time.Second
	dbOpenBackoffScale = 1.618
)

func backoffFor(attempt int) time.Duration {
	return time.Duration(float64(dbOpenBackoffBase) * math.Pow(dbOpenBackoffScale, float64(attempt)))
}

// OpenDBPoolWithRetry opens a PostgreSQL pool and verifies it with a ping,
// retrying with exponential backoff. Postgres usually comes up a few
// seconds after the app container, so the first attempts are expected to
// fail on a fresh deploy.
func OpenDBPoolWithRetry(ctx context.Context, conf config.Config) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(conf.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	slog.Info("Connecting to database", "host", cfg.ConnConfig.Host)

	var lastErr error
	for i := 0; i < conf.DatabaseRetries; i++ {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				slog.Info("Connected to database", "host", cfg.ConnConfig.Host)
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		backoff := backoffFor(i)
		slog.Warn("database not ready, retrying", "backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", conf.DatabaseRetries, lastErr)
}
