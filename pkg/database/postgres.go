package database

import (
	"context"
	"fmt"
	"time"

	"interview-booking/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PgxIface interface untuk abstraction database
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// *pgxpool.Pool already has this method set.
var _ PgxIface = (*pgxpool.Pool)(nil)

// InitDB opens the pool and waits for Postgres to answer, retrying with a
// growing pause so the service can start alongside its database.
func InitDB(config utils.DatabaseConfig, log *zap.Logger) (PgxIface, error) {
	poolConfig, err := pgxpool.ParseConfig(connString(config))
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute
	poolConfig.ConnConfig.ConnectTimeout = timeout

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	attempts := max(config.ConnectRetries, 1)
	backoff := time.Second
	for i := 1; ; i++ {
		pingCtx, cancel := context.WithTimeout(context.Background(), timeout)
		err = pool.Ping(pingCtx)
		cancel()
		if err == nil {
			break
		}
		if i >= attempts {
			pool.Close()
			return nil, fmt.Errorf("ping database after %d attempts: %w", attempts, err)
		}

		log.Warn("Database not ready, retrying",
			zap.Int("attempt", i),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		time.Sleep(backoff)
		backoff *= 2
	}

	log.Info("Database pool ready",
		zap.String("host", config.Host),
		zap.String("database", config.Name),
		zap.Int32("max_conns", poolConfig.MaxConns))

	return pool, nil
}

func connString(config utils.DatabaseConfig) string {
	return fmt.Sprintf("user=%s password=%s dbname=%s sslmode=%s host=%s port=%s",
		config.User, config.Password, config.Name, config.SSLMode, config.Host, config.Port)
}
