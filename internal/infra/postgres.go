package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

const (
	defaultMaxConns    = 20
	defaultMinConns    = 5
	connectPingTimeout = 5 * time.Second
)

// PoolConfig holds tunable parameters for the PostgreSQL connection pool.
// Zero values fall back to defaults.
type PoolConfig struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

func (p PoolConfig) apply(config *pgxpool.Config) {
	config.MaxConns = defaultMaxConns
	if p.MaxConns > 0 {
		config.MaxConns = int32(p.MaxConns)
	}
	config.MinConns = defaultMinConns
	if p.MinConns > 0 {
		config.MinConns = int32(p.MinConns)
	}
	if config.MinConns > config.MaxConns {
		config.MinConns = config.MaxConns
	}

	config.MaxConnLifetime = time.Hour
	if p.MaxConnLifetime > 0 {
		config.MaxConnLifetime = p.MaxConnLifetime
	}
	config.MaxConnIdleTime = 30 * time.Minute
	if p.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = p.MaxConnIdleTime
	}
}

// NewPostgresDB creates a pgvector-aware PostgreSQL connection pool. The
// vector extension must be installed in the target database.
func NewPostgresDB(ctx context.Context, dsn string, pool PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	pool.apply(config)

	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectPingTimeout)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return db, nil
}
