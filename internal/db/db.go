package db

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	once    sync.Once
	pool    *pgxpool.Pool
	initErr error
)

// Open returns the process-wide connection pool, creating it on first
// use. Concurrent first callers all block on the same initialization and
// observe the same result.
func Open(dbURL string) (*pgxpool.Pool, error) {
	once.Do(func() {
		pool, initErr = newPool(dbURL)
	})

	return pool, initErr
}

// Close releases the shared pool. Safe to call when Open never succeeded.
func Close() {
	if pool != nil {
		pool.Close()
	}
}

func newPool(dbURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)

	if err != nil {
		return nil, err
	}

	cfg.MaxConns = 5

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, cfg)

	if err != nil {
		return nil, err
	}

	err = p.Ping(ctx)

	if err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}
