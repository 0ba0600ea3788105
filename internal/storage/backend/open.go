// Package backend picks the ReviewStore implementation named by config.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	redisad "sentitrip/internal/adapters/redis"
	"sentitrip/internal/domain"
	"sentitrip/internal/shared"
	mysqlrepo "sentitrip/internal/storage/mysql"
	"sentitrip/internal/storage/postgres"
)

// Open connects to the configured backend and verifies it is reachable.
// The returned close func releases the underlying pool or client.
func Open(ctx context.Context, cfg shared.Config) (domain.ReviewStore, func(), error) {
	switch cfg.StoreBackend {
	case shared.BackendPostgres:
		pool, err := postgres.Connect(ctx, cfg.PostgresURL, postgres.Options{
			MaxConns:        10,
			MaxConnIdleTime: 5 * time.Minute,
			ConnTimeout:     10 * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		log.Info().Str("backend", cfg.StoreBackend).Msg("database connection ok")
		return postgres.New(pool), pool.Close, nil

	case shared.BackendRedis:
		st := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := st.Ping(ctx); err != nil {
			_ = st.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		log.Info().Str("backend", cfg.StoreBackend).Msg("redis connection ok")
		return st, func() { _ = st.Close() }, nil

	default:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		db.SetMaxOpenConns(20)
		db.SetConnMaxIdleTime(5 * time.Minute)
		log.Info().Str("backend", cfg.StoreBackend).Msg("database connection ok")
		return mysqlrepo.New(db), func() { _ = db.Close() }, nil
	}
}
