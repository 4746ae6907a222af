package store

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-api/internal/config"
)

// Open builds the Repository selected by cfg.Driver. The returned close
// func releases whatever the adapter holds and is never nil.
func Open(ctx context.Context, cfg config.StoreConfig, maxAttempts int) (Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.StoreMemory, "":
		m, err := NewMemory(maxAttempts)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("store", config.StoreMemory).Int("maxAttempts", maxAttempts).Msg("repository ready")
		return m, noop, nil

	case config.StoreSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath, maxAttempts)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("store", cfg.Driver).Str("path", cfg.SQLitePath).Int("maxAttempts", maxAttempts).Msg("repository ready")
		return s, s.Close, nil

	case config.StorePostgres:
		p, err := OpenPostgres(ctx, cfg.PostgresDSN, maxAttempts)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("store", cfg.Driver).Int("maxAttempts", maxAttempts).Msg("repository ready")
		return p, p.Close, nil

	case config.StoreRedis:
		r, err := OpenRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.RedisTTL, maxAttempts)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("store", cfg.Driver).Str("addr", cfg.RedisAddr).Dur("ttl", cfg.RedisTTL).Msg("repository ready")
		return r, r.Close, nil
	}
	return nil, noop, fmt.Errorf("store: unknown driver %q", cfg.Driver)
}
