package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-api/internal/game"
)

const (
	redisKeyPrefix  = "wordle:game:"
	redisMaxRetries = 10
)

// Redis stores each game as one JSON document with a TTL.
// AppendAttempt is an optimistic WATCH/MULTI transaction, retried when
// another client changes the key in between.
type Redis struct {
	rdb         *redis.Client
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

// OpenRedis connects using opts and verifies the connection.
// A zero ttl keeps games forever.
func OpenRedis(ctx context.Context, opts *redis.Options, ttl time.Duration, maxAttempts int) (*Redis, error) {
	if err := checkMaxAttempts(maxAttempts); err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{rdb: rdb, ttl: ttl, maxAttempts: maxAttempts, now: time.Now}, nil
}

func (r *Redis) Close() error { return r.rdb.Close() }

func redisKey(id game.ID) string { return redisKeyPrefix + string(id) }

func (r *Redis) Create(ctx context.Context, target []game.Letter) (game.Game, error) {
	if err := checkTarget(target); err != nil {
		return game.Game{}, err
	}
	g := game.New(target, r.now())
	b, err := json.Marshal(g)
	if err != nil {
		return game.Game{}, fmt.Errorf("encode game: %w", err)
	}
	ok, err := r.rdb.SetNX(ctx, redisKey(g.ID), b, r.ttl).Result()
	if err != nil {
		return game.Game{}, fmt.Errorf("store game: %w", err)
	}
	if !ok {
		return game.Game{}, fmt.Errorf("store game: id collision on %s", g.ID)
	}
	return g, nil
}

func (r *Redis) Get(ctx context.Context, id game.ID) (game.Game, error) {
	return r.load(ctx, r.rdb, id)
}

func (r *Redis) AppendAttempt(ctx context.Context, id game.ID, a game.Attempt) (game.Game, error) {
	key := redisKey(id)
	var next game.Game

	txf := func(tx *redis.Tx) error {
		g, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if next, err = appendTo(g, a, r.maxAttempts); err != nil {
			return err
		}
		b, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode game: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, redis.KeepTTL)
			return nil
		})
		return err
	}

	for i := 0; i < redisMaxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			log.Debug().Str("gameId", string(id)).Int("try", i+1).Msg("append raced, retrying")
			continue
		}
		if err != nil {
			return game.Game{}, err
		}
		return next, nil
	}
	return game.Game{}, fmt.Errorf("append attempt to %s: too much contention", id)
}

// getter is satisfied by *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *Redis) load(ctx context.Context, c getter, id game.ID) (game.Game, error) {
	b, err := c.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Game{}, notFound(id)
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("load game: %w", err)
	}
	var g game.Game
	if err := json.Unmarshal(b, &g); err != nil {
		return game.Game{}, fmt.Errorf("decode game %s: %w", id, err)
	}
	if g.Attempts == nil {
		g.Attempts = []game.Attempt{}
	}
	return g, nil
}
