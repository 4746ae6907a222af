package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/robalobadob/wordle-api/internal/game"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS games (
    id         TEXT PRIMARY KEY,
    target     TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    finished   BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS attempts (
    game_id    TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    seq        INTEGER NOT NULL,
    solved     BOOLEAN NOT NULL,
    letters    JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (game_id, seq)
);`

// Postgres is a Repository backed by a pgx connection pool.
// AppendAttempt locks the game row (SELECT ... FOR UPDATE) for the
// duration of its transaction.
type Postgres struct {
	pool        *pgxpool.Pool
	maxAttempts int
	now         func() time.Time
}

// OpenPostgres connects to dsn and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string, maxAttempts int) (*Postgres, error) {
	if err := checkMaxAttempts(maxAttempts); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Postgres{pool: pool, maxAttempts: maxAttempts, now: time.Now}, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Create(ctx context.Context, target []game.Letter) (game.Game, error) {
	if err := checkTarget(target); err != nil {
		return game.Game{}, err
	}
	g := game.New(target, p.now())
	_, err := p.pool.Exec(ctx,
		`INSERT INTO games (id, target, created_at, finished) VALUES ($1, $2, $3, FALSE)`,
		string(g.ID), game.Word(g.Target), g.CreatedAt,
	)
	if err != nil {
		return game.Game{}, fmt.Errorf("insert game: %w", err)
	}
	return g, nil
}

func (p *Postgres) Get(ctx context.Context, id game.ID) (game.Game, error) {
	return loadPG(ctx, p.pool, id, false)
}

func (p *Postgres) AppendAttempt(ctx context.Context, id game.ID, a game.Attempt) (game.Game, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return game.Game{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	g, err := loadPG(ctx, tx, id, true)
	if err != nil {
		return game.Game{}, err
	}
	next, err := appendTo(g, a, p.maxAttempts)
	if err != nil {
		return game.Game{}, err
	}

	letters, err := json.Marshal(a.Letters)
	if err != nil {
		return game.Game{}, fmt.Errorf("encode letters: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO attempts (game_id, seq, solved, letters, created_at) VALUES ($1, $2, $3, $4, $5)`,
		string(id), len(g.Attempts), a.Solved, string(letters), a.CreatedAt,
	); err != nil {
		return game.Game{}, fmt.Errorf("insert attempt: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE games SET finished=$1 WHERE id=$2`, next.Finished, string(id)); err != nil {
		return game.Game{}, fmt.Errorf("update game: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return game.Game{}, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

// pgQuerier is satisfied by *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadPG(ctx context.Context, q pgQuerier, id game.ID, forUpdate bool) (game.Game, error) {
	query := `SELECT target, created_at, finished FROM games WHERE id=$1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var target string
	g := game.Game{ID: id, Attempts: []game.Attempt{}}
	err := q.QueryRow(ctx, query, string(id)).Scan(&target, &g.CreatedAt, &g.Finished)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.Game{}, notFound(id)
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("select game: %w", err)
	}
	g.CreatedAt = g.CreatedAt.UTC()
	if g.Target, err = game.ParseTarget(target); err != nil {
		return game.Game{}, fmt.Errorf("decode target of %s: %w", id, err)
	}

	rows, err := q.Query(ctx,
		`SELECT solved, letters, created_at FROM attempts WHERE game_id=$1 ORDER BY seq`, string(id))
	if err != nil {
		return game.Game{}, fmt.Errorf("select attempts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			a       game.Attempt
			letters []byte
		)
		if err := rows.Scan(&a.Solved, &letters, &a.CreatedAt); err != nil {
			return game.Game{}, err
		}
		if err := json.Unmarshal(letters, &a.Letters); err != nil {
			return game.Game{}, fmt.Errorf("decode attempt of %s: %w", id, err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
		g.Attempts = append(g.Attempts, a)
	}
	return g, rows.Err()
}
