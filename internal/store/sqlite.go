// internal/store/sqlite.go
//
// SQLite implementation of the Repository port.
// Responsibilities:
//   - Opening the database file with safe defaults (WAL, busy timeout,
//     foreign keys, immediate write transactions).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Storing games in `games` and their attempts in `attempts`, one row per
//     guess, letters encoded as JSON.
//
// AppendAttempt runs in one IMMEDIATE transaction, so concurrent guesses on
// the same game are serialised by SQLite's write lock; the (game_id, seq)
// primary key backs that up.

package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-api/internal/game"
)

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

// SQLite is a Repository backed by a SQLite file.
type SQLite struct {
	db          *sql.DB
	maxAttempts int
	now         func() time.Time
}

// OpenSQLite opens (creating if missing) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string, maxAttempts int) (*SQLite, error) {
	if err := checkMaxAttempts(maxAttempts); err != nil {
		return nil, err
	}
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db, sqliteMigrations, "migrations/sqlite"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, maxAttempts: maxAttempts, now: time.Now}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

/**
 * openDB opens (and creates if missing) a SQLite database file.
 *
 * - Ensures parent directory exists for relative paths (e.g. ./data/wordle.db).
 * - Configures busy timeout, WAL journaling and foreign keys per connection.
 * - Write transactions take the lock up front (_txlock=immediate).
 */
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dsn, err)
	}
	return db, nil
}

/**
 * migrate applies the *.sql files under dir of fsys.
 *
 * - Uses a _migrations table to track applied files.
 * - Executes each file in lexical order inside its own transaction.
 * - Skips files already applied.
 */
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".sql" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlText, err := fs.ReadFile(fsys, path.Join(dir, f))
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(sqlText)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Create inserts a fresh game row.
func (s *SQLite) Create(ctx context.Context, target []game.Letter) (game.Game, error) {
	if err := checkTarget(target); err != nil {
		return game.Game{}, err
	}
	g := game.New(target, s.now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, target, created_at, finished) VALUES (?, ?, ?, 0)`,
		string(g.ID), game.Word(g.Target), formatTime(g.CreatedAt),
	)
	if err != nil {
		return game.Game{}, fmt.Errorf("insert game: %w", err)
	}
	return g, nil
}

// Get loads a game and its attempts.
func (s *SQLite) Get(ctx context.Context, id game.ID) (game.Game, error) {
	return loadSQL(ctx, s.db, id)
}

// AppendAttempt inserts the attempt row and updates the finished flag.
func (s *SQLite) AppendAttempt(ctx context.Context, id game.ID, a game.Attempt) (game.Game, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return game.Game{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	g, err := loadSQL(ctx, tx, id)
	if err != nil {
		return game.Game{}, err
	}
	next, err := appendTo(g, a, s.maxAttempts)
	if err != nil {
		return game.Game{}, err
	}

	letters, err := json.Marshal(a.Letters)
	if err != nil {
		return game.Game{}, fmt.Errorf("encode letters: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (game_id, seq, solved, letters, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(id), len(g.Attempts), a.Solved, string(letters), formatTime(a.CreatedAt),
	); err != nil {
		return game.Game{}, fmt.Errorf("insert attempt: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE games SET finished=? WHERE id=?`, next.Finished, string(id)); err != nil {
		return game.Game{}, fmt.Errorf("update game: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return game.Game{}, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadSQL(ctx context.Context, q querier, id game.ID) (game.Game, error) {
	var (
		target, created string
		finished        bool
	)
	err := q.QueryRowContext(ctx,
		`SELECT target, created_at, finished FROM games WHERE id=?`, string(id),
	).Scan(&target, &created, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Game{}, notFound(id)
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("select game: %w", err)
	}

	g := game.Game{ID: id, Finished: finished, Attempts: []game.Attempt{}}
	if g.Target, err = game.ParseTarget(target); err != nil {
		return game.Game{}, fmt.Errorf("decode target of %s: %w", id, err)
	}
	if g.CreatedAt, err = parseTime(created); err != nil {
		return game.Game{}, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT solved, letters, created_at FROM attempts WHERE game_id=? ORDER BY seq`, string(id))
	if err != nil {
		return game.Game{}, fmt.Errorf("select attempts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			a           game.Attempt
			letters, at string
		)
		if err := rows.Scan(&a.Solved, &letters, &at); err != nil {
			return game.Game{}, err
		}
		if err := json.Unmarshal([]byte(letters), &a.Letters); err != nil {
			return game.Game{}, fmt.Errorf("decode attempt of %s: %w", id, err)
		}
		if a.CreatedAt, err = parseTime(at); err != nil {
			return game.Game{}, err
		}
		g.Attempts = append(g.Attempts, a)
	}
	return g, rows.Err()
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}
