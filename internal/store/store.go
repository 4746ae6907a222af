// Package store holds the game Repository port and its adapters.
//
// Adapters own the "finished" policy: a game is finished once an attempt
// solves it or maxAttempts attempts have been made. maxAttempts is injected
// by the caller; there is no default here.
package store

import (
	"context"
	"fmt"

	"github.com/robalobadob/wordle-api/internal/game"
)

// Repository persists games.
//
// Implementations must serialise AppendAttempt per game id and must never
// return values that alias their internal state.
type Repository interface {
	// Create allocates a new id and stores an unfinished game with no attempts.
	Create(ctx context.Context, target []game.Letter) (game.Game, error)

	// Get returns the stored game or game.ErrNotFound.
	Get(ctx context.Context, id game.ID) (game.Game, error)

	// AppendAttempt appends a, recomputes Finished and stores the new value.
	// Fails with game.ErrNotFound for unknown ids and game.ErrGameFinished
	// when the stored game is already finished.
	AppendAttempt(ctx context.Context, id game.ID, a game.Attempt) (game.Game, error)
}

func checkMaxAttempts(n int) error {
	if n < 1 {
		return fmt.Errorf("store: maxAttempts must be at least 1, got %d", n)
	}
	return nil
}

func checkTarget(target []game.Letter) error {
	if len(target) == 0 {
		return game.Errorf(game.KindInvalidLength, "target word is empty")
	}
	return nil
}

func notFound(id game.ID) error {
	return game.Errorf(game.KindNotFound, "game %s not found", id)
}

// appendTo applies the shared append rules to the currently stored value.
func appendTo(g game.Game, a game.Attempt, maxAttempts int) (game.Game, error) {
	if g.Finished {
		return game.Game{}, game.Errorf(game.KindGameFinished, "game %s is finished", g.ID)
	}
	if len(a.Letters) != len(g.Target) {
		return game.Game{}, game.Errorf(game.KindInvalidLength, "attempt has %d letters, want %d", len(a.Letters), len(g.Target))
	}
	return g.WithAttempt(a, maxAttempts), nil
}
