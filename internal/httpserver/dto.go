package httpserver

import (
	"time"

	"github.com/robalobadob/wordle-api/internal/game"
)

// gameDTO is the public view of a game. It never carries the target.
type gameDTO struct {
	ID          game.ID        `json:"id"`
	Attempts    []game.Attempt `json:"attempts"`
	CreatedAt   time.Time      `json:"createdAt"`
	Finished    bool           `json:"finished"`
	MaxAttempts int            `json:"maxAttempts"`
	WordLength  int            `json:"wordLength"`
}

func toDTO(g game.Game, maxAttempts int) gameDTO {
	attempts := g.Attempts
	if attempts == nil {
		attempts = []game.Attempt{}
	}
	return gameDTO{
		ID:          g.ID,
		Attempts:    attempts,
		CreatedAt:   g.CreatedAt,
		Finished:    g.Finished,
		MaxAttempts: maxAttempts,
		WordLength:  len(g.Target),
	}
}
