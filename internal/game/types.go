// internal/game/types.go
//
// Core type definitions for the Wordle game domain.
// Defines:
//   - Letter: a validated lowercase a–z character.
//   - LetterState: per-letter verdict of a guess (Correct/Present/Incorrect).
//   - Attempt: one scored guess.
//   - Game: immutable value for a single game; a new value is produced per change.

package game

import (
	"time"

	"github.com/google/uuid"
)

// LetterState represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "Correct":   letter is in the target at this position.
//   - "Present":   letter exists in the target at another position.
//   - "Incorrect": letter does not exist in the target.
type LetterState string

const (
	Correct   LetterState = "Correct"
	Present   LetterState = "Present"
	Incorrect LetterState = "Incorrect"
)

// LetterAttempt pairs a guessed letter with its verdict.
// Only produced by a Scorer.
type LetterAttempt struct {
	Letter Letter      `json:"letter"`
	State  LetterState `json:"state"`
}

// Attempt is a single scored guess. Never mutated once appended.
type Attempt struct {
	Solved    bool            `json:"solved"`
	Letters   []LetterAttempt `json:"letters"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ID is an opaque game identifier.
type ID string

// NewID returns a fresh random (v4) identifier.
func NewID() ID { return ID(uuid.NewString()) }

// Game holds the state of a single game.
//
// Values are treated as immutable: WithAttempt returns a new Game and
// repositories replace the stored value instead of editing it.
type Game struct {
	ID        ID        `json:"id"`
	Target    []Letter  `json:"target"`   // fixed length; every attempt has the same length
	Attempts  []Attempt `json:"attempts"` // chronological
	CreatedAt time.Time `json:"createdAt"`
	Finished  bool      `json:"finished"` // monotonic
}

// New constructs a fresh, unfinished game for target.
func New(target []Letter, at time.Time) Game {
	return Game{
		ID:        NewID(),
		Target:    append([]Letter(nil), target...),
		Attempts:  []Attempt{},
		CreatedAt: Stamp(at),
	}
}

// WithAttempt returns a copy of g with a appended and Finished recomputed.
// g itself is left untouched.
func (g Game) WithAttempt(a Attempt, maxAttempts int) Game {
	next := g.Clone()
	next.Attempts = append(next.Attempts, a.clone())
	next.Finished = g.Finished || IsFinished(next.Attempts, maxAttempts)
	return next
}

// Clone returns a deep copy of g.
func (g Game) Clone() Game {
	out := g
	out.Target = append([]Letter(nil), g.Target...)
	out.Attempts = make([]Attempt, len(g.Attempts))
	for i, a := range g.Attempts {
		out.Attempts[i] = a.clone()
	}
	return out
}

func (a Attempt) clone() Attempt {
	a.Letters = append([]LetterAttempt(nil), a.Letters...)
	return a
}

// IsFinished reports whether a game with these attempts is over:
// the latest attempt solved it, or maxAttempts have been used.
func IsFinished(attempts []Attempt, maxAttempts int) bool {
	if len(attempts) >= maxAttempts {
		return true
	}
	for _, a := range attempts {
		if a.Solved {
			return true
		}
	}
	return false
}

// Stamp normalises a timestamp to UTC with microsecond precision so that
// every repository adapter round-trips it exactly.
func Stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
