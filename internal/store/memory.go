// internal/store/memory.go
//
// In-memory implementation of the Repository port.
// Used by default and in tests; state is lost when the process restarts.
//
// Characteristics:
//   - Stores game.Game values keyed by ID in a map owned by the instance
//     (no package-level state).
//   - One mutex serialises AppendAttempt's read-modify-write, so concurrent
//     guesses on a game cannot lose updates.
//   - Callers always get deep copies; stored values are never shared.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/wordle-api/internal/game"
)

// Memory is a map-backed Repository.
type Memory struct {
	mu          sync.Mutex
	games       map[game.ID]game.Game
	maxAttempts int
	now         func() time.Time
}

// NewMemory constructs an empty in-memory Repository.
func NewMemory(maxAttempts int) (*Memory, error) {
	if err := checkMaxAttempts(maxAttempts); err != nil {
		return nil, err
	}
	return &Memory{
		games:       make(map[game.ID]game.Game),
		maxAttempts: maxAttempts,
		now:         time.Now,
	}, nil
}

// Create stores a fresh game for target.
func (m *Memory) Create(ctx context.Context, target []game.Letter) (game.Game, error) {
	if err := checkTarget(target); err != nil {
		return game.Game{}, err
	}
	g := game.New(target, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	return g.Clone(), nil
}

// Get looks up a game by ID.
func (m *Memory) Get(ctx context.Context, id game.ID) (game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return game.Game{}, notFound(id)
	}
	return g.Clone(), nil
}

// AppendAttempt replaces the stored game with one that includes a.
func (m *Memory) AppendAttempt(ctx context.Context, id game.ID, a game.Attempt) (game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return game.Game{}, notFound(id)
	}
	next, err := appendTo(g, a, m.maxAttempts)
	if err != nil {
		return game.Game{}, err
	}
	m.games[id] = next
	return next.Clone(), nil
}

// Len reports the number of stored games.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.games)
}
