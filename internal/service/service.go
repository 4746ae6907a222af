// Package service implements the game operations on top of a
// store.Repository. It holds no game state of its own and is safe to share
// between goroutines.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-api/internal/game"
	"github.com/robalobadob/wordle-api/internal/store"
)

// Observer is told about game events. *metrics.Metrics implements it.
type Observer interface {
	GameCreated()
	AttemptRecorded(solved bool)
	GameFinished(won bool)
}

type nopObserver struct{}

func (nopObserver) GameCreated()         {}
func (nopObserver) AttemptRecorded(bool) {}
func (nopObserver) GameFinished(bool)    {}

// Options configures a Service. Zero values pick the defaults.
type Options struct {
	Target   string           // literal target word; default "stave"
	Scorer   game.Scorer      // default game.ScoreSimple
	Observer Observer         // default: none
	Now      func() time.Time // default time.Now
}

const DefaultTarget = "stave"

type Service struct {
	repo   store.Repository
	target string
	score  game.Scorer
	obs    Observer
	now    func() time.Time
}

func New(repo store.Repository, opts Options) *Service {
	s := &Service{
		repo:   repo,
		target: opts.Target,
		score:  opts.Scorer,
		obs:    opts.Observer,
		now:    opts.Now,
	}
	if s.target == "" {
		s.target = DefaultTarget
	}
	if s.score == nil {
		s.score = game.ScoreSimple
	}
	if s.obs == nil {
		s.obs = nopObserver{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreateGame starts a game for the configured target. An invalid target
// fails with game.ErrInvalidLetter before the repository is touched.
func (s *Service) CreateGame(ctx context.Context) (game.Game, error) {
	target, err := game.ParseTarget(s.target)
	if err != nil {
		return game.Game{}, err
	}
	g, err := s.repo.Create(ctx, target)
	if err != nil {
		return game.Game{}, err
	}
	s.obs.GameCreated()
	log.Ctx(ctx).Debug().Str("gameId", string(g.ID)).Msg("game created")
	return g, nil
}

func (s *Service) GetGame(ctx context.Context, id game.ID) (game.Game, error) {
	return s.repo.Get(ctx, id)
}

// ProcessGuess scores guess against g and stores the attempt.
// g is expected to be the current stored value.
func (s *Service) ProcessGuess(ctx context.Context, g game.Game, guess []game.Letter) (game.Game, error) {
	if g.Finished {
		return game.Game{}, game.Errorf(game.KindGameFinished, "game %s is finished", g.ID)
	}
	a, err := game.NewAttempt(g.Target, guess, s.score, s.now())
	if err != nil {
		return game.Game{}, err
	}
	next, err := s.repo.AppendAttempt(ctx, g.ID, a)
	if err != nil {
		return game.Game{}, err
	}

	s.obs.AttemptRecorded(a.Solved)
	if next.Finished {
		s.obs.GameFinished(a.Solved)
		log.Ctx(ctx).Info().
			Str("gameId", string(g.ID)).
			Bool("won", a.Solved).
			Int("attempts", len(next.Attempts)).
			Msg("game finished")
	}
	return next, nil
}

// Guess parses raw tokens, loads the game and processes the guess.
func (s *Service) Guess(ctx context.Context, id game.ID, tokens []string) (game.Game, error) {
	guess, err := game.ParseWord(tokens)
	if err != nil {
		return game.Game{}, err
	}
	g, err := s.repo.Get(ctx, id)
	if err != nil {
		return game.Game{}, err
	}
	return s.ProcessGuess(ctx, g, guess)
}
