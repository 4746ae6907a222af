package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-api/internal/config"
	"github.com/robalobadob/wordle-api/internal/game"
	"github.com/robalobadob/wordle-api/internal/httpserver"
	"github.com/robalobadob/wordle-api/internal/logging"
	"github.com/robalobadob/wordle-api/internal/metrics"
	"github.com/robalobadob/wordle-api/internal/service"
	"github.com/robalobadob/wordle-api/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logFile, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := store.Open(ctx, cfg.Store, cfg.MaxAttempts)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRepo(); err != nil {
			log.Warn().Err(err).Msg("close repository")
		}
	}()

	scorer, err := game.ScorerByName(cfg.Scoring)
	if err != nil {
		return err
	}
	m := metrics.New()
	svc := service.New(repo, service.Options{
		Target:   cfg.TargetWord,
		Scorer:   scorer,
		Observer: m,
	})
	srv := httpserver.New(svc, httpserver.Options{
		ClientOrigin:   cfg.HTTP.ClientOrigin,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		MaxAttempts:    cfg.MaxAttempts,
		Metrics:        m,
	})

	errc := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.Store.Driver).
			Str("scoring", cfg.Scoring).
			Int("maxAttempts", cfg.MaxAttempts).
			Msg("starting wordle-api")
		errc <- srv.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errc
}
