// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/robalobadob/wordle-api/internal/config"
)

// Setup installs the global logger described by cfg and returns a closer for
// the log file (a no-op closer when no file is configured).
func Setup(cfg config.LogConfig) (io.Closer, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out, closer := Writer(cfg, os.Stderr)
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	// log.Ctx falls back to the global logger outside request handlers
	zerolog.DefaultContextLogger = &log.Logger
	return closer, nil
}

// Writer builds the output for cfg on top of console. With a LOG_FILE the
// output is teed into a size-rotated JSON file.
func Writer(cfg config.LogConfig, console io.Writer) (io.Writer, io.Closer) {
	var w io.Writer = console
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}
	}
	if cfg.File == "" {
		return w, nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    100, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	return zerolog.MultiLevelWriter(w, file), file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
