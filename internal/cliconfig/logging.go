package cliconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// Logger returns the CLI logger.
func Logger() zerolog.Logger {
	return logger
}

// LeveledLogger returns the CLI logger restricted to the named level.
func LeveledLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return logger, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return logger.Level(lvl), nil
}
