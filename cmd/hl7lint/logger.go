package main

import (
	"os"

	"github.com/rs/zerolog"
)

// newLogger builds the process-wide logger. In development mode it writes
// human-readable console output; otherwise structured JSON to stdout.
func newLogger(cfg *Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
