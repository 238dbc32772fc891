// Command reel decodes, encodes, and transcodes video streams over reel's
// cgo FFmpeg bridge.
package main

import (
	"os"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Error().Err(err).Msg("load config")
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	root := newRootCmd(cfg, logger)
	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("reel")
		os.Exit(1)
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	var writer zerolog.ConsoleWriter
	if fi, ferr := os.Stderr.Stat(); ferr == nil && (fi.Mode()&os.ModeCharDevice) != 0 {
		writer = zerolog.ConsoleWriter{Out: os.Stderr}
		return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
