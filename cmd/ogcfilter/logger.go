package main

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const jsonLoggingFormat = "json"

func newLogger(level, format string, w io.Writer) zerolog.Logger {
	var logLevel zerolog.Level

	switch strings.ToLower(level) {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn", "warning":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	// batch workers log concurrently
	w = zerolog.SyncWriter(w)

	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	if format == jsonLoggingFormat {
		logger = zerolog.New(w)
	}

	return logger.Level(logLevel).With().Timestamp().Logger()
}

// libraryLogger returns the logger handed to the translator. The library
// only logs at debug level, so it stays silent otherwise.
func libraryLogger(log zerolog.Logger, format string, w io.Writer) *slog.Logger {
	if log.GetLevel() > zerolog.DebugLevel {
		return nil
	}
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if format == jsonLoggingFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
