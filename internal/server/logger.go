// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// setupLogger configures the process-wide slog logger. Text output goes
// through tint for local development; json output carries a service
// attribute for log collection.
func setupLogger(level, format string) {
	logLevel := parseLogLevel(level)

	var logger *slog.Logger
	if format == "json" {
		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
		logger = slog.New(handler).With("service", "walkthewalk")
	} else {
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: logLevel}))
	}

	slog.SetDefault(logger)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
