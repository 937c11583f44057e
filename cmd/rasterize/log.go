package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// newLogger builds a structured logger per cfg's --log-level/--log-format,
// the one piece of status output the driver is allowed per the rendering
// pipeline's design: library packages (pipeline, render, models) never log,
// only this command does.
func newLogger(cfg *config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Formatter:       logFormatter(cfg.logFormat),
	})
	logger.SetLevel(logLevel(cfg.logLevel))
	return logger
}

func logLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func logFormatter(s string) log.Formatter {
	if strings.ToLower(s) == "json" {
		return log.JSONFormatter
	}
	return log.TextFormatter
}
