// Package slogutil wires log/slog for the segio command line tool: a
// handler with context-attribute hooks, a dynamically adjustable level, and
// optional file rotation.
package slogutil

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DynamicLeveler is a slog.Leveler whose level can change at runtime, so a
// long copy can be flipped to debug logging without restarting.
type DynamicLeveler struct {
	level atomic.Value
}

// Level returns the current logging level.
func (dl *DynamicLeveler) Level() slog.Level {
	return dl.level.Load().(slog.Level)
}

// SetLevel updates the logging level.
func (dl *DynamicLeveler) SetLevel(level slog.Level) {
	dl.level.Store(level)
}

// Config describes how Setup builds the logger.
type Config struct {
	// Level is the textual minimum level: debug, info, warn, or error.
	// Empty means info, unless LOG_LEVEL overrides it.
	Level string

	// File enables rotated file logging next to the console output when
	// non-empty.
	File string

	// MaxSizeMB, MaxBackups and MaxAgeDays bound the rotated file set.
	// Zero values fall back to 5 MB, 5 backups, 14 days.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// AddSource annotates records with their call site.
	AddSource bool
}

// Setup builds a logger from cfg and installs it as slog's default. The
// returned leveler adjusts the level at runtime.
func Setup(cfg Config) (*slog.Logger, *DynamicLeveler) {
	var w io.Writer = os.Stderr
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 5),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 14),
		}
		w = io.MultiWriter(os.Stderr, rotated)
	}

	leveler := &DynamicLeveler{}
	leveler.SetLevel(parseLevel(levelOrEnv(cfg.Level)))

	base := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     leveler,
		AddSource: cfg.AddSource,
	})
	logger := slog.New(WrapHandler(base))
	slog.SetDefault(logger)
	return logger, leveler
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func levelOrEnv(level string) string {
	if level != "" {
		return level
	}
	return os.Getenv("LOG_LEVEL")
}

func parseLevel(level string) slog.Level {
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
