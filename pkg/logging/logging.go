// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logging.Setup(logging.Options{Level: "debug"})              // stderr only
//	logging.Setup(logging.Options{Level: "info", File: "x.log"}) // stderr and rotated file
//
// Levels: debug, info, warn, error (default: info)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how verbosely the process logs.
type Options struct {
	Level string
	// File, when set, receives a plain (uncolored) copy of every record and is
	// rotated by size.
	File string
}

// Setup installs the default slog logger and returns a closer for the log
// file, if any.
func Setup(opts Options) io.Closer {
	level := ParseLevel(opts.Level)

	console := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})

	if opts.File == "" {
		slog.SetDefault(slog.New(console))
		return nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	file := tint.NewHandler(rotator, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		AddSource:  true,
		NoColor:    true,
	})

	slog.SetDefault(slog.New(fanout{console, file}))
	return rotator
}

// ParseLevel maps a level name to a slog.Level, defaulting to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
