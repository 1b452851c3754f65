// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Config struct {
	Level  string
	Format string
	// File, when set, receives a JSON copy of every log line with rotation.
	File string
	// Output replaces stderr. Nil means stderr.
	Output io.Writer
}

// Rotation settings for the log file, in megabytes and days.
const (
	maxSizeMB  = 128
	maxBackups = 5
	maxAgeDays = 16
)

// Setup installs the global logger described by cfg. The returned closer
// releases the log file, if any.
func Setup(cfg Config) (io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	switch cfg.Format {
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case FormatJSON:
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var closer io.Closer = nopCloser{}
	writer := out
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		writer = zerolog.MultiLevelWriter(out, file)
		closer = file
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
