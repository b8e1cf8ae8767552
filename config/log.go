package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
	// Format is json or text. Empty picks text in dev and json otherwise.
	Format string `env:"FORMAT"`
}

// Sanitize lowercases values and picks a default format.
func (l *LogConfig) Sanitize(isDev bool) {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "" {
		l.Level = "info"
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	if l.Format == "" {
		l.Format = "json"
		if isDev {
			l.Format = "text"
		}
	}
}

// Validate checks level and format names.
func (l *LogConfig) Validate() error {
	if _, err := l.SlogLevel(); err != nil {
		return err
	}
	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", l.Format)
	}
	return nil
}

// SlogLevel parses Level.
func (l *LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
