package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig controls log level and output. With File set, logs are
// written there and rotated.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	Stderr     bool   `yaml:"stderr"` // also log to stderr when File is set
}

func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		MaxSizeMB:  10,
		MaxBackups: 10,
		MaxAgeDays: 30,
		Stderr:     true,
	}
}

// Apply configures the standard logrus logger. The returned closer
// releases the log file and is nil when logging to stderr only.
func (c LogConfig) Apply() (io.Closer, error) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    c.File != "",
		QuoteEmptyFields: true,
	})

	if c.File == "" {
		logrus.SetOutput(os.Stderr)
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(c.File), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   c.File,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAgeDays,
		Compress:   c.Compress,
	}

	var out io.Writer = rotator
	if c.Stderr {
		out = io.MultiWriter(os.Stderr, rotator)
	}
	logrus.SetOutput(out)

	return rotator, nil
}
