package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger writes human-readable lines to stdout and JSON lines to a rotated
// file, and installs the result as the global logger.
func SetupLogger(cfg Config) zerolog.Logger {
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    50, // MB
				MaxBackups: 5,
				MaxAge:     30, // days
				Compress:   true,
			})
		}
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
