// Package logging sets up the shared slog logger: JSON lines to a
// rotated file under the shared directory, mirrored to stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName = "linker.jsonl"
	maxSizeMB   = 50
	maxBackups  = 5
)

// Setup builds the run logger. level comes from LINKER_LOG_LEVEL when
// empty.
func Setup(sharedDir, logsFolder, level string) *slog.Logger {
	if level == "" {
		level = os.Getenv("LINKER_LOG_LEVEL")
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(sharedDir, logsFolder, logFileName),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}

	handler := slog.NewJSONHandler(io.MultiWriter(os.Stderr, fileWriter), &slog.HandlerOptions{
		Level: parseLevel(level),
	})

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
