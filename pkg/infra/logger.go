package infra

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/Guizzs26/go-field-sync/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logFileMu sync.Mutex
	logFile   *lumberjack.Logger
)

// SetupLogger builds the process logger. Records go to stderr (stdout is kept
// for command output) and to a size-rotated file when LOG_FILE is set
func SetupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		logFileMu.Lock()
		logFile = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stderr, logFile)
		logFileMu.Unlock()
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if strings.ToUpper(cfg.LogFormat) == "JSON" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

// CloseLogger releases the rotating log file, if one was opened
func CloseLogger() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}
