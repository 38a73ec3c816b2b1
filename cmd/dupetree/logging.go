package main

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"dupetree/internal/config"
)

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs the default slog logger. Without a log file,
// records go to stderr; otherwise to a rotating file. The returned func
// releases the file.
func configureLogger(cfg config.LogConfig, stderr io.Writer) func() {
	level := parseSlogLevel(cfg.Level, slog.LevelWarn)

	var (
		writer  io.Writer = stderr
		closeFn           = func() {}
	)

	if strings.TrimSpace(cfg.Filename) != "" {
		logWriter := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		writer = logWriter
		closeFn = func() { _ = logWriter.Close() }
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	return closeFn
}
