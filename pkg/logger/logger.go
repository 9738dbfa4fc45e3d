package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/commonground/cg/pkg/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *log.Logger

// Init initializes the logger. Output goes to the rotated log file from
// config; stderr is used when the file's directory cannot be created.
func Init(verbose bool) {
	level := parseLevel(config.GetString("log.level"))
	if verbose {
		level = log.DebugLevel
	}

	var w io.Writer = os.Stderr
	if logFile := config.GetString("log.file"); logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0700); err == nil {
			w = &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    config.GetInt("log.max_size_mb"),
				MaxBackups: config.GetInt("log.max_backups"),
			}
		}
	}

	InitWithWriter(w, level)
}

// InitWithWriter points the logger at w. Tests use it to capture output.
func InitWithWriter(w io.Writer, level log.Level) {
	logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "cg",
	})
	logger.SetLevel(level)
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}
