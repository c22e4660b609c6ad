package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"debtwatch/src/config"
)

// Logger provides leveled logging backed by hclog
type Logger struct {
	hc hclog.Logger
}

// NewLogger creates a new logger from config
func NewLogger(cfg config.LoggingConfig) *Logger {
	output := io.Writer(os.Stderr)
	if cfg.File != "" {
		if f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			output = f
		}
	}

	return &Logger{
		hc: hclog.New(&hclog.LoggerOptions{
			Name:        "debtwatch",
			Level:       parseLevel(cfg.Level),
			Output:      output,
			JSONFormat:  cfg.Format == "json",
			DisableTime: !cfg.IncludeTimestamp,
		}),
	}
}

func parseLevel(levelStr string) hclog.Level {
	switch strings.ToUpper(levelStr) {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.hc.Debug(sprintf(msg, args...))
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.hc.Info(sprintf(msg, args...))
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.hc.Warn(sprintf(msg, args...))
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.hc.Error(sprintf(msg, args...))
}

func sprintf(msg string, args ...any) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// DefaultLogger is the package-level default logger
var DefaultLogger = NewLogger(config.LoggingConfig{Level: "info"})

// SetDefaultLogger updates the default logger with new configuration
func SetDefaultLogger(cfg config.LoggingConfig) {
	DefaultLogger = NewLogger(cfg)
}

// Debug logs using the default logger
func Debug(msg string, args ...any) {
	DefaultLogger.Debug(msg, args...)
}

// Info logs using the default logger
func Info(msg string, args ...any) {
	DefaultLogger.Info(msg, args...)
}

// Warn logs using the default logger
func Warn(msg string, args ...any) {
	DefaultLogger.Warn(msg, args...)
}

// Error logs using the default logger
func Error(msg string, args ...any) {
	DefaultLogger.Error(msg, args...)
}
