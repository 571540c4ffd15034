// Package logging provides structured logging shared across the runtime.
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ContextKey is the type for context keys carried on frame/script contexts.
type ContextKey string

const (
	// FrameIDKey is the context key for the current frame's trace id.
	FrameIDKey ContextKey = "frame_id"
	// ModuleIDKey is the context key for the module id a log line concerns.
	ModuleIDKey ContextKey = "module_id"
)

// Logger wraps logrus.Logger with runtime-scoped fields.
type Logger struct {
	*logrus.Logger
	component string
}

// New creates a new Logger instance for the named component.
func New(component, level, format string) *Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}

	logger.SetOutput(os.Stdout)

	return &Logger{Logger: logger, component: component}
}

// NewFromEnv constructs a logger using KALITECH_LOG_LEVEL and
// KALITECH_LOG_FORMAT, defaulting to "info" and "text" (the runtime is
// read by developers at a terminal far more often than by a log shipper).
func NewFromEnv(component string) *Logger {
	level := strings.TrimSpace(os.Getenv("KALITECH_LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(os.Getenv("KALITECH_LOG_FORMAT"))
	if format == "" {
		format = "text"
	}
	return New(component, level, format)
}

// WithContext returns a log entry enriched with frame/module trace fields
// present on ctx.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("component", l.component)
	if ctx == nil {
		return entry
	}
	if v := ctx.Value(FrameIDKey); v != nil {
		entry = entry.WithField("frame_id", v)
	}
	if v := ctx.Value(ModuleIDKey); v != nil {
		entry = entry.WithField("module_id", v)
	}
	return entry
}

// Named returns a child logger sharing the same underlying logrus.Logger
// (and therefore the same level/output) but tagged with a new component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{Logger: l.Logger, component: component}
}
