// ════════════════════════════════════════════════════════════════════════════════════════════════
// MDLOG — STRUCTURED LOGGING FOR THE INGESTION CORE'S COLD PATH
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: logrus + lumberjack wrapper used for connection lifecycle, construction
// failures, and the periodic/final report — never on the hot parse/push/pop path
//
// Grounded in rahjooh-CryptoTrade/logger/logger.go: a JSON-formatted logrus.Logger with a
// caller-pretty reporter, level from LOG_LEVEL, and a rotating lumberjack.Logger file sink
// when a file path is configured. The package-level default logger follows the same
// sync.Once + globalLogger pattern (spec.md §9's "process-wide logger" global-state note).
// ════════════════════════════════════════════════════════════════════════════════════════════════

package mdlog

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields is an alias for logrus.Fields, kept so callers never need to import logrus directly.
type Fields = logrus.Fields

// Logger wraps a logrus.Logger configured for this core's needs.
type Logger struct {
	*logrus.Logger
}

// Config controls where and how a Logger writes. File, when non-empty, routes output through
// a rotating lumberjack.Logger instead of stderr.
type Config struct {
	Level      string // logrus level name; defaults to "info"
	File       string // rotating log file path; empty means stderr
	MaxAgeDays int
}

// New builds a Logger per cfg: JSON formatter, caller-pretty file:line, and either stderr or
// a lumberjack-rotated file sink.
func New(cfg Config) *Logger {
	l := logrus.New()
	l.SetReportCaller(true)

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		l.SetLevel(lvl)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}

	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
		},
	})

	if cfg.File == "" {
		l.SetOutput(os.Stderr)
	} else {
		l.SetOutput(&lumberjack.Logger{
			Filename: cfg.File,
			MaxAge:   cfg.MaxAgeDays,
			MaxSize:  100,
			Compress: true,
		})
	}

	return &Logger{Logger: l}
}

// WithComponent tags every entry from the returned logger with a component field, mirroring
// how the teacher pack scopes log lines to a subsystem (parser, dispatcher, feed, etc.).
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.Logger.WithField("component", component)
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default returns the process-wide Logger, constructing it on first use from LOG_LEVEL and
// LOG_FILE environment variables. Kept off the ingestion data path per spec.md §9.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(Config{
			Level: os.Getenv("LOG_LEVEL"),
			File:  os.Getenv("LOG_FILE"),
		})
	})
	return defaultLogger
}
