package infra

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger constructs the process logger: JSON on stdout, or a console writer
// at debug level in development.
func NewLogger(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Logger()

	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger
}

// Logger aliases zerolog.Logger for packages that take an optional logger.
type Logger = zerolog.Logger

// LoggerOrDiscard returns l, or a logger that drops everything when l is nil.
func LoggerOrDiscard(l *Logger) *Logger {
	if l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

// LoggerFromContext returns the logger attached by the HTTP middleware, or nil.
func LoggerFromContext(ctx context.Context) *Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return nil
	}
	return l
}
