package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type contextKey string

const LoggerKey contextKey = "logger"

// InitLogger builds the process logger, reports config warnings through it and stores it in ctx.
func InitLogger(ctx context.Context, logLevel string, jsonLogging bool, warnings []string) (context.Context, *zerolog.Logger) {
	log := NewLogger(logLevel, jsonLogging)
	for _, w := range warnings {
		log.Warn().Msg(w)
	}
	ctx = context.WithValue(ctx, LoggerKey, log)
	return ctx, log
}

// NewLogger creates a zerolog logger writing to stderr and sets the global log level.
func NewLogger(logLevel string, jsonLogging bool) *zerolog.Logger {
	SetLevel(logLevel)

	var out io.Writer = os.Stderr
	if !jsonLogging {
		out = consoleWriter(os.Stderr)
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	return &logger
}

// WithLogger returns a copy of ctx carrying log.
func WithLogger(ctx context.Context, log *zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, log)
}

// FromContext extracts the main logger from the context.
func FromContext(ctx context.Context) *zerolog.Logger {
	logger, ok := ctx.Value(LoggerKey).(*zerolog.Logger)
	if !ok {
		// Fallback to a default logger if none is found in the context.
		defaultLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		defaultLogger.Debug().Msg("No logger in context, using default")
		return &defaultLogger
	}
	return logger
}

// SetLevel applies logLevel globally. Unknown levels fall back to info.
func SetLevel(logLevel string) zerolog.Level {
	level := getLogLevel(logLevel)
	zerolog.SetGlobalLevel(level)
	return level
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}

	output.FormatLevel = func(i interface{}) string {
		var l string
		if ll, ok := i.(string); ok {
			switch ll {
			case "debug":
				l = colorize(ll, 36) // cyan
			case "info":
				l = colorize(ll, 34) // blue
			case "warn":
				l = colorize(ll, 33) // yellow
			case "error":
				l = colorize(ll, 31) // red
			case "fatal":
				l = colorize(ll, 35) // magenta
			case "panic":
				l = colorize(ll, 41) // white on red background
			default:
				l = colorize(ll, 37) // white
			}
		} else {
			if i == nil {
				l = colorize("???", 37)
			} else {
				lStr := strings.ToUpper(fmt.Sprintf("%s", i))
				if len(lStr) > 3 {
					lStr = lStr[:3]
				}
				l = lStr
			}
		}
		return fmt.Sprintf("| %s |", l)
	}
	return output
}

func getLogLevel(logLevel string) zerolog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

func colorize(s string, color int) string {
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, s)
}
