package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	mu            sync.RWMutex
	once          sync.Once
)

// Init initializes the default logger with a JSON writer on os.Stdout.
// It ensures that the logger is initialized only once.
func Init() {
	once.Do(func() {
		mu.Lock()
		defaultLogger = zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
		mu.Unlock()
	})
}

// Configure replaces the default logger. Format "text" selects the
// human-readable console writer, anything else writes JSON lines.
func Configure(level, format string, out io.Writer) {
	Init()
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(format, "text") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	mu.Lock()
	defaultLogger = zerolog.New(out).Level(parseLevel(level)).With().Timestamp().Logger()
	mu.Unlock()
}

// SetOutput redirects the default logger to w at debug level (useful for testing).
func SetOutput(w io.Writer) {
	Configure("debug", "json", w)
}

// With returns a copy of the default logger with the given key/value pairs attached.
func With(args ...any) zerolog.Logger {
	return Get().With().Fields(args).Logger()
}

// Get returns the initialized default logger.
func Get() zerolog.Logger {
	Init()
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Info logs an informational message using the default logger.
func Info(msg string, args ...any) {
	l := Get()
	l.Info().Fields(args).Msg(msg)
}

// Warn logs a warning message using the default logger.
func Warn(msg string, args ...any) {
	l := Get()
	l.Warn().Fields(args).Msg(msg)
}

// Error logs an error message using the default logger.
func Error(msg string, err error, args ...any) {
	l := Get()
	l.Error().Err(err).Fields(args).Msg(msg)
}

// Debug logs a debug message using the default logger.
func Debug(msg string, args ...any) {
	l := Get()
	l.Debug().Fields(args).Msg(msg)
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
