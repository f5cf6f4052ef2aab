// Package logging provides leveled, component-scoped loggers backed
// by charmbracelet/log. The process configures a single destination
// with Init (stderr, syslog, or a file); packages obtain named
// loggers with Get and never touch the destination directly.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Level is the minimum severity a logger emits.
type Level int

// Log levels, lowest to highest severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ErrInvalidLevel is returned by ParseLevel for unknown level names.
var ErrInvalidLevel = errors.New("invalid log level")

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a level name to a Level. "warning" is accepted
// as an alias for "warn".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// charm maps a Level to the underlying library's level.
func (l Level) charm() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Destinations understood by Init. Anything else is treated as a
// file path.
const (
	DestStderr = "stderr"
	DestSyslog = "syslog"
)

// Config controls the process-wide logging state.
type Config struct {
	// Level is the minimum severity to emit.
	Level Level

	// Destination is "stderr", "syslog", or a file path.
	Destination string

	// Components overrides the level for individual components.
	Components map[string]Level
}

// DefaultConfig returns a Config that logs at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Destination: DestStderr}
}

// Logger is a leveled logger bound to one component.
type Logger struct {
	l *log.Logger
}

// Debug logs at debug level with optional key-value pairs.
func (l *Logger) Debug(msg string, kv ...any) { l.l.Debug(msg, kv...) }

// Info logs at info level with optional key-value pairs.
func (l *Logger) Info(msg string, kv ...any) { l.l.Info(msg, kv...) }

// Warn logs at warning level with optional key-value pairs.
func (l *Logger) Warn(msg string, kv ...any) { l.l.Warn(msg, kv...) }

// Error logs at error level with optional key-value pairs.
func (l *Logger) Error(msg string, kv ...any) { l.l.Error(msg, kv...) }

// With returns a logger carrying additional key-value context.
func (l *Logger) With(kv ...any) *Logger { return &Logger{l: l.l.With(kv...)} }

// state is the package-wide logging configuration, guarded by mu.
var state struct {
	mu      sync.Mutex
	cfg     Config
	writer  io.Writer
	closer  io.Closer
	loggers map[string]*Logger
}

// Init configures the destination and levels for the whole process.
// Calling it again reconfigures: existing component loggers are
// discarded and any open file or syslog connection is closed.
func Init(cfg Config) error {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.closer != nil {
		_ = state.closer.Close()
		state.closer = nil
	}

	writer, closer, err := openDestination(cfg.Destination)
	if err != nil {
		return err
	}

	state.cfg = cfg
	state.writer = writer
	state.closer = closer
	state.loggers = make(map[string]*Logger)
	return nil
}

// openDestination resolves a destination name to a writer and an
// optional closer for Close to release.
func openDestination(dest string) (io.Writer, io.Closer, error) {
	switch dest {
	case "", DestStderr:
		return os.Stderr, nil, nil
	case DestSyslog:
		w, err := syslogWriter("intact")
		if err != nil {
			return nil, nil, fmt.Errorf("opening syslog: %w", err)
		}
		return w, w, nil
	default:
		if dir := filepath.Dir(dest); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("creating log directory: %w", err)
			}
		}
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return f, f, nil
	}
}

// Get returns the logger for a component, creating it on first use.
// Before Init runs, loggers write to stderr at info level.
func Get(component string) *Logger {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.loggers == nil {
		state.loggers = make(map[string]*Logger)
	}
	if l, ok := state.loggers[component]; ok {
		return l
	}

	writer := state.writer
	if writer == nil {
		writer = os.Stderr
	}
	level := state.cfg.Level
	if override, ok := state.cfg.Components[component]; ok {
		level = override
	}

	l := &Logger{l: newCharmLogger(writer, component, level)}
	state.loggers[component] = l
	return l
}

func newCharmLogger(w io.Writer, component string, level Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level.charm(),
		ReportCaller:    false,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          component,
	})
}

// Close releases the log destination if Init opened one.
func Close() error {
	state.mu.Lock()
	defer state.mu.Unlock()

	state.loggers = nil
	state.writer = nil
	if state.closer == nil {
		return nil
	}
	err := state.closer.Close()
	state.closer = nil
	return err
}
