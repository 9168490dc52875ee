package log

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Options configures the global logger.
type Options struct {
	// Level is the minimum level written; empty means INFO.
	Level Level
	// File, if set, receives a rotating copy of every log line.
	File string
	// JSON switches the output format from text to JSON.
	JSON bool
	// Output overrides stderr, mostly for tests.
	Output io.Writer
}

var (
	mu         sync.Mutex
	logger     *charmlog.Logger
	loggerOnce sync.Once
	fileWriter *lumberjack.Logger
)

// initLogger installs the default stderr logger at INFO.
func initLogger() {
	loggerOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if logger == nil {
			logger = newLogger(os.Stderr, LevelInfo, false)
		}
	})
}

func newLogger(w io.Writer, level Level, json bool) *charmlog.Logger {
	opts := charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           toCharmLevel(level),
		Prefix:          "calgen",
	}
	if json {
		opts.Formatter = charmlog.JSONFormatter
	}
	return charmlog.NewWithOptions(w, opts)
}

// Init replaces the global logger according to opts.
func Init(opts Options) error {
	initLogger()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var fw *lumberjack.Logger
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return err
		}
		fw = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = io.MultiWriter(out, fw)
	}

	level := opts.Level
	if level == "" {
		level = LevelInfo
	}

	mu.Lock()
	defer mu.Unlock()
	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = fw
	logger = newLogger(out, level, opts.JSON)
	return nil
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

func SetLevel(l Level) {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	logger.SetLevel(toCharmLevel(l))
}

// ParseLevel maps a config string such as "debug" or "warn" to a Level.
func ParseLevel(s string) (Level, error) {
	lvl, err := charmlog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return "", err
	}
	switch lvl {
	case charmlog.DebugLevel:
		return LevelDebug, nil
	case charmlog.WarnLevel:
		return LevelWarn, nil
	case charmlog.ErrorLevel, charmlog.FatalLevel:
		return LevelError, nil
	default:
		return LevelInfo, nil
	}
}

func toCharmLevel(l Level) charmlog.Level {
	switch l {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelWarn:
		return charmlog.WarnLevel
	case LevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

func current() *charmlog.Logger {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func Debug(msg string, kv ...any) {
	current().Debug(msg, kv...)
}

func Info(msg string, kv ...any) {
	current().Info(msg, kv...)
}

func Warn(msg string, kv ...any) {
	current().Warn(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	current().Error(msg, extended...)
}
