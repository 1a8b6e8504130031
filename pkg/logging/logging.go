// Package logging provides the logger capability consumed by the processing
// components. Implementations are injected by the assembly code; components
// never reach for a global logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger is the logging capability required by the pipeline, batch and deck
// components. Any implementation (file, console, test spy) satisfies it.
type Logger interface {
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	Debug(msg string)
}

// Level is a log severity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// ParseLevel converts a level name to a Level. Unknown names default to
// LevelError, matching the conservative default of the config package.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARNING", "WARN":
		return LevelWarning
	default:
		return LevelError
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// WriterLogger writes timestamped lines to an io.Writer, filtered by level.
type WriterLogger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// NewWriterLogger creates a logger writing to out at the given threshold.
func NewWriterLogger(out io.Writer, level Level) *WriterLogger {
	return &WriterLogger{out: out, level: level}
}

// FileLogger opens (or creates) the log file at path and returns a logger
// appending to it, plus a cleanup function closing the file.
func FileLogger(path string, level Level) (*WriterLogger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return NewWriterLogger(f, level), f.Close, nil
}

func (l *WriterLogger) log(level Level, msg string) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s %s\n", time.Now().Format(time.RFC3339), level, msg)
}

func (l *WriterLogger) Error(msg string)   { l.log(LevelError, msg) }
func (l *WriterLogger) Warning(msg string) { l.log(LevelWarning, msg) }
func (l *WriterLogger) Info(msg string)    { l.log(LevelInfo, msg) }
func (l *WriterLogger) Debug(msg string)   { l.log(LevelDebug, msg) }

// Nop is a logger that discards everything. Useful default for tests and for
// components constructed without an explicit logger.
type Nop struct{}

func (Nop) Error(string)   {}
func (Nop) Warning(string) {}
func (Nop) Info(string)    {}
func (Nop) Debug(string)   {}
