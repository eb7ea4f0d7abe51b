// Package logging provides the filesystem engine's diagnostic output. The
// original source sprinkled `debug_print(...)` calls at nearly every
// fallible step; this is the same idea promoted to a tiny leveled logger
// instead of raw printf calls, with debug output off by default.
package logging

import (
	"fmt"
	"log"
	"os"
)

type Level int

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

// Logger is the filesystem engine's diagnostic sink. Construct it with New;
// the zero value has no output sink. SetLevel turns more output on or off.
type Logger struct {
	level  Level
	output *log.Logger
}

// New builds a Logger writing to stderr at LevelError, or at LevelDebug if the
// environment variable UV6FS_DEBUG is set, matching the source's habit of
// leaving debug_print calls compiled in but silent by default.
func New(prefix string) *Logger {
	level := LevelError
	if os.Getenv("UV6FS_DEBUG") != "" {
		level = LevelDebug
	}
	return &Logger{
		level:  level,
		output: log.New(os.Stderr, prefix, log.LstdFlags),
	}
}

func (l *Logger) SetLevel(level Level) {
	l.level = level
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logAt(LevelDebug, format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.logAt(LevelInfo, format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logAt(LevelError, format, args...)
}

func (l *Logger) logAt(level Level, format string, args ...interface{}) {
	if level > l.level {
		return
	}
	l.output.Print(fmt.Sprintf(format, args...))
}
