package logging

import (
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// Level is a log severity.
type Level int32

// The supported levels, in increasing severity.
const (
	DEBUG Level = iota - 1
	INFO
	WARN
	ERROR
)

func (level Level) String() string {
	switch level {
	case DEBUG:
		return "Debug"
	case INFO:
		return "Info"
	case WARN:
		return "Warn"
	case ERROR:
		return "Error"
	}
	return "Unknown"
}

// AsZap converts the level to its zapcore equivalent.
func (level Level) AsZap() zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// LevelFromString parses a level name, ignoring case. "warning" is accepted for WARN.
func LevelFromString(inp string) (Level, error) {
	switch strings.ToLower(inp) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return DEBUG, errors.Errorf("unknown log level: %q", inp)
}

// AtomicLevel is a level that may be read and changed concurrently.
type AtomicLevel struct {
	val *atomic.Int32
}

// NewAtomicLevelAt creates an AtomicLevel initialized to level.
func NewAtomicLevelAt(level Level) AtomicLevel {
	ret := AtomicLevel{val: &atomic.Int32{}}
	ret.Set(level)
	return ret
}

// Set changes the level.
func (al AtomicLevel) Set(level Level) {
	al.val.Store(int32(level))
}

// Get returns the current level.
func (al AtomicLevel) Get() Level {
	return Level(al.val.Load())
}
