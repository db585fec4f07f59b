package core

import (
	"fmt"
	"strings"
)

// Level represents the severity level of a log entry
type Level int8

const (
	// DebugLevel for detailed debugging information
	DebugLevel Level = iota
	// InfoLevel for general informational messages (default)
	InfoLevel
	// WarnLevel for warning messages
	WarnLevel
	// ErrorLevel for error messages
	ErrorLevel
	// FatalLevel for fatal messages
	FatalLevel
	// PanicLevel for panic messages
	PanicLevel
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	case PanicLevel:
		return "PANIC"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Names are case insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DebugLevel, nil
	case "INFO":
		return InfoLevel, nil
	case "WARN", "WARNING":
		return WarnLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	case "FATAL", "CRITICAL":
		return FatalLevel, nil
	case "PANIC", "EMERGENCY":
		return PanicLevel, nil
	}

	return InfoLevel, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// AllLevels returns every level in ascending severity.
func AllLevels() []Level {
	return []Level{DebugLevel, InfoLevel, WarnLevel, ErrorLevel, FatalLevel, PanicLevel}
}
