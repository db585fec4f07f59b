package logger

import "github.com/philipp01105/nlog-channels/core"

// Level Re-export type and constants for convenience
type Level = core.Level

const (
	DebugLevel = core.DebugLevel
	InfoLevel  = core.InfoLevel
	WarnLevel  = core.WarnLevel
	ErrorLevel = core.ErrorLevel
	FatalLevel = core.FatalLevel
	PanicLevel = core.PanicLevel
)

// ParseLevel converts a level name to a Level. Unknown names return
// core.ErrUnknownLevel.
func ParseLevel(s string) (Level, error) {
	return core.ParseLevel(s)
}

// MustParseLevel is like ParseLevel but falls back to InfoLevel
func MustParseLevel(s string) Level {
	l, err := core.ParseLevel(s)
	if err != nil {
		return InfoLevel
	}
	return l
}
