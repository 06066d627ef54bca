package snoop

import "fmt"

// Level classifies the severity of an emitted event. Trace events carry
// the level their tracer was configured with; announcements pick their own.
type Level uint8

const (
	// LevelDebug is the lowest severity; sinks with a higher minimum drop it.
	LevelDebug Level = iota + 1
	LevelInfo
	LevelSuccess // positive-outcome announcements
	LevelWarning
	LevelError
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug, nil
	case "info", "INFO":
		return LevelInfo, nil
	case "success", "SUCCESS":
		return LevelSuccess, nil
	case "warning", "WARNING":
		return LevelWarning, nil
	case "error", "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid level: %q (expected: debug|info|success|warning|error)", s)
	}
}
