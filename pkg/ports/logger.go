// Package ports defines the Logger interface for logging abstraction.
package ports

import "strconv"

// LogLevel represents the priority of a log message.
//
// The numeric values follow the 0-255 priority scale used by the
// logging_level option: a message is printed when its priority is at
// least the configured threshold.
type LogLevel int

const (
	// LevelDebug is for detailed debugging information.
	// Used for per-frame and component-level internal processing logs.
	LevelDebug LogLevel = 1
	// LevelInfo is for informational messages.
	// Used for pipeline lifecycle logs.
	LevelInfo LogLevel = 2
	// LevelWarn is for warning messages.
	// Used for recoverable problems that don't stop processing.
	LevelWarn LogLevel = 3
	// LevelError is for error messages.
	// Used for problems that stop processing.
	LevelError LogLevel = 4
	// LevelQuiet suppresses all log output.
	LevelQuiet LogLevel = 255
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return strconv.Itoa(int(l))
	}
}

// LevelFromThreshold converts a 0-255 logging threshold into a LogLevel.
// Values outside the range are clamped.
func LevelFromThreshold(threshold int) LogLevel {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > int(LevelQuiet) {
		threshold = int(LevelQuiet)
	}
	return LogLevel(threshold)
}

// Logger abstracts logging operations with multi-language support.
type Logger interface {
	// Debug logs a debug message with optional format arguments.
	// The msg parameter is the message key that can be translated.
	Debug(msg string, args ...interface{})

	// Info logs an informational message with optional format arguments.
	Info(msg string, args ...interface{})

	// Warn logs a warning message with optional format arguments.
	Warn(msg string, args ...interface{})

	// Error logs an error message with optional format arguments.
	Error(msg string, args ...interface{})

	// WithComponent returns a new Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}
