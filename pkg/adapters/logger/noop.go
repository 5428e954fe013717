package logger

import "github.com/user/posestream/pkg/ports"

// NoopLogger discards everything. The CLI installs it when logging_level
// is 255.
type NoopLogger struct{}

// NewNoop creates a new no-op logger.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

// Level always reports ports.LevelQuiet.
func (l *NoopLogger) Level() ports.LogLevel {
	return ports.LevelQuiet
}

func (l *NoopLogger) Debug(msg string, args ...interface{}) {}
func (l *NoopLogger) Info(msg string, args ...interface{})  {}
func (l *NoopLogger) Warn(msg string, args ...interface{})  {}
func (l *NoopLogger) Error(msg string, args ...interface{}) {}

// WithComponent returns l; components are irrelevant when nothing is printed.
func (l *NoopLogger) WithComponent(component string) ports.Logger {
	return l
}

var _ ports.Logger = (*NoopLogger)(nil)
