package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/posestream/pkg/ports"
)

// Entry is one recorded log message.
type Entry struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

// Logger is a ports.Logger that records every message.
type Logger struct {
	component string
	store     *entries
}

type entries struct {
	mu   sync.Mutex
	list []Entry
}

// NewLogger creates a recording logger.
func NewLogger() *Logger {
	return &Logger{store: &entries{}}
}

func (l *Logger) record(level ports.LogLevel, msg string, args ...interface{}) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	l.store.list = append(l.store.list, Entry{Level: level, Component: l.component, Message: fmt.Sprintf(msg, args...)})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.record(ports.LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})  { l.record(ports.LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.record(ports.LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...interface{}) { l.record(ports.LevelError, msg, args...) }

func (l *Logger) WithComponent(component string) ports.Logger {
	return &Logger{component: component, store: l.store}
}

// Entries returns every recorded message.
func (l *Logger) Entries() []Entry {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return append([]Entry(nil), l.store.list...)
}

// Count returns how many messages at level contain substr.
func (l *Logger) Count(level ports.LogLevel, substr string) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			n++
		}
	}
	return n
}

var _ ports.Logger = (*Logger)(nil)
