package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/posestream/pkg/ports"
)

// Display is a mock implementation of ports.Display.
type Display struct {
	OpenFunc func(ctx context.Context, fullscreen bool) error
	ShowFunc func(ctx context.Context, frame image.Image, info ports.DisplayInfo) error

	mu     sync.Mutex
	opened bool
	closed bool
	shown  []ports.DisplayInfo
}

func (m *Display) Open(ctx context.Context, fullscreen bool) error {
	m.mu.Lock()
	m.opened = true
	m.mu.Unlock()
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, fullscreen)
	}
	return nil
}

func (m *Display) Show(ctx context.Context, frame image.Image, info ports.DisplayInfo) error {
	m.mu.Lock()
	m.shown = append(m.shown, info)
	m.mu.Unlock()
	if m.ShowFunc != nil {
		return m.ShowFunc(ctx, frame, info)
	}
	return nil
}

func (m *Display) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Shown returns the info of every shown frame.
func (m *Display) Shown() []ports.DisplayInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.DisplayInfo(nil), m.shown...)
}

// Opened reports whether Open was called.
func (m *Display) Opened() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened
}

// Closed reports whether Close was called.
func (m *Display) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.Display = (*Display)(nil)
