// Package nulldisplay provides a display that discards frames.
package nulldisplay

import (
	"context"
	"image"
	"sync/atomic"

	"github.com/user/posestream/pkg/ports"
)

// Display is a no-op implementation of ports.Display. It counts the
// frames it receives so headless runs still report display activity.
type Display struct {
	frames atomic.Uint64
}

// New creates a new Display.
func New() *Display {
	return &Display{}
}

// Open does nothing.
func (d *Display) Open(ctx context.Context, fullscreen bool) error {
	return nil
}

// Show discards the frame.
func (d *Display) Show(ctx context.Context, frame image.Image, info ports.DisplayInfo) error {
	d.frames.Add(1)
	return nil
}

// Close does nothing.
func (d *Display) Close() error {
	return nil
}

// Frames returns the number of frames received.
func (d *Display) Frames() uint64 {
	return d.frames.Load()
}

var _ ports.Display = (*Display)(nil)
