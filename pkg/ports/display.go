package ports

import (
	"context"
	"image"
)

// DisplayInfo carries per-frame metadata shown alongside the image.
type DisplayInfo struct {
	FrameNumber uint64
	People      int
	Caption     string // Empty when GUI verbosity is disabled
}

// Display abstracts a screen the rendered frames are shown on.
type Display interface {
	// Open prepares the display. fullscreen is a hint and may be ignored.
	Open(ctx context.Context, fullscreen bool) error

	// Show presents one frame. It must not block on slow viewers.
	Show(ctx context.Context, frame image.Image, info DisplayInfo) error

	// Close tears the display down.
	Close() error
}
