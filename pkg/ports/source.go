// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"errors"
	"time"
)

// ErrPullTimeout is returned by FrameSource.PullFrame when no frame arrived
// within the requested timeout.
var ErrPullTimeout = errors.New("frame pull timed out")

// PixelFormat describes the byte layout of RawFrame.Data.
type PixelFormat string

const (
	FormatBGR8  PixelFormat = "bgr8"
	FormatRGB8  PixelFormat = "rgb8"
	FormatGray8 PixelFormat = "gray8"
)

// BytesPerPixel returns the number of bytes one pixel occupies, or 0 for
// an unknown format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatBGR8, FormatRGB8:
		return 3
	case FormatGray8:
		return 1
	default:
		return 0
	}
}

// StreamParams configures the stream a FrameSource opens.
type StreamParams struct {
	Width  int
	Height int
	Format PixelFormat
	FPS    float64
}

// RawFrame is a single frame as delivered by a capture device.
//
// Data may be reused by the source after the next PullFrame call, so
// consumers must copy it before pulling again.
type RawFrame struct {
	// Number is the hardware frame counter. It never decreases, and it
	// repeats when the device has nothing new to deliver.
	Number    uint64
	Timestamp time.Time
	Width     int
	Height    int
	Format    PixelFormat
	Data      []byte
}

// FrameSource abstracts a blocking capture device.
//
// Implementations serve a single caller; no method is safe for concurrent
// use. PullFrame never retries internally, the caller decides what a
// failure means.
type FrameSource interface {
	// Start opens the device and begins streaming with the given parameters.
	Start(ctx context.Context, params StreamParams) error

	// PullFrame blocks until the next frame is available, the timeout
	// elapses (ErrPullTimeout) or ctx is cancelled.
	PullFrame(ctx context.Context, timeout time.Duration) (RawFrame, error)

	// Close releases the device session.
	Close() error
}
