package ports

import (
	"image"
	"time"
)

// VideoEncoder accumulates rendered frames into one video file.
type VideoEncoder interface {
	// Begin fixes the frame size and nominal rate of the video.
	Begin(width, height int, fps float64, opts EncoderOptions) error

	// EncodeFrame adds img at presentation time pts, measured from the
	// first frame. pts must increase from call to call.
	EncodeFrame(img image.Image, pts time.Duration) error

	// End finalizes encoding and returns the container bytes.
	End() ([]byte, error)
}

// EncoderOptions configures per-frame compression.
type EncoderOptions struct {
	Quality int // JPEG quality per frame (1-100), 0 uses the encoder default
}
