// Package mp4writer provides a pure Go Motion-JPEG video encoder that
// stores frames in a fragmented MP4 container.
package mp4writer

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/user/posestream/pkg/ports"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 85

type encodedFrame struct {
	data []byte
	pts  time.Duration
}

// Encoder implements ports.VideoEncoder. Every frame is an independent
// JPEG, so all samples are sync samples.
type Encoder struct {
	mu sync.Mutex

	width   int
	height  int
	fps     float64
	quality int
	begun   bool
	frames  []encodedFrame
}

// New creates a new Encoder.
func New() *Encoder {
	return &Encoder{}
}

// Begin initializes the encoder with the specified dimensions and frame rate.
func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if width <= 0 || height <= 0 || width > 0xffff || height > 0xffff {
		return fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if fps <= 0 {
		return fmt.Errorf("invalid frame rate %g", fps)
	}

	e.width = width
	e.height = height
	e.fps = fps
	e.quality = opts.Quality
	if e.quality <= 0 || e.quality > 100 {
		e.quality = DefaultQuality
	}
	e.frames = nil
	e.begun = true
	return nil
}

// EncodeFrame compresses img. Frames of another size are scaled to the
// size given to Begin.
func (e *Encoder) EncodeFrame(img image.Image, pts time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.begun {
		return fmt.Errorf("encoder not started")
	}
	if n := len(e.frames); n > 0 && pts <= e.frames[n-1].pts {
		return fmt.Errorf("presentation time %s not after %s", pts, e.frames[n-1].pts)
	}

	b := img.Bounds()
	if b.Dx() != e.width || b.Dy() != e.height {
		dst := image.NewRGBA(image.Rect(0, 0, e.width, e.height))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return fmt.Errorf("encode JPEG: %w", err)
	}
	e.frames = append(e.frames, encodedFrame{data: buf.Bytes(), pts: pts})
	return nil
}

// End finalizes encoding and returns the MP4 bytes. The encoder can be
// started again afterwards.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.begun {
		return nil, fmt.Errorf("encoder not started")
	}
	e.begun = false
	data, err := e.buildMP4()
	e.frames = nil
	return data, err
}

var _ ports.VideoEncoder = (*Encoder)(nil)
