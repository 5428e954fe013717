// Package patternsource provides a FrameSource that synthesizes frames,
// for demos and for running the pipeline without a camera.
package patternsource

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/fogleman/gg"

	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

var (
	background = color.RGBA{R: 20, G: 22, B: 30, A: 255}
	bodyColor  = color.RGBA{R: 90, G: 90, B: 100, A: 255}
	spotColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Source implements ports.FrameSource by drawing a bright dot that moves
// across the frame on top of a dim stick figure.
//
// Frames are numbered from 1. After Frames frames the last frame is
// repeated with the same number; Frames <= 0 never stalls.
type Source struct {
	frames int

	params   ports.StreamParams
	interval time.Duration
	next     time.Time
	number   uint64
	last     ports.RawFrame
	started  bool
	closed   bool

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Source that delivers the given number of distinct frames.
func New(frames int) *Source {
	return &Source{
		frames: frames,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Start prepares the canvas size and frame pacing.
func (s *Source) Start(ctx context.Context, params ports.StreamParams) error {
	if s.started {
		return fmt.Errorf("pattern source already started")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", params.Width, params.Height)
	}
	if params.Format.BytesPerPixel() == 0 {
		return fmt.Errorf("unsupported pixel format %q", params.Format)
	}
	s.params = params
	if params.FPS > 0 {
		s.interval = time.Duration(float64(time.Second) / params.FPS)
	}
	s.next = s.now()
	s.started = true
	return nil
}

// PullFrame draws the next frame, waiting for its slot at the stream
// frame rate.
func (s *Source) PullFrame(ctx context.Context, timeout time.Duration) (ports.RawFrame, error) {
	if !s.started || s.closed {
		return ports.RawFrame{}, fmt.Errorf("pattern source not running")
	}

	if wait := s.next.Sub(s.now()); wait > 0 {
		if timeout > 0 && wait > timeout {
			if err := s.sleep(ctx, timeout); err != nil {
				return ports.RawFrame{}, err
			}
			return ports.RawFrame{}, ports.ErrPullTimeout
		}
		if err := s.sleep(ctx, wait); err != nil {
			return ports.RawFrame{}, err
		}
	}
	s.next = s.next.Add(s.interval)

	if s.frames > 0 && s.number >= uint64(s.frames) {
		frame := s.last
		frame.Timestamp = s.now()
		return frame, nil
	}

	s.number++
	img := Draw(s.params.Width, s.params.Height, s.number)
	s.last = ports.RawFrame{
		Number:    s.number,
		Timestamp: s.now(),
		Width:     s.params.Width,
		Height:    s.params.Height,
		Format:    s.params.Format,
		Data:      pipeline.PackPixels(s.last.Data, img, s.params.Format),
	}
	return s.last, nil
}

// Close stops the source. Further pulls fail.
func (s *Source) Close() error {
	s.closed = true
	return nil
}

// SpotCenter returns where frame n places the bright dot and its radius.
func SpotCenter(width, height int, n uint64) (x, y, radius float64) {
	radius = float64(height) / 24
	if radius < 2 {
		radius = 2
	}
	margin := 4 * radius
	span := float64(width) - 2*margin
	if span < 1 {
		span = 1
	}
	step := float64(width) / 90
	if step < 1 {
		step = 1
	}
	x = margin + float64(int(float64(n-1)*step)%int(span))
	y = float64(height) / 4
	return x, y, radius
}

// Draw renders frame n of the pattern.
func Draw(width, height int, n uint64) *image.RGBA {
	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()

	x, y, r := SpotCenter(width, height, n)

	dc.SetColor(bodyColor)
	dc.SetLineWidth(r / 2)
	neckY, hipY := y+2*r, y+7*r
	dc.DrawLine(x, neckY, x, hipY)
	dc.DrawLine(x-1.5*r, neckY, x+1.5*r, neckY)
	dc.DrawLine(x-1.5*r, neckY, x-2.2*r, y+6*r)
	dc.DrawLine(x+1.5*r, neckY, x+2.2*r, y+6*r)
	dc.DrawLine(x, hipY, x-r, y+13*r)
	dc.DrawLine(x, hipY, x+r, y+13*r)
	dc.Stroke()

	dc.SetColor(spotColor)
	dc.DrawCircle(x, y, r)
	dc.Fill()

	return pipeline.ToRGBA(dc.Image())
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ ports.FrameSource = (*Source)(nil)
