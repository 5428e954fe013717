// Package dirsource provides a FrameSource that replays the images of a
// directory as if they came from a camera.
package dirsource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"golang.org/x/image/draw"

	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

// Extensions lists the file types the source picks up.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// Source implements ports.FrameSource over an image directory.
//
// Frames are numbered from 1 in lexical file order. Once every file has
// been delivered the last frame is returned again with the same number,
// the way a stalled camera behaves.
type Source struct {
	fs  ports.FileSystem
	dir string

	files    []string
	params   ports.StreamParams
	interval time.Duration
	next     time.Time
	index    int
	last     ports.RawFrame
	started  bool
	closed   bool

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Source reading from dir.
func New(fs ports.FileSystem, dir string) *Source {
	return &Source{
		fs:    fs,
		dir:   dir,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Start lists the directory and prepares frame pacing.
func (s *Source) Start(ctx context.Context, params ports.StreamParams) error {
	if s.started {
		return fmt.Errorf("image directory source already started")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", params.Width, params.Height)
	}
	if params.Format.BytesPerPixel() == 0 {
		return fmt.Errorf("unsupported pixel format %q", params.Format)
	}

	files, err := s.fs.ListFiles(s.dir, Extensions...)
	if err != nil {
		return fmt.Errorf("list images in %s: %w", s.dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found in %s", s.dir)
	}

	s.files = files
	s.params = params
	if params.FPS > 0 {
		s.interval = time.Duration(float64(time.Second) / params.FPS)
	}
	s.next = s.now()
	s.started = true
	return nil
}

// PullFrame returns the next image, waiting for its slot at the stream
// frame rate.
func (s *Source) PullFrame(ctx context.Context, timeout time.Duration) (ports.RawFrame, error) {
	if !s.started || s.closed {
		return ports.RawFrame{}, fmt.Errorf("image directory source not running")
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

	if s.index >= len(s.files) {
		frame := s.last
		frame.Timestamp = s.now()
		return frame, nil
	}

	path := s.files[s.index]
	img, err := s.load(path)
	if err != nil {
		return ports.RawFrame{}, err
	}
	s.index++

	s.last = ports.RawFrame{
		Number:    uint64(s.index),
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

// load decodes path and scales it to the stream size.
func (s *Source) load(path string) (*image.RGBA, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, s.params.Width, s.params.Height))
	if src.Bounds().Size() == dst.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	}
	return dst, nil
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
