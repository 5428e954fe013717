package mocks

import (
	"image"
	"sync"
	"time"

	"github.com/user/posestream/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder.
type VideoEncoder struct {
	BeginFunc       func(width, height int, fps float64, opts ports.EncoderOptions) error
	EncodeFrameFunc func(img image.Image, pts time.Duration) error
	EndFunc         func() ([]byte, error)

	mu sync.Mutex

	BeginCalled      bool
	BeginWidth       int
	BeginHeight      int
	BeginFPS         float64
	EncodeFrameCalls []EncodeFrameCall
	EndCalled        bool
}

// EncodeFrameCall records a call to EncodeFrame.
type EncodeFrameCall struct {
	PTS    time.Duration
	Bounds image.Rectangle
}

func (m *VideoEncoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	m.mu.Lock()
	m.BeginCalled = true
	m.BeginWidth, m.BeginHeight = width, height
	m.BeginFPS = fps
	m.mu.Unlock()
	if m.BeginFunc != nil {
		return m.BeginFunc(width, height, fps, opts)
	}
	return nil
}

func (m *VideoEncoder) EncodeFrame(img image.Image, pts time.Duration) error {
	m.mu.Lock()
	m.EncodeFrameCalls = append(m.EncodeFrameCalls, EncodeFrameCall{PTS: pts, Bounds: img.Bounds()})
	m.mu.Unlock()
	if m.EncodeFrameFunc != nil {
		return m.EncodeFrameFunc(img, pts)
	}
	return nil
}

func (m *VideoEncoder) End() ([]byte, error) {
	m.mu.Lock()
	m.EndCalled = true
	m.mu.Unlock()
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	return []byte{0, 0, 0, 8, 'f', 't', 'y', 'p'}, nil
}

// Frames returns the number of encoded frames.
func (m *VideoEncoder) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.EncodeFrameCalls)
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)
