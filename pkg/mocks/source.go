// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/user/posestream/pkg/ports"
)

// Step is one scripted PullFrame outcome.
type Step struct {
	Frame ports.RawFrame
	Err   error
}

// FrameSource is a mock implementation of ports.FrameSource.
//
// Without PullFrameFunc it replays Script in order and then keeps
// returning the last scripted frame, as a stalled device does.
type FrameSource struct {
	StartFunc     func(ctx context.Context, params ports.StreamParams) error
	PullFrameFunc func(ctx context.Context, timeout time.Duration) (ports.RawFrame, error)
	CloseFunc     func() error

	Script []Step

	mu       sync.Mutex
	params   ports.StreamParams
	started  int
	pulls    int
	closes   int
	timeouts []time.Duration
}

// NewScriptedSource creates a FrameSource replaying steps.
func NewScriptedSource(steps ...Step) *FrameSource {
	return &FrameSource{Script: steps}
}

// Frames builds successful steps of w x h BGR frames with the given numbers.
func Frames(w, h int, numbers ...uint64) []Step {
	steps := make([]Step, 0, len(numbers))
	for _, n := range numbers {
		steps = append(steps, Step{Frame: Frame(n, w, h)})
	}
	return steps
}

// Frame builds a w x h BGR frame whose pixels all hold the low byte of n.
func Frame(n uint64, w, h int) ports.RawFrame {
	data := make([]byte, w*h*3)
	for i := range data {
		data[i] = byte(n)
	}
	return ports.RawFrame{
		Number:    n,
		Timestamp: time.Unix(0, int64(n)*int64(time.Millisecond)),
		Width:     w,
		Height:    h,
		Format:    ports.FormatBGR8,
		Data:      data,
	}
}

func (m *FrameSource) Start(ctx context.Context, params ports.StreamParams) error {
	m.mu.Lock()
	m.params = params
	m.started++
	m.mu.Unlock()
	if m.StartFunc != nil {
		return m.StartFunc(ctx, params)
	}
	return nil
}

func (m *FrameSource) PullFrame(ctx context.Context, timeout time.Duration) (ports.RawFrame, error) {
	m.mu.Lock()
	idx := m.pulls
	m.pulls++
	m.timeouts = append(m.timeouts, timeout)
	m.mu.Unlock()

	if m.PullFrameFunc != nil {
		return m.PullFrameFunc(ctx, timeout)
	}
	if len(m.Script) == 0 {
		return ports.RawFrame{}, ports.ErrPullTimeout
	}
	if idx >= len(m.Script) {
		idx = len(m.Script) - 1
	}
	step := m.Script[idx]
	return step.Frame, step.Err
}

func (m *FrameSource) Close() error {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Params returns the parameters passed to Start.
func (m *FrameSource) Params() ports.StreamParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params
}

// Starts returns the number of Start calls.
func (m *FrameSource) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Pulls returns the number of PullFrame calls.
func (m *FrameSource) Pulls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pulls
}

// Closes returns the number of Close calls.
func (m *FrameSource) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// Timeouts returns the timeout passed to each PullFrame call.
func (m *FrameSource) Timeouts() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.timeouts...)
}

var _ ports.FrameSource = (*FrameSource)(nil)
