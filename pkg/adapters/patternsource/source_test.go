package patternsource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/posestream/pkg/ports"
)

func newSource(frames int) *Source {
	s := New(frames)
	s.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return s
}

func TestSource_NumbersThenStall(t *testing.T) {
	s := newSource(3)
	ctx := context.Background()
	if err := s.Start(ctx, ports.StreamParams{Width: 64, Height: 48, Format: ports.FormatRGB8}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	want := []uint64{1, 2, 3, 3, 3}
	for i, n := range want {
		f, err := s.PullFrame(ctx, time.Second)
		if err != nil {
			t.Fatalf("PullFrame %d failed: %v", i, err)
		}
		if f.Number != n {
			t.Errorf("pull %d: expected frame %d, got %d", i, n, f.Number)
		}
		if len(f.Data) != 64*48*3 {
			t.Errorf("pull %d: expected %d bytes, got %d", i, 64*48*3, len(f.Data))
		}
	}
}

func TestSource_Unbounded(t *testing.T) {
	s := newSource(0)
	_ = s.Start(context.Background(), ports.StreamParams{Width: 16, Height: 16, Format: ports.FormatGray8})
	var last uint64
	for i := 0; i < 10; i++ {
		f, err := s.PullFrame(context.Background(), time.Second)
		if err != nil {
			t.Fatalf("PullFrame failed: %v", err)
		}
		if f.Number <= last {
			t.Fatalf("expected increasing numbers, got %d after %d", f.Number, last)
		}
		last = f.Number
	}
}

func TestDraw_SpotIsBright(t *testing.T) {
	img := Draw(96, 96, 5)
	x, y, _ := SpotCenter(96, 96, 5)
	c := img.RGBAAt(int(x), int(y))
	if c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("expected white spot at (%v,%v), got %v", x, y, c)
	}
	corner := img.RGBAAt(0, 95)
	if corner != background {
		t.Errorf("expected background in corner, got %v", corner)
	}
}

func TestSpotCenter_Moves(t *testing.T) {
	x1, _, _ := SpotCenter(320, 240, 1)
	x2, _, _ := SpotCenter(320, 240, 2)
	if x2 <= x1 {
		t.Errorf("expected the spot to move right, got %v then %v", x1, x2)
	}
}

func TestSource_Timeout(t *testing.T) {
	s := newSource(10)
	clock := time.Unix(0, 0)
	s.now = func() time.Time { return clock }
	_ = s.Start(context.Background(), ports.StreamParams{Width: 8, Height: 8, Format: ports.FormatBGR8, FPS: 1})

	if _, err := s.PullFrame(context.Background(), time.Second); err != nil {
		t.Fatalf("first pull failed: %v", err)
	}
	if _, err := s.PullFrame(context.Background(), 100*time.Millisecond); !errors.Is(err, ports.ErrPullTimeout) {
		t.Errorf("expected ErrPullTimeout, got %v", err)
	}
}

func TestSource_Errors(t *testing.T) {
	s := newSource(1)
	if _, err := s.PullFrame(context.Background(), time.Second); err == nil {
		t.Error("expected error before Start")
	}
	if err := s.Start(context.Background(), ports.StreamParams{Width: 8, Height: 0, Format: ports.FormatBGR8}); err == nil {
		t.Error("expected error for zero height")
	}
	_ = s.Start(context.Background(), ports.StreamParams{Width: 8, Height: 8, Format: ports.FormatBGR8})
	if err := s.Start(context.Background(), ports.StreamParams{Width: 8, Height: 8, Format: ports.FormatBGR8}); err == nil {
		t.Error("expected error starting twice")
	}
	_ = s.Close()
	if _, err := s.PullFrame(context.Background(), time.Second); err == nil {
		t.Error("expected error after Close")
	}
}
