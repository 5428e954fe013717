package dirsource

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/user/posestream/pkg/mocks"
	"github.com/user/posestream/pkg/ports"
)

func pngOf(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newSource(t *testing.T) (*Source, *mocks.FileSystem) {
	t.Helper()
	fs := mocks.NewFileSystem()
	_ = fs.WriteFile("frames/b.png", pngOf(t, 8, 4, color.RGBA{G: 200, A: 255}))
	_ = fs.WriteFile("frames/a.png", pngOf(t, 4, 2, color.RGBA{R: 200, A: 255}))
	_ = fs.WriteFile("frames/notes.txt", []byte("ignored"))

	s := New(fs, "frames")
	s.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return s, fs
}

var params = ports.StreamParams{Width: 4, Height: 2, Format: ports.FormatBGR8}

func TestSource_FramesInOrderThenStall(t *testing.T) {
	s, _ := newSource(t)
	ctx := context.Background()
	if err := s.Start(ctx, params); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var numbers []uint64
	var firsts [][]byte
	for i := 0; i < 4; i++ {
		f, err := s.PullFrame(ctx, time.Second)
		if err != nil {
			t.Fatalf("PullFrame %d failed: %v", i, err)
		}
		if f.Width != 4 || f.Height != 2 || len(f.Data) != 4*2*3 {
			t.Fatalf("unexpected frame geometry %dx%d, %d bytes", f.Width, f.Height, len(f.Data))
		}
		numbers = append(numbers, f.Number)
		firsts = append(firsts, append([]byte(nil), f.Data[:3]...))
	}

	want := []uint64{1, 2, 2, 2}
	for i := range want {
		if numbers[i] != want[i] {
			t.Fatalf("expected numbers %v, got %v", want, numbers)
		}
	}
	// a.png is red, b.png (scaled down) is green. BGR order.
	if !bytes.Equal(firsts[0], []byte{0, 0, 200}) {
		t.Errorf("expected red BGR pixel, got %v", firsts[0])
	}
	if g := firsts[1]; g[0] > 5 || g[1] < 195 || g[1] > 205 || g[2] > 5 {
		t.Errorf("expected green BGR pixel, got %v", g)
	}
}

func TestSource_StartErrors(t *testing.T) {
	s := New(mocks.NewFileSystem(), "empty")
	if err := s.Start(context.Background(), params); err == nil {
		t.Error("expected error for empty directory")
	}

	fs := mocks.NewFileSystem()
	fs.ListFilesFunc = func(dir string, exts ...string) ([]string, error) {
		return nil, errors.New("permission denied")
	}
	if err := New(fs, "x").Start(context.Background(), params); err == nil {
		t.Error("expected list error")
	}

	s, _ = newSource(t)
	if err := s.Start(context.Background(), ports.StreamParams{Width: 0, Height: 2, Format: ports.FormatBGR8}); err == nil {
		t.Error("expected error for zero width")
	}
	if err := s.Start(context.Background(), ports.StreamParams{Width: 4, Height: 2, Format: "yuv"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSource_DecodeError(t *testing.T) {
	fs := mocks.NewFileSystem()
	_ = fs.WriteFile("bad/0001.png", []byte("not a png"))
	s := New(fs, "bad")
	s.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	_ = s.Start(context.Background(), params)
	if _, err := s.PullFrame(context.Background(), time.Second); err == nil {
		t.Error("expected decode error")
	}
}

func TestSource_Pacing(t *testing.T) {
	s, _ := newSource(t)
	clock := time.Unix(0, 0)
	s.now = func() time.Time { return clock }
	var waits []time.Duration
	s.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	p := params
	p.FPS = 10
	_ = s.Start(context.Background(), p)
	_, _ = s.PullFrame(context.Background(), time.Second)
	_, _ = s.PullFrame(context.Background(), time.Second)

	if len(waits) != 1 || waits[0] != 100*time.Millisecond {
		t.Fatalf("expected a single 100ms wait, got %v", waits)
	}

	// A slot further away than the pull timeout is a timeout.
	_, err := s.PullFrame(context.Background(), 10*time.Millisecond)
	if !errors.Is(err, ports.ErrPullTimeout) {
		t.Errorf("expected ErrPullTimeout, got %v", err)
	}
}

func TestSource_Close(t *testing.T) {
	s, _ := newSource(t)
	_ = s.Start(context.Background(), params)
	_ = s.Close()
	if _, err := s.PullFrame(context.Background(), time.Second); err == nil {
		t.Error("expected error after Close")
	}
}
