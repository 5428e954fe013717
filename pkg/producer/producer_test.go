package producer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/user/posestream/pkg/adapters/logger"
	"github.com/user/posestream/pkg/mocks"
	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

var testParams = ports.StreamParams{Width: 4, Height: 3, Format: ports.FormatBGR8, FPS: 30}

func newAdapter(t *testing.T, src *mocks.FrameSource, log ports.Logger) (*Adapter, *pipeline.StopSignal) {
	t.Helper()
	if log == nil {
		log = logger.NewNoop()
	}
	stop := pipeline.NewStopSignal()
	a := New(src, testParams, stop, log, Options{PullTimeout: time.Second})
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return a, stop
}

// drain calls ProduceNext until it stops returning items.
func drain(a *Adapter) ([]uint64, Result) {
	var numbers []uint64
	for {
		res := a.ProduceNext(context.Background())
		if res.Kind != ResultItem {
			return numbers, res
		}
		numbers = append(numbers, res.Item.FrameNumber)
	}
}

func TestAdapter_RepeatedFrameEndsStream(t *testing.T) {
	src := mocks.NewScriptedSource(mocks.Frames(4, 3, 1, 2, 2, 3)...)
	a, stop := newAdapter(t, src, nil)

	numbers, last := drain(a)

	if len(numbers) != 2 || numbers[0] != 1 || numbers[1] != 2 {
		t.Fatalf("expected items [1 2], got %v", numbers)
	}
	if last.Kind != ResultEndOfStream || last.Err != nil {
		t.Errorf("expected clean end of stream, got %s (%v)", last.Kind, last.Err)
	}
	if !stop.Requested() {
		t.Error("expected stop to be requested")
	}
	if src.Pulls() != 3 {
		t.Errorf("expected frame 3 never to be pulled, got %d pulls", src.Pulls())
	}

	// Further calls never reach the source again.
	if res := a.ProduceNext(context.Background()); res.Kind != ResultEndOfStream {
		t.Errorf("expected end of stream after stop, got %s", res.Kind)
	}
	if src.Pulls() != 3 {
		t.Errorf("expected no pull after stop, got %d pulls", src.Pulls())
	}
	if src.Closes() != 1 {
		t.Errorf("expected source closed once, got %d", src.Closes())
	}
	if a.State() != StateStopped {
		t.Errorf("expected stopped, got %s", a.State())
	}

	stats := a.Stats()
	if stats.Accepted != 2 || stats.LastFrame != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestAdapter_EmptyFrameStops(t *testing.T) {
	steps := mocks.Frames(4, 3, 1)
	steps = append(steps, mocks.Step{Frame: ports.RawFrame{Number: 2, Width: 4, Height: 3, Format: ports.FormatBGR8}})
	steps = append(steps, mocks.Frames(4, 3, 3)...)
	src := mocks.NewScriptedSource(steps...)
	log := mocks.NewLogger()
	a, stop := newAdapter(t, src, log)

	numbers, last := drain(a)

	if len(numbers) != 1 || numbers[0] != 1 {
		t.Fatalf("expected items [1], got %v", numbers)
	}
	if last.Kind != ResultError {
		t.Fatalf("expected error result, got %s", last.Kind)
	}
	var invalid *pipeline.InvalidFrameError
	if !errors.As(last.Err, &invalid) || invalid.FrameNumber != 2 {
		t.Fatalf("expected InvalidFrameError for frame 2, got %v", last.Err)
	}
	if !pipeline.IsCleanStop(last.Err) {
		t.Error("invalid frame should be a clean stop")
	}
	if !stop.Requested() {
		t.Error("expected stop to be requested")
	}
	if n := log.Count(ports.LevelError, "Empty frame"); n != 1 {
		t.Errorf("expected one error log, got %d", n)
	}
	if src.Closes() != 1 {
		t.Errorf("expected source closed once, got %d", src.Closes())
	}
}

func TestAdapter_InvalidFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame ports.RawFrame
	}{
		{"zero width", ports.RawFrame{Number: 1, Width: 0, Height: 3, Format: ports.FormatBGR8, Data: make([]byte, 36)}},
		{"short data", ports.RawFrame{Number: 1, Width: 4, Height: 3, Format: ports.FormatBGR8, Data: make([]byte, 35)}},
		{"unknown format", ports.RawFrame{Number: 1, Width: 4, Height: 3, Format: "yuyv", Data: make([]byte, 36)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := mocks.NewScriptedSource(mocks.Step{Frame: tt.frame})
			a, _ := newAdapter(t, src, nil)

			res := a.ProduceNext(context.Background())
			var invalid *pipeline.InvalidFrameError
			if res.Kind != ResultError || !errors.As(res.Err, &invalid) {
				t.Fatalf("expected invalid frame error, got %s (%v)", res.Kind, res.Err)
			}
		})
	}
}

func TestAdapter_SourceErrors(t *testing.T) {
	lost := errors.New("device lost")
	tests := []struct {
		name string
		err  error
	}{
		{"device failure", lost},
		{"timeout", ports.ErrPullTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := append(mocks.Frames(4, 3, 1), mocks.Step{Err: tt.err})
			src := mocks.NewScriptedSource(steps...)
			a, stop := newAdapter(t, src, nil)

			numbers, last := drain(a)
			if len(numbers) != 1 {
				t.Fatalf("expected 1 item, got %v", numbers)
			}
			var serr *pipeline.SourceError
			if last.Kind != ResultError || !errors.As(last.Err, &serr) {
				t.Fatalf("expected SourceError, got %s (%v)", last.Kind, last.Err)
			}
			if serr.Op != "pull" || !errors.Is(last.Err, tt.err) {
				t.Errorf("unexpected source error %v", last.Err)
			}
			if pipeline.IsCleanStop(last.Err) {
				t.Error("source error must not be a clean stop")
			}
			if !stop.Requested() {
				t.Error("expected stop to be requested")
			}
			if src.Pulls() != 2 {
				t.Errorf("expected no retry, got %d pulls", src.Pulls())
			}
		})
	}
}

func TestAdapter_ExternalStop(t *testing.T) {
	src := mocks.NewScriptedSource(mocks.Frames(4, 3, 1, 2, 3)...)
	a, stop := newAdapter(t, src, nil)

	if res := a.ProduceNext(context.Background()); res.Kind != ResultItem {
		t.Fatalf("expected item, got %s", res.Kind)
	}
	stop.Request()

	if res := a.ProduceNext(context.Background()); res.Kind != ResultEndOfStream {
		t.Fatalf("expected end of stream, got %s", res.Kind)
	}
	if src.Pulls() != 1 {
		t.Errorf("expected no pull after stop, got %d", src.Pulls())
	}
	if src.Closes() != 1 {
		t.Errorf("expected source closed once, got %d", src.Closes())
	}
}

func TestAdapter_CancelledContext(t *testing.T) {
	src := mocks.NewScriptedSource(mocks.Frames(4, 3, 1)...)
	src.PullFrameFunc = func(ctx context.Context, timeout time.Duration) (ports.RawFrame, error) {
		<-ctx.Done()
		return ports.RawFrame{}, ctx.Err()
	}
	a, _ := newAdapter(t, src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	res := a.ProduceNext(ctx)
	if res.Kind != ResultEndOfStream || res.Err != nil {
		t.Fatalf("expected clean end of stream on cancel, got %s (%v)", res.Kind, res.Err)
	}
}

func TestAdapter_StartFailure(t *testing.T) {
	src := mocks.NewScriptedSource()
	src.StartFunc = func(ctx context.Context, params ports.StreamParams) error {
		return errors.New("no device")
	}
	stop := pipeline.NewStopSignal()
	a := New(src, testParams, stop, logger.NewNoop(), Options{})

	err := a.Start(context.Background())
	var serr *pipeline.SourceError
	if !errors.As(err, &serr) || serr.Op != "start" {
		t.Fatalf("expected start SourceError, got %v", err)
	}
	if a.State() != StateStopped {
		t.Errorf("expected stopped, got %s", a.State())
	}
	if src.Closes() != 1 {
		t.Errorf("expected source closed once, got %d", src.Closes())
	}
	if err := a.Start(context.Background()); err == nil {
		t.Error("expected restart to fail")
	}
}

func TestAdapter_StartTwice(t *testing.T) {
	src := mocks.NewScriptedSource(mocks.Frames(4, 3, 1)...)
	a, _ := newAdapter(t, src, nil)

	if err := a.Start(context.Background()); err == nil {
		t.Error("expected second Start to fail")
	}
	if src.Starts() != 1 {
		t.Errorf("expected one source start, got %d", src.Starts())
	}
	if src.Params() != testParams {
		t.Errorf("unexpected stream params %+v", src.Params())
	}
}

func TestAdapter_DefaultPullTimeout(t *testing.T) {
	src := mocks.NewScriptedSource(mocks.Frames(4, 3, 1)...)
	a := New(src, testParams, pipeline.NewStopSignal(), logger.NewNoop(), Options{})
	if err := a.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	a.ProduceNext(context.Background())

	timeouts := src.Timeouts()
	if len(timeouts) != 1 || timeouts[0] != DefaultPullTimeout {
		t.Errorf("expected default timeout, got %v", timeouts)
	}
}

func TestAdapter_CopiesPixels(t *testing.T) {
	frame := ports.RawFrame{
		Number: 7,
		Width:  2,
		Height: 1,
		Format: ports.FormatBGR8,
		Data:   []byte{10, 20, 30, 40, 50, 60},
	}
	src := mocks.NewScriptedSource(mocks.Step{Frame: frame})
	a, _ := newAdapter(t, src, nil)

	res := a.ProduceNext(context.Background())
	if res.Kind != ResultItem {
		t.Fatalf("expected item, got %s (%v)", res.Kind, res.Err)
	}
	frame.Data[0] = 0

	in := res.Item.Input
	if got := in.RGBAAt(0, 0); got.R != 30 || got.G != 20 || got.B != 10 || got.A != 255 {
		t.Errorf("pixel 0 = %v, want BGR swapped", got)
	}
	if got := in.RGBAAt(1, 0); got.R != 60 || got.B != 40 {
		t.Errorf("pixel 1 = %v, want BGR swapped", got)
	}
	if res.Item.Output == res.Item.Input {
		t.Error("output must be a separate buffer")
	}
	if res.Item.Output.RGBAAt(0, 0) != in.RGBAAt(0, 0) {
		t.Error("output must start equal to input")
	}
	if res.Item.ID == "" {
		t.Error("expected a trace id")
	}
	if res.Item.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
}

func TestAdapter_GrayFrame(t *testing.T) {
	frame := ports.RawFrame{Number: 1, Width: 1, Height: 1, Format: ports.FormatGray8, Data: []byte{99}}
	src := mocks.NewScriptedSource(mocks.Step{Frame: frame})
	a, _ := newAdapter(t, src, nil)

	res := a.ProduceNext(context.Background())
	if res.Kind != ResultItem {
		t.Fatalf("expected item, got %s", res.Kind)
	}
	if got := res.Item.Input.RGBAAt(0, 0); got.R != 99 || got.G != 99 || got.B != 99 {
		t.Errorf("unexpected gray conversion %v", got)
	}
}

func TestAdapter_CloseOnce(t *testing.T) {
	src := mocks.NewScriptedSource(mocks.Frames(4, 3, 1)...)
	a, _ := newAdapter(t, src, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = a.Close()
		}()
	}
	wg.Wait()

	if src.Closes() != 1 {
		t.Errorf("expected source closed once, got %d", src.Closes())
	}
	if res := a.ProduceNext(context.Background()); res.Kind != ResultEndOfStream {
		t.Errorf("expected end of stream after close, got %s", res.Kind)
	}
}
