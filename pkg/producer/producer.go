// Package producer bridges a blocking FrameSource into pipeline work items.
package producer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

// DefaultPullTimeout bounds a single PullFrame call when Options leaves it unset.
const DefaultPullTimeout = 5 * time.Second

// State is the lifecycle state of an Adapter.
type State int32

const (
	StateIdle State = iota
	StateReading
	StateStopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ResultKind discriminates the outcome of ProduceNext.
type ResultKind int

const (
	// ResultItem carries a new work item.
	ResultItem ResultKind = iota
	// ResultEndOfStream means no more items will follow. It is not an error.
	ResultEndOfStream
	// ResultError means the stream ended on a failure described by Err.
	ResultError
)

// String returns the string representation of the result kind.
func (k ResultKind) String() string {
	switch k {
	case ResultItem:
		return "item"
	case ResultEndOfStream:
		return "end-of-stream"
	case ResultError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one ProduceNext call.
type Result struct {
	Kind ResultKind
	Item *pipeline.WorkItem
	Err  error
}

// Options configures an Adapter.
type Options struct {
	PullTimeout time.Duration
}

// Stats reports what the adapter has accepted so far.
type Stats struct {
	Accepted  uint64
	LastFrame uint64
}

// Adapter turns a blocking FrameSource into a pull-on-demand generator of
// work items.
//
// ProduceNext must be called from a single goroutine. State, Stats and
// Close are safe to call from any goroutine.
type Adapter struct {
	source ports.FrameSource
	params ports.StreamParams
	stop   *pipeline.StopSignal
	logger ports.Logger
	opts   Options

	state    atomic.Int32
	hasLast  bool
	last     atomic.Uint64
	accepted atomic.Uint64

	closeOnce sync.Once
	closeErr  error
}

// New creates an Adapter in the Idle state. The adapter owns source from
// now on and closes it exactly once.
func New(source ports.FrameSource, params ports.StreamParams, stop *pipeline.StopSignal, logger ports.Logger, opts Options) *Adapter {
	if opts.PullTimeout <= 0 {
		opts.PullTimeout = DefaultPullTimeout
	}
	return &Adapter{
		source: source,
		params: params,
		stop:   stop,
		logger: logger.WithComponent("producer"),
		opts:   opts,
	}
}

// State returns the current lifecycle state.
func (a *Adapter) State() State {
	return State(a.state.Load())
}

// Stats returns the accepted frame count and the last accepted number.
func (a *Adapter) Stats() Stats {
	return Stats{
		Accepted:  a.accepted.Load(),
		LastFrame: a.last.Load(),
	}
}

// Start opens the source. A failure stops the adapter and is returned as
// a *pipeline.SourceError.
func (a *Adapter) Start(ctx context.Context) error {
	if !a.state.CompareAndSwap(int32(StateIdle), int32(StateReading)) {
		return fmt.Errorf("producer: start in state %s", a.State())
	}

	a.logger.Debug("Starting frame source %dx%d at %.1f fps", a.params.Width, a.params.Height, a.params.FPS)
	if err := a.source.Start(ctx, a.params); err != nil {
		a.stop.Request()
		a.finish()
		return &pipeline.SourceError{Op: "start", Err: err}
	}
	return nil
}

// ProduceNext pulls the next frame and wraps it into a work item.
//
// A repeated frame number ends the stream without error. A structurally
// invalid frame or a source failure ends it with ResultError. In every
// terminal case stop is requested and the source is released. Once
// stopped, or after stop was requested elsewhere, ProduceNext returns
// ResultEndOfStream without touching the source.
func (a *Adapter) ProduceNext(ctx context.Context) Result {
	if a.State() != StateReading || a.stop.Requested() || ctx.Err() != nil {
		a.finish()
		return Result{Kind: ResultEndOfStream}
	}

	frame, err := a.source.PullFrame(ctx, a.opts.PullTimeout)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			a.finish()
			return Result{Kind: ResultEndOfStream}
		}
		serr := &pipeline.SourceError{Op: "pull", Err: err}
		a.logger.Error("Frame source failed: %v", err)
		return a.fail(serr)
	}

	if a.hasLast && frame.Number == a.last.Load() {
		a.logger.Info("Last frame read and added to queue (frame %d). Closing program after it is processed.", frame.Number)
		a.stop.Request()
		a.finish()
		return Result{Kind: ResultEndOfStream}
	}

	if reason := validate(frame); reason != "" {
		ierr := &pipeline.InvalidFrameError{FrameNumber: frame.Number, Reason: reason}
		a.logger.Error("Empty frame detected on frame %d (%s), closing program.", frame.Number, reason)
		return a.fail(ierr)
	}

	ts := frame.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	item := pipeline.NewWorkItem(frame.Number, ts, toRGBA(frame))

	a.hasLast = true
	a.last.Store(frame.Number)
	a.accepted.Add(1)
	a.logger.Debug("Accepted frame %d", frame.Number)

	return Result{Kind: ResultItem, Item: item}
}

// Close releases the source. Only the first call reaches the source; later
// calls return the same error.
func (a *Adapter) Close() error {
	a.closeOnce.Do(func() {
		a.state.Store(int32(StateStopped))
		a.closeErr = a.source.Close()
		if a.closeErr != nil {
			a.logger.Warn("Failed to close frame source: %v", a.closeErr)
		} else {
			a.logger.Debug("Frame source closed")
		}
	})
	return a.closeErr
}

func (a *Adapter) fail(err error) Result {
	a.stop.Request()
	a.finish()
	return Result{Kind: ResultError, Err: err}
}

func (a *Adapter) finish() {
	a.state.Store(int32(StateStopped))
	_ = a.Close()
}

// validate returns why frame cannot be used, or "" when it can.
func validate(frame ports.RawFrame) string {
	switch {
	case len(frame.Data) == 0:
		return "no pixel data"
	case frame.Width <= 0 || frame.Height <= 0:
		return fmt.Sprintf("size %dx%d", frame.Width, frame.Height)
	case frame.Format.BytesPerPixel() == 0:
		return fmt.Sprintf("unknown pixel format %q", frame.Format)
	}
	if need := frame.Width * frame.Height * frame.Format.BytesPerPixel(); len(frame.Data) < need {
		return fmt.Sprintf("%d bytes, need %d", len(frame.Data), need)
	}
	return ""
}
