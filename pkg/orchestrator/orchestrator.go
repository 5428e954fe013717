// Package orchestrator wires the adapters of a run together and drives the
// worker pipeline from start to drain.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/user/posestream/pkg/adapters/brightspot"
	"github.com/user/posestream/pkg/adapters/dirsource"
	"github.com/user/posestream/pkg/adapters/filesink"
	"github.com/user/posestream/pkg/adapters/mp4writer"
	"github.com/user/posestream/pkg/adapters/nulldisplay"
	"github.com/user/posestream/pkg/adapters/patternsource"
	"github.com/user/posestream/pkg/adapters/udpsink"
	"github.com/user/posestream/pkg/adapters/wsdisplay"
	"github.com/user/posestream/pkg/config"
	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
	"github.com/user/posestream/pkg/producer"
	"github.com/user/posestream/pkg/worker"
)

// Stop reasons reported in RunResult.
const (
	ReasonEndOfStream  = "end of stream"
	ReasonInterrupted  = "interrupted"
	ReasonSourceFailed = "source failure"
	ReasonStageFailed  = "stage failure"
	ReasonStartFailed  = "start failure"
)

// Dependencies are the collaborators of a run. FileSystem, Renderer and
// Logger are required; every other field falls back to a built-in adapter
// chosen from the configuration when nil.
type Dependencies struct {
	FileSystem ports.FileSystem
	Renderer   ports.Renderer
	Logger     ports.Logger

	Source        ports.FrameSource
	PoseEstimator ports.PoseEstimator
	FaceEstimator ports.RegionEstimator
	HandEstimator ports.RegionEstimator
	VideoEncoder  ports.VideoEncoder
	Datagram      ports.DatagramSender
	Display       ports.Display

	Progress    io.Writer
	ProgressTTY bool
}

// RunResult contains the outcome of a run for summary generation.
type RunResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	StopReason string

	Accepted  uint64
	Processed uint64
	Dropped   uint64
	LastFrame uint64
}

// Orchestrator runs one pipeline.
type Orchestrator struct {
	deps Dependencies

	mu            sync.Mutex
	pipe          *worker.Pipeline
	stopRequested bool
}

// New creates a new Orchestrator.
func New(deps Dependencies) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// RequestStop asks a running pipeline to drain and end. A request made
// before the pipeline exists is applied as soon as it does.
func (o *Orchestrator) RequestStop() {
	o.mu.Lock()
	o.stopRequested = true
	pipe := o.pipe
	o.mu.Unlock()

	if pipe != nil {
		pipe.RequestStop()
	}
}

// Run executes the pipeline described by cfg and blocks until it has
// drained. The returned error is nil on a graceful end.
func (o *Orchestrator) Run(ctx context.Context, cfg config.PipelineConfig) (RunResult, error) {
	logger := o.deps.Logger
	result := RunResult{StartedAt: time.Now()}
	finish := func(reason string) {
		result.FinishedAt = time.Now()
		result.StopReason = reason
	}

	source, err := o.source(cfg.Producer)
	if err != nil {
		finish(ReasonStartFailed)
		return result, err
	}

	collab, err := o.collaborators(cfg)
	if err != nil {
		_ = source.Close()
		finish(ReasonStartFailed)
		return result, err
	}

	pipe := worker.New(logger)
	if err := pipe.Configure(cfg, collab); err != nil {
		_ = source.Close()
		if collab.Datagram != nil && o.deps.Datagram == nil {
			_ = collab.Datagram.Close()
		}
		finish(ReasonStartFailed)
		return result, fmt.Errorf("configure pipeline: %w", err)
	}

	prod := producer.New(source, cfg.Producer.StreamParams(), pipe.StopSignal(), logger, producer.Options{
		PullTimeout: cfg.Producer.PullTimeout,
	})
	pipe.SetProducer(prod, cfg.Execution.ProducerOwnThread)

	o.mu.Lock()
	o.pipe = pipe
	stop := o.stopRequested
	o.mu.Unlock()
	if stop {
		pipe.RequestStop()
	}

	logger.Info("Reading %s frames at %dx%d", cfg.Producer.Source, cfg.Producer.Width, cfg.Producer.Height)
	execErr := pipe.Exec(ctx)

	stats := prod.Stats()
	result.Accepted = stats.Accepted
	result.LastFrame = stats.LastFrame
	result.Processed = pipe.Processed()
	result.Dropped = pipe.Dropped()
	finish(o.reason(ctx, execErr))

	return result, execErr
}

func (o *Orchestrator) reason(ctx context.Context, err error) string {
	var serr *pipeline.SourceError
	var ferr *pipeline.StageFatalError
	switch {
	case errors.As(err, &serr):
		if serr.Op == "start" {
			return ReasonStartFailed
		}
		return ReasonSourceFailed
	case errors.As(err, &ferr):
		return ReasonStageFailed
	case err != nil:
		return ReasonStartFailed
	}

	o.mu.Lock()
	stopped := o.stopRequested
	o.mu.Unlock()
	if stopped || ctx.Err() != nil {
		return ReasonInterrupted
	}
	return ReasonEndOfStream
}

func (o *Orchestrator) source(c config.ProducerConfig) (ports.FrameSource, error) {
	if o.deps.Source != nil {
		return o.deps.Source, nil
	}
	switch c.Source {
	case config.SourceDirectory:
		return dirsource.New(o.deps.FileSystem, c.ImageDir), nil
	case config.SourcePattern:
		return patternsource.New(c.PatternFrames), nil
	default:
		return nil, fmt.Errorf("unknown frame source %q", c.Source)
	}
}

// collaborators fills in the adapters the configuration needs. Stages
// close what they are given.
func (o *Orchestrator) collaborators(cfg config.PipelineConfig) (worker.Collaborators, error) {
	d := o.deps
	c := worker.Collaborators{
		PoseEstimator: d.PoseEstimator,
		FaceEstimator: d.FaceEstimator,
		HandEstimator: d.HandEstimator,
		Renderer:      d.Renderer,
		FileSystem:    d.FileSystem,
		NewSink: func(dir string) ports.ArtifactSink {
			return filesink.New(dir, d.FileSystem, d.Renderer)
		},
		VideoEncoder: d.VideoEncoder,
		Datagram:     d.Datagram,
		Display:      d.Display,
		Progress:     d.Progress,
		ProgressTTY:  d.ProgressTTY,
	}

	var demo *brightspot.Estimator
	estimator := func() *brightspot.Estimator {
		if demo == nil {
			demo = brightspot.New()
		}
		return demo
	}
	if c.PoseEstimator == nil && cfg.Pose.Enabled {
		c.PoseEstimator = estimator()
	}
	if c.FaceEstimator == nil && cfg.Face.Enabled {
		c.FaceEstimator = estimator()
	}
	if c.HandEstimator == nil && cfg.Hand.Enabled {
		c.HandEstimator = estimator()
	}

	if c.VideoEncoder == nil && cfg.Output.VideoPath != "" {
		c.VideoEncoder = mp4writer.New()
	}

	if c.Datagram == nil && cfg.Output.UDPHost != "" {
		sender, err := udpsink.Dial(cfg.Output.UDPAddr())
		if err != nil {
			return c, fmt.Errorf("open UDP output: %w", err)
		}
		c.Datagram = sender
	}

	if c.Display == nil && cfg.Display.Mode != config.DisplayNone {
		if cfg.Display.Addr != "" {
			c.Display = wsdisplay.New(cfg.Display.Addr, d.Renderer, d.Logger, wsdisplay.Options{})
		} else {
			c.Display = nulldisplay.New()
		}
	}

	return c, nil
}
