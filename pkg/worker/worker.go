// Package worker runs pipeline stages on goroutines connected by bounded
// queues and owns the cooperative shutdown of a run.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/user/posestream/pkg/config"
	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/producer"
	"github.com/user/posestream/pkg/ports"
)

// State is the lifecycle state of a Pipeline. It only moves forward.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Producer is the input stage of a pipeline. *producer.Adapter implements it.
type Producer interface {
	Start(ctx context.Context) error
	ProduceNext(ctx context.Context) producer.Result
	Close() error
}

// Pipeline schedules the stages of a run.
//
// Stages are grouped as processing (estimate, face, hand, render), output
// and display. In multi-threaded mode each non-empty group runs on its
// own goroutine, and the producer optionally on another, connected by
// channels of the configured capacity. Every channel has one writer that
// closes it when done, so readers drain and exit without extra signalling.
type Pipeline struct {
	logger ports.Logger
	stop   *pipeline.StopSignal

	mu          sync.Mutex
	configured  bool
	cfg         config.PipelineConfig
	stages      []pipeline.Stage
	producer    Producer
	ownThread   bool
	profileEach int

	state     atomic.Int32
	produced  atomic.Uint64
	processed atomic.Uint64
	dropped   atomic.Uint64

	errOnce  sync.Once
	firstErr error
}

// New creates an idle Pipeline.
func New(logger ports.Logger) *Pipeline {
	return &Pipeline{
		logger:    logger.WithComponent("worker"),
		stop:      pipeline.NewStopSignal(),
		ownThread: true,
	}
}

// StopSignal returns the signal shared by every stage and the producer.
func (p *Pipeline) StopSignal() *pipeline.StopSignal {
	return p.stop
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Produced returns the number of items the producer handed to the pipeline.
func (p *Pipeline) Produced() uint64 {
	return p.produced.Load()
}

// Processed returns the number of items that went through every stage.
func (p *Pipeline) Processed() uint64 {
	return p.processed.Load()
}

// Dropped returns the number of items discarded after a stage failed.
func (p *Pipeline) Dropped() uint64 {
	return p.dropped.Load()
}

// Configure builds the stages described by cfg from the collaborators.
// It must be called exactly once, before Exec.
func (p *Pipeline) Configure(cfg config.PipelineConfig, c Collaborators) error {
	stages, err := BuildStages(cfg, c, p.logger)
	if err != nil {
		return err
	}
	return p.ConfigureStages(cfg, stages)
}

// ConfigureStages installs prebuilt stages. Stages are stably ordered by
// kind.
func (p *Pipeline) ConfigureStages(cfg config.PipelineConfig, stages []pipeline.Stage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.configured {
		return errors.New("worker: pipeline already configured")
	}
	if p.State() != StateIdle {
		return fmt.Errorf("worker: configure in state %s", p.State())
	}

	p.cfg = cfg
	p.stages = sortStages(stages)
	p.profileEach = cfg.Logging.ProfileSpeed
	p.configured = true

	for _, s := range p.stages {
		p.logger.Debug("Configured %s stage (%s group)", s.Kind(), s.Kind().Group())
	}
	return nil
}

// SetProducer installs the input stage. When runOnOwnThread is false the
// producer is driven by the goroutine of the first stage group instead of
// its own, so there is no input queue.
func (p *Pipeline) SetProducer(prod Producer, runOnOwnThread bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.producer = prod
	p.ownThread = runOnOwnThread
}

// RequestStop asks every stage to stop taking new work. Items already
// acquired still flow to output. It is safe to call any number of times
// from any goroutine.
func (p *Pipeline) RequestStop() {
	if p.stop.Request() {
		p.logger.Info("Stop requested, draining pipeline")
	}
	p.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
}

// Exec runs the pipeline until the producer ends and every queue is
// drained. It returns nil on a graceful end (stalled or invalid frame,
// external stop, ctx cancellation), the *pipeline.SourceError of a failed
// source, or the first *pipeline.StageFatalError.
func (p *Pipeline) Exec(ctx context.Context) error {
	p.mu.Lock()
	prod, stages, cfg, ownThread := p.producer, p.stages, p.cfg, p.ownThread
	configured := p.configured
	p.mu.Unlock()

	if !configured {
		return errors.New("worker: exec before configure")
	}
	if prod == nil {
		return errors.New("worker: exec without producer")
	}
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return fmt.Errorf("worker: exec in state %s", p.State())
	}
	defer p.state.Store(int32(StateStopped))

	// Stage work is never cancelled mid-item; only acquisition is.
	stageCtx := context.WithoutCancel(ctx)
	acquireCtx, cancelAcquire := context.WithCancel(ctx)
	defer cancelAcquire()

	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			p.RequestStop()
			cancelAcquire()
		case <-p.stop.Done():
			cancelAcquire()
		case <-watchDone:
		}
	}()

	p.logger.Info("Starting pipeline")
	if err := prod.Start(ctx); err != nil {
		p.logger.Error("Failed to start frame source: %s", err)
		p.RequestStop()
		p.closeStages(stages)
		return err
	}

	if err := p.initStages(stageCtx, stages); err != nil {
		p.RequestStop()
		_ = prod.Close()
		p.closeStages(stages)
		return err
	}

	in := &input{p: p, prod: prod, ctx: acquireCtx}
	if cfg.Execution.DisableMultiThread {
		p.logger.Debug("Running all stages on the calling goroutine")
		p.runSequential(stageCtx, in, stages)
	} else {
		p.runConcurrent(stageCtx, in, stages, ownThread, cfg.Execution.QueueSize)
	}

	p.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
	_ = prod.Close()
	p.closeStages(stages)

	if p.firstErr != nil {
		p.logger.Error("Pipeline failed: %s", p.firstErr)
		return p.firstErr
	}
	p.logger.Info("Pipeline completed: %d frames processed", p.Processed())
	return nil
}

// fail records err as the result of the run if it is the first failure,
// and requests stop.
func (p *Pipeline) fail(err error) {
	p.errOnce.Do(func() {
		p.firstErr = err
	})
	p.RequestStop()
}

func (p *Pipeline) initStages(ctx context.Context, stages []pipeline.Stage) error {
	for _, s := range stages {
		init, ok := s.(pipeline.Initializer)
		if !ok {
			continue
		}
		if err := init.Init(ctx); err != nil {
			ferr := asFatal(s.Kind(), err)
			p.fail(ferr)
			p.logger.Error("Failed to initialise %s stage: %s", s.Kind(), err)
			return ferr
		}
	}
	return nil
}

func (p *Pipeline) closeStages(stages []pipeline.Stage) {
	for i := len(stages) - 1; i >= 0; i-- {
		c, ok := stages[i].(pipeline.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			p.logger.Warn("Failed to close %s stage: %s", stages[i].Kind(), err)
		}
	}
}

// asFatal wraps err as a StageFatalError unless it already is one.
func asFatal(kind pipeline.StageKind, err error) error {
	var fatal *pipeline.StageFatalError
	if errors.As(err, &fatal) {
		return err
	}
	return pipeline.Fatal(kind, err)
}

// input wraps the producer for the goroutine that drives it.
type input struct {
	p    *Pipeline
	prod Producer
	ctx  context.Context
	done bool
}

// next returns the next item, or false once the stream has ended.
func (in *input) next() (*pipeline.WorkItem, bool) {
	if in.done {
		return nil, false
	}
	res := in.prod.ProduceNext(in.ctx)
	switch res.Kind {
	case producer.ResultItem:
		in.p.produced.Add(1)
		return res.Item, true
	case producer.ResultError:
		if !pipeline.IsCleanStop(res.Err) {
			in.p.fail(res.Err)
		}
	}
	in.done = true
	in.p.RequestStop()
	return nil, false
}
