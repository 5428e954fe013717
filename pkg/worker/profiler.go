package worker

import (
	"time"

	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

// profiler accumulates per-stage processing time of one group and logs
// the averages every `every` frames. It is owned by a single goroutine.
type profiler struct {
	logger ports.Logger
	every  int
	frames int
	order  []pipeline.StageKind
	totals map[pipeline.StageKind]time.Duration
}

func newProfiler(logger ports.Logger, every int) *profiler {
	return &profiler{
		logger: logger,
		every:  every,
		totals: make(map[pipeline.StageKind]time.Duration),
	}
}

func (p *profiler) record(kind pipeline.StageKind, d time.Duration) {
	if p.every <= 0 {
		return
	}
	if _, ok := p.totals[kind]; !ok {
		p.order = append(p.order, kind)
	}
	p.totals[kind] += d
}

func (p *profiler) frameDone() {
	if p.every <= 0 {
		return
	}
	p.frames++
	if p.frames < p.every {
		return
	}
	for _, kind := range p.order {
		avg := p.totals[kind] / time.Duration(p.frames)
		p.logger.Debug("Profile %s: %.3f ms/frame over %d frames", kind, float64(avg)/float64(time.Millisecond), p.frames)
		p.totals[kind] = 0
	}
	p.frames = 0
}
