package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/user/posestream/pkg/pipeline"
)

// group is a run of stages executed back to back on one goroutine.
type group struct {
	p      *Pipeline
	name   string
	stages []pipeline.Stage
	prof   *profiler
	failed bool
}

func newGroup(p *Pipeline, name string, stages []pipeline.Stage) *group {
	return &group{
		p:      p,
		name:   name,
		stages: stages,
		prof:   newProfiler(p.logger.WithComponent(name), p.profileEach),
	}
}

// handle runs every stage of the group on item. It returns false when the
// item must not travel further: after a stage failed the group keeps
// consuming its input but drops everything.
func (g *group) handle(ctx context.Context, item *pipeline.WorkItem) bool {
	if g.failed {
		g.p.dropped.Add(1)
		return false
	}
	for _, s := range g.stages {
		start := time.Now()
		err := s.Process(ctx, item)
		g.prof.record(s.Kind(), time.Since(start))
		if err != nil {
			g.failed = true
			g.p.logger.Error("Stage %s failed on frame %d: %s", s.Kind(), item.FrameNumber, err)
			g.p.fail(asFatal(s.Kind(), err))
			g.p.dropped.Add(1)
			return false
		}
	}
	g.prof.frameDone()
	return true
}

// runSequential executes every stage on the calling goroutine, one item
// at a time.
func (p *Pipeline) runSequential(ctx context.Context, in *input, stages []pipeline.Stage) {
	g := newGroup(p, "sequential", stages)
	for {
		item, ok := in.next()
		if !ok {
			return
		}
		if g.handle(ctx, item) {
			p.processed.Add(1)
		}
	}
}

// runConcurrent starts one goroutine per non-empty stage group, plus one
// for the producer when ownThread is set, and waits for all of them.
func (p *Pipeline) runConcurrent(ctx context.Context, in *input, stages []pipeline.Stage, ownThread bool, queueSize int) {
	if queueSize < 1 {
		queueSize = 1
	}

	groups := splitGroups(p, stages)
	var wg sync.WaitGroup
	var src <-chan *pipeline.WorkItem

	if ownThread {
		q := make(chan *pipeline.WorkItem, queueSize)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(q)
			for {
				item, ok := in.next()
				if !ok {
					return
				}
				q <- item
			}
		}()
		src = q
	}

	for i, g := range groups {
		var out chan *pipeline.WorkItem
		if i < len(groups)-1 {
			out = make(chan *pipeline.WorkItem, queueSize)
		}
		pull := i == 0 && !ownThread

		wg.Add(1)
		go func(g *group, src <-chan *pipeline.WorkItem, out chan *pipeline.WorkItem, pull bool) {
			defer wg.Done()
			if out != nil {
				defer close(out)
			}
			for {
				var item *pipeline.WorkItem
				var ok bool
				if pull {
					item, ok = in.next()
				} else {
					item, ok = <-src
				}
				if !ok {
					return
				}
				if !g.handle(ctx, item) {
					continue
				}
				if out != nil {
					out <- item
				} else {
					p.processed.Add(1)
				}
			}
		}(g, src, out, pull)

		if out != nil {
			src = out
		}
	}

	wg.Wait()
}

// splitGroups partitions ordered stages by scheduling group, skipping empty
// groups. With no stages at all a single empty group consumes the items.
func splitGroups(p *Pipeline, stages []pipeline.Stage) []*group {
	byGroup := map[pipeline.Group][]pipeline.Stage{}
	for _, s := range stages {
		g := s.Kind().Group()
		byGroup[g] = append(byGroup[g], s)
	}

	var groups []*group
	for _, g := range []pipeline.Group{pipeline.GroupProcessing, pipeline.GroupOutput, pipeline.GroupDisplay} {
		if len(byGroup[g]) > 0 {
			groups = append(groups, newGroup(p, g.String(), byGroup[g]))
		}
	}
	if len(groups) == 0 {
		groups = append(groups, newGroup(p, "sink", nil))
	}
	return groups
}

// sortStages orders stages by kind, keeping the given order among equal kinds.
func sortStages(stages []pipeline.Stage) []pipeline.Stage {
	out := append([]pipeline.Stage(nil), stages...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind() < out[j].Kind()
	})
	return out
}
