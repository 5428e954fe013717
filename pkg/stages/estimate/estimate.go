// Package estimate implements the body keypoint estimation stage.
package estimate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/user/posestream/pkg/config"
	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

// netAlign is the granularity derived network dimensions are rounded to.
const netAlign = 16

// Stage detects people on each frame.
type Stage struct {
	pose      config.PoseConfig
	extra     config.ExtraConfig
	estimator ports.PoseEstimator
	logger    ports.Logger

	minInterval time.Duration
	lastRun     time.Time
	sleep       func(ctx context.Context, d time.Duration)

	nextID    int64
	trackedID int64
	tracking  bool
}

// NewStage creates a new estimate stage.
func NewStage(cfg config.PipelineConfig, estimator ports.PoseEstimator, logger ports.Logger) *Stage {
	s := &Stage{
		pose:      cfg.Pose,
		extra:     cfg.Extra,
		estimator: estimator,
		logger:    logger.WithComponent("estimate"),
		sleep:     sleepCtx,
		trackedID: -1,
	}
	if cfg.Pose.FPSMax > 0 {
		s.minInterval = time.Duration(float64(time.Second) / cfg.Pose.FPSMax)
	}
	return s
}

// Kind implements pipeline.Stage.
func (s *Stage) Kind() pipeline.StageKind {
	return pipeline.KindEstimate
}

// Init loads the model. A failure is fatal to the pipeline.
func (s *Stage) Init(ctx context.Context) error {
	s.logger.Info("Loading %s model from %s", s.pose.Model, s.pose.ModelFolder)
	if err := s.estimator.Load(ctx, s.pose.ModelFolder); err != nil {
		return pipeline.Fatal(pipeline.KindEstimate, fmt.Errorf("load model: %w", err))
	}
	return nil
}

// Process implements pipeline.Stage. Estimation failures on a single
// frame are logged and leave the frame without people.
func (s *Stage) Process(ctx context.Context, item *pipeline.WorkItem) error {
	s.throttle(ctx)

	opts := s.options(item.Input.Bounds().Dx(), item.Input.Bounds().Dy())
	est, err := s.estimator.Estimate(ctx, item.Input, opts)
	if err != nil {
		s.logger.Warn("Estimation failed on frame %d: %v", item.FrameNumber, err)
		return nil
	}

	people := keepBest(est.People, s.pose.MaxPeople)
	item.Annotations.Pose = people
	item.Annotations.Heatmaps = est.Heatmaps
	if s.extra.AssignsIDs() {
		item.Annotations.PoseIDs = s.assignIDs(len(people))
	}

	s.logger.Debug("Frame %d: %d people", item.FrameNumber, len(people))
	return nil
}

func (s *Stage) options(width, height int) ports.EstimateOptions {
	netW, netH := s.pose.NetResolution.Resolve(width, height, netAlign)

	kinds := s.pose.Heatmaps.Kinds()
	if s.pose.PartToShow > 0 && !s.pose.Heatmaps.Parts {
		kinds = append([]ports.HeatmapKind{ports.HeatmapParts}, kinds...)
	}

	threshold := s.pose.RenderThreshold
	if s.pose.MaximizePositives {
		threshold /= 2
	}

	gpu := -1
	if s.pose.NumGPU != 0 {
		gpu = s.pose.NumGPUStart
	}

	return ports.EstimateOptions{
		NetWidth:        netW,
		NetHeight:       netH,
		ScaleNumber:     s.pose.ScaleNumber,
		ScaleGap:        s.pose.ScaleGap,
		Model:           string(s.pose.Model),
		MaxPeople:       s.pose.MaxPeople,
		Heatmaps:        kinds,
		DetectThreshold: threshold,
		Upsampling:      s.pose.UpsamplingRatio,
		GPU:             gpu,
	}
}

// throttle delays the call so the stage never runs faster than fps_max.
func (s *Stage) throttle(ctx context.Context) {
	if s.minInterval <= 0 {
		return
	}
	if !s.lastRun.IsZero() {
		if wait := s.minInterval - time.Since(s.lastRun); wait > 0 {
			s.sleep(ctx, wait)
		}
	}
	s.lastRun = time.Now()
}

// assignIDs numbers people. With tracking the single tracked person keeps
// its identity while it stays in view.
func (s *Stage) assignIDs(n int) []int64 {
	ids := make([]int64, n)
	if s.extra.Tracking >= 0 {
		if n == 0 {
			s.tracking = false
			return ids
		}
		if !s.tracking {
			s.trackedID = s.nextID
			s.nextID++
			s.tracking = true
		}
		for i := range ids {
			ids[i] = s.trackedID
		}
		return ids
	}
	for i := range ids {
		ids[i] = s.nextID
		s.nextID++
	}
	return ids
}

// keepBest returns at most limit people, highest score first. limit < 0
// keeps everyone in the estimator's order.
func keepBest(people []ports.Person, limit int) []ports.Person {
	if limit < 0 || len(people) <= limit {
		return people
	}
	sorted := append([]ports.Person(nil), people...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score() > sorted[j].Score()
	})
	return sorted[:limit]
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

var _ pipeline.Stage = (*Stage)(nil)
var _ pipeline.Initializer = (*Stage)(nil)
