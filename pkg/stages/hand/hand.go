// Package hand implements the hand keypoint stage.
package hand

import (
	"context"
	"fmt"
	"image"

	"github.com/user/posestream/pkg/config"
	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

// Sides of a hand pair.
const (
	Left  = 0
	Right = 1
)

// Stage locates hands and estimates their keypoints.
type Stage struct {
	hand        config.HandConfig
	parts       config.BodyParts
	modelFolder string
	estimator   ports.RegionEstimator
	logger      ports.Logger

	// last holds the previous frame's regions for body_with_tracking.
	last [][2]image.Rectangle
}

// NewStage creates a new hand stage.
func NewStage(cfg config.PipelineConfig, estimator ports.RegionEstimator, logger ports.Logger) *Stage {
	return &Stage{
		hand:        cfg.Hand,
		parts:       cfg.Pose.Model.Parts(),
		modelFolder: cfg.Pose.ModelFolder,
		estimator:   estimator,
		logger:      logger.WithComponent("hand"),
	}
}

// Kind implements pipeline.Stage.
func (s *Stage) Kind() pipeline.StageKind {
	return pipeline.KindHand
}

// Init loads the hand model.
func (s *Stage) Init(ctx context.Context) error {
	if err := s.estimator.Load(ctx, s.modelFolder); err != nil {
		return pipeline.Fatal(pipeline.KindHand, fmt.Errorf("load model: %w", err))
	}
	return nil
}

// Process implements pipeline.Stage.
func (s *Stage) Process(ctx context.Context, item *pipeline.WorkItem) error {
	pairs := s.regions(item)
	item.Annotations.HandRects = pairs
	if len(pairs) == 0 {
		return nil
	}

	rects := make([]image.Rectangle, 0, len(pairs)*2)
	for _, pair := range pairs {
		rects = append(rects, pair[Left], pair[Right])
	}

	w, h := s.hand.NetResolution.Resolve(item.Input.Bounds().Dx(), item.Input.Bounds().Dy(), 16)
	opts := ports.EstimateOptions{
		NetWidth:        w,
		NetHeight:       h,
		ScaleNumber:     s.hand.ScaleNumber,
		ScaleGap:        s.hand.ScaleRange,
		MaxPeople:       len(rects),
		DetectThreshold: s.hand.RenderThreshold,
		GPU:             -1,
	}
	people, err := s.estimator.EstimateRegions(ctx, item.Input, rects, config.HandParts, opts)
	if err != nil {
		s.logger.Warn("Hand estimation failed on frame %d: %v", item.FrameNumber, err)
		return nil
	}
	if len(people) != len(rects) {
		s.logger.Warn("Hand estimator returned %d results for %d regions on frame %d", len(people), len(rects), item.FrameNumber)
		return nil
	}

	hands := make([][2]ports.Person, len(pairs))
	for i := range hands {
		hands[i] = [2]ports.Person{people[2*i], people[2*i+1]}
	}
	item.Annotations.Hands = hands
	return nil
}

// regions returns the left and right hand rectangles of every person.
func (s *Stage) regions(item *pipeline.WorkItem) [][2]image.Rectangle {
	bounds := item.Input.Bounds()
	if !s.hand.Detector.UsesBody() {
		return [][2]image.Rectangle{{bounds, bounds}}
	}

	pairs := make([][2]image.Rectangle, len(item.Annotations.Pose))
	for i, p := range item.Annotations.Pose {
		pairs[i][Left] = handRegion(p, s.parts.LWrist, s.parts.LElbow, s.parts.LShoulder, bounds)
		pairs[i][Right] = handRegion(p, s.parts.RWrist, s.parts.RElbow, s.parts.RShoulder, bounds)
	}

	if s.hand.Detector == config.DetectorBodyWithTracking {
		for i := range pairs {
			if i >= len(s.last) {
				break
			}
			for side := range pairs[i] {
				if pairs[i][side].Empty() {
					pairs[i][side] = s.last[i][side]
				}
			}
		}
		s.last = pairs
	}
	return pairs
}

// handRegion extrapolates the hand from the forearm: the centre sits a
// third of the forearm past the wrist, the side scales with the longer
// of forearm and upper arm.
func handRegion(p ports.Person, wristIdx, elbowIdx, shoulderIdx int, bounds image.Rectangle) image.Rectangle {
	wrist, ok := pipeline.Part(p, wristIdx)
	if !ok {
		return image.Rectangle{}
	}
	elbow, ok := pipeline.Part(p, elbowIdx)
	if !ok {
		return image.Rectangle{}
	}

	cx := wrist.X + (wrist.X-elbow.X)/3
	cy := wrist.Y + (wrist.Y-elbow.Y)/3
	size := pipeline.Distance(wrist, elbow)
	if shoulder, ok := pipeline.Part(p, shoulderIdx); ok {
		size = max(size, 0.9*pipeline.Distance(elbow, shoulder))
	}
	return pipeline.SquareRegion(cx, cy, 1.5*size, bounds)
}

var _ pipeline.Stage = (*Stage)(nil)
var _ pipeline.Initializer = (*Stage)(nil)
