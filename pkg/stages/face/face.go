// Package face implements the face keypoint stage.
package face

import (
	"context"
	"fmt"
	"image"

	"github.com/user/posestream/pkg/config"
	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

// Stage locates faces and estimates their keypoints.
type Stage struct {
	face        config.FaceConfig
	parts       config.BodyParts
	modelFolder string
	estimator   ports.RegionEstimator
	logger      ports.Logger
}

// NewStage creates a new face stage.
func NewStage(cfg config.PipelineConfig, estimator ports.RegionEstimator, logger ports.Logger) *Stage {
	return &Stage{
		face:        cfg.Face,
		parts:       cfg.Pose.Model.Parts(),
		modelFolder: cfg.Pose.ModelFolder,
		estimator:   estimator,
		logger:      logger.WithComponent("face"),
	}
}

// Kind implements pipeline.Stage.
func (s *Stage) Kind() pipeline.StageKind {
	return pipeline.KindFace
}

// Init loads the face model.
func (s *Stage) Init(ctx context.Context) error {
	if err := s.estimator.Load(ctx, s.modelFolder); err != nil {
		return pipeline.Fatal(pipeline.KindFace, fmt.Errorf("load model: %w", err))
	}
	return nil
}

// Process implements pipeline.Stage.
func (s *Stage) Process(ctx context.Context, item *pipeline.WorkItem) error {
	rects := s.regions(item)
	item.Annotations.FaceRects = rects
	if len(rects) == 0 {
		return nil
	}

	w, h := s.face.NetResolution.Resolve(item.Input.Bounds().Dx(), item.Input.Bounds().Dy(), 16)
	opts := ports.EstimateOptions{
		NetWidth:        w,
		NetHeight:       h,
		ScaleNumber:     1,
		MaxPeople:       len(rects),
		DetectThreshold: s.face.RenderThreshold,
		GPU:             -1,
	}
	people, err := s.estimator.EstimateRegions(ctx, item.Input, rects, config.FaceParts, opts)
	if err != nil {
		s.logger.Warn("Face estimation failed on frame %d: %v", item.FrameNumber, err)
		return nil
	}
	item.Annotations.Face = people
	return nil
}

// regions returns one rectangle per person when faces come from the body
// estimate, otherwise the whole frame.
func (s *Stage) regions(item *pipeline.WorkItem) []image.Rectangle {
	bounds := item.Input.Bounds()
	if !s.face.Detector.UsesBody() {
		return []image.Rectangle{bounds}
	}
	rects := make([]image.Rectangle, len(item.Annotations.Pose))
	for i, p := range item.Annotations.Pose {
		rects[i] = faceRegion(p, s.parts, bounds)
	}
	return rects
}

// faceRegion derives a face square from head keypoints. The nose anchors
// the centre when present, otherwise the mean of the detected eyes and
// ears. The side grows with the widest head measurement available.
func faceRegion(p ports.Person, parts config.BodyParts, bounds image.Rectangle) image.Rectangle {
	nose, hasNose := pipeline.Part(p, parts.Nose)
	neck, hasNeck := pipeline.Part(p, parts.Neck)

	var cx, cy float64
	var n int
	if hasNose {
		cx, cy, n = nose.X, nose.Y, 1
	} else {
		for _, idx := range []int{parts.REye, parts.LEye, parts.REar, parts.LEar} {
			if kp, ok := pipeline.Part(p, idx); ok {
				cx += kp.X
				cy += kp.Y
				n++
			}
		}
		if n == 0 {
			return image.Rectangle{}
		}
		cx /= float64(n)
		cy /= float64(n)
	}

	var size float64
	if hasNose && hasNeck {
		size = max(size, 2*pipeline.Distance(nose, neck))
	}
	if a, ok := pipeline.Part(p, parts.REye); ok {
		if b, ok := pipeline.Part(p, parts.LEye); ok {
			size = max(size, 3*pipeline.Distance(a, b))
		}
	}
	if a, ok := pipeline.Part(p, parts.REar); ok {
		if b, ok := pipeline.Part(p, parts.LEar); ok {
			size = max(size, 1.5*pipeline.Distance(a, b))
		}
	}
	return pipeline.SquareRegion(cx, cy, size, bounds)
}

var _ pipeline.Stage = (*Stage)(nil)
var _ pipeline.Initializer = (*Stage)(nil)
