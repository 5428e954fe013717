package face

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/user/posestream/pkg/adapters/logger"
	"github.com/user/posestream/pkg/config"
	"github.com/user/posestream/pkg/mocks"
	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

func buildConfig(t *testing.T, fn func(*config.Options)) config.PipelineConfig {
	t.Helper()
	opts := config.Defaults()
	opts.Face.Enabled = true
	if fn != nil {
		fn(&opts)
	}
	cfg, err := config.Build(opts)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

// body25 returns a BODY_25 person with the given parts detected.
func body25(parts map[int][2]float64) ports.Person {
	kps := make([]ports.Keypoint, 25)
	for idx, xy := range parts {
		kps[idx] = ports.Keypoint{X: xy[0], Y: xy[1], Score: 0.8}
	}
	return ports.Person{Keypoints: kps}
}

func newItem(people ...ports.Person) *pipeline.WorkItem {
	item := pipeline.NewWorkItem(1, time.Now(), image.NewRGBA(image.Rect(0, 0, 640, 480)))
	item.Annotations.Pose = people
	return item
}

func TestFaceRegion(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)
	parts := config.ModelBody25.Parts()

	tests := []struct {
		name   string
		person ports.Person
		want   image.Rectangle
	}{
		{
			name:   "nose and neck",
			person: body25(map[int][2]float64{0: {100, 100}, 1: {100, 140}}),
			want:   image.Rect(60, 60, 140, 140),
		},
		{
			name:   "eyes wider than neck",
			person: body25(map[int][2]float64{0: {100, 100}, 1: {100, 110}, 15: {80, 95}, 16: {120, 95}}),
			want:   image.Rect(40, 40, 160, 160),
		},
		{
			name:   "no head",
			person: body25(map[int][2]float64{4: {10, 10}}),
			want:   image.Rectangle{},
		},
		{
			name:   "clipped",
			person: body25(map[int][2]float64{0: {10, 10}, 1: {10, 50}}),
			want:   image.Rect(0, 0, 50, 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := faceRegion(tt.person, parts, bounds)
			if got != tt.want {
				t.Errorf("faceRegion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStage_Process(t *testing.T) {
	est := &mocks.RegionEstimator{}
	s := NewStage(buildConfig(t, nil), est, logger.NewNoop())

	item := newItem(
		body25(map[int][2]float64{0: {100, 100}, 1: {100, 140}}),
		body25(map[int][2]float64{4: {10, 10}}),
	)
	if err := s.Process(context.Background(), item); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(item.Annotations.FaceRects) != 2 {
		t.Fatalf("expected 2 face rects, got %d", len(item.Annotations.FaceRects))
	}
	if len(item.Annotations.Face) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(item.Annotations.Face))
	}
	if got := item.Annotations.Face[0].Keypoints[0]; got.X != 100 || got.Y != 100 {
		t.Errorf("expected face keypoints at region centre, got %+v", got)
	}
	if item.Annotations.Face[1].Score() != 0 {
		t.Error("expected an undetected face for the headless person")
	}

	calls := est.Calls()
	if len(calls) != 1 || calls[0].NumParts != config.FaceParts {
		t.Fatalf("unexpected calls %+v", calls)
	}
	if calls[0].Opts.NetWidth != 368 || calls[0].Opts.NetHeight != 368 {
		t.Errorf("expected 368x368 net input, got %dx%d", calls[0].Opts.NetWidth, calls[0].Opts.NetHeight)
	}
}

func TestStage_NoPeople(t *testing.T) {
	est := &mocks.RegionEstimator{}
	s := NewStage(buildConfig(t, nil), est, logger.NewNoop())

	item := newItem()
	if err := s.Process(context.Background(), item); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(est.Calls()) != 0 {
		t.Error("estimator must not be called without regions")
	}
}

func TestStage_ProvidedDetector(t *testing.T) {
	est := &mocks.RegionEstimator{}
	cfg := buildConfig(t, func(o *config.Options) {
		o.Pose.Body = 0
		o.Face.Detector = int(config.DetectorProvided)
	})
	s := NewStage(cfg, est, logger.NewNoop())

	item := newItem()
	if err := s.Process(context.Background(), item); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	want := []image.Rectangle{image.Rect(0, 0, 640, 480)}
	if len(item.Annotations.FaceRects) != 1 || item.Annotations.FaceRects[0] != want[0] {
		t.Errorf("expected whole-frame region, got %v", item.Annotations.FaceRects)
	}
	if len(item.Annotations.Face) != 1 {
		t.Errorf("expected one face, got %d", len(item.Annotations.Face))
	}
}

func TestStage_EstimateError(t *testing.T) {
	est := &mocks.RegionEstimator{
		EstimateRegionsFunc: func(ctx context.Context, img image.Image, rects []image.Rectangle, numParts int, opts ports.EstimateOptions) ([]ports.Person, error) {
			return nil, errors.New("boom")
		},
	}
	log := mocks.NewLogger()
	s := NewStage(buildConfig(t, nil), est, log)

	item := newItem(body25(map[int][2]float64{0: {100, 100}, 1: {100, 140}}))
	if err := s.Process(context.Background(), item); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if item.Annotations.Face != nil {
		t.Error("expected no faces")
	}
	if log.Count(ports.LevelWarn, "Face estimation failed") != 1 {
		t.Error("expected a warning")
	}
}

func TestStage_InitFailure(t *testing.T) {
	est := &mocks.RegionEstimator{
		LoadFunc: func(ctx context.Context, folder string) error { return errors.New("missing") },
	}
	s := NewStage(buildConfig(t, nil), est, logger.NewNoop())

	var fatal *pipeline.StageFatalError
	if err := s.Init(context.Background()); !errors.As(err, &fatal) {
		t.Fatalf("expected StageFatalError, got %v", err)
	}
}
