package brightspot

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/user/posestream/pkg/ports"
)

func scene(w, h int, spots ...[3]int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 20
		if i%4 == 3 {
			img.Pix[i] = 255
		}
	}
	for _, s := range spots {
		cx, cy, r := s[0], s[1], s[2]
		for y := cy - r; y <= cy+r; y++ {
			for x := cx - r; x <= cx+r; x++ {
				if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
					img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
				}
			}
		}
	}
	return img
}

func loaded(t *testing.T) *Estimator {
	t.Helper()
	e := New()
	if err := e.Load(context.Background(), "models/"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return e
}

func TestEstimate_FindsSpots(t *testing.T) {
	e := loaded(t)
	img := scene(200, 200, [3]int{50, 40, 6}, [3]int{150, 40, 9})

	est, err := e.Estimate(context.Background(), img, ports.EstimateOptions{Model: "BODY_25"})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if len(est.People) != 2 {
		t.Fatalf("expected 2 people, got %d", len(est.People))
	}

	// Larger spot first; its nose sits on the spot centre.
	nose := est.People[0].Keypoints[0]
	if math.Abs(nose.X-150) > 1.5 || math.Abs(nose.Y-40) > 1.5 {
		t.Errorf("expected nose near (150,40), got (%.1f,%.1f)", nose.X, nose.Y)
	}
	if nose.Score < 0.99 {
		t.Errorf("expected full score on a white spot, got %v", nose.Score)
	}
	if n := len(est.People[0].Keypoints); n != 25 {
		t.Errorf("expected 25 keypoints, got %d", n)
	}
	neck := est.People[0].Keypoints[1]
	if neck.Y <= nose.Y {
		t.Errorf("expected neck below nose, got nose %.1f neck %.1f", nose.Y, neck.Y)
	}
}

func TestEstimate_ModelLayouts(t *testing.T) {
	e := loaded(t)
	img := scene(100, 100, [3]int{50, 20, 4})

	for model, want := range map[string]int{"BODY_25": 25, "COCO": 18, "MPI": 15, "MPI_4_layers": 15} {
		est, err := e.Estimate(context.Background(), img, ports.EstimateOptions{Model: model})
		if err != nil {
			t.Fatalf("%s: Estimate failed: %v", model, err)
		}
		if len(est.People) != 1 || len(est.People[0].Keypoints) != want {
			t.Errorf("%s: expected one person with %d keypoints", model, want)
		}
	}
}

func TestEstimate_OffFramePartsAreMissing(t *testing.T) {
	e := loaded(t)
	// Spot near the bottom edge: the legs fall outside the frame.
	img := scene(100, 100, [3]int{50, 90, 4})

	est, _ := e.Estimate(context.Background(), img, ports.EstimateOptions{Model: "BODY_25"})
	if len(est.People) != 1 {
		t.Fatalf("expected 1 person, got %d", len(est.People))
	}
	if est.People[0].Keypoints[11].Score != 0 {
		t.Errorf("expected right ankle outside the frame to be missing")
	}
	if est.People[0].Keypoints[0].Score == 0 {
		t.Errorf("expected nose to be detected")
	}
}

func TestEstimate_Empty(t *testing.T) {
	e := loaded(t)
	est, err := e.Estimate(context.Background(), scene(64, 64), ports.EstimateOptions{})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if len(est.People) != 0 || len(est.Heatmaps) != 0 {
		t.Errorf("expected nothing, got %d people and %d heatmaps", len(est.People), len(est.Heatmaps))
	}
}

func TestEstimate_Heatmaps(t *testing.T) {
	e := loaded(t)
	img := scene(160, 160, [3]int{80, 40, 6})

	est, err := e.Estimate(context.Background(), img, ports.EstimateOptions{
		Model:     "COCO",
		NetWidth:  160,
		NetHeight: 160,
		Heatmaps:  []ports.HeatmapKind{ports.HeatmapParts, ports.HeatmapBackground},
	})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if len(est.Heatmaps) != 19 {
		t.Fatalf("expected 18 part maps and a background map, got %d", len(est.Heatmaps))
	}

	nose := est.Heatmaps[0]
	if nose.Width != 20 || nose.Height != 20 {
		t.Fatalf("expected 20x20 maps, got %dx%d", nose.Width, nose.Height)
	}
	if v := nose.Values[5*20+10]; v < 0.9 {
		t.Errorf("expected a peak at the nose, got %v", v)
	}
	bkg := est.Heatmaps[18]
	if bkg.Kind != ports.HeatmapBackground {
		t.Fatalf("expected background last, got %v", bkg.Kind)
	}
	if v := bkg.Values[0]; v < 0.99 {
		t.Errorf("expected background ~1 away from people, got %v", v)
	}
}

func TestEstimateRegions(t *testing.T) {
	e := loaded(t)
	img := scene(100, 100, [3]int{50, 50, 10})
	rects := []image.Rectangle{image.Rect(45, 45, 55, 55), {}, image.Rect(0, 0, 10, 10)}

	people, err := e.EstimateRegions(context.Background(), img, rects, 21, ports.EstimateOptions{DetectThreshold: 0.2})
	if err != nil {
		t.Fatalf("EstimateRegions failed: %v", err)
	}
	if len(people) != 3 {
		t.Fatalf("expected 3 results, got %d", len(people))
	}
	for i, p := range people {
		if len(p.Keypoints) != 21 {
			t.Errorf("result %d: expected 21 keypoints, got %d", i, len(p.Keypoints))
		}
	}
	if people[0].Keypoints[0].Score < 0.9 {
		t.Errorf("expected a bright region to score high, got %v", people[0].Keypoints[0].Score)
	}
	for _, kp := range people[0].Keypoints {
		if kp.X < 45 || kp.X > 55 || kp.Y < 45 || kp.Y > 55 {
			t.Fatalf("keypoint (%v,%v) outside its region", kp.X, kp.Y)
		}
	}
	if people[1].Keypoints[0].Score != 0 {
		t.Errorf("expected empty region to produce missing keypoints")
	}
}

func TestEstimator_RequiresLoad(t *testing.T) {
	e := New()
	if _, err := e.Estimate(context.Background(), scene(8, 8), ports.EstimateOptions{}); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
	if _, err := e.EstimateRegions(context.Background(), scene(8, 8), nil, 70, ports.EstimateOptions{}); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Load(ctx, ""); err == nil {
		t.Error("expected Load to fail on a cancelled context")
	}
}
