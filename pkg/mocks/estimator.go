package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/posestream/pkg/ports"
)

// PoseEstimator is a mock implementation of ports.PoseEstimator.
type PoseEstimator struct {
	LoadFunc     func(ctx context.Context, modelFolder string) error
	EstimateFunc func(ctx context.Context, img image.Image, opts ports.EstimateOptions) (ports.Estimation, error)

	mu    sync.Mutex
	loads int
	calls []ports.EstimateOptions
}

func (m *PoseEstimator) Load(ctx context.Context, modelFolder string) error {
	m.mu.Lock()
	m.loads++
	m.mu.Unlock()
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, modelFolder)
	}
	return nil
}

func (m *PoseEstimator) Estimate(ctx context.Context, img image.Image, opts ports.EstimateOptions) (ports.Estimation, error) {
	m.mu.Lock()
	m.calls = append(m.calls, opts)
	m.mu.Unlock()
	if m.EstimateFunc != nil {
		return m.EstimateFunc(ctx, img, opts)
	}
	return ports.Estimation{}, nil
}

// Loads returns the number of Load calls.
func (m *PoseEstimator) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

// Calls returns the options of every Estimate call.
func (m *PoseEstimator) Calls() []ports.EstimateOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.EstimateOptions(nil), m.calls...)
}

var _ ports.PoseEstimator = (*PoseEstimator)(nil)

// RegionCall records a call to EstimateRegions.
type RegionCall struct {
	Rects    []image.Rectangle
	NumParts int
	Opts     ports.EstimateOptions
}

// RegionEstimator is a mock implementation of ports.RegionEstimator.
type RegionEstimator struct {
	LoadFunc            func(ctx context.Context, modelFolder string) error
	EstimateRegionsFunc func(ctx context.Context, img image.Image, rects []image.Rectangle, numParts int, opts ports.EstimateOptions) ([]ports.Person, error)

	mu    sync.Mutex
	loads int
	calls []RegionCall
}

func (m *RegionEstimator) Load(ctx context.Context, modelFolder string) error {
	m.mu.Lock()
	m.loads++
	m.mu.Unlock()
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, modelFolder)
	}
	return nil
}

func (m *RegionEstimator) EstimateRegions(ctx context.Context, img image.Image, rects []image.Rectangle, numParts int, opts ports.EstimateOptions) ([]ports.Person, error) {
	m.mu.Lock()
	m.calls = append(m.calls, RegionCall{Rects: append([]image.Rectangle(nil), rects...), NumParts: numParts, Opts: opts})
	m.mu.Unlock()
	if m.EstimateRegionsFunc != nil {
		return m.EstimateRegionsFunc(ctx, img, rects, numParts, opts)
	}
	people := make([]ports.Person, len(rects))
	for i, r := range rects {
		kps := make([]ports.Keypoint, numParts)
		if !r.Empty() {
			c := r.Min.Add(r.Max).Div(2)
			for j := range kps {
				kps[j] = ports.Keypoint{X: float64(c.X), Y: float64(c.Y), Score: 0.9}
			}
		}
		people[i] = ports.Person{Keypoints: kps}
	}
	return people, nil
}

// Loads returns the number of Load calls.
func (m *RegionEstimator) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

// Calls returns every EstimateRegions call.
func (m *RegionEstimator) Calls() []RegionCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RegionCall(nil), m.calls...)
}

var _ ports.RegionEstimator = (*RegionEstimator)(nil)
