package ports

import (
	"context"
	"image"
)

// Keypoint is a single detected body part location.
// Score is 0 when the part was not detected.
type Keypoint struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Score float64 `json:"score" yaml:"score"`
}

// Person is the set of keypoints detected for one individual.
type Person struct {
	Keypoints []Keypoint `json:"keypoints" yaml:"keypoints"`
}

// Score returns the mean score of the detected keypoints.
func (p Person) Score() float64 {
	var sum float64
	var n int
	for _, kp := range p.Keypoints {
		if kp.Score > 0 {
			sum += kp.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// HeatmapKind identifies what a heatmap channel represents.
type HeatmapKind int

const (
	HeatmapParts HeatmapKind = iota
	HeatmapBackground
	HeatmapPAFs
)

// String returns the string representation of the heatmap kind.
func (k HeatmapKind) String() string {
	switch k {
	case HeatmapParts:
		return "parts"
	case HeatmapBackground:
		return "background"
	case HeatmapPAFs:
		return "pafs"
	default:
		return "unknown"
	}
}

// Heatmap is one confidence map produced by an estimator.
type Heatmap struct {
	Kind   HeatmapKind
	Part   int
	Width  int
	Height int
	Values []float32 // Row-major, Width*Height entries
}

// EstimateOptions carries the network parameters of one estimation call.
type EstimateOptions struct {
	NetWidth        int // -1 keeps the input aspect ratio
	NetHeight       int
	ScaleNumber     int
	ScaleGap        float64
	Model           string
	MaxPeople       int // -1 for unlimited
	Heatmaps        []HeatmapKind
	DetectThreshold float64
	Upsampling      float64 // Heatmap upsampling ratio, 0 for the estimator default
	GPU             int     // GPU index to run on, -1 for CPU
}

// Estimation is the result of a body estimation call.
type Estimation struct {
	People   []Person
	Heatmaps []Heatmap
}

// PoseEstimator abstracts body keypoint inference.
type PoseEstimator interface {
	// Load prepares the model. A failure here is unrecoverable.
	Load(ctx context.Context, modelFolder string) error

	// Estimate detects people in the image.
	Estimate(ctx context.Context, img image.Image, opts EstimateOptions) (Estimation, error)
}

// RegionEstimator abstracts keypoint inference on image regions, used for
// faces and hands.
type RegionEstimator interface {
	// Load prepares the model. A failure here is unrecoverable.
	Load(ctx context.Context, modelFolder string) error

	// EstimateRegions returns one Person per rectangle with numParts
	// keypoints each, in image coordinates. Empty rectangles produce a
	// Person with zero-scored keypoints.
	EstimateRegions(ctx context.Context, img image.Image, rects []image.Rectangle, numParts int, opts EstimateOptions) ([]Person, error)
}
