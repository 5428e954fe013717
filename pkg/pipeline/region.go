package pipeline

import (
	"image"
	"math"

	"github.com/user/posestream/pkg/ports"
)

// MinRegionScore is the keypoint score below which a body part is
// ignored when locating face and hand regions.
const MinRegionScore = 0.05

// Part returns the keypoint at idx when it exists and was detected.
func Part(p ports.Person, idx int) (ports.Keypoint, bool) {
	if idx < 0 || idx >= len(p.Keypoints) {
		return ports.Keypoint{}, false
	}
	kp := p.Keypoints[idx]
	if kp.Score <= MinRegionScore {
		return ports.Keypoint{}, false
	}
	return kp, true
}

// Distance returns the euclidean distance between two keypoints.
func Distance(a, b ports.Keypoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// SquareRegion returns the square of the given side centred on (cx, cy),
// clipped to bounds. A non-positive size yields the empty rectangle.
func SquareRegion(cx, cy, size float64, bounds image.Rectangle) image.Rectangle {
	if size <= 0 {
		return image.Rectangle{}
	}
	half := size / 2
	r := image.Rect(
		int(math.Floor(cx-half)),
		int(math.Floor(cy-half)),
		int(math.Ceil(cx+half)),
		int(math.Ceil(cy+half)),
	)
	return r.Intersect(bounds)
}
