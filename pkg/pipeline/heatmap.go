package pipeline

import (
	"image"

	"github.com/user/posestream/pkg/ports"
)

// HeatmapGray maps the values of hm linearly from [lo, hi] onto 0-255.
// Values outside the range are clamped.
func HeatmapGray(hm ports.Heatmap, lo, hi float32) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, hm.Width, hm.Height))
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	n := hm.Width * hm.Height
	if len(hm.Values) < n {
		n = len(hm.Values)
	}
	for i := 0; i < n; i++ {
		v := (hm.Values[i] - lo) / span
		switch {
		case v < 0:
			v = 0
		case v > 1:
			v = 1
		}
		img.Pix[i] = uint8(v*255 + 0.5)
	}
	return img
}

// FindHeatmap returns the heatmap of the given kind and part.
func FindHeatmap(maps []ports.Heatmap, kind ports.HeatmapKind, part int) (ports.Heatmap, bool) {
	for _, hm := range maps {
		if hm.Kind == kind && hm.Part == part {
			return hm, true
		}
	}
	return ports.Heatmap{}, false
}
