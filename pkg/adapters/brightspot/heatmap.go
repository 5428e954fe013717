package brightspot

import (
	"image"
	"math"

	"github.com/user/posestream/pkg/ports"
)

// outputStride is the ratio between net input and heatmap resolution.
const outputStride = 8

// heatmaps renders Gaussian part maps and the background map at the
// network's output resolution. PAF channels are not produced.
func heatmaps(bounds image.Rectangle, people []ports.Person, numParts int, opts ports.EstimateOptions) []ports.Heatmap {
	var wantParts, wantBkg bool
	for _, k := range opts.Heatmaps {
		switch k {
		case ports.HeatmapParts:
			wantParts = true
		case ports.HeatmapBackground:
			wantBkg = true
		}
	}
	if !wantParts && !wantBkg {
		return nil
	}

	netW, netH := opts.NetWidth, opts.NetHeight
	if netW <= 0 || netH <= 0 {
		netW, netH = bounds.Dx(), bounds.Dy()
	}
	ratio := 1.0
	if opts.Upsampling > 0 {
		ratio = opts.Upsampling
	}
	w := max(1, min(netW, int(float64(netW)/outputStride*ratio)))
	h := max(1, min(netH, int(float64(netH)/outputStride*ratio)))
	sx := float64(w) / float64(bounds.Dx())
	sy := float64(h) / float64(bounds.Dy())
	sigma := math.Max(1, float64(w)/64)

	parts := make([]ports.Heatmap, numParts)
	for p := range parts {
		parts[p] = ports.Heatmap{Kind: ports.HeatmapParts, Part: p, Width: w, Height: h, Values: make([]float32, w*h)}
		for _, person := range people {
			if p >= len(person.Keypoints) || person.Keypoints[p].Score <= 0 {
				continue
			}
			kp := person.Keypoints[p]
			splat(parts[p], (kp.X-float64(bounds.Min.X))*sx, (kp.Y-float64(bounds.Min.Y))*sy, sigma, float32(kp.Score))
		}
	}

	var out []ports.Heatmap
	if wantParts {
		out = append(out, parts...)
	}
	if wantBkg {
		bkg := ports.Heatmap{Kind: ports.HeatmapBackground, Width: w, Height: h, Values: make([]float32, w*h)}
		for i := range bkg.Values {
			var peak float32
			for _, pm := range parts {
				peak = max(peak, pm.Values[i])
			}
			bkg.Values[i] = 1 - peak
		}
		out = append(out, bkg)
	}
	return out
}

func splat(hm ports.Heatmap, cx, cy, sigma float64, peak float32) {
	reach := int(3 * sigma)
	for y := max(0, int(cy)-reach); y <= min(hm.Height-1, int(cy)+reach); y++ {
		for x := max(0, int(cx)-reach); x <= min(hm.Width-1, int(cx)+reach); x++ {
			d2 := (float64(x)-cx)*(float64(x)-cx) + (float64(y)-cy)*(float64(y)-cy)
			v := peak * float32(math.Exp(-d2/(2*sigma*sigma)))
			if i := y*hm.Width + x; v > hm.Values[i] {
				hm.Values[i] = v
			}
		}
	}
}
