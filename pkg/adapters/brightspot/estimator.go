// Package brightspot provides a lightweight keypoint estimator that
// treats every bright blob in a frame as the head of a person. It stands
// in for a neural network when demoing or testing the pipeline.
package brightspot

import (
	"context"
	"errors"
	"image"
	"math"
	"sort"

	"github.com/user/posestream/pkg/ports"
)

// ErrNotLoaded is returned when estimating before Load.
var ErrNotLoaded = errors.New("estimator not loaded")

// Options tunes blob detection.
type Options struct {
	// Luma is the minimum brightness (0-255) of a blob pixel.
	Luma uint8
	// MinCells is the minimum blob size in sampling cells.
	MinCells int
	// MaxSide bounds the sampling grid's longer side.
	MaxSide int
}

// DefaultOptions returns the detection settings used by New.
func DefaultOptions() Options {
	return Options{Luma: 200, MinCells: 2, MaxSide: 256}
}

// Estimator implements ports.PoseEstimator and ports.RegionEstimator.
type Estimator struct {
	opts   Options
	loaded bool
}

// New creates an Estimator with DefaultOptions.
func New() *Estimator {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates an Estimator with custom detection settings.
func NewWithOptions(opts Options) *Estimator {
	if opts.MinCells < 1 {
		opts.MinCells = 1
	}
	if opts.MaxSide < 16 {
		opts.MaxSide = 16
	}
	return &Estimator{opts: opts}
}

// Load marks the estimator ready. There are no model files to read.
func (e *Estimator) Load(ctx context.Context, modelFolder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.loaded = true
	return nil
}

// Estimate detects people in img. Blobs are returned largest first.
func (e *Estimator) Estimate(ctx context.Context, img image.Image, opts ports.EstimateOptions) (ports.Estimation, error) {
	if err := ctx.Err(); err != nil {
		return ports.Estimation{}, err
	}
	if !e.loaded {
		return ports.Estimation{}, ErrNotLoaded
	}

	bounds := img.Bounds()
	blobs := e.findBlobs(img)
	parts := layout(opts.Model)

	people := make([]ports.Person, 0, len(blobs))
	for _, b := range blobs {
		kps := make([]ports.Keypoint, len(parts))
		for i, fi := range parts {
			x := b.x + figure[fi][0]*b.radius
			y := b.y + figure[fi][1]*b.radius
			if !inside(bounds, x, y) || b.score < opts.DetectThreshold {
				continue
			}
			kps[i] = ports.Keypoint{X: x, Y: y, Score: b.score}
		}
		people = append(people, ports.Person{Keypoints: kps})
	}

	est := ports.Estimation{People: people}
	est.Heatmaps = heatmaps(bounds, people, len(parts), opts)
	return est, nil
}

// EstimateRegions places numParts keypoints inside every rectangle,
// scored by the rectangle's brightness.
func (e *Estimator) EstimateRegions(ctx context.Context, img image.Image, rects []image.Rectangle, numParts int, opts ports.EstimateOptions) ([]ports.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !e.loaded {
		return nil, ErrNotLoaded
	}

	out := make([]ports.Person, len(rects))
	for i, r := range rects {
		kps := make([]ports.Keypoint, numParts)
		r = r.Intersect(img.Bounds())
		if !r.Empty() {
			score := 0.5 + 0.5*meanLuma(img, r)/255
			if score >= opts.DetectThreshold {
				for j := range kps {
					x, y := regionPoint(r, j, numParts)
					kps[j] = ports.Keypoint{X: x, Y: y, Score: score}
				}
			}
		}
		out[i] = ports.Person{Keypoints: kps}
	}
	return out, nil
}

type blob struct {
	x, y, radius float64
	cells        int
	score        float64
}

// findBlobs labels 4-connected bright cells on a sampling grid.
func (e *Estimator) findBlobs(img image.Image) []blob {
	b := img.Bounds()
	step := 1
	if side := max(b.Dx(), b.Dy()); side > e.opts.MaxSide {
		step = (side + e.opts.MaxSide - 1) / e.opts.MaxSide
	}
	gw, gh := (b.Dx()+step-1)/step, (b.Dy()+step-1)/step
	if gw == 0 || gh == 0 {
		return nil
	}

	luma := make([]float64, gw*gh)
	for gy := 0; gy < gh; gy++ {
		for gx := 0; gx < gw; gx++ {
			luma[gy*gw+gx] = lumaAt(img, b.Min.X+gx*step+step/2, b.Min.Y+gy*step+step/2)
		}
	}

	seen := make([]bool, len(luma))
	var blobs []blob
	queue := make([]int, 0, 64)
	for start := range luma {
		if seen[start] || luma[start] < float64(e.opts.Luma) {
			continue
		}
		seen[start] = true
		queue = append(queue[:0], start)
		var sx, sy, sl float64
		n := 0
		for len(queue) > 0 {
			c := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			cx, cy := c%gw, c/gw
			sx += float64(cx)
			sy += float64(cy)
			sl += luma[c]
			n++
			for _, nb := range [4][2]int{{cx - 1, cy}, {cx + 1, cy}, {cx, cy - 1}, {cx, cy + 1}} {
				if nb[0] < 0 || nb[1] < 0 || nb[0] >= gw || nb[1] >= gh {
					continue
				}
				ni := nb[1]*gw + nb[0]
				if !seen[ni] && luma[ni] >= float64(e.opts.Luma) {
					seen[ni] = true
					queue = append(queue, ni)
				}
			}
		}
		if n < e.opts.MinCells {
			continue
		}
		s := float64(step)
		blobs = append(blobs, blob{
			x:      float64(b.Min.X) + (sx/float64(n))*s + s/2,
			y:      float64(b.Min.Y) + (sy/float64(n))*s + s/2,
			radius: math.Sqrt(float64(n)/math.Pi) * s,
			cells:  n,
			score:  sl / float64(n) / 255,
		})
	}

	sort.SliceStable(blobs, func(i, j int) bool { return blobs[i].cells > blobs[j].cells })
	return blobs
}

// regionPoint lays hands out as a wrist plus five four-joint fingers and
// every other model as points on the inscribed ellipse.
func regionPoint(r image.Rectangle, i, n int) (float64, float64) {
	w, h := float64(r.Dx()), float64(r.Dy())
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	if n == 21 {
		if i == 0 {
			return x0 + w/2, y0 + h*0.95
		}
		finger, joint := (i-1)/4, (i-1)%4
		fx := 0.15 + 0.175*float64(finger)
		fy := 0.75 - 0.17*float64(joint+1)
		return x0 + w*fx, y0 + h*fy
	}
	a := 2 * math.Pi * float64(i) / float64(n)
	return x0 + w/2 + 0.45*w*math.Cos(a), y0 + h/2 + 0.45*h*math.Sin(a)
}

func lumaAt(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257
}

func meanLuma(img image.Image, r image.Rectangle) float64 {
	var sum float64
	n := 0
	step := max(1, max(r.Dx(), r.Dy())/32)
	for y := r.Min.Y; y < r.Max.Y; y += step {
		for x := r.Min.X; x < r.Max.X; x += step {
			sum += lumaAt(img, x, y)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func inside(b image.Rectangle, x, y float64) bool {
	return x >= float64(b.Min.X) && y >= float64(b.Min.Y) && x < float64(b.Max.X) && y < float64(b.Max.Y)
}

var (
	_ ports.PoseEstimator   = (*Estimator)(nil)
	_ ports.RegionEstimator = (*Estimator)(nil)
)
