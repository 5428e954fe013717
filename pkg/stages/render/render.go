// Package render implements the keypoint rendering stage.
package render

import (
	"context"
	"image"
	"image/color"

	"github.com/user/posestream/pkg/config"
	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

// Limb colours, cycled over the skeleton segments.
var palette = []color.NRGBA{
	{R: 255, G: 0, B: 85},
	{R: 255, G: 0, B: 0},
	{R: 255, G: 85, B: 0},
	{R: 255, G: 170, B: 0},
	{R: 255, G: 255, B: 0},
	{R: 170, G: 255, B: 0},
	{R: 85, G: 255, B: 0},
	{R: 0, G: 255, B: 0},
	{R: 0, G: 255, B: 85},
	{R: 0, G: 255, B: 170},
	{R: 0, G: 255, B: 255},
	{R: 0, G: 170, B: 255},
	{R: 0, G: 85, B: 255},
	{R: 0, G: 0, B: 255},
	{R: 170, G: 0, B: 255},
	{R: 255, G: 0, B: 255},
}

var (
	faceColor = color.NRGBA{R: 255, G: 255, B: 255}
	rectColor = color.NRGBA{R: 255, G: 255, B: 0, A: 160}
)

// Stage draws the annotations of each frame into its Output image.
type Stage struct {
	pose     config.PoseConfig
	face     config.FaceConfig
	hand     config.HandConfig
	renderer ports.Renderer
	logger   ports.Logger

	bodyPairs [][2]int
	facePairs [][2]int
	handPairs [][2]int
}

// NewStage creates a new render stage.
func NewStage(cfg config.PipelineConfig, renderer ports.Renderer, logger ports.Logger) *Stage {
	return &Stage{
		pose:      cfg.Pose,
		face:      cfg.Face,
		hand:      cfg.Hand,
		renderer:  renderer,
		logger:    logger.WithComponent("render"),
		bodyPairs: cfg.Pose.Model.Pairs(),
		facePairs: config.FacePairs(),
		handPairs: config.HandPairs(),
	}
}

// Kind implements pipeline.Stage.
func (s *Stage) Kind() pipeline.StageKind {
	return pipeline.KindRender
}

// Process implements pipeline.Stage.
func (s *Stage) Process(ctx context.Context, item *pipeline.WorkItem) error {
	inW, inH := item.Input.Bounds().Dx(), item.Input.Bounds().Dy()
	outW, outH := s.pose.OutputResolution.Resolve(inW, inH, 1)

	var canvas ports.Canvas
	if s.pose.Blending {
		var base image.Image = item.Output
		if outW != inW || outH != inH {
			base = s.renderer.ResizeImage(base, outW, outH)
		}
		canvas = s.renderer.CanvasFrom(base)
	} else {
		canvas = s.renderer.CreateCanvas(outW, outH, color.Black)
	}

	sc := scaler{x: float64(outW) / float64(inW), y: float64(outH) / float64(inH)}
	radius := max(2, float64(min(outW, outH))/160)

	s.drawHeatmap(canvas, item.Annotations.Heatmaps, outW, outH)

	a := item.Annotations
	if s.pose.RenderMode != config.RenderNone {
		for _, p := range a.Pose {
			drawSkeleton(canvas, p, s.bodyPairs, sc, radius, s.pose.RenderThreshold, s.pose.AlphaPose, nil)
		}
	}
	if s.face.RenderMode != config.RenderNone {
		c := faceColor
		for i, p := range a.Face {
			drawSkeleton(canvas, p, s.facePairs, sc, radius/2, s.face.RenderThreshold, s.face.AlphaPose, &c)
			if i < len(a.FaceRects) {
				drawRect(canvas, a.FaceRects[i], sc)
			}
		}
	}
	if s.hand.RenderMode != config.RenderNone {
		for i, pair := range a.Hands {
			for side, p := range pair {
				drawSkeleton(canvas, p, s.handPairs, sc, radius/2, s.hand.RenderThreshold, s.hand.AlphaPose, nil)
				if i < len(a.HandRects) {
					drawRect(canvas, a.HandRects[i][side], sc)
				}
			}
		}
	}

	item.Output = pipeline.ToRGBA(canvas.ToImage())
	return nil
}

// drawHeatmap blends the heatmap of the selected part over the frame.
func (s *Stage) drawHeatmap(canvas ports.Canvas, maps []ports.Heatmap, w, h int) {
	if s.pose.PartToShow <= 0 {
		return
	}
	hm, ok := pipeline.FindHeatmap(maps, ports.HeatmapParts, s.pose.PartToShow-1)
	if !ok {
		return
	}
	gray := pipeline.HeatmapGray(hm, 0, 1)
	canvas.DrawImage(s.renderer.ResizeImage(gray, w, h), 0, 0, s.pose.AlphaHeatmap)
}

type scaler struct {
	x, y float64
}

func (s scaler) apply(kp ports.Keypoint) (float64, float64) {
	return kp.X * s.x, kp.Y * s.y
}

// drawSkeleton draws limbs whose both ends pass threshold, then the
// keypoints themselves. A nil fixed colour cycles through the palette.
func drawSkeleton(canvas ports.Canvas, p ports.Person, pairs [][2]int, sc scaler, radius, threshold, alpha float64, fixed *color.NRGBA) {
	pick := func(i int) color.NRGBA {
		c := palette[i%len(palette)]
		if fixed != nil {
			c = *fixed
		}
		c.A = uint8(alpha*255 + 0.5)
		return c
	}

	kps := p.Keypoints
	for i, pair := range pairs {
		if pair[0] >= len(kps) || pair[1] >= len(kps) {
			continue
		}
		a, b := kps[pair[0]], kps[pair[1]]
		if a.Score <= threshold || b.Score <= threshold {
			continue
		}
		x1, y1 := sc.apply(a)
		x2, y2 := sc.apply(b)
		canvas.DrawLine(x1, y1, x2, y2, pick(i), radius)
	}
	for i, kp := range kps {
		if kp.Score <= threshold {
			continue
		}
		x, y := sc.apply(kp)
		canvas.DrawCircle(x, y, radius, pick(i))
	}
}

func drawRect(canvas ports.Canvas, r image.Rectangle, sc scaler) {
	if r.Empty() {
		return
	}
	x := int(float64(r.Min.X) * sc.x)
	y := int(float64(r.Min.Y) * sc.y)
	w := int(float64(r.Dx()) * sc.x)
	h := int(float64(r.Dy()) * sc.y)
	canvas.DrawRectStroke(x, y, w, h, rectColor, 1)
}

var _ pipeline.Stage = (*Stage)(nil)
