package mocks

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/user/posestream/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
//
// Canvases it creates share one call counter so tests can check what was
// drawn across frames.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	CanvasFromFunc   func(img image.Image) ports.Canvas
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image

	Counts DrawCounts
}

// DrawCounts tallies canvas operations.
type DrawCounts struct {
	mu      sync.Mutex
	Circles int
	Lines   int
	Rects   int
	Texts   int
	Images  int
}

func (c *DrawCounts) add(field *int) {
	c.mu.Lock()
	*field++
	c.mu.Unlock()
}

// Snapshot returns a copy of the counters.
func (c *DrawCounts) Snapshot() (circles, lines, rects, texts, images int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Circles, c.Lines, c.Rects, c.Texts, c.Images
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	return &Canvas{img: img, counts: &m.Counts}
}

func (m *Renderer) CanvasFrom(src image.Image) ports.Canvas {
	if m.CanvasFromFunc != nil {
		return m.CanvasFromFunc(src)
	}
	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	return &Canvas{img: img, counts: &m.Counts}
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas. It keeps the image it
// was created with and only counts drawing calls.
type Canvas struct {
	img    *image.RGBA
	counts *DrawCounts
}

func (m *Canvas) DrawImage(img image.Image, x, y int, alpha float64) {
	m.counts.add(&m.counts.Images)
}

func (m *Canvas) DrawCircle(x, y, radius float64, c color.Color) {
	m.counts.add(&m.counts.Circles)
}

func (m *Canvas) DrawLine(x1, y1, x2, y2 float64, c color.Color, width float64) {
	m.counts.add(&m.counts.Lines)
}

func (m *Canvas) DrawRectStroke(x, y, w, h int, c color.Color, strokeWidth float64) {
	m.counts.add(&m.counts.Rects)
}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	m.counts.add(&m.counts.Texts)
}

func (m *Canvas) ToImage() image.Image {
	return m.img
}

var _ ports.Canvas = (*Canvas)(nil)
