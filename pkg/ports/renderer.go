package ports

import (
	"image"
	"image/color"
)

// Renderer draws keypoint overlays and encodes frames for the writers and
// the display.
type Renderer interface {
	// CreateCanvas creates a blank canvas filled with bg.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// CanvasFrom creates a canvas initialised with a copy of img.
	CanvasFrom(img image.Image) Canvas

	// EncodeImage encodes img; quality only applies to JPEG.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Canvas provides drawing operations for annotating frames.
type Canvas interface {
	// DrawImage draws an image at the specified position with the given opacity (0-1).
	DrawImage(img image.Image, x, y int, alpha float64)

	// DrawCircle draws a filled circle.
	DrawCircle(x, y, radius float64, c color.Color)

	// DrawLine draws a line between two points.
	DrawLine(x1, y1, x2, y2 float64, c color.Color, width float64)

	// DrawRectStroke draws a rectangle outline.
	DrawRectStroke(x, y, w, h int, c color.Color, strokeWidth float64)

	// DrawText draws text at the specified position.
	DrawText(text string, x, y int, style TextStyle)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	FontSize float64
	FontPath string
	Color    color.Color
	Align    TextAlign
}

// TextAlign specifies text alignment.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)

// Extension returns the file extension for the format, without the dot.
func (f ImageFormat) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}
