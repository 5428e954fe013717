package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/user/posestream/pkg/ports"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	img := r.CreateCanvas(100, 60, color.Black).ToImage()
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 60 {
		t.Errorf("expected 100x60, got %dx%d", b.Dx(), b.Dy())
	}
	if red, _, _, a := img.At(5, 5).RGBA(); red != 0 || a != 0xffff {
		t.Error("expected opaque black background")
	}
}

func TestRenderer_CanvasFrom(t *testing.T) {
	r := New()
	src := solid(20, 10, color.RGBA{G: 200, A: 255})

	canvas := r.CanvasFrom(src)
	canvas.DrawCircle(5, 5, 2, color.RGBA{R: 255, A: 255})

	if _, g, _, _ := canvas.ToImage().At(15, 5).RGBA(); g>>8 != 200 {
		t.Errorf("expected copied pixel, got green %d", g>>8)
	}
	if src.RGBAAt(5, 5).R != 0 {
		t.Error("source image must not change")
	}
}

func TestRenderer_Encode(t *testing.T) {
	r := New()
	img := solid(50, 40, color.RGBA{R: 255, A: 255})

	for _, format := range []ports.ImageFormat{ports.FormatJPEG, ports.FormatPNG} {
		data, err := r.EncodeImage(img, format, 80)
		if err != nil {
			t.Fatalf("EncodeImage(%s) failed: %v", format.Extension(), err)
		}
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("DecodeImage(%s) failed: %v", format.Extension(), err)
		}
		if b := decoded.Bounds(); b.Dx() != 50 || b.Dy() != 40 {
			t.Errorf("%s: expected 50x40, got %dx%d", format.Extension(), b.Dx(), b.Dy())
		}
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	r := New()

	resized := r.ResizeImage(image.NewRGBA(image.Rect(0, 0, 100, 100)), 50, 30)
	if b := resized.Bounds(); b.Dx() != 50 || b.Dy() != 30 {
		t.Errorf("expected 50x30, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestCanvas_DrawCircle(t *testing.T) {
	canvas := New().CreateCanvas(40, 40, color.Black)
	canvas.DrawCircle(20, 20, 5, color.RGBA{R: 255, A: 255})

	img := canvas.ToImage()
	if red, _, _, _ := img.At(20, 20).RGBA(); red == 0 {
		t.Error("expected red centre")
	}
	if red, _, _, _ := img.At(2, 2).RGBA(); red != 0 {
		t.Error("expected untouched corner")
	}
}

func TestCanvas_DrawImageAlpha(t *testing.T) {
	tests := []struct {
		alpha   float64
		wantMin uint32
		wantMax uint32
	}{
		{alpha: 0, wantMin: 0, wantMax: 0},
		{alpha: 0.5, wantMin: 120, wantMax: 135},
		{alpha: 1, wantMin: 255, wantMax: 255},
	}

	for _, tt := range tests {
		canvas := New().CreateCanvas(20, 20, color.Black)
		canvas.DrawImage(solid(10, 10, color.RGBA{R: 255, A: 255}), 5, 5, tt.alpha)

		red, _, _, _ := canvas.ToImage().At(8, 8).RGBA()
		red >>= 8
		if red < tt.wantMin || red > tt.wantMax {
			t.Errorf("alpha %v: red = %d, want %d..%d", tt.alpha, red, tt.wantMin, tt.wantMax)
		}
		if r, _, _, _ := canvas.ToImage().At(2, 2).RGBA(); r != 0 {
			t.Errorf("alpha %v: drew outside the image rectangle", tt.alpha)
		}
	}
}

func TestCanvas_DrawLine(t *testing.T) {
	canvas := New().CreateCanvas(100, 100, color.White)
	canvas.DrawLine(0, 50, 100, 50, color.Black, 2)

	r1, g1, b1, _ := canvas.ToImage().At(50, 50).RGBA()
	if r1 == 0xffff && g1 == 0xffff && b1 == 0xffff {
		t.Error("expected non-white pixel on line")
	}
}

func TestCanvas_DrawRectStroke(t *testing.T) {
	canvas := New().CreateCanvas(100, 100, color.White)
	canvas.DrawRectStroke(10, 10, 30, 30, color.Black, 2)

	if r, _, _, _ := canvas.ToImage().At(10, 20).RGBA(); r == 0xffff {
		t.Error("expected dark pixel on border")
	}
	if r, _, _, _ := canvas.ToImage().At(25, 25).RGBA(); r != 0xffff {
		t.Error("expected untouched interior")
	}
}

func TestCanvas_DrawText(t *testing.T) {
	canvas := New().CreateCanvas(200, 50, color.White)
	canvas.DrawText("Frame 1 | 0 people", 10, 25, ports.TextStyle{
		FontSize: 14,
		Color:    color.Black,
		FontPath: "/nonexistent.ttf",
	})

	if canvas.ToImage() == nil {
		t.Error("expected image")
	}
}
