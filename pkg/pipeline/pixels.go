package pipeline

import (
	"image"

	"github.com/user/posestream/pkg/ports"
)

// PackPixels writes img into dst as tightly packed rows in the given
// format and returns the filled slice. dst is reused when large enough.
// Unknown formats return nil.
func PackPixels(dst []byte, img *image.RGBA, format ports.PixelFormat) []byte {
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil
	}
	b := img.Bounds()
	need := b.Dx() * b.Dy() * bpp
	if cap(dst) < need {
		dst = make([]byte, need)
	}
	dst = dst[:need]

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			r, g, bl := row[x*4], row[x*4+1], row[x*4+2]
			switch format {
			case ports.FormatBGR8:
				dst[i], dst[i+1], dst[i+2] = bl, g, r
			case ports.FormatRGB8:
				dst[i], dst[i+1], dst[i+2] = r, g, bl
			case ports.FormatGray8:
				dst[i] = uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(bl) + 500) / 1000)
			}
			i += bpp
		}
	}
	return dst
}
