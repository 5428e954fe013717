package producer

import (
	"image"

	"github.com/user/posestream/pkg/ports"
)

// toRGBA copies a validated raw frame into a new RGBA image. Rows are
// assumed tightly packed.
func toRGBA(frame ports.RawFrame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	bpp := frame.Format.BytesPerPixel()
	n := frame.Width * frame.Height
	src := frame.Data
	dst := img.Pix

	for i := 0; i < n; i++ {
		s := src[i*bpp : i*bpp+bpp]
		d := dst[i*4 : i*4+4]
		switch frame.Format {
		case ports.FormatBGR8:
			d[0], d[1], d[2] = s[2], s[1], s[0]
		case ports.FormatRGB8:
			d[0], d[1], d[2] = s[0], s[1], s[2]
		case ports.FormatGray8:
			d[0], d[1], d[2] = s[0], s[0], s[0]
		}
		d[3] = 0xff
	}
	return img
}
