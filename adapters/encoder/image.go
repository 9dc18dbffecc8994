// Package encoder serialises canonical images into viewable containers.
package encoder

import (
	"image"
	"image/color"

	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/format"
)

// ToRGBA exposes a canonical 3-byte image as an image.Image. The channels
// are copied unchanged, so YUV24 and HSV24 buffers render as false colour.
func ToRGBA(img *core.Image) (*image.NRGBA, error) {
	if img == nil || img.Released() {
		return nil, apperrors.New(apperrors.CategoryFormat, "encoder.rgba", apperrors.ErrEmptyInput)
	}
	if !img.Format.IsCanonical() {
		return nil, apperrors.Errorf(apperrors.CategoryFormat, "encoder.rgba",
			"%w: %s is not a canonical format", apperrors.ErrUnsupportedFormat, img.Format.Name)
	}

	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		src := img.Data[y*img.Stride() : (y+1)*img.Stride()]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < img.Width; x++ {
			dst[4*x] = src[3*x]
			dst[4*x+1] = src[3*x+1]
			dst[4*x+2] = src[3*x+2]
			dst[4*x+3] = 0xff
		}
	}
	return out, nil
}

// FromImage converts any image.Image into an RGB24 image, dropping alpha.
func FromImage(src image.Image) (*core.Image, error) {
	b := src.Bounds()
	img, err := core.NewImage(format.MustLookup(format.RGB24), b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			img.Data[i] = c.R
			img.Data[i+1] = c.G
			img.Data[i+2] = c.B
			i += 3
		}
	}
	return img, nil
}
