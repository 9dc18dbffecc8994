package colorspace

import (
	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/format"
)

const (
	precisionBits = 4
	div           = (1 << (8 + precisionBits)) * 255
)

// RGBToYCbCr converts one pixel with the given matrix. Results are truncated
// and stored modulo 256.
func RGBToYCbCr(m Matrix, q config.Quantization, rgb [3]uint8) [3]uint8 {
	yOffset := 16
	if q == config.QuantizationFull {
		yOffset = 0
	}
	r := int(rgb[0]) << precisionBits
	g := int(rgb[1]) << precisionBits
	b := int(rgb[2]) << precisionBits

	y := (m[0][0]*r + m[0][1]*g + m[0][2]*b + yOffset*div) / div
	cb := (m[1][0]*r + m[1][1]*g + m[1][2]*b + 128*div) / div
	cr := (m[2][0]*r + m[2][1]*g + m[2][2]*b + 128*div) / div
	return [3]uint8{uint8(y), uint8(cb), uint8(cr)}
}

// ImageRGBToYUV converts an RGB24 image to YUV24. When target subsamples
// chroma horizontally the result is pre-filtered the way the hardware does
// before decimation. A nil target skips the filter.
func ImageRGBToYUV(src *core.Image, p config.Params, target *format.Descriptor) (*core.Image, error) {
	if err := expect(src, format.RGB24, "colorspace.yuv"); err != nil {
		return nil, err
	}
	out, err := core.NewImage(format.MustLookup(format.YUV24), src.Width, src.Height)
	if err != nil {
		return nil, err
	}

	m := MatrixFor(p.Encoding, p.Quantization)
	in, od := src.Data, out.Data
	for i := 0; i+2 < len(in); i += 3 {
		ycc := RGBToYCbCr(m, p.Quantization, [3]uint8{in[i], in[i+1], in[i+2]})
		od[i], od[i+1], od[i+2] = ycc[0], ycc[1], ycc[2]
	}

	if target != nil && target.IsYUV() && target.YUV.XSub == 2 {
		prefilterChroma(out)
	}
	return out, nil
}

// prefilterChroma averages every even interior chroma sample with its left
// neighbour. Columns 0 and width-1 are left untouched.
func prefilterChroma(img *core.Image) {
	stride := img.Stride()
	for y := 0; y < img.Height; y++ {
		row := img.Data[y*stride : (y+1)*stride]
		for x := 2; x <= img.Width-2; x += 2 {
			for c := 1; c <= 2; c++ {
				row[3*x+c] = uint8((int(row[3*(x-1)+c]) + int(row[3*x+c])) / 2)
			}
		}
	}
}

// hsvScale is the fixed-point hue scale of the HST block.
const hsvScale = 4

// RGBToHSV converts one pixel with the HST algorithm. Every truncation and
// offset below reproduces the hardware results bit for bit.
func RGBToHSV(rgb [3]uint8) [3]uint8 {
	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])
	maxc := max(r, g, b)
	minc := min(r, g, b)
	delta := maxc - minc

	var h, s int
	if delta != 0 {
		// Round half down for dark pixels and half up otherwise.
		if minc < 128 {
			s = (2*delta*255 + maxc - 1) / (2 * maxc)
		} else {
			s = (2*delta*255 + maxc + 1) / (2 * maxc)
		}

		var diff, third int
		switch maxc {
		case r:
			diff, third = g-b, 0
		case g:
			diff, third = b-r, 256*hsvScale
		default:
			diff, third = r-g, 512*hsvScale
		}

		aux := diff * 128 * hsvScale
		if aux < 0 {
			aux -= delta - 1
		} else {
			aux += delta - 1
		}
		aux /= delta
		aux += third
		if diff < 0 && third != 0 {
			aux--
		}

		const half = 3 * hsvScale / 2
		if aux < 0 {
			h = (aux - half) / (3 * hsvScale)
		} else {
			h = (aux + half) / (3 * hsvScale)
		}
	}
	return [3]uint8{uint8(h & 0xff), uint8(s), uint8(maxc)}
}

// ImageRGBToHSV converts an RGB24 image to HSV24.
func ImageRGBToHSV(src *core.Image) (*core.Image, error) {
	if err := expect(src, format.RGB24, "colorspace.hsv"); err != nil {
		return nil, err
	}
	out, err := core.NewImage(format.MustLookup(format.HSV24), src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	in, od := src.Data, out.Data
	for i := 0; i+2 < len(in); i += 3 {
		hsv := RGBToHSV([3]uint8{in[i], in[i+1], in[i+2]})
		od[i], od[i+1], od[i+2] = hsv[0], hsv[1], hsv[2]
	}
	return out, nil
}

func expect(img *core.Image, name, op string) error {
	if img == nil {
		return apperrors.New(apperrors.CategoryPipeline, op, apperrors.ErrEmptyInput)
	}
	if img.Released() {
		return apperrors.New(apperrors.CategoryPipeline, op, apperrors.ErrReleased)
	}
	if img.Format.Name != name {
		return apperrors.Errorf(apperrors.CategoryFormat, op,
			"%w: %s input, want %s", apperrors.ErrUnsupportedFormat, img.Format.Name, name)
	}
	return nil
}
