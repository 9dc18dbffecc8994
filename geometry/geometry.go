// Package geometry implements the spatial transforms applied to canonical
// 3-byte images. Every transform allocates its result and leaves the source
// untouched.
package geometry

import (
	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
)

const bytesPerPixel = 3

// composeStep is the diagonal distance between composed tiles.
const composeStep = 50

func check(img *core.Image, op string) error {
	if img == nil {
		return apperrors.New(apperrors.CategoryPipeline, op, apperrors.ErrEmptyInput)
	}
	if img.Released() {
		return apperrors.New(apperrors.CategoryPipeline, op, apperrors.ErrReleased)
	}
	if !img.Format.IsCanonical() {
		return apperrors.Errorf(apperrors.CategoryFormat, op,
			"%w: %s is not a canonical format", apperrors.ErrUnsupportedFormat, img.Format.Name)
	}
	return nil
}

// axis maps an output coordinate onto the source axis as an integer position
// and a fractional weight. The mapping out*(src-1)/(dst-1) is evaluated
// exactly so that both corners land on source pixels.
type axis struct {
	pos   []int
	ratio []float64
}

func newAxis(src, dst int) axis {
	a := axis{pos: make([]int, dst), ratio: make([]float64, dst)}
	if dst <= 1 {
		return a
	}
	den := dst - 1
	for i := range a.pos {
		num := i * (src - 1)
		a.pos[i] = num / den
		a.ratio[i] = float64(num%den) / float64(den)
	}
	return a
}

// Scale resizes src to width x height with bilinear interpolation. Samples
// are truncated when stored.
func Scale(src *core.Image, width, height int) (*core.Image, error) {
	if err := check(src, "geometry.scale"); err != nil {
		return nil, err
	}
	out, err := core.NewImage(src.Format, width, height)
	if err != nil {
		return nil, err
	}
	if src.Width == 0 || src.Height == 0 {
		return out, nil
	}

	ax := newAxis(src.Width, width)
	ay := newAxis(src.Height, height)
	stride := src.Stride()
	in, od := src.Data, out.Data

	o := 0
	for v := 0; v < height; v++ {
		y0 := ay.pos[v]
		y1 := min(y0+1, src.Height-1)
		vr := ay.ratio[v]
		for u := 0; u < width; u++ {
			x0 := ax.pos[u]
			x1 := min(x0+1, src.Width-1)
			ur := ax.ratio[u]
			for c := 0; c < bytesPerPixel; c++ {
				c00 := float64(in[y0*stride+x0*bytesPerPixel+c])
				c10 := float64(in[y0*stride+x1*bytesPerPixel+c])
				c01 := float64(in[y1*stride+x0*bytesPerPixel+c])
				c11 := float64(in[y1*stride+x1*bytesPerPixel+c])
				val := (c00*(1-ur)+c10*ur)*(1-vr) + (c01*(1-ur)+c11*ur)*vr
				od[o] = uint8(val)
				o++
			}
		}
	}
	return out, nil
}

// Rotate turns src 90 degrees clockwise. Pixel (x, y) moves to column
// height-1-y of row x.
func Rotate(src *core.Image) (*core.Image, error) {
	if err := check(src, "geometry.rotate"); err != nil {
		return nil, err
	}
	out, err := core.NewImage(src.Format, src.Height, src.Width)
	if err != nil {
		return nil, err
	}
	inStride, outStride := src.Stride(), out.Stride()
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			s := y*inStride + x*bytesPerPixel
			d := x*outStride + (src.Height-1-y)*bytesPerPixel
			copy(out.Data[d:d+bytesPerPixel], src.Data[s:s+bytesPerPixel])
		}
	}
	return out, nil
}

// Flip mirrors src horizontally, vertically or both in a single walk of the
// source with signed strides.
func Flip(src *core.Image, horizontal, vertical bool) (*core.Image, error) {
	if err := check(src, "geometry.flip"); err != nil {
		return nil, err
	}
	out, err := core.NewImage(src.Format, src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	if src.Width == 0 || src.Height == 0 {
		return out, nil
	}

	stride := src.Stride()
	start, rowStep, pixStep := 0, stride, bytesPerPixel
	if vertical {
		start += (src.Height - 1) * stride
		rowStep = -stride
	}
	if horizontal {
		start += (src.Width - 1) * bytesPerPixel
		pixStep = -bytesPerPixel
	}

	o := 0
	for y, row := 0, start; y < src.Height; y, row = y+1, row+rowStep {
		for x, s := 0, row; x < src.Width; x, s = x+1, s+pixStep {
			copy(out.Data[o:o+bytesPerPixel], src.Data[s:s+bytesPerPixel])
			o += bytesPerPixel
		}
	}
	return out, nil
}

// Crop copies the rectangle r out of src. The rectangle must lie inside the
// image.
func Crop(src *core.Image, r config.CropRect) (*core.Image, error) {
	if err := check(src, "geometry.crop"); err != nil {
		return nil, err
	}
	if r.Left < 0 || r.Top < 0 || r.Width < 0 || r.Height < 0 ||
		r.Left+r.Width > src.Width || r.Top+r.Height > src.Height {
		return nil, apperrors.Errorf(apperrors.CategoryConfig, "geometry.crop",
			"%w: %s in %dx%d", apperrors.ErrCropBounds, r, src.Width, src.Height)
	}
	out, err := core.NewImage(src.Format, r.Width, r.Height)
	if err != nil {
		return nil, err
	}
	inStride, outStride := src.Stride(), out.Stride()
	for y := 0; y < r.Height; y++ {
		s := (r.Top+y)*inStride + r.Left*bytesPerPixel
		copy(out.Data[y*outStride:(y+1)*outStride], src.Data[s:s+outStride])
	}
	return out, nil
}

// Compose paints n copies of src onto a black canvas of the same size, each
// shifted diagonally by a further 50 pixels. Later copies overwrite earlier
// ones and copies starting outside the canvas are dropped. n == 0 returns an
// unmodified copy.
func Compose(src *core.Image, n int) (*core.Image, error) {
	if err := check(src, "geometry.compose"); err != nil {
		return nil, err
	}
	if n <= 0 {
		return src.Clone()
	}
	out, err := src.Like()
	if err != nil {
		return nil, err
	}

	stride := src.Stride()
	offset := composeStep
	for i := 0; i < n; i++ {
		if offset >= src.Width || offset >= src.Height {
			break
		}
		span := (src.Width - offset) * bytesPerPixel
		for y := 0; y < src.Height-offset; y++ {
			d := (offset+y)*stride + offset*bytesPerPixel
			copy(out.Data[d:d+span], src.Data[y*stride:y*stride+span])
		}
		offset += composeStep
	}
	return out, nil
}
