// Package codec packs canonical 24-bit images into the catalog wire formats
// and promotes narrow RGB back to RGB24.
package codec

import (
	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/format"
)

// Pack formats src, which must be the canonical image of dst's family, into a
// newly allocated image of format dst.
func Pack(src *core.Image, dst *format.Descriptor, p config.Params) (*core.Image, error) {
	if src == nil || dst == nil {
		return nil, apperrors.New(apperrors.CategoryFormat, "codec.pack", apperrors.ErrUnknownFormat)
	}
	if src.Released() {
		return nil, apperrors.New(apperrors.CategoryPipeline, "codec.pack", apperrors.ErrReleased)
	}
	if src.Format != format.Canonical(dst.Family) {
		return nil, apperrors.Errorf(apperrors.CategoryFormat, "codec.pack",
			"%w: %s to %s", apperrors.ErrFamilyMismatch, src.Format.Name, dst.Name)
	}

	out, err := core.NewImage(dst, src.Width, src.Height)
	if err != nil {
		return nil, err
	}

	switch {
	case dst.IsYUV():
		switch dst.YUV.Planes {
		case 1:
			err = packYUVPacked(src, out, p)
		case 2, 3:
			err = packYUVPlanar(src, out, p)
		default:
			err = unsupported(dst)
		}
	default:
		switch dst.Pixel.BPP {
		case 8, 16, 24, 32:
			packWords(src, out, p)
		default:
			err = unsupported(dst)
		}
	}
	if err != nil {
		_ = out.Release()
		return nil, err
	}
	return out, nil
}

func unsupported(d *format.Descriptor) error {
	return apperrors.Errorf(apperrors.CategoryFormat, "codec.pack",
		"%w: %s", apperrors.ErrUnsupportedFormat, d.Name)
}

// packWords handles every RGB and HSV layout. Each channel is truncated to
// its field width and the alpha field, X formats included, takes p.Alpha.
func packWords(src, out *core.Image, p config.Params) {
	px := out.Format.Pixel
	n := px.BPP / 8
	alpha := field(p.Alpha, px.Alpha)

	in, od := src.Data, out.Data
	for i, o := 0, 0; i+2 < len(in); i, o = i+3, o+n {
		v := field(in[i], px.Red) | field(in[i+1], px.Green) | field(in[i+2], px.Blue) | alpha
		putWord(od[o:], v, n)
	}
}

func field(c uint8, comp format.Component) uint32 {
	// A zero-length field shifts the value out entirely.
	return uint32(c>>(8-comp.Length)) << comp.Offset
}

// chroma returns the chroma sample c of the pixel at x in a YUV24 row, either
// averaged with its right neighbour or taken as is.
func chroma(row []byte, x, width, c int, average bool) uint8 {
	if !average {
		return row[3*x+c]
	}
	next := min(x+1, width-1)
	return uint8((int(row[3*x+c]) + int(row[3*next+c])) / 2)
}

func packYUVPacked(src, out *core.Image, p config.Params) error {
	info := out.Format.YUV
	w, h := src.Width, src.Height

	if info.XSub == 1 {
		// 4:4:4 packed is the canonical layout itself.
		copy(out.Data, src.Data)
		return nil
	}

	yOff, cOff := 0, 1
	if info.Order.Has(format.OrderCY) {
		yOff, cOff = 1, 0
	}
	uOff, vOff := 0, 2
	if info.Order.Has(format.OrderYCrCb) {
		uOff, vOff = 2, 0
	}

	rowBytes := w * 2
	luma := plane{data: out.Data, offset: yOff, stride: rowBytes, step: 2}
	if err := luma.check("codec.pack.yuv", w, h); err != nil {
		return err
	}

	for y := 0; y < h; y++ {
		row := src.Data[y*src.Stride() : (y+1)*src.Stride()]
		dst := out.Data[y*rowBytes : (y+1)*rowBytes]
		for x := 0; x < w; x += 2 {
			luma.set(x, y, row[3*x])
			if x+1 < w {
				luma.set(x+1, y, row[3*x+3])
			}
			base := 2*x + cOff
			if i := base + uOff; i < len(dst) {
				dst[i] = chroma(row, x, w, 1, p.ChromaAverage)
			}
			if i := base + vOff; i < len(dst) {
				dst[i] = chroma(row, x, w, 2, p.ChromaAverage)
			}
		}
	}
	return nil
}

// packYUVPlanar writes a full resolution luma plane followed by interleaved
// (2 planes) or separate (3 planes) chroma planes. Vertically subsampled
// chroma is taken from the first row of each group.
func packYUVPlanar(src, out *core.Image, p config.Params) error {
	info := out.Format.YUV
	w, h := src.Width, src.Height
	xsub, ysub := info.XSub, info.YSub

	luma := plane{data: out.Data, stride: w, step: 1}
	if err := luma.check("codec.pack.planar", w, h); err != nil {
		return err
	}
	for y := 0; y < h; y++ {
		row := src.Data[y*src.Stride():]
		for x := 0; x < w; x++ {
			luma.set(x, y, row[3*x])
		}
	}

	base := w * h
	var u, v plane
	if info.Planes == 2 {
		stride := w * 2 / xsub
		u = plane{data: out.Data, offset: base, stride: stride, step: 2}
		v = plane{data: out.Data, offset: base + 1, stride: stride, step: 2}
	} else {
		size := w * h / xsub / ysub
		stride := w / xsub
		u = plane{data: out.Data, offset: base, stride: stride, step: 1}
		v = plane{data: out.Data, offset: base + size, stride: stride, step: 1}
	}
	if info.Order.Has(format.OrderYCrCb) {
		u.offset, v.offset = v.offset, u.offset
	}

	cols, rows := w/xsub, h/ysub
	if err := u.check("codec.pack.planar", cols, rows); err != nil {
		return err
	}
	if err := v.check("codec.pack.planar", cols, rows); err != nil {
		return err
	}

	average := p.ChromaAverage && xsub == 2
	for cy := 0; cy < rows; cy++ {
		row := src.Data[cy*ysub*src.Stride():]
		for cx := 0; cx < cols; cx++ {
			x := cx * xsub
			u.set(cx, cy, chroma(row, x, w, 1, average))
			v.set(cx, cy, chroma(row, x, w, 2, average))
		}
	}
	return nil
}
