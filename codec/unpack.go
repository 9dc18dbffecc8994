package codec

import (
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/format"
)

// Unpack promotes a packed RGB image to RGB24. Each field lands in the high
// bits of its 8-bit channel; low bits are left clear rather than replicated.
func Unpack(src *core.Image) (*core.Image, error) {
	if src == nil {
		return nil, apperrors.New(apperrors.CategoryFormat, "codec.unpack", apperrors.ErrUnknownFormat)
	}
	if src.Released() {
		return nil, apperrors.New(apperrors.CategoryPipeline, "codec.unpack", apperrors.ErrReleased)
	}
	px := src.Format.Pixel
	if !src.Format.IsRGB() || px.BPP%8 != 0 || px.BPP < 8 || px.BPP > 32 {
		return nil, apperrors.Errorf(apperrors.CategoryFormat, "codec.unpack",
			"%w: %s", apperrors.ErrUnsupportedFormat, src.Format.Name)
	}

	out, err := core.NewImage(format.MustLookup(format.RGB24), src.Width, src.Height)
	if err != nil {
		return nil, err
	}

	n := px.BPP / 8
	in, od := src.Data, out.Data
	for i, o := 0, 0; o+2 < len(od) && i+n <= len(in); i, o = i+n, o+3 {
		v := word(in[i:], n)
		od[o] = extract(v, px.Red)
		od[o+1] = extract(v, px.Green)
		od[o+2] = extract(v, px.Blue)
	}
	return out, nil
}

func extract(v uint32, c format.Component) uint8 {
	if c.Length == 0 {
		return 0
	}
	mask := uint32(1)<<c.Length - 1
	return uint8(((v >> c.Offset) & mask) << (8 - c.Length))
}
