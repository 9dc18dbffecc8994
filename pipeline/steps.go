package pipeline

import (
	"context"

	"github.com/Skryldev/gen-image/codec"
	"github.com/Skryldev/gen-image/colorspace"
	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/format"
	"github.com/Skryldev/gen-image/geometry"
	"github.com/Skryldev/gen-image/histogram"
	"github.com/Skryldev/gen-image/lut"
)

func ctxErr(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryPipeline, name, err)
	}
	return nil
}

// ── Input ─────────────────────────────────────────────────────────────────────

// InputStep brings the decoded RGB24 image into the input format's canonical
// family. Narrow RGB inputs are packed and promoted back so that they carry
// the input precision.
type InputStep struct {
	Format *format.Descriptor
	Params config.Params
}

func (s *InputStep) Name() string { return "input" }

func (s *InputStep) Execute(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}
	switch s.Format.Family {
	case format.FamilyYUV:
		return colorspace.ImageRGBToYUV(img, s.Params, s.Format)
	case format.FamilyHSV:
		return colorspace.ImageRGBToHSV(img)
	}
	if s.Format.IsCanonical() {
		return img, nil
	}

	packed, err := codec.Pack(img, s.Format, s.Params)
	if err != nil {
		return nil, err
	}
	out, err := codec.Unpack(packed)
	_ = packed.Release()
	return out, err
}

// ── Crop ──────────────────────────────────────────────────────────────────────

// CropStep crops a rectangle from the image.
type CropStep struct {
	Rect config.CropRect
}

func (s *CropStep) Name() string { return "crop" }

func (s *CropStep) Execute(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}
	return geometry.Crop(img, s.Rect)
}

// ── Scale ─────────────────────────────────────────────────────────────────────

// ScaleStep resizes the image with bilinear interpolation. It is a no-op when
// the size already matches.
type ScaleStep struct {
	Width, Height int
}

func (s *ScaleStep) Name() string { return "scale" }

func (s *ScaleStep) Execute(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}
	if img.Width == s.Width && img.Height == s.Height {
		return img, nil
	}
	return geometry.Scale(img, s.Width, s.Height)
}

// ── Rotate / flip ─────────────────────────────────────────────────────────────

// RotateStep rotates the image 90 degrees clockwise.
type RotateStep struct{}

func (s *RotateStep) Name() string { return "rotate" }

func (s *RotateStep) Execute(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}
	return geometry.Rotate(img)
}

// FlipStep mirrors the image.
type FlipStep struct {
	Horizontal, Vertical bool
}

func (s *FlipStep) Name() string { return "flip" }

func (s *FlipStep) Execute(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}
	if !s.Horizontal && !s.Vertical {
		return img, nil
	}
	return geometry.Flip(img, s.Horizontal, s.Vertical)
}

// ── Compose ───────────────────────────────────────────────────────────────────

// ComposeStep tiles Count copies of the image diagonally on a black canvas.
type ComposeStep struct {
	Count int
}

func (s *ComposeStep) Name() string { return "compose" }

func (s *ComposeStep) Execute(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}
	return geometry.Compose(img, s.Count)
}

// ── Look-up tables ────────────────────────────────────────────────────────────

// LUT1DStep maps each channel through a 1D table.
type LUT1DStep struct {
	Table *lut.Table1D
}

func (s *LUT1DStep) Name() string { return "lut1d" }

func (s *LUT1DStep) Execute(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}
	return lut.Apply1D(img, s.Table)
}

// LUT3DStep maps pixels through a 3D colour lattice.
type LUT3DStep struct {
	Table *lut.Table3D
}

func (s *LUT3DStep) Name() string { return "lut3d" }

func (s *LUT3DStep) Execute(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}
	return lut.Apply3D(img, s.Table)
}

// ── Histogram ─────────────────────────────────────────────────────────────────

// HistogramStep computes a statistics record and hands it to Emit. The image
// passes through unchanged.
type HistogramStep struct {
	Type  config.HistogramType
	Areas config.HueAreaTable
	Emit  func(ctx context.Context, rec histogram.Record) error
}

func (s *HistogramStep) Name() string { return "histogram" }

func (s *HistogramStep) Execute(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}

	var (
		rec histogram.Record
		err error
	)
	switch s.Type {
	case config.HistogramHGO:
		rec, err = histogram.ComputeHGO(img)
	case config.HistogramHGT:
		rec, err = histogram.ComputeHGT(img, s.Areas)
	default:
		return img, nil
	}
	if err != nil {
		return nil, err
	}
	if s.Emit != nil {
		if err := s.Emit(ctx, rec); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// PreviewStep hands the canonical image to Emit, typically an encoder writing
// a viewable copy. The image passes through unchanged.
type PreviewStep struct {
	Emit func(ctx context.Context, img *core.Image) error
}

func (s *PreviewStep) Name() string { return "preview" }

func (s *PreviewStep) Execute(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}
	if s.Emit != nil {
		if err := s.Emit(ctx, img); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// ── Output colorspace ─────────────────────────────────────────────────────────

// ColorspaceStep converts RGB data to the output family's canonical format.
// Data already in that family passes through.
type ColorspaceStep struct {
	Output *format.Descriptor
	Params config.Params
}

func (s *ColorspaceStep) Name() string { return "colorspace" }

func (s *ColorspaceStep) Execute(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}
	if img.Format.Family == s.Output.Family {
		return img, nil
	}
	if !img.Format.IsRGB() {
		return nil, apperrors.Errorf(apperrors.CategoryFormat, s.Name(),
			"%w: %s data to %s output", apperrors.ErrFamilyMismatch, img.Format.Family, s.Output.Family)
	}
	if s.Output.IsYUV() {
		return colorspace.ImageRGBToYUV(img, s.Params, s.Output)
	}
	return colorspace.ImageRGBToHSV(img)
}

// ── Format ────────────────────────────────────────────────────────────────────

// FormatStep packs the canonical image into the output wire format.
type FormatStep struct {
	Output *format.Descriptor
	Params config.Params
}

func (s *FormatStep) Name() string { return "format" }

func (s *FormatStep) Execute(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}
	if img.Format == s.Output {
		return img, nil
	}
	return codec.Pack(img, s.Output, s.Params)
}
