package pipeline

import (
	"context"

	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/format"
	"github.com/Skryldev/gen-image/histogram"
	"github.com/Skryldev/gen-image/lut"
)

// Options carries the run inputs that are loaded outside the pipeline.
type Options struct {
	LUT1D *lut.Table1D
	LUT3D *lut.Table3D
	// Histogram receives the record when cfg.Histogram is set.
	Histogram func(ctx context.Context, rec histogram.Record) error
	// Preview receives the canonical image after the histogram stage.
	Preview func(ctx context.Context, img *core.Image) error
}

// Formats resolves the input and output descriptors of cfg and checks that
// the combination can be produced. It runs before any image is allocated.
func Formats(cfg config.Config) (in, out *format.Descriptor, err error) {
	inName := cfg.InputFormat
	if cfg.ProcessYUV {
		inName = format.YUV24
	}
	if inName == "" {
		inName = format.RGB24
	}

	in, ok := format.Lookup(inName)
	if !ok {
		return nil, nil, apperrors.Errorf(apperrors.CategoryFormat, "plan",
			"%w: input format %q", apperrors.ErrUnknownFormat, inName)
	}
	out, ok = format.Lookup(cfg.OutputFormat)
	if !ok {
		return nil, nil, apperrors.Errorf(apperrors.CategoryFormat, "plan",
			"%w: output format %q", apperrors.ErrUnknownFormat, cfg.OutputFormat)
	}

	// Only RGB data can be converted to another family.
	if !in.IsRGB() && in.Family != out.Family {
		return nil, nil, apperrors.Errorf(apperrors.CategoryFormat, "plan",
			"%w: %s output with %s processing", apperrors.ErrFamilyMismatch, out.Family, in.Family)
	}
	if cfg.Histogram == config.HistogramHGT && in.IsYUV() {
		return nil, nil, apperrors.Errorf(apperrors.CategoryFormat, "plan",
			"%w: HGT histogram with YUV processing", apperrors.ErrFamilyMismatch)
	}
	return in, out, nil
}

// Plan validates cfg and returns the ordered steps of a run:
// input, crop, scale, rotate, flip, compose, lut1d, lut3d, histogram,
// preview, colorspace and format. Stages that cfg leaves disabled are omitted.
func Plan(cfg config.Config, opts Options) (*Pipeline, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConfig, "plan", err)
	}
	in, out, err := Formats(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.LUTPath != "" && opts.LUT1D == nil {
		return nil, apperrors.Errorf(apperrors.CategoryConfig, "plan", "1D LUT %s not loaded", cfg.LUTPath)
	}
	if cfg.CLUPath != "" && opts.LUT3D == nil {
		return nil, apperrors.Errorf(apperrors.CategoryConfig, "plan", "3D LUT %s not loaded", cfg.CLUPath)
	}

	p := New().Use(&InputStep{Format: in, Params: cfg.Params})
	if !cfg.Crop.Empty() {
		p.Use(&CropStep{Rect: cfg.Crop})
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		p.Use(&ScaleStep{Width: cfg.Width, Height: cfg.Height})
	}
	if cfg.Rotate {
		p.Use(&RotateStep{})
	}
	if cfg.HFlip || cfg.VFlip {
		p.Use(&FlipStep{Horizontal: cfg.HFlip, Vertical: cfg.VFlip})
	}
	if cfg.Compose > 0 {
		p.Use(&ComposeStep{Count: cfg.Compose})
	}
	if opts.LUT1D != nil {
		p.Use(&LUT1DStep{Table: opts.LUT1D})
	}
	if opts.LUT3D != nil {
		p.Use(&LUT3DStep{Table: opts.LUT3D})
	}
	if cfg.Histogram != config.HistogramNone {
		p.Use(&HistogramStep{Type: cfg.Histogram, Areas: cfg.HueAreas, Emit: opts.Histogram})
	}
	if opts.Preview != nil {
		p.Use(&PreviewStep{Emit: opts.Preview})
	}
	return p.Use(
		&ColorspaceStep{Output: out, Params: cfg.Params},
		&FormatStep{Output: out, Params: cfg.Params},
	), nil
}
