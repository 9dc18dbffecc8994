package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/gen-image/codec"
	"github.com/Skryldev/gen-image/colorspace"
	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/format"
	"github.com/Skryldev/gen-image/histogram"
	"github.com/Skryldev/gen-image/hooks"
	"github.com/Skryldev/gen-image/lut"
	"github.com/Skryldev/gen-image/pipeline"
)

func testImage(t *testing.T, w, h int) *core.Image {
	t.Helper()
	img, err := core.NewImage(format.MustLookup(format.RGB24), w, h)
	require.NoError(t, err)
	for i := range img.Data {
		img.Data[i] = uint8(i * 37)
	}
	return img
}

type funcStep struct {
	name string
	fn   func(img *core.Image) (*core.Image, error)
}

func (s funcStep) Name() string { return s.name }
func (s funcStep) Execute(_ context.Context, img *core.Image) (*core.Image, error) {
	return s.fn(img)
}

func TestPlanOrder(t *testing.T) {
	cfg := config.Default()
	cfg.OutputFormat = "NV12M"
	cfg.Width, cfg.Height = 8, 6
	cfg.Crop = config.CropRect{Width: 4, Height: 4}
	cfg.Rotate = true
	cfg.VFlip = true
	cfg.Compose = 1
	cfg.Histogram = config.HistogramHGO
	cfg.LUTPath, cfg.CLUPath = "lut.bin", "clu.bin"

	id1, err := lut.Generate1D(lut.KindIdentity)
	require.NoError(t, err)
	id3, err := lut.Generate3D(lut.KindIdentity)
	require.NoError(t, err)

	p, err := pipeline.Plan(cfg, pipeline.Options{LUT1D: id1, LUT3D: id3})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"input", "crop", "scale", "rotate", "flip", "compose",
		"lut1d", "lut3d", "histogram", "colorspace", "format",
	}, p.Names())
}

func TestPlanMinimal(t *testing.T) {
	p, err := pipeline.Plan(config.Default(), pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"input", "colorspace", "format"}, p.Names())
}

func TestPlanRejectsBadCombinations(t *testing.T) {
	cases := map[string]func(*config.Config){
		"yuv processing to rgb": func(c *config.Config) { c.ProcessYUV = true },
		"hsv input to yuv":      func(c *config.Config) { c.InputFormat = "HSV24"; c.OutputFormat = "YUYV" },
		"hgt on yuv": func(c *config.Config) {
			c.ProcessYUV = true
			c.OutputFormat = "UYVY"
			c.Histogram = config.HistogramHGT
		},
		"unknown output": func(c *config.Config) { c.OutputFormat = "rgb24" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			_, err := pipeline.Plan(cfg, pipeline.Options{})
			require.Error(t, err)
			assert.True(t, apperrors.IsCategory(err, apperrors.CategoryFormat), err.Error())
		})
	}
}

func TestPlanRejectsMissingTable(t *testing.T) {
	cfg := config.Default()
	cfg.CLUPath = "clu.bin"
	_, err := pipeline.Plan(cfg, pipeline.Options{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryConfig))
}

func TestRunRGBToPackedYUV(t *testing.T) {
	cfg := config.Default()
	cfg.OutputFormat = "YUYV"
	p, err := pipeline.Plan(cfg, pipeline.Options{})
	require.NoError(t, err)

	src := testImage(t, 6, 2)
	want := func() []byte {
		ref := testImage(t, 6, 2)
		yuv, err := colorspace.ImageRGBToYUV(ref, cfg.Params, format.MustLookup("YUYV"))
		require.NoError(t, err)
		out, err := codec.Pack(yuv, format.MustLookup("YUYV"), cfg.Params)
		require.NoError(t, err)
		return out.Data
	}()

	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "YUYV", res.Image.Format.Name)
	assert.Equal(t, want, res.Image.Data)
	assert.True(t, src.Released())
}

func TestRunNarrowInputTruncates(t *testing.T) {
	cfg := config.Default()
	cfg.InputFormat = "RGB565"
	p, err := pipeline.Plan(cfg, pipeline.Options{})
	require.NoError(t, err)

	src := testImage(t, 3, 1)
	orig := append([]byte(nil), src.Data...)
	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, orig[3*i]&0xf8, res.Image.Data[3*i])
		assert.Equal(t, orig[3*i+1]&0xfc, res.Image.Data[3*i+1])
		assert.Equal(t, orig[3*i+2]&0xf8, res.Image.Data[3*i+2])
	}
}

func TestRunEmitsHistogramWithoutChangingImage(t *testing.T) {
	cfg := config.Default()
	cfg.Histogram = config.HistogramHGO

	var got histogram.Record
	p, err := pipeline.Plan(cfg, pipeline.Options{
		Histogram: func(_ context.Context, rec histogram.Record) error {
			got = rec
			return nil
		},
	})
	require.NoError(t, err)

	src := testImage(t, 4, 4)
	orig := append([]byte(nil), src.Data...)
	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, orig, res.Image.Data)

	require.IsType(t, &histogram.HGO{}, got)
	hgo := got.(*histogram.HGO)
	var n uint32
	for _, b := range hgo.Bins[0] {
		n += b
	}
	assert.Equal(t, uint32(16), n)
}

func TestRunPreviewSeesCanonicalImage(t *testing.T) {
	cfg := config.Default()
	cfg.OutputFormat = "YUYV"

	var seen []byte
	var seenFormat string
	p, err := pipeline.Plan(cfg, pipeline.Options{
		Preview: func(_ context.Context, img *core.Image) error {
			seen = append([]byte(nil), img.Data...)
			seenFormat = img.Format.Name
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"input", "preview", "colorspace", "format"}, p.Names())

	src := testImage(t, 2, 2)
	orig := append([]byte(nil), src.Data...)
	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, format.RGB24, seenFormat)
	assert.Equal(t, orig, seen)
	assert.Equal(t, "YUYV", res.Image.Format.Name)
}

func TestRunPreviewErrorAborts(t *testing.T) {
	boom := errors.New("disk full")
	p, err := pipeline.Plan(config.Default(), pipeline.Options{
		Preview: func(context.Context, *core.Image) error { return boom },
	})
	require.NoError(t, err)

	src := testImage(t, 2, 2)
	_, err = p.Run(context.Background(), src)
	assert.ErrorIs(t, err, boom)
	assert.True(t, src.Released())
}

func TestRunHSVOutput(t *testing.T) {
	cfg := config.Default()
	cfg.OutputFormat = "HSV32"
	cfg.Params.Alpha = 9
	p, err := pipeline.Plan(cfg, pipeline.Options{})
	require.NoError(t, err)

	src, err := core.NewImage(format.MustLookup(format.RGB24), 1, 1)
	require.NoError(t, err)
	copy(src.Data, []byte{0, 0, 255})
	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 255, 171, 9}, res.Image.Data)
}

func TestRunReleasesEveryImageOnFailure(t *testing.T) {
	var intermediate *core.Image
	boom := errors.New("boom")

	p := pipeline.New().Use(
		funcStep{name: "clone", fn: func(img *core.Image) (*core.Image, error) {
			out, err := img.Clone()
			intermediate = out
			return out, err
		}},
		funcStep{name: "fail", fn: func(img *core.Image) (*core.Image, error) {
			return nil, apperrors.Wrap(apperrors.CategoryPipeline, "fail", boom)
		}},
	)

	metrics := hooks.NewInMemoryMetrics()
	p.AddHook(hooks.NewMetricsHook(metrics))

	src := testImage(t, 2, 2)
	_, err := p.Run(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, src.Released())
	require.NotNil(t, intermediate)
	assert.True(t, intermediate.Released())

	snap := metrics.Snapshot()
	assert.Equal(t, int64(1), snap.StepErrors["fail"])
	assert.Equal(t, int64(1), snap.StepCalls["clone"])
}

func TestRunReleasesFreshImageReturnedWithError(t *testing.T) {
	var partial *core.Image
	p := pipeline.New().Use(funcStep{name: "partial", fn: func(img *core.Image) (*core.Image, error) {
		partial, _ = img.Clone()
		return partial, errors.New("half done")
	}})

	src := testImage(t, 2, 2)
	_, err := p.Run(context.Background(), src)
	require.Error(t, err)
	assert.True(t, src.Released())
	assert.True(t, partial.Released())
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := pipeline.Plan(config.Default(), pipeline.Options{})
	require.NoError(t, err)
	src := testImage(t, 2, 2)
	_, err = p.Run(ctx, src)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, src.Released())
}
