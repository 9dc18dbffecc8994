// Package genimage synthesizes hardware test frames from a PNM image: the
// input is optionally reshaped and colour transformed, then packed into one
// of the catalog's pixel formats and written as a raw frame.
package genimage

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/Skryldev/gen-image/adapters/decoder"
	"github.com/Skryldev/gen-image/adapters/encoder"
	"github.com/Skryldev/gen-image/adapters/storage"
	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/histogram"
	"github.com/Skryldev/gen-image/hooks"
	"github.com/Skryldev/gen-image/lut"
	"github.com/Skryldev/gen-image/pipeline"
	"github.com/Skryldev/gen-image/utils"
)

// DefaultConfig returns the tool defaults: RGB24 in and out, BT.601 limited
// range, opaque alpha and chroma averaging enabled.
func DefaultConfig() config.Config { return config.Default() }

// Generator is the primary entry point. It owns the codec registry, the
// storage used for every file it reads or writes, and the processor that
// threads images through the planned steps.
type Generator struct {
	cfg    config.Config
	inner  *core.Processor
	reg    *core.DefaultRegistry
	store  core.StorageAdapter
	logger core.Logger
}

// Report summarises a completed Run.
type Report struct {
	Format         string
	Width          int
	Height         int
	OutputBytes    int
	HistogramBytes int
	PreviewBytes   int
	ProcessingTime time.Duration
	StepTimings    map[string]time.Duration
}

// New creates a Generator with the PNM decoder and the preview encoders
// registered. Files are resolved relative to the working directory.
func New(cfg config.Config) *Generator {
	reg := core.NewRegistry()
	reg.RegisterDecoder(core.ContainerPNM, decoder.NewPNM())
	reg.RegisterEncoder(core.ContainerPNM, encoder.NewPNM())
	reg.RegisterEncoder(core.ContainerPNG, encoder.NewPNG())
	reg.RegisterEncoder(core.ContainerBMP, encoder.NewBMP())
	reg.RegisterEncoder(core.ContainerTIFF, encoder.NewTIFF())

	// An empty root never fails.
	store, _ := storage.NewLocal("", 0)

	g := &Generator{
		cfg:    cfg,
		inner:  core.New(cfg, reg),
		reg:    reg,
		store:  store,
		logger: hooks.Nop(),
	}
	g.inner.SetLogger(g.logger)
	return g
}

// Config returns the configuration the generator was built with.
func (g *Generator) Config() config.Config { return g.cfg }

// SetLogger attaches a structured logger.
func (g *Generator) SetLogger(l core.Logger) {
	g.logger = l
	g.inner.SetLogger(l)
}

// SetMetrics attaches a metrics collector.
func (g *Generator) SetMetrics(m core.MetricsCollector) { g.inner.SetMetrics(m) }

// SetStorage replaces the adapter used for inputs and outputs.
func (g *Generator) SetStorage(s core.StorageAdapter) { g.store = s }

// AddHook registers an observer for pipeline step events.
func (g *Generator) AddHook(h core.Hook) { g.inner.AddHook(h) }

// RegisterDecoder registers a custom decoder for the given container.
func (g *Generator) RegisterDecoder(c core.Container, d core.Decoder) { g.reg.RegisterDecoder(c, d) }

// RegisterEncoder registers a custom encoder for the given container.
func (g *Generator) RegisterEncoder(c core.Container, e core.Encoder) { g.reg.RegisterEncoder(c, e) }

// Stats returns lightweight processing statistics.
func (g *Generator) Stats() (processed, errors int64) {
	return g.inner.ProcessedCount(), g.inner.ErrorCount()
}

// Inner exposes the underlying core.Processor.
func (g *Generator) Inner() *core.Processor { return g.inner }

// Generate runs the configured steps on img in memory and returns the
// packed frame. Generate takes ownership of img. File paths in the config
// are ignored; tables and emitters come from opts.
func (g *Generator) Generate(ctx context.Context, img *core.Image, opts pipeline.Options) (*core.ProcessingResult, error) {
	pl, err := pipeline.Plan(g.cfg, opts)
	if err != nil {
		if img != nil {
			_ = img.Release()
		}
		return nil, err
	}
	return g.inner.Process(ctx, img, pl.Steps()...)
}

// Run executes the file based workflow. It loads the tables, reads and
// decodes the input, processes it and writes the raw frame when an output
// path is set. The histogram record and preview image are written as they
// are produced. Every configuration check happens before the input is read.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	cfg := g.cfg
	if cfg.InputPath == "" {
		return nil, apperrors.Errorf(apperrors.CategoryConfig, "run", "no input file")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConfig, "run", err)
	}
	if _, _, err := pipeline.Formats(cfg); err != nil {
		return nil, err
	}

	report := &Report{}
	opts, err := g.options(ctx, report)
	if err != nil {
		return nil, err
	}
	pl, err := pipeline.Plan(cfg, opts)
	if err != nil {
		return nil, err
	}

	img, err := g.load(ctx, cfg.InputPath)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("input.loaded",
		"path", cfg.InputPath,
		"width", img.Width,
		"height", img.Height,
	)

	res, err := g.inner.Process(ctx, img, pl.Steps()...)
	if err != nil {
		return nil, err
	}
	out := res.Image
	defer out.Release()

	if cfg.OutputPath != "" {
		if err := g.put(ctx, cfg.OutputPath, out.Data); err != nil {
			return nil, err
		}
	}

	report.Format = out.Format.Name
	report.Width = out.Width
	report.Height = out.Height
	report.OutputBytes = out.Size()
	report.ProcessingTime = res.ProcessingTime
	report.StepTimings = res.StepTimings
	g.logger.Info("run.done",
		"path", cfg.OutputPath,
		"format", report.Format,
		"bytes", report.OutputBytes,
	)
	return report, nil
}

// options loads the lookup tables and builds the histogram and preview
// emitters for a file based run.
func (g *Generator) options(ctx context.Context, report *Report) (pipeline.Options, error) {
	cfg := g.cfg
	var opts pipeline.Options

	if cfg.LUTPath != "" {
		t, err := readTable(ctx, g.store, cfg.LUTPath, lut.Read1D)
		if err != nil {
			return opts, err
		}
		opts.LUT1D = t
	}
	if cfg.CLUPath != "" {
		t, err := readTable(ctx, g.store, cfg.CLUPath, lut.Read3D)
		if err != nil {
			return opts, err
		}
		opts.LUT3D = t
	}

	if cfg.Histogram != config.HistogramNone && cfg.HistogramPath != "" {
		opts.Histogram = func(ctx context.Context, rec histogram.Record) error {
			data, err := rec.MarshalBinary()
			if err != nil {
				return apperrors.Wrap(apperrors.CategoryFormat, "histogram.marshal", err)
			}
			report.HistogramBytes = len(data)
			return g.put(ctx, cfg.HistogramPath, data)
		}
	}

	if cfg.PreviewPath != "" {
		container := core.Container(utils.FormatFromPath(cfg.PreviewPath))
		enc, ok := g.reg.EncoderFor(container)
		if !ok {
			return opts, apperrors.Errorf(apperrors.CategoryConfig, "preview",
				"%w: no encoder for %s", apperrors.ErrUnsupportedFormat, cfg.PreviewPath)
		}
		opts.Preview = func(ctx context.Context, img *core.Image) error {
			data, err := enc.Encode(ctx, img)
			if err != nil {
				return err
			}
			report.PreviewBytes = len(data)
			return g.put(ctx, cfg.PreviewPath, data)
		}
	}
	return opts, nil
}

func (g *Generator) load(ctx context.Context, path string) (*core.Image, error) {
	rc, err := g.store.Get(ctx, core.StorageKey{Path: path})
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return g.inner.Decode(ctx, core.Source{Reader: rc, Name: path, Size: -1})
}

func (g *Generator) put(ctx context.Context, path string, data []byte) error {
	return g.store.Put(ctx, core.StorageKey{Path: path}, bytes.NewReader(data))
}

func readTable[T any](ctx context.Context, s core.StorageAdapter, path string, read func(r io.Reader) (*T, error)) (*T, error) {
	rc, err := s.Get(ctx, core.StorageKey{Path: path})
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return read(rc)
}
