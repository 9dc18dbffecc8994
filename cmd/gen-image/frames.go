package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	genimage "github.com/Skryldev/gen-image"
	"github.com/Skryldev/gen-image/adapters/decoder"
	"github.com/Skryldev/gen-image/adapters/storage"
	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/core"
	"github.com/Skryldev/gen-image/format"
	"github.com/Skryldev/gen-image/histogram"
	"github.com/Skryldev/gen-image/pipeline"
)

// Formats with a single alpha bit only get the two extremes of the sweep.
var alphaSweep = []uint8{0, 100, 200, 255}

// referenceOutputs are the RGB and YUV targets of the histogram records and
// the composed frames.
var referenceOutputs = []string{format.RGB24, "UYVY"}

const maxComposed = 5

// frameJob is one output file of the reference set.
type frameJob struct {
	name      string
	cfg       config.Config
	histogram bool
}

func newFramesCmd(stdout io.Writer) *cobra.Command {
	var set string
	cmd := &cobra.Command{
		Use:   "frames <infile.pnm> [dir]",
		Short: "Write the reference frames for every format, alpha value and composition count",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 2 {
				dir = args[1]
			}
			names, err := writeFrames(cmd.Context(), args[0], dir, set)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(stdout, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&set, "name", "", "frame set name, defaults to the input file name without extension")
	return cmd
}

// frameJobs lists the reference set of a width x height input in catalog
// order: every format with its alpha sweep, the HGO records of the RGB and
// YUV paths, then the composed frames.
func frameJobs(set string, width, height int) []frameJob {
	res := fmt.Sprintf("%dx%d", width, height)
	base := config.Default()

	var jobs []frameJob
	for _, d := range format.All() {
		name := strings.ToLower(d.Name)
		cfg := base
		cfg.OutputFormat = d.Name
		if d.Pixel.Alpha.Length == 0 || !d.IsRGB() {
			jobs = append(jobs, frameJob{name: fmt.Sprintf("frame-%s-%s-%s.bin", set, name, res), cfg: cfg})
			continue
		}
		for _, a := range alphaSweep {
			if d.Pixel.Alpha.Length == 1 && a != 0 && a != 255 {
				continue
			}
			cfg.Params.Alpha = a
			jobs = append(jobs, frameJob{
				name: fmt.Sprintf("frame-%s-%s-%s-alpha%d.bin", set, name, res, a),
				cfg:  cfg,
			})
		}
	}

	for _, f := range referenceOutputs {
		cfg := yuvPath(base, f)
		cfg.Histogram = config.HistogramHGO
		jobs = append(jobs, frameJob{
			name:      fmt.Sprintf("histo-%s-%s-%s.bin", set, strings.ToLower(f), res),
			cfg:       cfg,
			histogram: true,
		})
	}

	for n := 1; n <= maxComposed; n++ {
		for _, f := range referenceOutputs {
			cfg := yuvPath(base, f)
			cfg.Compose = n
			jobs = append(jobs, frameJob{
				name: fmt.Sprintf("frame-composed-%d-%s-%s.bin", n, strings.ToLower(f), res),
				cfg:  cfg,
			})
		}
	}
	return jobs
}

// yuvPath targets out and processes in YUV space when out is a YUV format.
func yuvPath(cfg config.Config, out string) config.Config {
	cfg.OutputFormat = out
	cfg.ProcessYUV = format.MustLookup(out).IsYUV()
	return cfg
}

// writeFrames decodes input once and renders every job of the reference set
// into dir concurrently. Names come back in job order.
func writeFrames(ctx context.Context, input, dir, set string) ([]string, error) {
	if set == "" {
		set = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	src, err := loadPNM(ctx, input)
	if err != nil {
		return nil, err
	}
	defer src.Release()

	store, err := storage.NewLocal(dir, 0)
	if err != nil {
		return nil, err
	}

	jobs := frameJobs(set, src.Width, src.Height)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			img, err := src.Clone()
			if err != nil {
				return err
			}
			data, err := renderFrame(ctx, j, img)
			if err != nil {
				return fmt.Errorf("%s: %w", j.name, err)
			}
			return store.Put(ctx, core.StorageKey{Path: j.name}, bytes.NewReader(data))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lo.Map(jobs, func(j frameJob, _ int) string { return j.name }), nil
}

// renderFrame runs one job over img, taking ownership of it, and returns the
// raw frame or the histogram record.
func renderFrame(ctx context.Context, j frameJob, img *core.Image) ([]byte, error) {
	var record []byte
	var opts pipeline.Options
	if j.histogram {
		opts.Histogram = func(_ context.Context, rec histogram.Record) error {
			var err error
			record, err = rec.MarshalBinary()
			return err
		}
	}

	res, err := genimage.New(j.cfg).Generate(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	data := res.Image.Data
	_ = res.Image.Release()
	if j.histogram {
		return record, nil
	}
	return data, nil
}

func loadPNM(ctx context.Context, path string) (*core.Image, error) {
	store, err := storage.NewLocal("", 0)
	if err != nil {
		return nil, err
	}
	rc, err := store.Get(ctx, core.StorageKey{Path: path})
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return decoder.NewPNM().Decode(ctx, rc)
}
