// Command gen-image converts a PNM image into a raw frame in one of the
// supported hardware pixel formats.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	genimage "github.com/Skryldev/gen-image"
	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/format"
	"github.com/Skryldev/gen-image/hooks"
	"github.com/Skryldev/gen-image/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "gen-image: %v\n", err)
		os.Exit(1)
	}
}

// options mirrors the command line before it is turned into a config.
type options struct {
	alpha          alphaValue
	compose        int
	encoding       string
	format         string
	inputFormat    string
	histogram      string
	histogramType  string
	histogramAreas string
	lut            string
	clu            string
	output         string
	quantization   string
	size           string
	crop           string
	rotate         bool
	hflip          bool
	vflip          bool
	yuv            bool
	noChromaAvg    bool
	preview        string
	verbose        bool
}

// alphaValue lets pflag parse the fraction, integer and percent syntaxes.
type alphaValue uint8

func (a *alphaValue) String() string { return fmt.Sprint(uint8(*a)) }
func (a *alphaValue) Type() string   { return "alpha" }
func (a *alphaValue) Set(s string) error {
	v, err := config.ParseAlpha(s)
	if err != nil {
		return err
	}
	*a = alphaValue(v)
	return nil
}

var _ pflag.Value = (*alphaValue)(nil)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{alpha: 255}
	cmd := &cobra.Command{
		Use:   "gen-image [options] <infile.pnm>",
		Short: "Convert a PNM image to a raw frame in a hardware pixel format",
		Long: "Convert the input image stored in <infile> in PNM format to the target\n" +
			"format and resolution and store the resulting image in raw binary form.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.format == "help" {
				return listFormats(stdout)
			}
			if len(args) != 1 {
				return fmt.Errorf("missing input file, run %s -h for help", cmd.CommandPath())
			}
			cfg, err := o.config(args[0])
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, o.verbose, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.SortFlags = false
	f.VarP(&o.alpha, "alpha", "a", "alpha value: fraction [0.0-1.0], integer [0-255] or percentage [0%-100%]")
	f.IntVarP(&o.compose, "compose", "c", 0, "compose n copies of the image offset by (50,50) over a black background")
	f.StringVarP(&o.encoding, "encoding", "e", "BT.601", "YCbCr encoding: BT.601, REC.709, BT.2020 or SMPTE240M")
	f.StringVarP(&o.format, "format", "f", format.RGB24, "output image format, 'help' lists the supported formats")
	f.StringVarP(&o.inputFormat, "input-format", "i", format.RGB24, "format the input is converted to before processing")
	f.StringVarP(&o.histogram, "histogram", "H", "", "compute a histogram and store it to `file`")
	f.StringVar(&o.histogramType, "histogram-type", "hgo", "histogram type: hgo or hgt")
	f.StringVar(&o.histogramAreas, "histogram-areas", "", "twelve comma separated HGT hue area boundaries")
	f.StringVarP(&o.lut, "lut", "l", "", "apply a 1D look up table from `file`")
	f.StringVarP(&o.clu, "clu", "L", "", "apply a 3D look up table from `file`")
	f.StringVarP(&o.output, "output", "o", "", "store the output image to `file`")
	f.StringVarP(&o.quantization, "quantization", "q", "limited", "quantization: limited or full")
	f.StringVarP(&o.size, "size", "s", "", "output image size `WxH`, defaults to the input size")
	f.StringVar(&o.crop, "crop", "", "crop the input to `(L,T)/WxH`")
	f.BoolVarP(&o.rotate, "rotate", "r", false, "rotate the image clockwise by 90 degrees")
	f.BoolVar(&o.hflip, "hflip", false, "flip the image horizontally")
	f.BoolVar(&o.vflip, "vflip", false, "flip the image vertically")
	f.BoolVarP(&o.yuv, "yuv", "y", false, "perform all processing in YUV space")
	f.BoolVar(&o.noChromaAvg, "no-chroma-average", false, "take the first chroma sample instead of averaging pairs")
	f.StringVar(&o.preview, "preview", "", "write a viewable copy of the processed image to `file` (.pnm, .png, .bmp, .tiff)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log every step and print a summary")

	cmd.AddCommand(newLUTCmd(stdout), newHisto2PNGCmd(stdout), newFramesCmd(stdout))
	return cmd
}

func (o *options) config(input string) (config.Config, error) {
	cfg := config.Default()
	cfg.InputPath = input
	cfg.OutputPath = o.output
	cfg.HistogramPath = o.histogram
	cfg.LUTPath = o.lut
	cfg.CLUPath = o.clu
	cfg.PreviewPath = o.preview
	cfg.OutputFormat = o.format
	cfg.InputFormat = o.inputFormat
	cfg.ProcessYUV = o.yuv
	cfg.Rotate = o.rotate
	cfg.HFlip = o.hflip
	cfg.VFlip = o.vflip
	cfg.Compose = o.compose
	if o.verbose {
		cfg.LogLevel = "debug"
	}

	if _, ok := format.Lookup(o.format); !ok {
		return cfg, fmt.Errorf("unsupported output format '%s'", o.format)
	}
	if _, ok := format.Lookup(o.inputFormat); !ok {
		return cfg, fmt.Errorf("unsupported input format '%s'", o.inputFormat)
	}

	var err error
	cfg.Params.Alpha = uint8(o.alpha)
	cfg.Params.ChromaAverage = !o.noChromaAvg
	if cfg.Params.Encoding, err = config.ParseEncoding(o.encoding); err != nil {
		return cfg, err
	}
	if cfg.Params.Quantization, err = config.ParseQuantization(o.quantization); err != nil {
		return cfg, err
	}
	if o.size != "" {
		if cfg.Width, cfg.Height, err = utils.ParseSize(o.size); err != nil {
			return cfg, err
		}
	}
	if o.crop != "" {
		if cfg.Crop, err = config.ParseCropRect(o.crop); err != nil {
			return cfg, err
		}
	}
	if o.histogram != "" {
		if cfg.Histogram, err = config.ParseHistogramType(o.histogramType); err != nil {
			return cfg, err
		}
	}
	if o.histogramAreas != "" {
		if cfg.HueAreas, err = config.ParseHueAreas(o.histogramAreas); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func listFormats(w io.Writer) error {
	for _, name := range format.Names() {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func run(ctx context.Context, cfg config.Config, verbose bool, stderr io.Writer) error {
	g := genimage.New(cfg)

	var metrics *hooks.InMemoryMetrics
	if verbose {
		logger := hooks.NewTextLogger(stderr, cfg.LogLevel)
		metrics = hooks.NewInMemoryMetrics()
		g.SetLogger(logger)
		g.SetMetrics(metrics)
		g.AddHook(hooks.NewLoggingHook(logger))
		g.AddHook(hooks.NewMetricsHook(metrics))
	}

	report, err := g.Run(ctx)
	if err != nil {
		return err
	}
	if verbose {
		printSummary(stderr, cfg, report, metrics.Snapshot())
	}
	return nil
}

// printSummary reports sizes with locale digit grouping so multi-megabyte
// frames stay readable.
func printSummary(w io.Writer, cfg config.Config, r *genimage.Report, snap hooks.MetricsSnapshot) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "%s: %dx%d %s, %d bytes", filepath.Base(cfg.InputPath), r.Width, r.Height, r.Format, r.OutputBytes)
	if r.HistogramBytes > 0 {
		p.Fprintf(w, ", histogram %d bytes", r.HistogramBytes)
	}
	if r.PreviewBytes > 0 {
		p.Fprintf(w, ", preview %d bytes", r.PreviewBytes)
	}
	p.Fprintf(w, ", %d bytes allocated in %v\n", snap.TotalMemoryB, r.ProcessingTime)

	steps := make([]string, 0, len(r.StepTimings))
	for name := range r.StepTimings {
		steps = append(steps, name)
	}
	sort.Strings(steps)
	for _, name := range steps {
		p.Fprintf(w, "  %-10s %v\n", name, r.StepTimings[name])
	}
}
