package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Encoding selects the YCbCr encoding matrix.
type Encoding int

const (
	EncodingBT601 Encoding = iota
	EncodingRec709
	EncodingBT2020
	EncodingSMPTE240M
)

func (e Encoding) String() string {
	switch e {
	case EncodingRec709:
		return "REC.709"
	case EncodingBT2020:
		return "BT.2020"
	case EncodingSMPTE240M:
		return "SMPTE240M"
	}
	return "BT.601"
}

// ParseEncoding accepts BT.601, REC.709, BT.2020 and SMPTE240M.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "BT.601":
		return EncodingBT601, nil
	case "REC.709":
		return EncodingRec709, nil
	case "BT.2020":
		return EncodingBT2020, nil
	case "SMPTE240M":
		return EncodingSMPTE240M, nil
	}
	return 0, fmt.Errorf("invalid encoding value '%s'", s)
}

// Quantization selects the YCbCr sample excursion.
type Quantization int

const (
	QuantizationLimited Quantization = iota
	QuantizationFull
)

func (q Quantization) String() string {
	if q == QuantizationFull {
		return "full"
	}
	return "limited"
}

// ParseQuantization accepts limited and full.
func ParseQuantization(s string) (Quantization, error) {
	switch s {
	case "limited":
		return QuantizationLimited, nil
	case "full":
		return QuantizationFull, nil
	}
	return 0, fmt.Errorf("invalid quantization value '%s'", s)
}

// HistogramType selects the statistics record emitted alongside the output.
type HistogramType int

const (
	HistogramNone HistogramType = iota
	HistogramHGO
	HistogramHGT
)

func (h HistogramType) String() string {
	switch h {
	case HistogramHGO:
		return "hgo"
	case HistogramHGT:
		return "hgt"
	}
	return "none"
}

// ParseHistogramType accepts hgo and hgt.
func ParseHistogramType(s string) (HistogramType, error) {
	switch s {
	case "hgo":
		return HistogramHGO, nil
	case "hgt":
		return HistogramHGT, nil
	}
	return 0, fmt.Errorf("invalid histogram type '%s'", s)
}

// Params are the per-run pixel processing parameters. They are built once
// and passed by value to every stage.
type Params struct {
	Alpha         uint8
	Encoding      Encoding
	Quantization  Quantization
	ChromaAverage bool
}

// DefaultParams returns opaque alpha, BT.601 limited range with chroma
// averaging enabled.
func DefaultParams() Params {
	return Params{
		Alpha:         255,
		Encoding:      EncodingBT601,
		Quantization:  QuantizationLimited,
		ChromaAverage: true,
	}
}

// ParseAlpha accepts a fraction with a decimal point (0.0 to 1.0), an
// integer (0 to 255) or a percentage (0% to 100%). Fractions and percentages
// scale to 255 and truncate.
func ParseAlpha(s string) (uint8, error) {
	var alpha int
	switch {
	case strings.Contains(s, "."):
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid alpha value '%s'", s)
		}
		alpha = int(f * 255)
		if f < 0 {
			alpha = -1
		}
	case strings.HasSuffix(s, "%"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "%"))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid alpha value '%s'", s)
		}
		alpha = n * 255 / 100
	default:
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid alpha value '%s'", s)
		}
		alpha = n
	}
	if alpha < 0 || alpha > 255 {
		return 0, fmt.Errorf("invalid alpha value '%s'", s)
	}
	return uint8(alpha), nil
}

// CropRect is a crop window in source pixels.
type CropRect struct {
	Left, Top     int
	Width, Height int
}

// Empty reports whether the rectangle selects no crop.
func (r CropRect) Empty() bool { return r.Width == 0 || r.Height == 0 }

func (r CropRect) String() string {
	return fmt.Sprintf("(%d,%d)/%dx%d", r.Left, r.Top, r.Width, r.Height)
}

// ParseCropRect parses "(L,T)/WxH".
func ParseCropRect(s string) (CropRect, error) {
	var r CropRect
	if _, err := fmt.Sscanf(s, "(%d,%d)/%dx%d", &r.Left, &r.Top, &r.Width, &r.Height); err != nil {
		return CropRect{}, fmt.Errorf("invalid crop rectangle '%s'", s)
	}
	if r.Left < 0 || r.Top < 0 || r.Width <= 0 || r.Height <= 0 {
		return CropRect{}, fmt.Errorf("invalid crop rectangle '%s'", s)
	}
	return r, nil
}

// HueAreaTable holds the lower/upper boundaries of the six HGT hue areas,
// in order 0L, 0U, 1L, 1U, ... 5L, 5U.
type HueAreaTable [12]uint8

// DefaultHueAreas centres the six areas on the primary and secondary hues,
// 32 hue steps wide, with area 0 straddling the 255 to 0 wrap.
var DefaultHueAreas = HueAreaTable{
	240, 16,
	27, 59,
	69, 101,
	112, 144,
	155, 187,
	197, 229,
}

// ParseHueAreas parses twelve comma separated boundaries.
func ParseHueAreas(s string) (HueAreaTable, error) {
	var t HueAreaTable
	fields := strings.Split(s, ",")
	if len(fields) != len(t) {
		return t, fmt.Errorf("invalid hue areas '%s': want %d values", s, len(t))
	}
	for i, f := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 8)
		if err != nil {
			return t, fmt.Errorf("invalid hue area boundary '%s'", f)
		}
		t[i] = uint8(v)
	}
	return t, nil
}

// Config is the top-level configuration struct. All fields have safe defaults
// so callers can start with Default() and override only what they need.
type Config struct {
	// Formats.
	OutputFormat string // default RGB24
	InputFormat  string // default RGB24
	ProcessYUV   bool   // shortcut for InputFormat = YUV24

	// Geometry. Width and Height must both be set to scale.
	Width   int
	Height  int
	Crop    CropRect
	Rotate  bool
	HFlip   bool
	VFlip   bool
	Compose int

	Params Params

	// Histogram.
	Histogram HistogramType
	HueAreas  HueAreaTable

	// Files. Empty paths disable the corresponding stage or output.
	InputPath     string
	OutputPath    string
	HistogramPath string
	LUTPath       string
	CLUPath       string
	PreviewPath   string

	// Memory limits.
	MaxImageBytes int64 // 0 = no limit

	// Logging.
	LogLevel string // "debug", "info", "warn", "error"
}

// Default returns a Config populated with the tool defaults.
func Default() Config {
	return Config{
		OutputFormat: "RGB24",
		InputFormat:  "RGB24",
		Params:       DefaultParams(),
		HueAreas:     DefaultHueAreas,
		LogLevel:     "info",
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.OutputFormat == "" {
		return errors.New("config: OutputFormat must be set")
	}
	if c.Width < 0 || c.Height < 0 {
		return errors.New("config: output size must not be negative")
	}
	if c.Compose < 0 {
		return errors.New("config: Compose must not be negative")
	}
	if c.Crop.Left < 0 || c.Crop.Top < 0 || c.Crop.Width < 0 || c.Crop.Height < 0 {
		return errors.New("config: crop rectangle must not be negative")
	}
	if c.MaxImageBytes < 0 {
		return errors.New("config: MaxImageBytes must not be negative")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown LogLevel %q", c.LogLevel)
	}
	return nil
}
