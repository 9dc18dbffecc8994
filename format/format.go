// Package format holds the static catalog of hardware pixel formats.
package format

import (
	"fmt"

	"github.com/samber/lo"
)

// Family tags the layout family of a format.
type Family int

const (
	FamilyRGB Family = iota
	FamilyYUV
	FamilyHSV
)

func (f Family) String() string {
	switch f {
	case FamilyRGB:
		return "rgb"
	case FamilyYUV:
		return "yuv"
	case FamilyHSV:
		return "hsv"
	}
	return "unknown"
}

// Component locates one channel inside a packed pixel word.
type Component struct {
	Length uint8
	Offset uint8
}

// PixelInfo describes packed RGB and HSV layouts. For HSV formats the
// channels are hue, saturation and value in place of red, green and blue.
type PixelInfo struct {
	BPP   int
	Red   Component
	Green Component
	Blue  Component
	Alpha Component
}

// Channels returns the colour channels followed by alpha.
func (p PixelInfo) Channels() [4]Component {
	return [4]Component{p.Red, p.Green, p.Blue, p.Alpha}
}

// YUVOrder is a set of flags describing chroma ordering.
type YUVOrder uint8

const (
	OrderYCbCr YUVOrder = 1 << iota // Cb before Cr
	OrderYCrCb                      // Cr before Cb
	OrderYC                         // luma first in packed layouts
	OrderCY                         // chroma first in packed layouts
)

// Has reports whether all flags in o are set.
func (y YUVOrder) Has(o YUVOrder) bool { return y&o == o }

// YUVInfo describes planar and packed YUV layouts.
type YUVInfo struct {
	Planes int
	Order  YUVOrder
	XSub   int
	YSub   int
}

// Descriptor is an immutable catalog entry.
type Descriptor struct {
	Name   string
	Family Family
	Pixel  PixelInfo
	YUV    YUVInfo
}

func (d *Descriptor) IsRGB() bool { return d.Family == FamilyRGB }
func (d *Descriptor) IsYUV() bool { return d.Family == FamilyYUV }
func (d *Descriptor) IsHSV() bool { return d.Family == FamilyHSV }

// ImageSize returns the byte size of a width x height image in this format.
func (d *Descriptor) ImageSize(width, height int) int {
	if d.IsYUV() {
		return width * height * (8 + 2*8/d.YUV.XSub/d.YUV.YSub) / 8
	}
	return width * height * d.Pixel.BPP / 8
}

// Validate checks the descriptor invariants.
func (d *Descriptor) Validate() error {
	if d.IsYUV() {
		if d.YUV.Planes < 1 || d.YUV.Planes > 3 {
			return fmt.Errorf("format %s: invalid plane count %d", d.Name, d.YUV.Planes)
		}
		if (d.YUV.XSub != 1 && d.YUV.XSub != 2) || (d.YUV.YSub != 1 && d.YUV.YSub != 2) {
			return fmt.Errorf("format %s: invalid subsampling %dx%d", d.Name, d.YUV.XSub, d.YUV.YSub)
		}
		if d.YUV.Order.Has(OrderYCbCr) == d.YUV.Order.Has(OrderYCrCb) {
			return fmt.Errorf("format %s: ambiguous chroma order", d.Name)
		}
		return nil
	}

	total := 0
	for _, c := range d.Pixel.Channels() {
		if c.Length > 8 {
			return fmt.Errorf("format %s: component wider than 8 bits", d.Name)
		}
		if int(c.Length)+int(c.Offset) > d.Pixel.BPP && c.Length > 0 {
			return fmt.Errorf("format %s: component exceeds pixel word", d.Name)
		}
		total += int(c.Length)
	}
	if total > d.Pixel.BPP {
		return fmt.Errorf("format %s: %d component bits exceed %d bpp", d.Name, total, d.Pixel.BPP)
	}
	return nil
}

func (d *Descriptor) String() string { return d.Name }

func rgb(name string, bpp int, rl, ro, gl, gof, bl, bo, al, ao uint8) *Descriptor {
	return &Descriptor{
		Name:   name,
		Family: FamilyRGB,
		Pixel: PixelInfo{
			BPP:   bpp,
			Red:   Component{rl, ro},
			Green: Component{gl, gof},
			Blue:  Component{bl, bo},
			Alpha: Component{al, ao},
		},
	}
}

func hsv(name string, bpp int, hl, ho, sl, so, vl, vo, al, ao uint8) *Descriptor {
	d := rgb(name, bpp, hl, ho, sl, so, vl, vo, al, ao)
	d.Family = FamilyHSV
	return d
}

func yuv(name string, planes int, order YUVOrder, xsub, ysub int) *Descriptor {
	return &Descriptor{
		Name:   name,
		Family: FamilyYUV,
		YUV:    YUVInfo{Planes: planes, Order: order, XSub: xsub, YSub: ysub},
	}
}

// The alpha component maps to the X (don't care) bits of the XRGB formats.
var catalog = []*Descriptor{
	rgb("RGB332", 8, 3, 5, 3, 2, 2, 0, 0, 0),
	rgb("ARGB444", 16, 4, 8, 4, 4, 4, 0, 4, 12),
	rgb("XRGB444", 16, 4, 8, 4, 4, 4, 0, 4, 12),
	rgb("ARGB555", 16, 5, 10, 5, 5, 5, 0, 1, 15),
	rgb("XRGB555", 16, 5, 10, 5, 5, 5, 0, 1, 15),
	rgb("RGB565", 16, 5, 11, 6, 5, 5, 0, 0, 0),
	rgb("BGR24", 24, 8, 16, 8, 8, 8, 0, 0, 0),
	rgb("RGB24", 24, 8, 0, 8, 8, 8, 16, 0, 0),
	rgb("ABGR32", 32, 8, 16, 8, 8, 8, 0, 8, 24),
	rgb("XBGR32", 32, 8, 16, 8, 8, 8, 0, 8, 24),
	rgb("ARGB32", 32, 8, 8, 8, 16, 8, 24, 8, 0),
	rgb("XRGB32", 32, 8, 8, 8, 16, 8, 24, 8, 0),
	hsv("HSV24", 24, 8, 0, 8, 8, 8, 16, 0, 0),
	hsv("HSV32", 32, 8, 16, 8, 8, 8, 0, 8, 24),
	yuv("UYVY", 1, OrderYCbCr|OrderCY, 2, 1),
	yuv("VYUY", 1, OrderYCrCb|OrderCY, 2, 1),
	yuv("YUYV", 1, OrderYCbCr|OrderYC, 2, 1),
	yuv("YVYU", 1, OrderYCrCb|OrderYC, 2, 1),
	yuv("NV12M", 2, OrderYCbCr, 2, 2),
	yuv("NV21M", 2, OrderYCrCb, 2, 2),
	yuv("NV16M", 2, OrderYCbCr, 2, 1),
	yuv("NV61M", 2, OrderYCrCb, 2, 1),
	yuv("NV24M", 2, OrderYCbCr, 1, 1),
	yuv("NV42M", 2, OrderYCrCb, 1, 1),
	yuv("YUV420M", 3, OrderYCbCr, 2, 2),
	yuv("YVU420M", 3, OrderYCrCb, 2, 2),
	yuv("YUV422M", 3, OrderYCbCr, 2, 1),
	yuv("YVU422M", 3, OrderYCrCb, 2, 1),
	yuv("YUV444M", 3, OrderYCbCr, 1, 1),
	yuv("YVU444M", 3, OrderYCrCb, 1, 1),
	yuv("YUV24", 1, OrderYCbCr|OrderYC, 1, 1),
}

// Canonical format names. Every conversion pivots through one of them.
const (
	RGB24 = "RGB24"
	YUV24 = "YUV24"
	HSV24 = "HSV24"
)

// Lookup returns the descriptor registered under name. Matching is exact and
// case-sensitive.
func Lookup(name string) (*Descriptor, bool) {
	return lo.Find(catalog, func(d *Descriptor) bool { return d.Name == name })
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name string) *Descriptor {
	d, ok := Lookup(name)
	if !ok {
		panic("format: unknown format " + name)
	}
	return d
}

// Canonical returns the canonical 24-bit format of a family.
func Canonical(f Family) *Descriptor {
	switch f {
	case FamilyYUV:
		return MustLookup(YUV24)
	case FamilyHSV:
		return MustLookup(HSV24)
	}
	return MustLookup(RGB24)
}

// IsCanonical reports whether d is one of RGB24, YUV24 or HSV24.
func (d *Descriptor) IsCanonical() bool { return Canonical(d.Family) == d }

// All returns the catalog in declaration order.
func All() []*Descriptor {
	out := make([]*Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Names lists the catalog names in declaration order.
func Names() []string {
	return lo.Map(catalog, func(d *Descriptor, _ int) string { return d.Name })
}
