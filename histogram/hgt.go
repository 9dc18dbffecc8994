package histogram

import (
	"encoding/binary"
	"fmt"

	"github.com/Skryldev/gen-image/colorspace"
	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
)

const (
	// HGTAreas is the number of hue areas.
	HGTAreas = 6
	// HGTBins is the number of saturation bins per area.
	HGTBins = 32
	// HGTSize is the byte size of an HGT record.
	HGTSize = 4 + 4 + HGTAreas*HGTBins*4

	hgtWeight = 16
	noRegion  = 0xff
)

// HGT is the hue/saturation weighted frequency record.
type HGT struct {
	Min  uint8
	Max  uint8
	Sum  uint32
	Bins [HGTAreas][HGTBins]uint32
}

// hueRegions maps every hue to one of the 12 regions delimited by the area
// boundaries. Even regions are the areas themselves, boundaries included;
// odd regions are the open gaps between an area and the next one. Regions
// are filled in order and the first one to claim a hue keeps it.
func hueRegions(b config.HueAreaTable) [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = noRegion
	}
	claim := func(h int, region uint8) {
		if lut[h] == noRegion {
			lut[h] = region
		}
	}

	for i := 0; i < len(b); i++ {
		lower := int(b[i])
		upper := int(b[(i+1)%len(b)])
		if i%2 == 0 {
			for h := lower; ; h = (h + 1) & 0xff {
				claim(h, uint8(i))
				if h == upper {
					break
				}
			}
			continue
		}
		for h := (lower + 1) & 0xff; h != upper && lower != upper; h = (h + 1) & 0xff {
			claim(h, uint8(i))
		}
	}
	return lut
}

// splitWeight divides the pixel weight between the area before and the area
// after a gap region. The nearer area gets the rounded up share.
func splitWeight(lower, upper, hue uint8) (cur, next uint32) {
	width := uint32(upper - lower)
	dist := uint32(hue - lower)
	if dist*2 > width {
		next = (dist*hgtWeight + width - 1) / width
		return hgtWeight - next, next
	}
	cur = ((width-dist)*hgtWeight + width - 1) / width
	return cur, hgtWeight - cur
}

// ComputeHGT builds the HGT record of an RGB24 or HSV24 image. YUV images
// are rejected.
func ComputeHGT(img *core.Image, areas config.HueAreaTable) (*HGT, error) {
	if err := check(img, "histogram.hgt"); err != nil {
		return nil, err
	}
	if img.Format.IsYUV() {
		return nil, apperrors.Errorf(apperrors.CategoryFormat, "histogram.hgt",
			"%w: HGT needs RGB or HSV data, got %s", apperrors.ErrUnsupportedFormat, img.Format.Name)
	}

	regions := hueRegions(areas)
	h := &HGT{Min: 255}
	data := img.Data
	for i := 0; i+2 < len(data); i += 3 {
		px := [3]uint8{data[i], data[i+1], data[i+2]}
		if img.Format.IsRGB() {
			px = colorspace.RGBToHSV(px)
		}
		hue, sat := px[0], px[1]

		h.Min = min(h.Min, sat)
		h.Max = max(h.Max, sat)
		h.Sum += uint32(sat)

		bin := sat >> 3
		region := regions[hue]
		switch {
		case region == noRegion:
		case region%2 == 0:
			h.Bins[region/2][bin] += hgtWeight
		default:
			n := int(region / 2)
			lower := areas[region]
			upper := areas[(int(region)+1)%len(areas)]
			cur, next := splitWeight(lower, upper, hue)
			h.Bins[n][bin] += cur
			h.Bins[(n+1)%HGTAreas][bin] += next
		}
	}
	return h, nil
}

// MarshalBinary encodes the 776 byte little-endian record.
func (h *HGT) MarshalBinary() ([]byte, error) {
	out := make([]byte, HGTSize)
	out[0] = h.Min
	out[2] = h.Max
	binary.LittleEndian.PutUint32(out[4:], h.Sum)
	off := 8
	for i := range h.Bins {
		for _, b := range h.Bins[i] {
			binary.LittleEndian.PutUint32(out[off:], b)
			off += 4
		}
	}
	return out, nil
}

// UnmarshalBinary decodes a record written by MarshalBinary.
func (h *HGT) UnmarshalBinary(data []byte) error {
	if len(data) != HGTSize {
		return apperrors.Errorf(apperrors.CategoryInput, "histogram.hgt",
			"%w: got %d bytes, want %d", apperrors.ErrShortData, len(data), HGTSize)
	}
	h.Min = data[0]
	h.Max = data[2]
	h.Sum = binary.LittleEndian.Uint32(data[4:])
	off := 8
	for i := range h.Bins {
		for j := range h.Bins[i] {
			h.Bins[i][j] = binary.LittleEndian.Uint32(data[off:])
			off += 4
		}
	}
	return nil
}

// Series returns the six area histograms.
func (h *HGT) Series() [][]uint32 {
	out := make([][]uint32, HGTAreas)
	for i := range out {
		out[i] = h.Bins[i][:]
	}
	return out
}

// Title summarises the saturation statistics.
func (h *HGT) Title() string {
	return fmt.Sprintf("saturation min %d max %d sum %d", h.Min, h.Max, h.Sum)
}
