// Package histogram computes the HGO and HGT statistics records produced by
// the histogram hardware blocks.
package histogram

import (
	"encoding/binary"
	"fmt"

	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
)

const (
	// HGOBins is the number of bins per HGO channel.
	HGOBins = 64
	// HGOSize is the byte size of an HGO record.
	HGOSize = 3*4 + 3*4 + 3*HGOBins*4
)

// HGO is the per-channel histogram record. Channels are stored in colour role
// order: R, G, B for RGB and HSV images and V(Cr), Y, U(Cb) for YUV images.
type HGO struct {
	Min  [3]uint8
	Max  [3]uint8
	Sum  [3]uint32
	Bins [3][HGOBins]uint32
}

func hgoComponentMap(img *core.Image) [3]int {
	if img.Format.IsYUV() {
		return [3]int{2, 0, 1}
	}
	return [3]int{0, 1, 2}
}

func check(img *core.Image, op string) error {
	if img == nil {
		return apperrors.New(apperrors.CategoryPipeline, op, apperrors.ErrEmptyInput)
	}
	if img.Released() {
		return apperrors.New(apperrors.CategoryPipeline, op, apperrors.ErrReleased)
	}
	if !img.Format.IsCanonical() {
		return apperrors.Errorf(apperrors.CategoryFormat, op,
			"%w: %s is not a canonical format", apperrors.ErrUnsupportedFormat, img.Format.Name)
	}
	return nil
}

// ComputeHGO gathers min, max, sum and a 64 bin histogram per channel. The
// image is only read.
func ComputeHGO(img *core.Image) (*HGO, error) {
	if err := check(img, "histogram.hgo"); err != nil {
		return nil, err
	}

	minv := [3]uint8{255, 255, 255}
	var maxv [3]uint8
	var sums [3]uint32
	var bins [3][HGOBins]uint32

	data := img.Data
	for i := 0; i+2 < len(data); i += 3 {
		for c := 0; c < 3; c++ {
			v := data[i+c]
			minv[c] = min(minv[c], v)
			maxv[c] = max(maxv[c], v)
			sums[c] += uint32(v)
			bins[c][v>>2]++
		}
	}

	h := &HGO{}
	for i, c := range hgoComponentMap(img) {
		h.Min[i] = minv[c]
		h.Max[i] = maxv[c]
		h.Sum[i] = sums[c]
		h.Bins[i] = bins[c]
	}
	return h, nil
}

// MarshalBinary encodes the 792 byte little-endian record.
func (h *HGO) MarshalBinary() ([]byte, error) {
	out := make([]byte, HGOSize)
	for i := 0; i < 3; i++ {
		out[4*i] = h.Min[i]
		out[4*i+2] = h.Max[i]
	}
	off := 12
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(out[off:], h.Sum[i])
		off += 4
	}
	for i := 0; i < 3; i++ {
		for _, b := range h.Bins[i] {
			binary.LittleEndian.PutUint32(out[off:], b)
			off += 4
		}
	}
	return out, nil
}

// UnmarshalBinary decodes a record written by MarshalBinary.
func (h *HGO) UnmarshalBinary(data []byte) error {
	if len(data) != HGOSize {
		return apperrors.Errorf(apperrors.CategoryInput, "histogram.hgo",
			"%w: got %d bytes, want %d", apperrors.ErrShortData, len(data), HGOSize)
	}
	for i := 0; i < 3; i++ {
		h.Min[i] = data[4*i]
		h.Max[i] = data[4*i+2]
	}
	off := 12
	for i := 0; i < 3; i++ {
		h.Sum[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}
	for i := 0; i < 3; i++ {
		for j := range h.Bins[i] {
			h.Bins[i][j] = binary.LittleEndian.Uint32(data[off:])
			off += 4
		}
	}
	return nil
}

// Series returns the three channel histograms.
func (h *HGO) Series() [][]uint32 {
	out := make([][]uint32, 3)
	for i := range out {
		out[i] = h.Bins[i][:]
	}
	return out
}

// Title summarises the channel statistics.
func (h *HGO) Title() string {
	return fmt.Sprintf("min (%d,%d,%d) max (%d,%d,%d) sum (%d,%d,%d)",
		h.Min[0], h.Min[1], h.Min[2], h.Max[0], h.Max[1], h.Max[2], h.Sum[0], h.Sum[1], h.Sum[2])
}
