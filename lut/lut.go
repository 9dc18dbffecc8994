// Package lut applies the 1D and 3D colour lookup tables of the hardware
// pipeline and generates test tables.
package lut

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
)

const (
	// Size1D is the byte size of a 1D table: 256 entries of 4 bytes.
	Size1D = 256 * 4

	// GridPoints is the number of lattice points along each 3D table axis.
	GridPoints = 17
	// Entries3D is the number of lattice points of a 3D table.
	Entries3D = GridPoints * GridPoints * GridPoints
	// Size3D is the byte size of a 3D table of little-endian 32-bit words.
	Size3D = Entries3D * 4
)

// Table1D holds 256 entries of 4 bytes. Each channel selects one byte of the
// entry indexed by its value.
type Table1D [Size1D]byte

// Table3D holds the 17x17x17 lattice. Each word packs three 8-bit samples at
// bits 16, 8 and 0; the top byte is unused.
type Table3D [Entries3D]uint32

// Read1D reads a 1D table. The stream must hold exactly Size1D bytes.
func Read1D(r io.Reader) (*Table1D, error) {
	data, err := readExact(r, Size1D, "lut.read1d")
	if err != nil {
		return nil, err
	}
	var t Table1D
	copy(t[:], data)
	return &t, nil
}

// Read3D reads a 3D table. The stream must hold exactly Size3D bytes.
func Read3D(r io.Reader) (*Table3D, error) {
	data, err := readExact(r, Size3D, "lut.read3d")
	if err != nil {
		return nil, err
	}
	var t Table3D
	for i := range t {
		t[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	return &t, nil
}

func readExact(r io.Reader, size int, op string) ([]byte, error) {
	// Read one byte past the expected size to detect oversized tables.
	data, err := io.ReadAll(io.LimitReader(r, int64(size)+1))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, op, err)
	}
	if len(data) != size {
		return nil, apperrors.Errorf(apperrors.CategoryInput, op,
			"%w: got %d bytes, want %d", apperrors.ErrTableSize, len(data), size)
	}
	return data, nil
}

// MarshalBinary returns the on-disk form of the table.
func (t *Table1D) MarshalBinary() ([]byte, error) {
	out := make([]byte, Size1D)
	copy(out, t[:])
	return out, nil
}

// MarshalBinary returns the table as little-endian 32-bit words.
func (t *Table3D) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(Size3D)
	if err := binary.Write(&buf, binary.LittleEndian, t[:]); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// componentMap1D selects the entry byte for each channel.
func componentMap1D(img *core.Image) [3]int {
	if img.Format.IsYUV() {
		return [3]int{1, 0, 2}
	}
	return [3]int{2, 1, 0}
}

// componentMap3D reorders channels onto the lattice axes.
func componentMap3D(img *core.Image) [3]int {
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

// Apply1D maps every channel of img through t.
func Apply1D(img *core.Image, t *Table1D) (*core.Image, error) {
	if err := check(img, "lut.apply1d"); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperrors.New(apperrors.CategoryInput, "lut.apply1d", apperrors.ErrTableSize)
	}
	out, err := img.Like()
	if err != nil {
		return nil, err
	}
	cm := componentMap1D(img)
	in, od := img.Data, out.Data
	for i := 0; i+2 < len(in); i += 3 {
		od[i] = t[int(in[i])*4+cm[0]]
		od[i+1] = t[int(in[i+1])*4+cm[1]]
		od[i+2] = t[int(in[i+2])*4+cm[2]]
	}
	return out, nil
}

// gridIndex splits a sample into its lattice cell and interpolation ratio.
// Samples within half a step of the top of the range are pushed one step
// further (Max Value Stretch) so that 255 reaches the last lattice point.
func gridIndex(c uint8) (int, float64) {
	frac := int(c & 0xf)
	if c >= 0xf8 {
		frac++
	}
	return int(c >> 4), float64(frac) / 16
}

func (t *Table3D) sample(a1, a2, a3 int, shift uint) float64 {
	return float64((t[a1+a2*GridPoints+a3*GridPoints*GridPoints] >> shift) & 0xff)
}

// Apply3D maps every pixel of img through the trilinearly interpolated
// lattice t.
func Apply3D(img *core.Image, t *Table3D) (*core.Image, error) {
	if err := check(img, "lut.apply3d"); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperrors.New(apperrors.CategoryInput, "lut.apply3d", apperrors.ErrTableSize)
	}
	out, err := img.Like()
	if err != nil {
		return nil, err
	}

	cm := componentMap3D(img)
	in, od := img.Data, out.Data
	for i := 0; i+2 < len(in); i += 3 {
		a1, r1 := gridIndex(in[i+cm[0]])
		a2, r2 := gridIndex(in[i+cm[1]])
		a3, r3 := gridIndex(in[i+cm[2]])

		// Corner k is offset by (k>>2, k>>1, k) & 1 along the three axes.
		var f [8][3]float64
		for k := range f {
			f[k] = [3]float64{1 - r1, 1 - r2, 1 - r3}
			if k&4 != 0 {
				f[k][0] = r1
			}
			if k&2 != 0 {
				f[k][1] = r2
			}
			if k&1 != 0 {
				f[k][2] = r3
			}
		}

		for ch, shift := range [3]uint{16, 8, 0} {
			var v float64
			for k := range f {
				v += t.sample(a1+(k>>2&1), a2+(k>>1&1), a3+(k&1), shift) * f[k][0] * f[k][1] * f[k][2]
			}
			od[i+cm[ch]] = uint8(math.Round(v))
		}
	}
	return out, nil
}

// Kind names a generated table.
type Kind string

const (
	KindZero     Kind = "zero"
	KindIdentity Kind = "identity"
	KindGamma    Kind = "gamma"
	KindWave     Kind = "wave"
)

// gammaExponents are the per-byte curves of the gamma test table. Byte 1
// keeps the identity so one channel always passes through.
var gammaExponents = [3]float64{0.5, 1.0, 2.0}

// Generate1D builds a 1D test table. Entry bytes 0 to 2 hold the output
// sample for each table channel; byte 3 is padding and stays zero.
func Generate1D(kind Kind) (*Table1D, error) {
	var t Table1D
	for v := 0; v < 256; v++ {
		for c := 0; c < 3; c++ {
			var out uint8
			switch kind {
			case KindZero:
			case KindIdentity:
				out = uint8(v)
			case KindGamma:
				out = gammaLevel(v, gammaExponents[c])
			default:
				return nil, fmt.Errorf("lut: unknown 1D table kind %q", kind)
			}
			t[v*4+c] = out
		}
	}
	return &t, nil
}

func gammaLevel(v int, exp float64) uint8 {
	if exp == 1 {
		return uint8(v)
	}
	return uint8(255 * math.Pow(float64(v)/255, exp))
}

// Generate3D builds a 3D test table. The identity table stores 16*i per axis
// clamped to 255; the wave table offsets every axis by a sine of the
// weighted distance to the origin, with unequal weights so the table is
// anisotropic.
func Generate3D(kind Kind) (*Table3D, error) {
	var t Table3D
	for a3 := 0; a3 < GridPoints; a3++ {
		for a2 := 0; a2 < GridPoints; a2++ {
			for a1 := 0; a1 < GridPoints; a1++ {
				var c0, c1, c2 uint32
				switch kind {
				case KindZero:
				case KindIdentity:
					c0, c1, c2 = level(a1), level(a2), level(a3)
				case KindWave:
					c0, c1, c2 = wave(a1, a2, a3)
				default:
					return nil, fmt.Errorf("lut: unknown 3D table kind %q", kind)
				}
				t[a1+a2*GridPoints+a3*GridPoints*GridPoints] = c0<<16 | c1<<8 | c2
			}
		}
	}
	return &t, nil
}

func level(a int) uint32 { return uint32(min(a*16, 255)) }

func wave(a1, a2, a3 int) (uint32, uint32, uint32) {
	x, y, z := float64(a1)/16, float64(a2)/16, float64(a3)/16
	dist := math.Sqrt((x*x + 2*y*y + 3*z*z) / 3 / 6)
	off := 0.1 * math.Sin(dist*3*2*math.Pi)
	return waveLevel(x + off), waveLevel(y + off), waveLevel(z + off)
}

func waveLevel(v float64) uint32 { return uint32(max(0, min(255, int(v*256)))) }
