package codec

import (
	"fmt"

	apperrors "github.com/Skryldev/gen-image/errors"
)

// plane addresses one sample component inside a byte buffer: sample (x, y)
// lives at offset + y*stride + x*step.
type plane struct {
	data   []byte
	offset int
	stride int
	step   int
}

func (p plane) index(x, y int) int { return p.offset + y*p.stride + x*p.step }

func (p plane) set(x, y int, v uint8) { p.data[p.index(x, y)] = v }

// check verifies that a cols x rows walk stays inside the buffer.
func (p plane) check(op string, cols, rows int) error {
	if cols == 0 || rows == 0 {
		return nil
	}
	if last := p.index(cols-1, rows-1); p.offset < 0 || last >= len(p.data) {
		return apperrors.New(apperrors.CategoryFormat, op,
			fmt.Errorf("plane walk %dx%d overruns %d byte buffer", cols, rows, len(p.data)))
	}
	return nil
}

// putWord stores the low n bytes of v little-endian.
func putWord(b []byte, v uint32, n int) {
	for i := 0; i < n; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// word loads n little-endian bytes.
func word(b []byte, n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v |= uint32(b[i]) << (8 * i)
	}
	return v
}
