package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/gen-image/codec"
	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/format"
)

func canonical(t *testing.T, name string, w, h int, pixels ...[3]uint8) *core.Image {
	t.Helper()
	img, err := core.NewImage(format.MustLookup(name), w, h)
	require.NoError(t, err)
	for i, p := range pixels {
		copy(img.Data[3*i:], p[:])
	}
	return img
}

func truncated(v uint8, length uint8) uint8 {
	if length == 0 {
		return 0
	}
	return v &^ (0xff >> length)
}

func TestPackUnpackTruncatesEveryRGBFormat(t *testing.T) {
	values := []uint8{0, 1, 7, 0x55, 0x80, 0xaa, 0xf7, 0xff}
	for _, d := range format.All() {
		if !d.IsRGB() {
			continue
		}
		t.Run(d.Name, func(t *testing.T) {
			pixels := make([][3]uint8, 0, len(values))
			for i, v := range values {
				pixels = append(pixels, [3]uint8{v, values[(i+3)%len(values)], values[(i+5)%len(values)]})
			}
			src := canonical(t, format.RGB24, len(pixels), 1, pixels...)

			packed, err := codec.Pack(src, d, config.DefaultParams())
			require.NoError(t, err)
			assert.Equal(t, d.ImageSize(len(pixels), 1), packed.Size())

			back, err := codec.Unpack(packed)
			require.NoError(t, err)
			for i, p := range pixels {
				assert.Equal(t, truncated(p[0], d.Pixel.Red.Length), back.Data[3*i], "red %d", i)
				assert.Equal(t, truncated(p[1], d.Pixel.Green.Length), back.Data[3*i+1], "green %d", i)
				assert.Equal(t, truncated(p[2], d.Pixel.Blue.Length), back.Data[3*i+2], "blue %d", i)
			}
		})
	}
}

func TestPackRGBByteLayouts(t *testing.T) {
	src := canonical(t, format.RGB24, 1, 1, [3]uint8{0xff, 0x10, 0x20})
	p := config.DefaultParams()
	p.Alpha = 0x80

	cases := []struct {
		name string
		want []byte
	}{
		{"RGB24", []byte{0xff, 0x10, 0x20}},
		{"BGR24", []byte{0x20, 0x10, 0xff}},
		{"RGB565", []byte{0x84, 0xf8}},
		{"RGB332", []byte{0xe0}},
		{"XRGB32", []byte{0x80, 0xff, 0x10, 0x20}},
		{"ABGR32", []byte{0x20, 0x10, 0xff, 0x80}},
		{"ARGB555", []byte{0x44, 0xfc}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := codec.Pack(src, format.MustLookup(tc.name), p)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Data)
		})
	}
}

func TestPackHSV32InsertsAlpha(t *testing.T) {
	src := canonical(t, format.HSV24, 1, 1, [3]uint8{10, 20, 30})
	p := config.DefaultParams()
	p.Alpha = 0x7f

	out, err := codec.Pack(src, format.MustLookup("HSV32"), p)
	require.NoError(t, err)
	assert.Equal(t, []byte{30, 20, 10, 0x7f}, out.Data)

	same, err := codec.Pack(src, format.MustLookup(format.HSV24), p)
	require.NoError(t, err)
	assert.Equal(t, src.Data, same.Data)
}

func TestPackYUVPackedChromaAveraging(t *testing.T) {
	pixels := [][3]uint8{{10, 100, 200}, {20, 51, 31}, {30, 7, 8}, {40, 9, 255}}

	for _, avg := range []bool{true, false} {
		p := config.DefaultParams()
		p.ChromaAverage = avg
		src := canonical(t, format.YUV24, 4, 1, pixels...)

		out, err := codec.Pack(src, format.MustLookup("YUYV"), p)
		require.NoError(t, err)

		for k := 0; k < 2; k++ {
			a, b := pixels[2*k], pixels[2*k+1]
			wantCb, wantCr := a[1], a[2]
			if avg {
				wantCb = uint8((int(a[1]) + int(b[1])) / 2)
				wantCr = uint8((int(a[2]) + int(b[2])) / 2)
			}
			unit := out.Data[4*k : 4*k+4]
			assert.Equal(t, []byte{a[0], wantCb, b[0], wantCr}, unit, "avg=%v pair %d", avg, k)
		}
	}
}

func TestPackYUVPackedOrders(t *testing.T) {
	src := canonical(t, format.YUV24, 2, 1, [3]uint8{1, 2, 3}, [3]uint8{4, 2, 3})
	p := config.DefaultParams()

	cases := map[string][]byte{
		"YUYV": {1, 2, 4, 3},
		"YVYU": {1, 3, 4, 2},
		"UYVY": {2, 1, 3, 4},
		"VYUY": {3, 1, 2, 4},
	}
	for name, want := range cases {
		out, err := codec.Pack(src, format.MustLookup(name), p)
		require.NoError(t, err)
		assert.Equal(t, want, out.Data, name)
	}
}

func TestPackYUVPackedOddWidth(t *testing.T) {
	src := canonical(t, format.YUV24, 3, 1, [3]uint8{1, 2, 3}, [3]uint8{4, 6, 7}, [3]uint8{9, 10, 11})
	out, err := codec.Pack(src, format.MustLookup("YUYV"), config.DefaultParams())
	require.NoError(t, err)
	require.Len(t, out.Data, 6)
	assert.Equal(t, []byte{1, 4, 4, 5, 9, 10}, out.Data)
}

func TestPackYUVPlanar(t *testing.T) {
	// 4x2 image, chroma differs per column and per row.
	var pixels [][3]uint8
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			pixels = append(pixels, [3]uint8{uint8(16 + x + 4*y), uint8(100 + 10*x + y), uint8(200 - 10*x - y)})
		}
	}
	p := config.DefaultParams()

	t.Run("NV12M", func(t *testing.T) {
		src := canonical(t, format.YUV24, 4, 2, pixels...)
		out, err := codec.Pack(src, format.MustLookup("NV12M"), p)
		require.NoError(t, err)
		require.Len(t, out.Data, 12)
		assert.Equal(t, []byte{16, 17, 18, 19, 20, 21, 22, 23}, out.Data[:8])
		assert.Equal(t, []byte{105, 195, 125, 175}, out.Data[8:])
	})

	t.Run("NV21M", func(t *testing.T) {
		src := canonical(t, format.YUV24, 4, 2, pixels...)
		out, err := codec.Pack(src, format.MustLookup("NV21M"), p)
		require.NoError(t, err)
		assert.Equal(t, []byte{195, 105, 175, 125}, out.Data[8:])
	})

	t.Run("YVU420M without averaging", func(t *testing.T) {
		src := canonical(t, format.YUV24, 4, 2, pixels...)
		q := p
		q.ChromaAverage = false
		out, err := codec.Pack(src, format.MustLookup("YVU420M"), q)
		require.NoError(t, err)
		assert.Equal(t, []byte{200, 180, 100, 120}, out.Data[8:])
	})

	t.Run("YUV422M", func(t *testing.T) {
		src := canonical(t, format.YUV24, 4, 2, pixels...)
		out, err := codec.Pack(src, format.MustLookup("YUV422M"), p)
		require.NoError(t, err)
		require.Len(t, out.Data, 16)
		assert.Equal(t, []byte{105, 125, 106, 126}, out.Data[8:12])
		assert.Equal(t, []byte{195, 175, 194, 174}, out.Data[12:16])
	})

	t.Run("NV24M", func(t *testing.T) {
		src := canonical(t, format.YUV24, 4, 2, pixels...)
		out, err := codec.Pack(src, format.MustLookup("NV24M"), p)
		require.NoError(t, err)
		require.Len(t, out.Data, 24)
		assert.Equal(t, []byte{100, 200, 110, 190}, out.Data[8:12])
	})
}

func TestPackRejectsFamilyMismatch(t *testing.T) {
	src := canonical(t, format.YUV24, 2, 2)
	_, err := codec.Pack(src, format.MustLookup("RGB565"), config.DefaultParams())
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryFormat))
	assert.ErrorIs(t, err, apperrors.ErrFamilyMismatch)
}

func TestUnpackRejectsYUV(t *testing.T) {
	src := canonical(t, format.YUV24, 2, 2)
	_, err := codec.Unpack(src)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)
}
