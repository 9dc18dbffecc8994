package colorspace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/gen-image/colorspace"
	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/format"
)

func newRGB(t *testing.T, w, h int, pixels ...[3]uint8) *core.Image {
	t.Helper()
	img, err := core.NewImage(format.MustLookup(format.RGB24), w, h)
	require.NoError(t, err)
	for i, p := range pixels {
		copy(img.Data[3*i:], p[:])
	}
	return img
}

func TestMatrixForLimitedRowSums(t *testing.T) {
	m := colorspace.MatrixFor(config.EncodingBT601, config.QuantizationLimited)
	assert.Equal(t, 219*256, m[0][0]+m[0][1]+m[0][2])
	assert.Equal(t, 28672, m[1][2])
	assert.Equal(t, 28672, m[2][0])
}

func TestMatrixForBT2020FullKeepsGreenTerm(t *testing.T) {
	full, limited := -0.4698, -0.4598

	m := colorspace.MatrixFor(config.EncodingBT2020, config.QuantizationFull)
	assert.Equal(t, int(0.5+full*255*256), m[2][1])
	assert.Equal(t, -30668, m[2][1])

	m = colorspace.MatrixFor(config.EncodingBT2020, config.QuantizationLimited)
	assert.Equal(t, int(0.5+limited*224*256), m[2][1])
	assert.Equal(t, -26366, m[2][1])
}

func TestRGBToYCbCrWhiteAndBlack(t *testing.T) {
	p := config.DefaultParams()
	m := colorspace.MatrixFor(p.Encoding, config.QuantizationLimited)

	assert.Equal(t, [3]uint8{235, 128, 128},
		colorspace.RGBToYCbCr(m, config.QuantizationLimited, [3]uint8{255, 255, 255}))
	assert.Equal(t, [3]uint8{16, 128, 128},
		colorspace.RGBToYCbCr(m, config.QuantizationLimited, [3]uint8{0, 0, 0}))

	full := colorspace.MatrixFor(p.Encoding, config.QuantizationFull)
	white := colorspace.RGBToYCbCr(full, config.QuantizationFull, [3]uint8{255, 255, 255})
	assert.Equal(t, uint8(255), white[0])
	assert.InDelta(t, 128, int(white[1]), 1)
	assert.InDelta(t, 128, int(white[2]), 1)
}

func TestRGBToYCbCrAllEncodingsKeepGrayNeutral(t *testing.T) {
	for _, enc := range []config.Encoding{
		config.EncodingBT601, config.EncodingRec709, config.EncodingBT2020, config.EncodingSMPTE240M,
	} {
		t.Run(enc.String(), func(t *testing.T) {
			m := colorspace.MatrixFor(enc, config.QuantizationLimited)
			ycc := colorspace.RGBToYCbCr(m, config.QuantizationLimited, [3]uint8{128, 128, 128})
			assert.InDelta(t, 126, int(ycc[0]), 1)
			assert.InDelta(t, 128, int(ycc[1]), 1)
			assert.InDelta(t, 128, int(ycc[2]), 1)
		})
	}
}

func TestRGBToHSV(t *testing.T) {
	cases := []struct {
		name string
		in   [3]uint8
		want [3]uint8
	}{
		{"red", [3]uint8{255, 0, 0}, [3]uint8{0, 255, 255}},
		{"green", [3]uint8{0, 255, 0}, [3]uint8{85, 255, 255}},
		{"blue", [3]uint8{0, 0, 255}, [3]uint8{171, 255, 255}},
		{"black", [3]uint8{0, 0, 0}, [3]uint8{0, 0, 0}},
		{"gray", [3]uint8{128, 128, 128}, [3]uint8{0, 0, 128}},
		{"magenta-ish red", [3]uint8{255, 0, 10}, [3]uint8{254, 255, 255}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, colorspace.RGBToHSV(tc.in))
		})
	}
}

func TestRGBToHSVSaturationRounding(t *testing.T) {
	// Exact halves round down when min < 128 and up otherwise.
	assert.Equal(t, uint8(127), colorspace.RGBToHSV([3]uint8{2, 1, 1})[1])
	assert.Equal(t, uint8(3), colorspace.RGBToHSV([3]uint8{204, 202, 202})[1])
	assert.Equal(t, uint8(1), colorspace.RGBToHSV([3]uint8{255, 254, 254})[1])
}

func TestImageRGBToYUVPrefilter(t *testing.T) {
	pixels := [][3]uint8{
		{255, 0, 0}, {0, 255, 0}, {0, 0, 255}, {255, 255, 0}, {0, 255, 255}, {40, 80, 120},
	}
	src := newRGB(t, len(pixels), 1, pixels...)
	p := config.DefaultParams()

	plain, err := colorspace.ImageRGBToYUV(src, p, format.MustLookup("YUV444M"))
	require.NoError(t, err)
	assert.Equal(t, format.YUV24, plain.Format.Name)

	filtered, err := colorspace.ImageRGBToYUV(src, p, format.MustLookup("YUYV"))
	require.NoError(t, err)

	for x := range pixels {
		for c := 0; c < 3; c++ {
			want := plain.Data[3*x+c]
			if c > 0 && x%2 == 0 && x >= 2 && x <= len(pixels)-2 {
				want = uint8((int(plain.Data[3*(x-1)+c]) + int(plain.Data[3*x+c])) / 2)
			}
			assert.Equal(t, want, filtered.Data[3*x+c], "x=%d c=%d", x, c)
		}
	}
}

func TestImageRGBToHSV(t *testing.T) {
	src := newRGB(t, 2, 1, [3]uint8{255, 0, 0}, [3]uint8{0, 0, 255})
	out, err := colorspace.ImageRGBToHSV(src)
	require.NoError(t, err)
	assert.Equal(t, format.HSV24, out.Format.Name)
	assert.Equal(t, []byte{0, 255, 255, 171, 255, 255}, out.Data)
}

func TestImageConversionRejectsNonRGB(t *testing.T) {
	img, err := core.NewImage(format.MustLookup(format.YUV24), 2, 2)
	require.NoError(t, err)

	_, err = colorspace.ImageRGBToHSV(img)
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryFormat))
}
