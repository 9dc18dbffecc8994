package decoder_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/gen-image/adapters/decoder"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/format"
)

func decode(t *testing.T, s string) (*core.Image, error) {
	t.Helper()
	return decoder.NewPNM().Decode(context.Background(), strings.NewReader(s))
}

func TestPNM_Decode(t *testing.T) {
	img, err := decode(t, "P6\n2 1\n255\n\x01\x02\x03\x04\x05\x06")
	require.NoError(t, err)
	assert.Equal(t, format.MustLookup(format.RGB24), img.Format)
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 1, img.Height)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, img.Data)
}

func TestPNM_DecodeWhitespace(t *testing.T) {
	// Any run of whitespace separates the header fields; exactly one byte
	// terminates the depth so a pixel value of ' ' is preserved.
	img, err := decode(t, "P6 \t 1\r\n\n1  255  \x20\x09")
	require.NoError(t, err)
	assert.Equal(t, []byte{' ', ' ', '\t'}, img.Data)
}

func TestPNM_DecodeIgnoresTrailingData(t *testing.T) {
	img, err := decode(t, "P6\n1 1\n255\nabcdef")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), img.Data)
}

func TestPNM_DecodeErrors(t *testing.T) {
	cases := map[string]struct {
		in   string
		want error
	}{
		"signature":   {"P3\n1 1\n255\nabc", apperrors.ErrBadSignature},
		"depth":       {"P6\n1 1\n65535\nabcabc", apperrors.ErrBadDepth},
		"short data":  {"P6\n2 2\n255\nabc", apperrors.ErrShortData},
		"short head":  {"P6\n2", apperrors.ErrShortData},
		"empty":       {"", apperrors.ErrShortData},
		"comment":     {"P6\n# made by hand\n1 1\n255\nabc", nil},
		"no ws after": {"P6\n1x1\n255\nabc", nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decode(t, tc.in)
			require.Error(t, err)
			assert.True(t, apperrors.IsCategory(err, apperrors.CategoryInput), err.Error())
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestPNM_DecodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := decoder.NewPNM().Decode(ctx, strings.NewReader("P6\n1 1\n255\nabc"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPNM_CanDecode(t *testing.T) {
	d := decoder.NewPNM()
	assert.True(t, d.CanDecode(core.ContainerPNM))
	assert.False(t, d.CanDecode(core.ContainerPNG))
}
