package utils_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/gen-image/utils"
)

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, "pnm", utils.DetectFormat([]byte("P6\n1 1\n255\n")))
	assert.Equal(t, "bmp", utils.DetectFormat([]byte("BM\x00\x00")))
	assert.Equal(t, "png", utils.DetectFormat([]byte("\x89PNG\r\n")))
	assert.Equal(t, "tiff", utils.DetectFormat([]byte("II*\x00....")))
	assert.Equal(t, "tiff", utils.DetectFormat([]byte("MM\x00*....")))
	assert.Equal(t, "unknown", utils.DetectFormat([]byte("P3")))
	assert.Equal(t, "unknown", utils.DetectFormat(nil))
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "pnm", utils.FormatFromPath("a/b.PPM"))
	assert.Equal(t, "png", utils.FormatFromPath("x.png"))
	assert.Equal(t, "tiff", utils.FormatFromPath("x.tif"))
	assert.Equal(t, "unknown", utils.FormatFromPath("x.raw"))
}

func TestParseSize(t *testing.T) {
	w, h, err := utils.ParseSize("640x480")
	require.NoError(t, err)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)

	for _, bad := range []string{"640", "x480", "640x", "640x480x2", "-1x2", "axb"} {
		_, _, err := utils.ParseSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestLimitedReader(t *testing.T) {
	out, err := io.ReadAll(&utils.LimitedReader{R: strings.NewReader("12345"), Max: 5})
	require.NoError(t, err)
	assert.Equal(t, "12345", string(out))

	_, err = io.ReadAll(&utils.LimitedReader{R: strings.NewReader("123456"), Max: 5})
	assert.ErrorIs(t, err, utils.ErrLimitExceeded)

	out, err = io.ReadAll(&utils.LimitedReader{R: strings.NewReader("123456")})
	require.NoError(t, err)
	assert.Len(t, out, 6)
}

func TestContextReader(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &utils.ContextReader{Ctx: ctx, R: strings.NewReader("abcdef")}

	var p [3]byte
	n, err := r.Read(p[:])
	require.NoError(t, err)
	assert.Equal(t, "abc", string(p[:n]))

	cancel()
	_, err = r.Read(p[:])
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingWriter struct {
	writes []int
	bytes.Buffer
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.writes = append(w.writes, len(p))
	return w.Buffer.Write(p)
}

func TestChunkedWriter(t *testing.T) {
	var rec recordingWriter
	w := &utils.ChunkedWriter{W: &rec, ChunkSize: 4}
	n, err := w.Write([]byte("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, []int{4, 4, 2}, rec.writes)
	assert.Equal(t, "0123456789", rec.String())

	var direct recordingWriter
	_, err = (&utils.ChunkedWriter{W: &direct}).Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, []int{3}, direct.writes)
}
