package encoder

import (
	"bytes"
	"context"

	"golang.org/x/image/tiff"

	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
)

// TIFF encodes previews without compression so the pixel values stay
// inspectable with a hex dump.
type TIFF struct {
	Compression tiff.CompressionType
}

func NewTIFF() *TIFF { return &TIFF{Compression: tiff.Uncompressed} }

func (t *TIFF) CanEncode(c core.Container) bool { return c == core.ContainerTIFF }

func (t *TIFF) Encode(ctx context.Context, img *core.Image) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, "tiff.encode", err)
	}
	src, err := ToRGBA(img)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tiff.Encode(&buf, src, &tiff.Options{Compression: t.Compression}); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryFormat, "tiff.encode", err)
	}
	return buf.Bytes(), nil
}
