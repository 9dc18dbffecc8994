package encoder

import (
	"bytes"
	"context"

	"golang.org/x/image/bmp"

	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
)

// BMP encodes uncompressed bitmaps.
type BMP struct{}

func NewBMP() *BMP { return &BMP{} }

func (b *BMP) CanEncode(c core.Container) bool { return c == core.ContainerBMP }

func (b *BMP) Encode(ctx context.Context, img *core.Image) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, "bmp.encode", err)
	}
	src, err := ToRGBA(img)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, src); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryFormat, "bmp.encode", err)
	}
	return buf.Bytes(), nil
}
